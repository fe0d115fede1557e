package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/discord"
	appHTTP "github.com/cmlabs-hris/hris-attendance-bot/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/logging"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-bot/internal/service/attendance"
	complianceService "github.com/cmlabs-hris/hris-attendance-bot/internal/service/compliance"
	employeeService "github.com/cmlabs-hris/hris-attendance-bot/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hris-attendance-bot/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-attendance-bot/internal/service/notification"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var skipMigrations bool

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending migrations on startup")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Discord and serve the dashboard API",
	Long: `Connect to the Discord gateway, run the attendance jobs and serve the
dashboard API until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if !skipMigrations {
		applied, err := db.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		for _, name := range applied {
			logger.Info("Applied migration", "name", name)
		}
	}

	session, err := chat.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}
	gateway := chat.NewDiscord(session)

	m := metrics.NewMetrics()
	hub := sse.NewHub()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	complianceRepo := postgresql.NewComplianceRepository(db)

	notifier := notificationService.NewNotificationService(gateway, hub, m, notificationService.Config{
		RatePerSecond: cfg.Notification.RatePerSecond,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notifier.Stop()

	employees := employeeService.NewEmployeeService(employeeRepo)
	compliance := complianceService.NewComplianceService(complianceRepo, employees, m)
	attendance := attendanceService.NewAttendanceService(
		db,
		attendanceRepo,
		employees,
		compliance,
		notifier,
		gateway,
		cfg.AttendancePolicy(),
		cfg.Discord.LogChannelID,
		m,
	)
	leaves := leaveService.NewLeaveService(
		db,
		leaveRequestRepo,
		attendanceRepo,
		employees,
		notifier,
		cfg.LeavePolicy(),
		cfg.Discord.LeaveReviewChannel,
		m,
	)

	bot := discord.NewHandler(attendance, leaves, compliance, employees, cfg.Discord.GuildID, m)
	bot.Register(session)
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logger.Info("Connected to Discord", "user", r.User.Username, "guilds", len(r.Guilds))
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	defer session.Close()

	if cfg.Discord.RegisterOnStartup {
		registered, err := session.ApplicationCommandBulkOverwrite(cfg.Discord.ApplicationID, cfg.Discord.GuildID, discord.Commands())
		if err != nil {
			return fmt.Errorf("failed to register commands: %w", err)
		}
		logger.Info("Slash commands registered", "count", len(registered))
	}

	scheduler := cron.NewScheduler(m)
	jobs := cron.NewAttendanceJobs(
		attendance,
		cfg.Discord.GuildID,
		cfg.Attendance.ScreenShareInterval,
		cfg.Attendance.RequireScreenShare,
	)
	jobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	events := appHTTP.NewEventsHandler(notifier, employees, jwtService)
	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logging.NewHTTP(os.Stdout, cfg.App.LogLevel, cfg.App.Env),
			LogLevel:       logging.ParseLevel(cfg.App.LogLevel),
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		jwtService,
		appHTTP.NewAttendanceHandler(attendance, employees),
		appHTTP.NewLeaveHandler(leaves),
		appHTTP.NewComplianceHandler(compliance),
		events,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(events.Close)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Dashboard API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", "error", err)
	}
	return nil
}
