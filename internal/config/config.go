package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Discord      DiscordConfig
	Attendance   AttendanceConfig
	Leave        LeaveConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds dashboard token configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// DiscordConfig holds the bot credentials and the channels it posts to.
type DiscordConfig struct {
	Token              string
	ApplicationID      string
	GuildID            string
	LogChannelID       string
	LeaveReviewChannel string
	RegisterOnStartup  bool
}

type AttendanceConfig struct {
	WorkStart           string // HH:MM UTC
	LateGrace           time.Duration
	BreakAllowance      time.Duration
	RequireScreenShare  bool
	ScreenShareStrikes  int
	ScreenShareInterval time.Duration
	StaleSessionCap     time.Duration
	AbsentAfter         time.Duration
	WorkDays            []time.Weekday
}

type LeaveConfig struct {
	Anchor            string // HH:MM UTC
	SickWindowOpen    time.Duration
	SickWindowClose   time.Duration
	CasualNotice      time.Duration
	AnnualNotice      time.Duration
	MaxDaysPerRequest int
	SickQuota         int
	CasualQuota       int
	AnnualQuota       int
}

type NotificationConfig struct {
	RatePerSecond float64
	QueueSize     int
	WorkerCount   int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris-attendance-bot"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	registerOnStartup, err := strconv.ParseBool(getEnv("DISCORD_REGISTER_COMMANDS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISCORD_REGISTER_COMMANDS: %w", err)
	}

	config.Discord = DiscordConfig{
		Token:              getEnv("DISCORD_TOKEN", ""),
		ApplicationID:      getEnv("DISCORD_APP_ID", ""),
		GuildID:            getEnv("DISCORD_GUILD_ID", ""),
		LogChannelID:       getEnv("DISCORD_LOG_CHANNEL_ID", ""),
		LeaveReviewChannel: getEnv("DISCORD_LEAVE_CHANNEL_ID", ""),
		RegisterOnStartup:  registerOnStartup,
	}

	if config.Attendance, err = loadAttendance(); err != nil {
		return nil, err
	}
	if config.Leave, err = loadLeave(); err != nil {
		return nil, err
	}

	rate, err := strconv.ParseFloat(getEnv("NOTIFY_RATE_PER_SECOND", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_RATE_PER_SECOND: %w", err)
	}
	queueSize, err := getEnvInt("NOTIFY_QUEUE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("NOTIFY_WORKERS", 2)
	if err != nil {
		return nil, err
	}
	config.Notification = NotificationConfig{
		RatePerSecond: rate,
		QueueSize:     queueSize,
		WorkerCount:   workers,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (AttendanceConfig, error) {
	var (
		cfg AttendanceConfig
		err error
	)

	cfg.WorkStart = getEnv("WORK_START_UTC", "04:00")
	if cfg.LateGrace, err = getEnvDuration("LATE_GRACE", "10m"); err != nil {
		return cfg, err
	}
	if cfg.BreakAllowance, err = getEnvDuration("BREAK_ALLOWANCE", "60m"); err != nil {
		return cfg, err
	}
	if cfg.RequireScreenShare, err = strconv.ParseBool(getEnv("REQUIRE_SCREEN_SHARE", "true")); err != nil {
		return cfg, fmt.Errorf("invalid REQUIRE_SCREEN_SHARE: %w", err)
	}
	if cfg.ScreenShareStrikes, err = getEnvInt("SCREEN_SHARE_STRIKES", 3); err != nil {
		return cfg, err
	}
	if cfg.ScreenShareInterval, err = getEnvDuration("SCREEN_SHARE_INTERVAL", "5m"); err != nil {
		return cfg, err
	}
	if cfg.StaleSessionCap, err = getEnvDuration("STALE_SESSION_CAP", "9h"); err != nil {
		return cfg, err
	}
	if cfg.AbsentAfter, err = getEnvDuration("ABSENT_AFTER", "4h"); err != nil {
		return cfg, err
	}
	if cfg.WorkDays, err = parseWeekdays(getEnv("WORK_DAYS", "mon,tue,wed,thu,fri")); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadLeave() (LeaveConfig, error) {
	var (
		cfg LeaveConfig
		err error
	)

	cfg.Anchor = getEnv("LEAVE_ANCHOR_UTC", "10:00")
	if cfg.SickWindowOpen, err = getEnvDuration("SICK_WINDOW_OPEN", "12h"); err != nil {
		return cfg, err
	}
	if cfg.SickWindowClose, err = getEnvDuration("SICK_WINDOW_CLOSE", "2h"); err != nil {
		return cfg, err
	}
	if cfg.CasualNotice, err = getEnvDuration("CASUAL_NOTICE", "12h"); err != nil {
		return cfg, err
	}
	if cfg.AnnualNotice, err = getEnvDuration("ANNUAL_NOTICE", "168h"); err != nil {
		return cfg, err
	}
	if cfg.MaxDaysPerRequest, err = getEnvInt("LEAVE_MAX_DAYS_PER_REQUEST", 14); err != nil {
		return cfg, err
	}
	if cfg.SickQuota, err = getEnvInt("QUOTA_SICK", 12); err != nil {
		return cfg, err
	}
	if cfg.CasualQuota, err = getEnvInt("QUOTA_CASUAL", 10); err != nil {
		return cfg, err
	}
	if cfg.AnnualQuota, err = getEnvInt("QUOTA_ANNUAL", 15); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.Discord.ApplicationID == "" {
		return fmt.Errorf("DISCORD_APP_ID is required")
	}
	if c.Discord.GuildID == "" {
		return fmt.Errorf("DISCORD_GUILD_ID is required")
	}
	if _, err := ParseClock(c.Attendance.WorkStart); err != nil {
		return fmt.Errorf("WORK_START_UTC: %w", err)
	}
	if _, err := ParseClock(c.Leave.Anchor); err != nil {
		return fmt.Errorf("LEAVE_ANCHOR_UTC: %w", err)
	}
	if c.Leave.SickWindowClose >= c.Leave.SickWindowOpen {
		return fmt.Errorf("SICK_WINDOW_CLOSE must be shorter than SICK_WINDOW_OPEN")
	}
	if c.Attendance.ScreenShareStrikes < 1 {
		return fmt.Errorf("SCREEN_SHARE_STRIKES must be at least 1")
	}
	if c.Attendance.ScreenShareInterval <= 0 {
		return fmt.Errorf("SCREEN_SHARE_INTERVAL must be positive")
	}
	if c.Leave.MaxDaysPerRequest < 1 {
		return fmt.Errorf("LEAVE_MAX_DAYS_PER_REQUEST must be at least 1")
	}
	if c.Notification.RatePerSecond <= 0 {
		return fmt.Errorf("NOTIFY_RATE_PER_SECOND must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ParseClock parses an HH:MM clock-of-day into an offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q, expected HH:MM", value)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func parseWeekdays(value string) ([]time.Weekday, error) {
	names := map[string]time.Weekday{
		"sun": time.Sunday,
		"mon": time.Monday,
		"tue": time.Tuesday,
		"wed": time.Wednesday,
		"thu": time.Thursday,
		"fri": time.Friday,
		"sat": time.Saturday,
	}

	var days []time.Weekday
	for _, part := range strings.Split(value, ",") {
		day, ok := names[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return nil, fmt.Errorf("invalid WORK_DAYS entry %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}
