// Package discord turns gateway interactions into service calls: slash
// commands, review buttons, the rejection modal, pagination buttons and
// voice state changes.
package discord

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/compliance"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Responder answers an interaction. *discordgo.Session satisfies it.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

type commandFunc func(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error)

type Handler struct {
	attendanceService attendance.AttendanceService
	leaveService      leave.LeaveService
	complianceService compliance.Service
	employeeService   employee.EmployeeService
	metrics           *metrics.Metrics
	guildID           string
	timeout           time.Duration

	commands map[string]commandFunc
}

// NewHandler builds the interaction handler. Interactions from guilds other
// than guildID are ignored.
func NewHandler(
	attendanceService attendance.AttendanceService,
	leaveService leave.LeaveService,
	complianceService compliance.Service,
	employeeService employee.EmployeeService,
	guildID string,
	m *metrics.Metrics,
) *Handler {
	h := &Handler{
		attendanceService: attendanceService,
		leaveService:      leaveService,
		complianceService: complianceService,
		employeeService:   employeeService,
		metrics:           m,
		guildID:           guildID,
		timeout:           defaultTimeout,
	}

	h.commands = map[string]commandFunc{
		"clock in":            h.clockIn,
		"clock out":           h.clockOut,
		"clock status":        h.clockStatus,
		"break start":         h.breakStart,
		"break end":           h.breakEnd,
		"attendance history":  h.attendanceHistory,
		"attendance today":    h.attendanceToday,
		"leave request":       h.leaveRequest,
		"leave cancel":        h.leaveCancel,
		"leave list":          h.leaveList,
		"leave balance":       h.leaveBalance,
		"leave approve":       h.leaveApprove,
		"leave reject":        h.leaveReject,
		"compliance report":   h.complianceReport,
		"employee register":   h.employeeRegister,
		"employee deactivate": h.employeeDeactivate,
	}

	return h
}

// Register attaches the gateway event handlers to the session.
func (h *Handler) Register(s *discordgo.Session) {
	s.AddHandler(h.onInteraction)
	s.AddHandler(h.onVoiceStateUpdate)
}

func (h *Handler) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	h.Handle(ctx, s, ic.Interaction)
}

// Handle routes one interaction and sends exactly one response.
func (h *Handler) Handle(ctx context.Context, r Responder, i *discordgo.Interaction) {
	if h.guildID != "" && i.GuildID != "" && i.GuildID != h.guildID {
		return
	}

	start := time.Now()
	name, resp, err := h.route(ctx, i)
	if name == "" {
		return
	}

	outcome := "ok"
	if err != nil {
		resp, outcome = replyError(err)
		if outcome == "error" {
			slog.Error("Interaction failed", "interaction", name, "guild_id", i.GuildID, "user_id", interactionUserID(i), "error", err)
		}
	}
	h.metrics.RecordCommand(name, outcome, time.Since(start))

	if err := r.InteractionRespond(i, resp); err != nil {
		slog.Error("Failed to respond to interaction", "interaction", name, "error", err)
	}
}

// route returns the metric name of the interaction alongside its response.
// An empty name means the interaction is not ours.
func (h *Handler) route(ctx context.Context, i *discordgo.Interaction) (string, *discordgo.InteractionResponse, error) {
	actor := actorFromInteraction(i)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		name := data.Name
		if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
			name += " " + data.Options[0].Name
		}
		fn, ok := h.commands[name]
		if !ok {
			return "", nil, nil
		}
		resp, err := fn(ctx, i, actor)
		return name, resp, err

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if strings.HasPrefix(customID, pagePrefix) {
			resp, err := h.handlePage(ctx, actor, customID)
			return "component page", resp, err
		}
		action, requestID, ok := leave.ParseAction(customID)
		if !ok {
			return "", nil, nil
		}
		switch action {
		case leave.ActionApprove:
			resp, err := h.approveButton(ctx, actor, requestID)
			return "component leave approve", resp, err
		case leave.ActionReject:
			return "component leave reject", rejectModal(requestID), nil
		}

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		action, requestID, ok := leave.ParseAction(data.CustomID)
		if !ok || action != leave.ActionRejectModal {
			return "", nil, nil
		}
		resp, err := h.rejectModalSubmit(ctx, actor, requestID, modalValue(data, reasonInputID))
		return "modal leave reject", resp, err
	}

	return "", nil, nil
}

// actorFromInteraction identifies the invoker. Members holding Administrator
// or Manage Server in the guild act as roster admins.
func actorFromInteraction(i *discordgo.Interaction) employee.Actor {
	actor := employee.Actor{GuildID: i.GuildID}

	if i.Member != nil {
		if i.Member.User != nil {
			actor.UserID = i.Member.User.ID
			actor.DisplayName = displayName(i.Member.User)
		}
		if i.Member.Nick != "" {
			actor.DisplayName = i.Member.Nick
		}
		actor.GuildAdmin = i.Member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0
		return actor
	}

	if i.User != nil {
		actor.UserID = i.User.ID
		actor.DisplayName = displayName(i.User)
	}
	return actor
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// subcommandOptions returns the options of the invoked subcommand by name.
func subcommandOptions(i *discordgo.Interaction) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	data := i.ApplicationCommandData()
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	if len(data.Options) == 0 {
		return opts
	}
	for _, opt := range data.Options[0].Options {
		opts[opt.Name] = opt
	}
	return opts
}

func stringOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func stringPtrOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *string {
	if v := stringOpt(opts, name); v != "" {
		return &v
	}
	return nil
}

func userOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.User {
	if opt, ok := opts[name]; ok {
		return opt.UserValue(nil)
	}
	return nil
}

func intOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	if opt, ok := opts[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

// targetUserID returns the looked-up member, or nil when the invoker looks
// themselves up.
func targetUserID(user *discordgo.User, actor employee.Actor) *string {
	if user == nil || user.ID == actor.UserID {
		return nil
	}
	id := user.ID
	return &id
}
