package discord

import (
	"github.com/bwmarrin/discordgo"
)

var leaveTypeChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Sick", Value: "sick"},
	{Name: "Casual", Value: "casual"},
	{Name: "Annual", Value: "annual"},
	{Name: "Unpaid", Value: "unpaid"},
}

var leaveStatusChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Pending", Value: "pending"},
	{Name: "Approved", Value: "approved"},
	{Name: "Rejected", Value: "rejected"},
	{Name: "Cancelled", Value: "cancelled"},
}

var roleChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Employee", Value: "employee"},
	{Name: "Manager", Value: "manager"},
	{Name: "Admin", Value: "admin"},
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func choiceOption(name, description string, required bool, choices []*discordgo.ApplicationCommandOptionChoice) *discordgo.ApplicationCommandOption {
	opt := stringOption(name, description, required)
	opt.Choices = choices
	return opt
}

// Commands returns every slash command the bot registers in its guild.
func Commands() []*discordgo.ApplicationCommand {
	dmPermission := false
	yearMin := float64(2000)

	return []*discordgo.ApplicationCommand{
		{
			Name:         "clock",
			Description:  "Clock in and out of work",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("in", "Start a work session (join voice and share your screen first)"),
				subcommand("out", "End your work session",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "note",
						Description: "What you worked on",
						MaxLength:   500,
					},
				),
				subcommand("status", "Show your attendance for today"),
			},
		},
		{
			Name:         "break",
			Description:  "Take a break during your work session",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("start", "Start a break"),
				subcommand("end", "End your break"),
			},
		},
		{
			Name:         "attendance",
			Description:  "Attendance records",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("history", "Show attendance history",
					userOption("user", "Member to look up (managers only)", false),
					stringOption("start_date", "From date, YYYY-MM-DD", false),
					stringOption("end_date", "To date, YYYY-MM-DD", false),
				),
				subcommand("today", "Show who is working today (managers only)"),
			},
		},
		{
			Name:         "leave",
			Description:  "Leave requests",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("request", "Request leave",
					choiceOption("type", "Leave type", true, leaveTypeChoices),
					stringOption("start_date", "First day, YYYY-MM-DD", true),
					stringOption("reason", "Reason for the leave", true),
					stringOption("end_date", "Last day, YYYY-MM-DD (defaults to the first day)", false),
				),
				subcommand("cancel", "Cancel a pending or upcoming leave",
					stringOption("id", "Leave request id", true),
				),
				subcommand("list", "List leave requests",
					choiceOption("status", "Only requests with this status", false, leaveStatusChoices),
					userOption("user", "Member to look up (managers only)", false),
				),
				subcommand("balance", "Show your leave balance",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "year",
						Description: "Calendar year (defaults to this year)",
						MinValue:    &yearMin,
						MaxValue:    2100,
					},
				),
				subcommand("approve", "Approve a leave request (managers only)",
					stringOption("id", "Leave request id", true),
				),
				subcommand("reject", "Reject a leave request (managers only)",
					stringOption("id", "Leave request id", true),
					stringOption("reason", "Why the request is rejected", true),
				),
			},
		},
		{
			Name:         "compliance",
			Description:  "Policy breach reports",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("report", "Show policy breaches for a month",
					userOption("user", "Member to look up (managers only)", false),
					stringOption("month", "Month, YYYY-MM (defaults to this month)", false),
				),
			},
		},
		{
			Name:         "employee",
			Description:  "Manage the attendance roster (managers only)",
			DMPermission: &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("register", "Add or update a member",
					userOption("user", "Member to register", true),
					choiceOption("role", "Roster role", false, roleChoices),
					stringOption("name", "Display name (defaults to the member's name)", false),
				),
				subcommand("deactivate", "Stop tracking a member",
					userOption("user", "Member to deactivate", true),
				),
			},
		},
	}
}
