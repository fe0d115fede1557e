package main

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/discord"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/chat"
	"github.com/spf13/cobra"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Manage the guild's slash commands",
}

var commandsRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register or update the slash commands in the configured guild",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return overwriteCommands(cmd, discord.Commands())
	},
}

var commandsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every slash command from the configured guild",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return overwriteCommands(cmd, nil)
	},
}

func init() {
	commandsCmd.AddCommand(commandsRegisterCmd)
	commandsCmd.AddCommand(commandsClearCmd)
}

func overwriteCommands(cmd *cobra.Command, commands []*discordgo.ApplicationCommand) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	session, err := chat.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}

	if commands == nil {
		commands = []*discordgo.ApplicationCommand{}
	}
	registered, err := session.ApplicationCommandBulkOverwrite(cfg.Discord.ApplicationID, cfg.Discord.GuildID, commands, discordgo.WithContext(cmd.Context()))
	if err != nil {
		return fmt.Errorf("failed to overwrite commands: %w", err)
	}

	logger.Info("Slash commands updated", "guild_id", cfg.Discord.GuildID, "count", len(registered))
	return nil
}
