package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
)

func (h *Handler) employeeRegister(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)

	req := employee.RegisterRequest{
		Actor:       actor,
		Role:        employee.Role(stringOpt(opts, "role")),
		DisplayName: stringOpt(opts, "name"),
	}
	if user := userOpt(opts, "user"); user != nil {
		req.UserID = user.ID
		if req.DisplayName == "" {
			req.DisplayName = resolvedName(i, user.ID)
		}
	}

	result, err := h.employeeService.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	return ephemeral(fmt.Sprintf("👤 <@%s> is registered as **%s** (%s).", result.UserID, result.Role, result.DisplayName)), nil
}

func (h *Handler) employeeDeactivate(ctx context.Context, i *discordgo.Interaction, actor employee.Actor) (*discordgo.InteractionResponse, error) {
	opts := subcommandOptions(i)

	var userID string
	if user := userOpt(opts, "user"); user != nil {
		userID = user.ID
	}

	if err := h.employeeService.Deactivate(ctx, actor, userID); err != nil {
		return nil, err
	}

	return ephemeral(fmt.Sprintf("👋 <@%s> is no longer tracked.", userID)), nil
}

// resolvedName picks a member's display name from the data Discord resolved
// for the command's user options.
func resolvedName(i *discordgo.Interaction, userID string) string {
	resolved := i.ApplicationCommandData().Resolved
	if resolved == nil {
		return ""
	}
	if member, ok := resolved.Members[userID]; ok && member.Nick != "" {
		return member.Nick
	}
	if user, ok := resolved.Users[userID]; ok {
		return displayName(user)
	}
	return ""
}
