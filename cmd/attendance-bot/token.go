package main

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/validator"
	"github.com/spf13/cobra"
)

var (
	tokenUserID string
	tokenRole   string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "Discord user id the token acts for (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(employee.RoleManager), "Role claim: employee, manager or admin")
	_ = tokenCmd.MarkFlagRequired("user")
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a dashboard access token",
	Long: `Mint a dashboard access token for a member of the configured guild.

The role claim only gates routes; every request is checked again against
the member's current roster role.

Examples:
  attendance-bot token --user 200000000000000001 --role manager`,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, _ []string) error {
	if !validator.IsValidSnowflake(tokenUserID) {
		return fmt.Errorf("invalid --user %q", tokenUserID)
	}
	role := employee.Role(tokenRole)
	if !role.IsValid() {
		return employee.ErrInvalidRole
	}

	cfg, _, err := setup()
	if err != nil {
		return err
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	token, expiresAt, err := jwtService.GenerateAccessToken(jwt.Claims{
		UserID:  tokenUserID,
		GuildID: cfg.Discord.GuildID,
		Role:    role,
	})
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
	return nil
}
