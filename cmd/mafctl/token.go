package main

import (
	"fmt"

	"github.com/lk2023060901/media-attached-filter/internal/auth"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint an administrator access token",
	Long: `Mint an access token for the admin screens. The token is accepted in
an "Authorization: Bearer" header or in the maf_token cookie.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")

		manager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
		token, err := manager.GenerateAccessToken(args[0], role)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("role", auth.RoleAdministrator, "role claim of the token")
}
