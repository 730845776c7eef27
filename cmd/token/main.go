// Command token mints a bearer token for a catalog user, for local use
// against a server started with the same JWT secret.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Rrens/card-workbench/internal/config"
	"github.com/Rrens/card-workbench/internal/security"
)

var (
	userID int64
	email  string
	name   string
)

var rootCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for a catalog user",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
		token, err := jwtManager.GenerateAccessToken(userID, email, name)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.Flags().Int64Var(&userID, "user", 0, "catalog user id")
	rootCmd.Flags().StringVar(&email, "email", "", "user email")
	rootCmd.Flags().StringVar(&name, "name", "", "user display name")
	_ = rootCmd.MarkFlagRequired("user")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
