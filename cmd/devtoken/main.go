package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tourism-marketplace/internal/domain/aggregate"
	"tourism-marketplace/internal/infrastructure/config"
	jwtutil "tourism-marketplace/pkg/jwt"
)

var (
	userID  string
	email   string
	name    string
	role    string
	ttl     time.Duration
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "devtoken",
	Short: "Mint a bearer token for calling the admin endpoints locally",
	Long: `Mint a bearer token signed with the configured JWT_SECRET and JWT_ISSUER.

Examples:
  devtoken                          # ADMIN token for a random user
  devtoken --role SUPER_ADMIN --ttl 2h
  curl -H "Authorization: Bearer $(devtoken)" localhost:8080/admin/dashboard/stats`,
	SilenceUsage: true,
	RunE:         runDevToken,
}

func init() {
	rootCmd.Flags().StringVar(&userID, "user", "", "user id (random when empty)")
	rootCmd.Flags().StringVar(&email, "email", "admin@localhost", "email claim")
	rootCmd.Flags().StringVar(&name, "name", "Local Admin", "name claim")
	rootCmd.Flags().StringVar(&role, "role", string(aggregate.RoleAdmin), "role claim")
	rootCmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (JWT_TTL when zero)")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to read")
}

func runDevToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	if !aggregate.UserRole(role).IsValid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if userID == "" {
		userID = uuid.NewString()
	}
	if ttl <= 0 {
		ttl = cfg.JWT.TTL
	}

	token, err := jwtutil.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, ttl).GenerateToken(userID, email, name, role)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
