package cli

import (
	"fmt"
	"time"

	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func (a *app) tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		Long: `Signs an access token with JWT_SECRET_KEY, the same key the server uses.
Meant for local development; export the result as TASKS_API_TOKEN.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				userID = uuid.NewString()
			}
			if a.cfg.JWTSecretKey == "" {
				a.log.Warn("JWT_SECRET_KEY не задан, токен подписан ключом для разработки")
			}
			token, err := auth.NewJWTManager(a.cfg.JWTSecretKey, ttl).GenerateAccessToken(userID, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user id (default: random uuid)")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
