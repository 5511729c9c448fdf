package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/civic881027/ai-ticket-demo/guard"
	"github.com/civic881027/ai-ticket-demo/token"
)

type sessionInfo struct {
	UserID    string    `json:"user_id"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Expired   bool      `json:"expired"`
	BaseURL   string    `json:"base_url"`
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user as recorded in the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			access, err := a.store.StoredAccessToken()
			if err != nil {
				return err
			}
			if access == "" {
				return guard.ErrLoginRequired
			}
			claims, err := token.Decode(access)
			if err != nil {
				return err
			}

			info := sessionInfo{
				UserID:    claims.SubjectID(),
				TokenType: claims.TokenType,
				Expired:   token.IsExpired(access),
				BaseURL:   a.client.BaseURL(),
			}
			if claims.ExpiresAt != nil {
				info.ExpiresAt = claims.ExpiresAt.Time
			}
			return a.render(info, func(w io.Writer) {
				fmt.Fprintf(w, "User ID\t%s\n", info.UserID)
				fmt.Fprintf(w, "Token type\t%s\n", info.TokenType)
				fmt.Fprintf(w, "Expires\t%s\n", info.ExpiresAt.Local().Format(timeLayout))
				fmt.Fprintf(w, "Expired\t%t\n", info.Expired)
				fmt.Fprintf(w, "API\t%s\n", info.BaseURL)
			})
		},
	}
}
