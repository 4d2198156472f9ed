package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"frontdesk-backend/pkg/api"
	"frontdesk-backend/pkg/models"
)

// chat lets the Director try the assistant the way a parent would.
func newChatCommand(opts *options) *cobra.Command {
	var sessionID string
	var userType string

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a test message to the assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, session, err := opts.client().Chat(cmd.Context(), api.ChatRequest{
				SessionID: sessionID,
				Messages:  []models.ChatMessage{{Role: models.RoleUser, Content: args[0]}},
				UserType:  models.UserType(userType),
			})
			if err != nil {
				return fmt.Errorf("chat request failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, answer)
			fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", session)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to record the message under (new session if empty)")
	cmd.Flags().StringVar(&userType, "user-type", string(models.Prospective), "PROSPECTIVE, LOGGED_IN or ADMIN")
	return cmd
}
