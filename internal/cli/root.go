package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"frontdesk-backend/internal/client"
)

type options struct {
	url      string
	user     string
	password string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "frontdesk-admin",
		Short: "Director tools for the Little Sprouts front desk assistant",
		Long: `frontdesk-admin reviews parent inquiries, edits the knowledge base and
checks escalation alerts against a running front desk API.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.url, "url", envOr("FRONTDESK_URL", "http://localhost:8001"), "Base URL of the front desk API")
	rootCmd.PersistentFlags().StringVar(&opts.user, "user", envOr("ADMIN_USER", "admin"), "Admin user name")
	rootCmd.PersistentFlags().StringVar(&opts.password, "password", os.Getenv("ADMIN_PASSWORD"), "Admin password")

	rootCmd.AddCommand(
		newInquiriesCommand(opts),
		newKnowledgeCommand(opts),
		newAlertsCommand(opts),
		newChatCommand(opts),
	)

	return rootCmd
}

func (o *options) client() *client.Client {
	return client.New(o.url, o.user, o.password)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
