package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"frontdesk-backend/pkg/api"
)

func newInquiriesCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inquiries",
		Short: "Review parent conversations",
	}

	cmd.AddCommand(newInquiriesListCommand(opts), newInquiriesGetCommand(opts))
	return cmd
}

func newInquiriesListCommand(opts *options) *cobra.Command {
	var filter api.InquiryFilter
	var escalatedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent inquiries, most recently active first",
		Example: `  # Everything that needs the Director
  frontdesk-admin inquiries list --confidence red

  # Parents who asked for a human
  frontdesk-admin inquiries list --escalated`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if escalatedOnly {
				filter.Escalated = &escalatedOnly
			}

			inquiries, err := opts.client().ListInquiries(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list inquiries: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(inquiries) == 0 {
				fmt.Fprintln(out, "No inquiries found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPARENT\tCHILD\tTOPIC\tCONFIDENCE\tSTATUS\tUPDATED")
			for _, inq := range inquiries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s (%.2f)\t%s\t%s\n",
					inq.ID, inq.Parent, inq.Child, inq.Topic,
					strings.ToUpper(string(inq.Confidence)), inq.ConfidenceScore,
					inq.Status, inq.LastUpdated.Local().Format("Jan 2 3:04 PM"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of inquiries to show (0 for all)")
	cmd.Flags().StringVar(&filter.Confidence, "confidence", "", "Only show green, yellow or red inquiries")
	cmd.Flags().BoolVar(&escalatedOnly, "escalated", false, "Only show inquiries flagged for human review")

	return cmd
}

func newInquiriesGetCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one inquiry with its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inquiry, err := opts.client().GetInquiry(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get inquiry: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, inquiry)
			}

			fmt.Fprintf(out, "Inquiry %s\n", inquiry.ID)
			fmt.Fprintf(out, "  Parent: %s | Child: %s\n", inquiry.Parent, inquiry.Child)
			fmt.Fprintf(out, "  Topic: %s\n", inquiry.Topic)
			fmt.Fprintf(out, "  Confidence: %s (%.2f) | Status: %s\n", inquiry.Confidence, inquiry.ConfidenceScore, inquiry.Status)
			if inquiry.ReviewReason != nil {
				fmt.Fprintf(out, "  Review reason: %s\n", *inquiry.ReviewReason)
			}
			fmt.Fprintln(out)
			for _, msg := range inquiry.Transcript {
				fmt.Fprintf(out, "[%s] %s: %s\n", msg.Timestamp, msg.Role, msg.Content)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw inquiry as JSON")
	return cmd
}
