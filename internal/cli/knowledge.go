package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newKnowledgeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Read or replace the knowledge base the assistant answers from",
	}

	cmd.AddCommand(
		newKnowledgeGetCommand(opts),
		newKnowledgeSetCommand(opts),
		newKnowledgeUploadCommand(opts),
	)
	return cmd
}

func newKnowledgeGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := opts.client().GetKnowledge(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read knowledge base: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
			return err
		},
	}
}

func newKnowledgeSetCommand(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set [text]",
		Short: "Replace the knowledge base with text or the contents of a file",
		Example: `  frontdesk-admin knowledge set "We are closed on Presidents' Day."
  frontdesk-admin knowledge set --file handbook.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			switch {
			case file != "" && len(args) > 0:
				return fmt.Errorf("pass either text or --file, not both")
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				content = string(data)
			case len(args) == 1:
				content = args[0]
			default:
				return fmt.Errorf("nothing to save: pass text or --file")
			}

			if err := opts.client().SetKnowledge(cmd.Context(), content); err != nil {
				return fmt.Errorf("failed to update knowledge base: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Knowledge base updated")
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read the new knowledge base from this file")
	return cmd
}

func newKnowledgeUploadCommand(opts *options) *cobra.Command {
	var mode string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Convert a PDF, HTML, Markdown or text document into the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}

			var body io.Reader = f
			if !quiet {
				bar := progressbar.NewOptions64(info.Size(),
					progressbar.OptionSetDescription("uploading "+filepath.Base(path)),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowBytes(true),
					progressbar.OptionSetWidth(30),
					progressbar.OptionClearOnFinish(),
				)
				body = io.TeeReader(f, bar)
			}

			res, err := opts.client().UploadKnowledge(cmd.Context(), filepath.Base(path), body, mode)
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", path, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return err
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "replace", "replace the knowledge base or append to it")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Do not show upload progress")
	return cmd
}
