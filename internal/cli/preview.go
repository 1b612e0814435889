package cli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newPreviewCommand(opts *rootOptions) *cobra.Command {
	flags := &campaignFlags{}
	var output string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the template against the first recipient",
		Long: `Preview fills the template with the first CSV row, showing [Column] for
empty cells. Without recipients the John Doe sample values are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := flags.load()
			if err != nil {
				return err
			}
			s, _, err := newSession(cmd.Context(), opts, c, "", nil)
			if err != nil {
				return err
			}
			doc, err := s.Preview()
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write([]byte(doc + "\n"))
				return err
			}
			return errors.Wrap(os.WriteFile(output, []byte(doc), 0o644), "failed to write preview")
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "out", "o", "", "write the preview to a file")
	return cmd
}
