package cli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/manavc-13/KIIT-Mailer/recipient"
)

func newCSVTemplateCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "csv-template",
		Short: "Write a starter recipient CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				return recipient.WriteTemplate(cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(err, "failed to create template")
			}
			if err := recipient.WriteTemplate(f); err != nil {
				_ = f.Close()
				return err
			}
			return errors.Wrap(f.Close(), "failed to write template")
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file, stdout when empty")
	return cmd
}
