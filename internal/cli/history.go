package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the operator journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			j, err := openJournal(ctx, opts.load)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "System ready.")
			for _, e := range entries {
				fmt.Fprintf(out, "[%s] %s\n", e.Time.Local().Format("15:04:05"), e.Message)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			j, err := openJournal(ctx, opts.load)
			if err != nil {
				return err
			}
			defer j.Close()
			if err := j.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Journal cleared.")
			return nil
		},
	})
	return cmd
}
