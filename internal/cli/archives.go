package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newArchivesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archives FILE",
		Short: "List the archived logs of a support export",
		Long: `List the archived logs of a support export (.ram, .zip). Pass a name to
view or export with --archive NAME.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			defer s.Close()

			w := cmd.OutOrStdout()
			refs := s.ArchivedLogs()
			fmt.Fprintf(w, "Archived logs (%d)\n", len(refs))
			for _, ref := range refs {
				fmt.Fprintf(w, "  %-32s %10s  %s\n", ref.DisplayName, humanize.Bytes(ref.Size()), mutedFormat(ref.EntryName()))
			}
			return nil
		},
	}
	return cmd
}
