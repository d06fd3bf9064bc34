package cli

import (
	"fmt"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var flags viewFlags
	var dir string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the filtered records or the marked findings to JSON",
		Long: `Write every record of the filtered view to logs_export_<time>.json, or,
with --findings, the marked records to findings_export_<time>.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx, args[0], flags.archive)
			if err != nil {
				return err
			}
			defer s.Close()

			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			if _, err := flags.apply(ctx, s.Engine(), loc); err != nil {
				return err
			}

			kind := export.KindLogs
			records := s.Engine().All()
			if flags.findings {
				kind = export.KindFindings
				records = s.Engine().Findings().All()
			}

			path, err := export.WriteFile(dir, kind, records, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), path)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "directory to write the export to")
	return cmd
}
