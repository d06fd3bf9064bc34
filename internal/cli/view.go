package cli

import (
	"github.com/SteelMorgan/log4j-inspector/internal/export"
	"github.com/spf13/cobra"
)

func newViewCmd(a *app) *cobra.Command {
	var flags viewFlags
	var pages int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Filter, sort and print the records of a log",
		Long: `Load a log4j XML log (.xml) or a support export (.ram, .zip) and print
its records, newest first by default. Pages hold PAGE_SIZE records.`,
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
			v, err := flags.apply(ctx, s.Engine(), loc)
			if err != nil {
				return err
			}
			for i := 1; i < pages && v.HasMore(); i++ {
				v = s.Engine().LoadMore()
			}

			if jsonOutput {
				return export.WriteJSON(cmd.OutOrStdout(), v.Records)
			}
			printRecords(cmd.OutOrStdout(), v, flags.search)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	return cmd
}
