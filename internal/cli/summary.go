package cli

import (
	"fmt"

	"github.com/SteelMorgan/log4j-inspector/internal/normalizer"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newSummaryCmd(a *app) *cobra.Command {
	var flags viewFlags
	var top int

	cmd := &cobra.Command{
		Use:   "summary FILE",
		Short: "Group the filtered records by level and message pattern",
		Long: `Group the records of the filtered view by level and message pattern.
Numbers, ids, timestamps and quoted values are replaced by placeholders so
that repeats of one problem count together.`,
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

			groups := normalizer.NewMessageNormalizer().Group(s.Engine().All())
			if top > 0 && len(groups) > top {
				groups = groups[:top]
			}

			w := cmd.OutOrStdout()
			for _, g := range groups {
				fmt.Fprintf(w, "%8s  %s  %s\n", humanize.Comma(int64(g.Count)), levelBadge(g.Level), g.Pattern)
				fmt.Fprintf(w, "          %s\n", mutedFormat(fmt.Sprintf("first #%d at %s, last %s",
					g.FirstID, g.FirstSeen.In(loc).Format("2006-01-02 15:04:05"), g.LastSeen.In(loc).Format("2006-01-02 15:04:05"))))
			}
			fmt.Fprintf(w, "\n%d patterns\n", len(groups))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&top, "top", "n", 20, "number of patterns to show; 0 shows all")
	return cmd
}
