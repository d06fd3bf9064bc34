package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newDetailsCmd(a *app) *cobra.Command {
	var archive string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "details FILE",
		Short: "Show the machine and system details recorded in a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), args[0], archive)
			if err != nil {
				return err
			}
			defer s.Close()

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s.Details())
			}
			printDetails(cmd.OutOrStdout(), s.Source(), s.Details())
			return nil
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "use this archived log of a container")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	return cmd
}
