package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts and id counters per collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	store, closeLog, err := openStore(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	counts := store.Counts()
	counters := store.Counters()
	cyan := color.New(color.FgCyan)
	out := cmd.OutOrStdout()

	cyan.Fprintf(out, "%-16s %8s %8s\n", "COLLECTION", "RECORDS", "LAST ID")
	for _, name := range store.Names() {
		cyan.Fprintf(out, "%-16s ", name)
		color.New(color.Reset).Fprintf(out, "%8d %8d\n", counts[name], counters[name])
	}
	return nil
}
