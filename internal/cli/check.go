package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ErrCorruptStore is returned by check when any file failed to load.
var ErrCorruptStore = errors.New("record store has unreadable files")

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every collection and report unreadable files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	store, closeLog, err := openStore(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	out := cmd.OutOrStdout()
	corrupt := store.CorruptFiles()
	if len(corrupt) == 0 {
		color.New(color.FgGreen).Fprintf(out, "ok: %d collections loaded from %s\n", len(store.Names()), store.Dir())
		return nil
	}

	red := color.New(color.FgRed)
	for _, file := range corrupt {
		red.Fprintf(out, "corrupt: %s\n", filepath.Join(store.Dir(), file))
	}
	return fmt.Errorf("%w (%d)", ErrCorruptStore, len(corrupt))
}
