package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewResetUsersCommand creates the reset-users command.
func NewResetUsersCommand(rootOpts *RootOptions) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset-users",
		Short: "Delete every user account",
		Long: `Delete every user account from the record store.

Studies, posts and comments keep their author ids. Without --yes the command
only reports how many users would be deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResetUsers(rootOpts, cmd, confirmed)
		},
	}
	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "really delete the users")

	return cmd
}

func runResetUsers(opts *RootOptions, cmd *cobra.Command, confirmed bool) error {
	store, closeLog, err := openStore(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	count, err := store.Users().Count(nil)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !confirmed {
		color.New(color.FgYellow).Fprintf(out, "%d user(s) would be deleted, rerun with --yes\n", count)
		return nil
	}

	deleted, err := store.Users().DeleteWhere(nil)
	if err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	color.New(color.FgGreen).Fprintf(out, "deleted %d user(s)\n", deleted)
	return nil
}
