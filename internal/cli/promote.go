package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/apperrors"
)

// NewPromoteCommand creates the promote command.
func NewPromoteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <username>",
		Short: "Give a user the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromote(cmd.Context(), rootOpts, cmd, args[0])
		},
	}
}

func runPromote(ctx context.Context, opts *RootOptions, cmd *cobra.Command, username string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeLog, err := openStore(opts, cmd)
	if err != nil {
		return err
	}
	defer closeLog.Close()
	users := repositories.NewLocalUserRepository(store)

	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrUserNotFound, username)
	}

	out := cmd.OutOrStdout()
	if user.IsAdmin() {
		color.New(color.FgYellow).Fprintf(out, "%s is already an admin\n", username)
		return nil
	}

	user.Role = models.RoleAdmin
	if err := users.Update(ctx, user); err != nil {
		return fmt.Errorf("promote %s: %w", username, err)
	}
	color.New(color.FgGreen).Fprintf(out, "%s (id %s) is now an admin\n", username, user.ID)
	return nil
}
