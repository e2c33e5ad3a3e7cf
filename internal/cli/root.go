package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/yigit/studyhub/internal/pkg/logger"
	"github.com/yigit/studyhub/internal/recordstore"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataDir string
	Verbose bool
	LogFile string
}

// NewRootCommand creates the root command for studyhubctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "studyhubctl",
		Short: "Maintenance tool for the StudyHub record store",
		Long: `Maintenance tool for the StudyHub local record store.

Commands operate directly on the JSON files in the data directory. Stop the
API server first when it uses the same directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultDir := os.Getenv("STORAGE_DATA_DIR")
	if defaultDir == "" {
		defaultDir = "data"
	}
	cmd.PersistentFlags().StringVarP(&opts.DataDir, "data-dir", "d", defaultDir, "record store directory")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log store activity to stderr")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also append store logs to this file")

	cmd.AddCommand(NewPromoteCommand(opts))
	cmd.AddCommand(NewResetUsersCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// openStore opens the data directory named by the global flags. The
// returned closer flushes the log file and must be closed by the caller.
func openStore(opts *RootOptions, cmd *cobra.Command) (*recordstore.Store, io.Closer, error) {
	level := logger.WarnLevel
	if opts.Verbose {
		level = logger.DebugLevel
	}
	cfg := logger.Config{Level: level, Pretty: true, Output: cmd.ErrOrStderr()}
	if opts.LogFile != "" {
		cfg.File = &logger.FileConfig{Path: opts.LogFile, MaxSizeMB: 10, MaxBackups: 3}
	}
	lgr, closeLog := logger.New(cfg)

	store, err := recordstore.Open(opts.DataDir, recordstore.WithLogger(lgr.With().Str("component", "recordstore").Logger()))
	if err != nil {
		closeLog.Close()
		return nil, nil, fmt.Errorf("open data directory: %w", err)
	}
	return store, closeLog, nil
}
