package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	drive "google.golang.org/api/drive/v3"

	"github.com/drivesync/drivesync/internal/version"
	"github.com/drivesync/drivesync/pkg/config"
	"github.com/drivesync/drivesync/pkg/gdrive"
	"github.com/drivesync/drivesync/pkg/logging"
	"github.com/drivesync/drivesync/pkg/remote"
)

// appState carries the loaded config and global flag values to the
// subcommands.
type appState struct {
	cfg       *config.Config
	verbosity int
	dryRun    bool
	configDir string
	logFormat string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	state := &appState{}

	rootCmd := &cobra.Command{
		Use:     "drivesync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(state.configDir)
			if err != nil {
				return err
			}
			state.cfg = cfg

			format := cfg.Logging.Format
			if state.logFormat != "" {
				format = state.logFormat
			}
			logging.SetupLogger(state.verbosity, format)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&state.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&state.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&state.configDir, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&state.logFormat, "log-format", "", MsgFlagLogFormat)

	rootCmd.AddCommand(newSyncCmd(state))
	rootCmd.AddCommand(newLsCmd(state))
	rootCmd.AddCommand(newUploadCmd(state))
	rootCmd.AddCommand(newDownloadCmd(state))
	rootCmd.AddCommand(newMkdirCmd(state))
	rootCmd.AddCommand(newRmCmd(state))
	rootCmd.AddCommand(newInfoCmd(state))
	rootCmd.AddCommand(newVersionCmd())
	installHelpTopics(rootCmd)

	return rootCmd
}

// newStore authenticates and builds the Drive-backed remote store.
func newStore(cmd *cobra.Command, state *appState, opts ...gdrive.Option) (remote.Store, error) {
	svc, err := newDriveService(cmd, state)
	if err != nil {
		return nil, err
	}
	opts = append([]gdrive.Option{
		gdrive.WithRetryPolicy(state.cfg.RetryPolicy()),
		gdrive.WithPageSize(state.cfg.Drive.PageSize),
	}, opts...)
	return gdrive.NewClient(svc, opts...), nil
}

func newDriveService(cmd *cobra.Command, state *appState) (*drive.Service, error) {
	return gdrive.NewService(cmd.Context(), gdrive.AuthConfig{
		CredentialsFile: state.cfg.CredentialsFile(),
		TokenFile:       state.cfg.TokenFile(),
		Interactive:     true,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("drivesync version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}
