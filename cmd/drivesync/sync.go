package main

import (
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/drivesync/drivesync/pkg/output"
	"github.com/drivesync/drivesync/pkg/sync"
)

func newSyncCmd(state *appState) *cobra.Command {
	var (
		parentID string
		policy   string
		excludes []string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "sync <local-dir>",
		Short: MsgSyncShort,
		Long:  MsgSyncLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if policy == "" {
				policy = state.cfg.Sync.ConflictPolicy
			}
			pol, err := sync.ParseConflictPolicy(policy)
			if err != nil {
				return err
			}
			if parentID == "" {
				parentID = state.cfg.Drive.ParentID
			}

			store, err := newStore(cmd, state)
			if err != nil {
				return err
			}

			syncer := sync.NewSyncer(afero.NewOsFs(), store)
			results, err := syncer.Sync(cmd.Context(), args[0], parentID, sync.Options{
				Policy: pol,
				Filter: excludeFilter(excludes),
				DryRun: state.dryRun,
			})
			if err != nil {
				return err
			}
			return output.NewRenderer(cmd.OutOrStdout()).Render(results, format)
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", MsgFlagParent)
	cmd.Flags().StringVar(&policy, "conflict", "",
		"Conflict policy: overwrite, skip, or new (default: config sync.conflict_policy)")
	cmd.Flags().StringSliceVar(&excludes, "exclude", nil,
		"Glob patterns matched against file names to skip (repeatable)")
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatText, MsgFlagOutput)
	return cmd
}

// excludeFilter builds a filter that rejects files whose base name
// matches any of the given glob patterns.
func excludeFilter(patterns []string) sync.Filter {
	if len(patterns) == 0 {
		return nil
	}
	return func(path string) bool {
		base := filepath.Base(path)
		for _, pat := range patterns {
			if ok, err := filepath.Match(pat, base); err == nil && ok {
				return false
			}
		}
		return true
	}
}
