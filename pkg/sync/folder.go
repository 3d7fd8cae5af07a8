package sync

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/logging"
	"github.com/drivesync/drivesync/pkg/remote"
)

// ModeUpsert is the only sync mode currently recognized.
const ModeUpsert = "upsert"

// Filter decides whether a file path takes part in a sync pass. Returning
// false excludes the file silently; exclusions are logged, not recorded.
type Filter func(path string) bool

// Options configure one sync pass. The conflict policy and dry-run flag
// are fixed for the whole pass.
type Options struct {
	// Mode selects the per-file operation; ModeUpsert when empty.
	Mode string
	// Policy defaults to PolicyOverwrite when empty.
	Policy ConflictPolicy
	// Filter excludes files when set.
	Filter Filter
	// DryRun suppresses every mutating remote call.
	DryRun bool
}

// Syncer walks a local directory tree and reconciles each regular file
// against the remote store. One file is fully reconciled before the next
// begins; there are no concurrent transfers.
type Syncer struct {
	fs         afero.Fs
	reconciler *Reconciler
	logger     zerolog.Logger
}

// NewSyncer creates a Syncer reconciling files from fs against store.
func NewSyncer(fs afero.Fs, store remote.Store) *Syncer {
	return &Syncer{
		fs:         fs,
		reconciler: NewReconciler(store),
		logger:     logging.GetLogger("sync.folder"),
	}
}

// Sync walks localDir in lexicographic path order and upserts every
// regular file under targetParentID. Subdirectory structure is not
// mirrored remotely: all files land flat under targetParentID.
//
// A failure for one file is recorded in its Result and the pass
// continues; only a bad local directory or context cancellation aborts
// the pass. The returned results follow traversal order.
func (s *Syncer) Sync(ctx context.Context, localDir, targetParentID string, opts Options) ([]Result, error) {
	info, err := s.fs.Stat(localDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLocalDirMissing,
			"local dir not found: %s", localDir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrLocalDirMissing,
			"local path is not a directory: %s", localDir)
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeUpsert
	}
	policy := opts.Policy
	if policy == "" {
		policy = PolicyOverwrite
	}

	logger := s.logger.With().
		Str("localDir", localDir).
		Str("targetParentId", targetParentID).
		Bool("dryRun", opts.DryRun).
		Logger()
	logger.Info().Msg("Sync pass started")

	results := []Result{}
	err = afero.Walk(s.fs, localDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		if opts.Filter != nil && !opts.Filter(path) {
			logger.Debug().Str("path", path).Msg("Excluded by filter")
			return nil
		}
		if mode != ModeUpsert {
			logger.Warn().Str("mode", mode).Str("path", path).Msg("Unknown sync mode, file not processed")
			return nil
		}

		result, uerr := s.reconciler.Upsert(ctx, path, targetParentID, policy, opts.DryRun)
		if uerr != nil {
			logger.Error().Err(uerr).Str("path", path).Msg("File reconciliation failed")
			results = append(results, Result{Path: path, Error: uerr.Error()})
			return nil
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int("count", len(results)).Msg("Sync pass finished")
	return results, nil
}
