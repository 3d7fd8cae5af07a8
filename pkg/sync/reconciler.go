package sync

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/drivesync/drivesync/pkg/logging"
	"github.com/drivesync/drivesync/pkg/remote"
)

// Reconciler decides and executes create/update/skip/create-new for a
// single local file against its remote counterpart. It holds no state
// across invocations; every Upsert re-queries the store.
type Reconciler struct {
	store    remote.Store
	resolver *Resolver
	logger   zerolog.Logger
}

// NewReconciler creates a Reconciler over the given store.
func NewReconciler(store remote.Store) *Reconciler {
	return &Reconciler{
		store:    store,
		resolver: NewResolver(store),
		logger:   logging.GetLogger("sync.reconciler"),
	}
}

// Upsert reconciles one local file with the remote store under
// targetParentID. Under dry-run no mutating call is made; the returned
// action records what would have happened. Errors propagate unmodified;
// isolation is the caller's concern.
func (r *Reconciler) Upsert(ctx context.Context, localPath, targetParentID string, policy ConflictPolicy, dryRun bool) (Result, error) {
	name := filepath.Base(localPath)
	logger := r.logger.With().
		Str("path", localPath).
		Str("name", name).
		Str("policy", string(policy)).
		Bool("dryRun", dryRun).
		Logger()

	matches, err := r.resolver.FindByName(ctx, name, targetParentID)
	if err != nil {
		return Result{}, err
	}

	if len(matches) == 0 {
		if dryRun {
			logger.Info().Msg("Would create")
			return Result{Path: localPath, Action: ActionDryRunCreate}, nil
		}
		created, err := r.store.Upload(ctx, localPath, targetParentID, "")
		if err != nil {
			return Result{}, err
		}
		logger.Info().Str("remoteId", created.ID).Msg("Created")
		return Result{Path: localPath, Action: ActionCreate, RemoteID: created.ID}, nil
	}

	// First match wins; extra matches are surfaced, never reconciled.
	existing := matches[0]
	ambiguous := len(matches) - 1
	if ambiguous > 0 {
		logger.Warn().Int("extraMatches", ambiguous).Str("remoteId", existing.ID).
			Msg("Multiple remote objects share this name")
	}

	switch policy {
	case PolicySkip:
		logger.Info().Str("remoteId", existing.ID).Msg("Skipped")
		return Result{Path: localPath, Action: ActionSkip, RemoteID: existing.ID, AmbiguousMatches: ambiguous}, nil

	case PolicyNew:
		if dryRun {
			logger.Info().Msg("Would create new alongside existing")
			return Result{Path: localPath, Action: ActionDryRunCreateNew, AmbiguousMatches: ambiguous}, nil
		}
		created, err := r.store.Upload(ctx, localPath, targetParentID, "")
		if err != nil {
			return Result{}, err
		}
		logger.Info().Str("remoteId", created.ID).Msg("Created new alongside existing")
		return Result{Path: localPath, Action: ActionCreateNew, RemoteID: created.ID, AmbiguousMatches: ambiguous}, nil

	default: // PolicyOverwrite
		if dryRun {
			logger.Info().Str("remoteId", existing.ID).Msg("Would update")
			return Result{Path: localPath, Action: ActionDryRunUpdate, RemoteID: existing.ID, AmbiguousMatches: ambiguous}, nil
		}
		updated, err := r.store.UpdateContent(ctx, existing.ID, localPath, "")
		if err != nil {
			return Result{}, err
		}
		logger.Info().Str("remoteId", updated.ID).Msg("Updated")
		return Result{Path: localPath, Action: ActionUpdate, RemoteID: updated.ID, AmbiguousMatches: ambiguous}, nil
	}
}
