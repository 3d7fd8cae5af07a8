package sync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/drivesync/drivesync/pkg/logging"
	"github.com/drivesync/drivesync/pkg/remote"
)

// Resolver finds remote objects by exact name, optionally constrained to
// a single parent. Every lookup is a fresh remote query; nothing is
// cached across calls.
type Resolver struct {
	store  remote.Store
	logger zerolog.Logger
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store remote.Store) *Resolver {
	return &Resolver{
		store:  store,
		logger: logging.GetLogger("sync.resolver"),
	}
}

// FindByName returns all objects matching name under parentID (all
// parents when parentID is empty), up to the store's page size.
func (r *Resolver) FindByName(ctx context.Context, name, parentID string) ([]remote.Object, error) {
	r.logger.Debug().Str("name", name).Str("parentId", parentID).Msg("Resolving name")
	return r.store.List(ctx, remote.Query{Name: name, ParentID: parentID})
}
