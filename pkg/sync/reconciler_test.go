package sync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/remote"
	"github.com/drivesync/drivesync/pkg/sync"
	"github.com/drivesync/drivesync/pkg/testutil"
)

func TestUpsertCreatesWhenNoMatch(t *testing.T) {
	store := testutil.NewMockStore()
	rec := sync.NewReconciler(store)

	result, err := rec.Upsert(context.Background(), "/local/report.txt", "parent1", sync.PolicyOverwrite, false)

	require.NoError(t, err)
	assert.Equal(t, sync.ActionCreate, result.Action)
	assert.Equal(t, "/local/report.txt", result.Path)
	assert.NotEmpty(t, result.RemoteID)
	assert.Equal(t, 1, store.CallCount("Upload"))
}

func TestUpsertDryRunCreate(t *testing.T) {
	// Scenario: single file, no remote match, dry run.
	store := testutil.NewMockStore()
	rec := sync.NewReconciler(store)

	result, err := rec.Upsert(context.Background(), "/local/report.txt", "", sync.PolicyOverwrite, true)

	require.NoError(t, err)
	assert.Equal(t, sync.ActionDryRunCreate, result.Action)
	assert.Zero(t, store.MutationCount())
}

func TestUpsertOverwriteUpdatesFirstMatch(t *testing.T) {
	// Scenario: one remote match with id abc123 under overwrite.
	store := testutil.NewMockStore()
	store.Seed(remote.Object{ID: "abc123", Name: "report.txt", Parents: []string{"parent1"}})
	rec := sync.NewReconciler(store)

	result, err := rec.Upsert(context.Background(), "/local/report.txt", "parent1", sync.PolicyOverwrite, false)

	require.NoError(t, err)
	assert.Equal(t, sync.ActionUpdate, result.Action)
	assert.Equal(t, "abc123", result.RemoteID)
	assert.Equal(t, 1, store.CallCount("UpdateContent(abc123"))
	assert.Zero(t, store.CallCount("Upload"))
}

func TestUpsertSkipLeavesRemoteUntouched(t *testing.T) {
	store := testutil.NewMockStore()
	store.Seed(remote.Object{ID: "abc123", Name: "report.txt"})
	rec := sync.NewReconciler(store)

	// Repeated skips are idempotent: identical results, no mutations.
	for i := 0; i < 3; i++ {
		result, err := rec.Upsert(context.Background(), "/local/report.txt", "", sync.PolicySkip, false)
		require.NoError(t, err)
		assert.Equal(t, sync.ActionSkip, result.Action)
		assert.Equal(t, "abc123", result.RemoteID)
	}
	assert.Zero(t, store.MutationCount())
}

func TestUpsertNewUploadsAlongsideExisting(t *testing.T) {
	store := testutil.NewMockStore()
	store.Seed(remote.Object{ID: "abc123", Name: "report.txt"})
	rec := sync.NewReconciler(store)

	result, err := rec.Upsert(context.Background(), "/local/report.txt", "", sync.PolicyNew, false)

	require.NoError(t, err)
	assert.Equal(t, sync.ActionCreateNew, result.Action)
	assert.NotEqual(t, "abc123", result.RemoteID)
	assert.Equal(t, 1, store.CallCount("Upload"))
	assert.Zero(t, store.CallCount("UpdateContent"))
}

func TestUpsertDryRunPurity(t *testing.T) {
	// For every conflict policy, dry run performs no mutating call; only
	// List is allowed.
	policies := []sync.ConflictPolicy{sync.PolicyOverwrite, sync.PolicySkip, sync.PolicyNew}
	expected := map[sync.ConflictPolicy]sync.Action{
		sync.PolicyOverwrite: sync.ActionDryRunUpdate,
		sync.PolicySkip:      sync.ActionSkip,
		sync.PolicyNew:       sync.ActionDryRunCreateNew,
	}

	for _, policy := range policies {
		t.Run(string(policy), func(t *testing.T) {
			store := testutil.NewMockStore()
			store.Seed(remote.Object{ID: "abc123", Name: "report.txt"})
			rec := sync.NewReconciler(store)

			result, err := rec.Upsert(context.Background(), "/local/report.txt", "", policy, true)

			require.NoError(t, err)
			assert.Equal(t, expected[policy], result.Action)
			assert.Zero(t, store.MutationCount())
			for _, call := range store.Calls() {
				assert.Regexp(t, "^List", call)
			}
		})
	}
}

func TestUpsertFirstMatchWins(t *testing.T) {
	// Duplicates are neither merged nor reconciled; the extra count is
	// surfaced on the result.
	store := testutil.NewMockStore()
	store.Seed(remote.Object{ID: "first", Name: "report.txt"})
	store.Seed(remote.Object{ID: "second", Name: "report.txt"})
	store.Seed(remote.Object{ID: "third", Name: "report.txt"})
	rec := sync.NewReconciler(store)

	result, err := rec.Upsert(context.Background(), "/local/report.txt", "", sync.PolicyOverwrite, false)

	require.NoError(t, err)
	assert.Equal(t, "first", result.RemoteID)
	assert.Equal(t, 2, result.AmbiguousMatches)
	assert.Equal(t, 1, store.CallCount("UpdateContent(first"))
}

func TestUpsertMatchesOnlyWithinParent(t *testing.T) {
	store := testutil.NewMockStore()
	store.Seed(remote.Object{ID: "elsewhere", Name: "report.txt", Parents: []string{"other-parent"}})
	rec := sync.NewReconciler(store)

	result, err := rec.Upsert(context.Background(), "/local/report.txt", "parent1", sync.PolicyOverwrite, false)

	require.NoError(t, err)
	// The object under another parent is not a match; a fresh create.
	assert.Equal(t, sync.ActionCreate, result.Action)
}

func TestUpsertPropagatesLookupError(t *testing.T) {
	store := testutil.NewMockStore()
	store.ErrorOn = "List"
	store.ErrorToReturn = errors.New(errors.ErrRetryExhausted, "list kept failing")
	rec := sync.NewReconciler(store)

	_, err := rec.Upsert(context.Background(), "/local/report.txt", "", sync.PolicyOverwrite, false)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRetryExhausted))
}

func TestUpsertPropagatesUploadError(t *testing.T) {
	store := testutil.NewMockStore()
	store.ErrorOn = "Upload"
	store.ErrorToReturn = errors.New(errors.ErrLocalFileMissing, "gone")
	rec := sync.NewReconciler(store)

	_, err := rec.Upsert(context.Background(), "/local/report.txt", "", sync.PolicyOverwrite, false)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLocalFileMissing))
}

func TestParseConflictPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    sync.ConflictPolicy
		wantErr bool
	}{
		{"overwrite", sync.PolicyOverwrite, false},
		{"skip", sync.PolicySkip, false},
		{"new", sync.PolicyNew, false},
		{"merge", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := sync.ParseConflictPolicy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
