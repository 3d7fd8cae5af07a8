package sync_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/remote"
	"github.com/drivesync/drivesync/pkg/sync"
	"github.com/drivesync/drivesync/pkg/testutil"
)

func newTestFs(t *testing.T, paths ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(fs, p, []byte("content of "+p), 0644))
	}
	return fs
}

func TestSyncEmptyDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/docs", 0755))
	store := testutil.NewMockStore()
	syncer := sync.NewSyncer(fs, store)

	results, err := syncer.Sync(context.Background(), "/docs", "", sync.Options{DryRun: true})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, store.MutationCount())
}

func TestSyncMissingDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := testutil.NewMockStore()
	syncer := sync.NewSyncer(fs, store)

	_, err := syncer.Sync(context.Background(), "/nope", "", sync.Options{})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLocalDirMissing))
	assert.Empty(t, store.Calls())
}

func TestSyncFileInsteadOfDirectory(t *testing.T) {
	fs := newTestFs(t, "/docs")
	store := testutil.NewMockStore()
	syncer := sync.NewSyncer(fs, store)

	_, err := syncer.Sync(context.Background(), "/docs", "", sync.Options{})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLocalDirMissing))
}

func TestSyncSingleFileDryRun(t *testing.T) {
	fs := newTestFs(t, "/docs/report.txt")
	store := testutil.NewMockStore()
	syncer := sync.NewSyncer(fs, store)

	results, err := syncer.Sync(context.Background(), "/docs", "", sync.Options{DryRun: true})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "/docs/report.txt", results[0].Path)
	assert.Equal(t, sync.ActionDryRunCreate, results[0].Action)
	assert.Zero(t, store.MutationCount())
}

func TestSyncOverwritesExistingMatch(t *testing.T) {
	fs := newTestFs(t, "/docs/report.txt")
	store := testutil.NewMockStore()
	store.Seed(remote.Object{ID: "abc123", Name: "report.txt", Parents: []string{"parent1"}})
	syncer := sync.NewSyncer(fs, store)

	results, err := syncer.Sync(context.Background(), "/docs", "parent1", sync.Options{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sync.ActionUpdate, results[0].Action)
	assert.Equal(t, "abc123", results[0].RemoteID)
	assert.Equal(t, 1, store.CallCount("UpdateContent(abc123"))
}

func TestSyncTraversalOrderAndRecursion(t *testing.T) {
	fs := newTestFs(t,
		"/docs/zebra.txt",
		"/docs/alpha.txt",
		"/docs/sub/nested.txt",
		"/docs/sub/deep/leaf.txt",
	)
	store := testutil.NewMockStore()
	syncer := sync.NewSyncer(fs, store)

	results, err := syncer.Sync(context.Background(), "/docs", "", sync.Options{DryRun: true})

	require.NoError(t, err)
	var paths []string
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	// Deterministic lexicographic traversal; directories themselves are
	// never synced as objects.
	assert.Equal(t, []string{
		"/docs/alpha.txt",
		"/docs/sub/deep/leaf.txt",
		"/docs/sub/nested.txt",
		"/docs/zebra.txt",
	}, paths)
}

func TestSyncPartialFailureIsolation(t *testing.T) {
	// One failing file out of three: the pass continues and returns three
	// results, exactly one of which is an error entry.
	fs := newTestFs(t, "/docs/a.txt", "/docs/b.txt", "/docs/c.txt")
	store := testutil.NewMockStore()
	store.FailPaths["/docs/b.txt"] = errors.New(errors.ErrRetryExhausted, "upload kept failing")
	syncer := sync.NewSyncer(fs, store)

	results, err := syncer.Sync(context.Background(), "/docs", "", sync.Options{})

	require.NoError(t, err)
	require.Len(t, results, 3)

	var failures, successes int
	for _, r := range results {
		if r.Failed() {
			failures++
			assert.Equal(t, "/docs/b.txt", r.Path)
			assert.Contains(t, r.Error, "upload kept failing")
		} else {
			successes++
			assert.Equal(t, sync.ActionCreate, r.Action)
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 2, successes)
}

func TestSyncFilterExcludesSilently(t *testing.T) {
	fs := newTestFs(t, "/docs/keep.txt", "/docs/skip.tmp")
	store := testutil.NewMockStore()
	syncer := sync.NewSyncer(fs, store)

	results, err := syncer.Sync(context.Background(), "/docs", "", sync.Options{
		DryRun: true,
		Filter: func(path string) bool { return !strings.HasSuffix(path, ".tmp") },
	})

	require.NoError(t, err)
	// Excluded files do not appear in the result set at all.
	require.Len(t, results, 1)
	assert.Equal(t, "/docs/keep.txt", results[0].Path)
}

func TestSyncUnknownMode(t *testing.T) {
	fs := newTestFs(t, "/docs/report.txt")
	store := testutil.NewMockStore()
	syncer := sync.NewSyncer(fs, store)

	results, err := syncer.Sync(context.Background(), "/docs", "", sync.Options{Mode: "mirror"})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, store.Calls())
}

func TestSyncContextCancellation(t *testing.T) {
	fs := newTestFs(t, "/docs/a.txt", "/docs/b.txt")
	store := testutil.NewMockStore()
	syncer := sync.NewSyncer(fs, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := syncer.Sync(ctx, "/docs", "", sync.Options{})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncDefaultPolicyIsOverwrite(t *testing.T) {
	fs := newTestFs(t, "/docs/report.txt")
	store := testutil.NewMockStore()
	store.Seed(remote.Object{ID: "abc123", Name: "report.txt"})
	syncer := sync.NewSyncer(fs, store)

	results, err := syncer.Sync(context.Background(), "/docs", "", sync.Options{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sync.ActionUpdate, results[0].Action)
}
