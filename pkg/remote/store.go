// Package remote defines the object store capability the sync engine
// depends on. Any hierarchical store that can list, transfer, and delete
// named objects satisfies it; the Google Drive implementation lives in
// pkg/gdrive.
package remote

import (
	"context"
	"time"
)

// MimeTypeFolder identifies folder objects.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// DefaultPageSize bounds list results. Only the first page is fetched;
// callers accept up to PageSize matches.
const DefaultPageSize = 100

// Object is a remote file or folder. The ID is assigned by the store and
// is stable for the object's lifetime; names are not unique.
type Object struct {
	ID           string
	Name         string
	MimeType     string
	Parents      []string
	ModifiedTime time.Time
	Size         int64
}

// IsFolder reports whether the object is a folder.
func (o Object) IsFolder() bool {
	return o.MimeType == MimeTypeFolder
}

// Query is a structured list predicate. The store implementation compiles
// it into its own query language; callers never build query strings.
type Query struct {
	// Name matches objects by exact name when non-empty.
	Name string
	// ParentID constrains matches to children of a single parent when
	// non-empty.
	ParentID string
	// OnlyFolders restricts matches to folder objects.
	OnlyFolders bool
	// PageSize caps the number of results; DefaultPageSize when zero.
	PageSize int64
}

// ProgressFunc observes transfer progress. total is -1 when unknown.
type ProgressFunc func(id string, written, total int64)

// Store is the remote object store capability. Implementations wrap every
// call in the retry policy and map failures onto the error taxonomy in
// pkg/errors (NOT_FOUND, AUTH, TRANSFER, LOCAL_FILE_MISSING,
// RETRY_EXHAUSTED).
type Store interface {
	// List returns up to q.PageSize objects matching q.
	List(ctx context.Context, q Query) ([]Object, error)

	// GetMetadata fetches a single object by id. Fails with NOT_FOUND
	// when the id does not exist remotely.
	GetMetadata(ctx context.Context, id string) (Object, error)

	// Download streams the object's content to destPath, overwriting any
	// existing content.
	Download(ctx context.Context, id, destPath string) error

	// Upload creates a new object from the local file. The local file
	// must exist before any remote call is made.
	Upload(ctx context.Context, localPath, parentID, mimeType string) (Object, error)

	// UpdateContent replaces the content of an existing object; its
	// identity is unchanged. Same local-file precondition as Upload.
	UpdateContent(ctx context.Context, id, localPath, mimeType string) (Object, error)

	// CreateFolder creates a folder named name under parentID.
	CreateFolder(ctx context.Context, name, parentID string) (Object, error)

	// Delete removes the object. Deleting a nonexistent id fails with
	// NOT_FOUND.
	Delete(ctx context.Context, id string) error
}

// EnsureFolder returns the id of a folder named name under parentID,
// creating it when absent. When several folders share the name the first
// match wins.
func EnsureFolder(ctx context.Context, s Store, name, parentID string) (string, error) {
	matches, err := s.List(ctx, Query{Name: name, ParentID: parentID, OnlyFolders: true})
	if err != nil {
		return "", err
	}
	if len(matches) > 0 {
		return matches[0].ID, nil
	}
	folder, err := s.CreateFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	return folder.ID, nil
}
