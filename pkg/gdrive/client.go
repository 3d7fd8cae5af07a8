// Package gdrive implements the remote.Store capability on the Google
// Drive v3 API. Every operation goes through the retry policy; API
// failures are mapped onto the pkg/errors taxonomy before the policy
// classifies them.
package gdrive

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/logging"
	"github.com/drivesync/drivesync/pkg/remote"
	"github.com/drivesync/drivesync/pkg/retry"
)

// objectFields is the metadata set fetched for every object.
const objectFields = "id,name,mimeType,parents,modifiedTime,size"

// Client implements remote.Store against the Drive v3 API.
type Client struct {
	svc      *drive.Service
	fs       afero.Fs
	retry    retry.Policy
	pageSize int64
	progress remote.ProgressFunc
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.retry = p }
}

// WithFs overrides the local filesystem used for transfers.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) { c.fs = fs }
}

// WithPageSize overrides the list page size.
func WithPageSize(n int64) Option {
	return func(c *Client) { c.pageSize = n }
}

// WithProgress installs a transfer progress observer.
func WithProgress(fn remote.ProgressFunc) Option {
	return func(c *Client) { c.progress = fn }
}

// NewClient wraps an authenticated Drive service.
func NewClient(svc *drive.Service, opts ...Option) *Client {
	c := &Client{
		svc:      svc,
		fs:       afero.NewOsFs(),
		retry:    retry.Default(),
		pageSize: remote.DefaultPageSize,
		logger:   logging.GetLogger("gdrive"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns up to q.PageSize objects matching q. Only the first page
// is fetched; callers accept the truncation.
func (c *Client) List(ctx context.Context, q remote.Query) ([]remote.Object, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	expr := buildQuery(q)
	c.logger.Debug().Str("query", expr).Int64("pageSize", pageSize).Msg("Listing files")

	return retry.DoValue(ctx, c.retry, "files.list", func() ([]remote.Object, error) {
		call := c.svc.Files.List().
			PageSize(pageSize).
			Fields(googleapi.Field("files(" + objectFields + ")")).
			Context(ctx)
		if expr != "" {
			call = call.Q(expr)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, c.mapAPIError(err, "files.list")
		}

		objects := make([]remote.Object, 0, len(resp.Files))
		for _, f := range resp.Files {
			objects = append(objects, toObject(f))
		}
		c.logger.Debug().Int("count", len(objects)).Msg("List returned")
		return objects, nil
	})
}

// GetMetadata fetches a single object by id.
func (c *Client) GetMetadata(ctx context.Context, id string) (remote.Object, error) {
	done := logging.LogOperationStart(c.logger.With().Str("fileId", id).Logger(), "files.get")
	defer done()

	return retry.DoValue(ctx, c.retry, "files.get", func() (remote.Object, error) {
		f, err := c.svc.Files.Get(id).
			Fields(objectFields).
			Context(ctx).
			Do()
		if err != nil {
			return remote.Object{}, c.mapAPIError(err, "files.get")
		}
		return toObject(f), nil
	})
}

// Download streams the object's content to destPath, overwriting any
// existing content. Progress is reported through the configured observer.
func (c *Client) Download(ctx context.Context, id, destPath string) error {
	logger := c.logger.With().Str("fileId", id).Str("dest", destPath).Logger()
	done := logging.LogOperationStart(logger, "files.download")
	defer done()

	return c.retry.Do(ctx, "files.download", func() error {
		resp, err := c.svc.Files.Get(id).Context(ctx).Download()
		if err != nil {
			return c.mapAPIError(err, "files.download")
		}
		defer resp.Body.Close()

		out, err := c.fs.Create(destPath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTransfer, "cannot create %s", destPath)
		}

		src := io.Reader(resp.Body)
		if c.progress != nil {
			src = &progressReader{r: resp.Body, id: id, total: resp.ContentLength, fn: c.progress}
		}
		written, err := io.Copy(out, src)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrTransfer, "download of %s interrupted", id)
		}
		logger.Debug().Int64("bytes", written).Msg("Download complete")
		return nil
	})
}

// Upload creates a new object from the local file. The local file must
// exist before any remote call is made.
func (c *Client) Upload(ctx context.Context, localPath, parentID, mimeType string) (remote.Object, error) {
	logger := c.logger.With().Str("localPath", localPath).Logger()
	done := logging.LogOperationStart(logger, "files.create")
	defer done()

	if err := c.requireLocalFile(localPath); err != nil {
		return remote.Object{}, err
	}

	return retry.DoValue(ctx, c.retry, "files.create", func() (remote.Object, error) {
		f, err := c.fs.Open(localPath)
		if err != nil {
			return remote.Object{}, errors.Wrapf(err, errors.ErrLocalFileMissing,
				"cannot open local file: %s", localPath)
		}
		defer f.Close()

		meta := &drive.File{Name: filepath.Base(localPath)}
		if parentID != "" {
			meta.Parents = []string{parentID}
		}

		call := c.svc.Files.Create(meta).
			Fields(objectFields).
			Context(ctx)
		if mimeType != "" {
			call = call.Media(f, googleapi.ContentType(mimeType))
		} else {
			call = call.Media(f)
		}
		created, err := call.Do()
		if err != nil {
			return remote.Object{}, c.mapAPIError(err, "files.create")
		}
		logger.Info().Str("fileId", created.Id).Msg("Uploaded")
		return toObject(created), nil
	})
}

// UpdateContent replaces the content of an existing object; its identity
// is unchanged.
func (c *Client) UpdateContent(ctx context.Context, id, localPath, mimeType string) (remote.Object, error) {
	logger := c.logger.With().Str("fileId", id).Str("localPath", localPath).Logger()
	done := logging.LogOperationStart(logger, "files.update")
	defer done()

	if err := c.requireLocalFile(localPath); err != nil {
		return remote.Object{}, err
	}

	return retry.DoValue(ctx, c.retry, "files.update", func() (remote.Object, error) {
		f, err := c.fs.Open(localPath)
		if err != nil {
			return remote.Object{}, errors.Wrapf(err, errors.ErrLocalFileMissing,
				"cannot open local file: %s", localPath)
		}
		defer f.Close()

		call := c.svc.Files.Update(id, &drive.File{}).
			Fields(objectFields).
			Context(ctx)
		if mimeType != "" {
			call = call.Media(f, googleapi.ContentType(mimeType))
		} else {
			call = call.Media(f)
		}
		updated, err := call.Do()
		if err != nil {
			return remote.Object{}, c.mapAPIError(err, "files.update")
		}
		logger.Info().Str("fileId", updated.Id).Msg("Content updated")
		return toObject(updated), nil
	})
}

// CreateFolder creates a folder named name under parentID.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (remote.Object, error) {
	logger := c.logger.With().Str("name", name).Logger()
	done := logging.LogOperationStart(logger, "files.createFolder")
	defer done()

	return retry.DoValue(ctx, c.retry, "files.createFolder", func() (remote.Object, error) {
		meta := &drive.File{Name: name, MimeType: remote.MimeTypeFolder}
		if parentID != "" {
			meta.Parents = []string{parentID}
		}
		created, err := c.svc.Files.Create(meta).
			Fields(objectFields).
			Context(ctx).
			Do()
		if err != nil {
			return remote.Object{}, c.mapAPIError(err, "files.createFolder")
		}
		logger.Info().Str("folderId", created.Id).Msg("Folder created")
		return toObject(created), nil
	})
}

// Delete removes the object by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	logger := c.logger.With().Str("fileId", id).Logger()
	done := logging.LogOperationStart(logger, "files.delete")
	defer done()

	return c.retry.Do(ctx, "files.delete", func() error {
		if err := c.svc.Files.Delete(id).Context(ctx).Do(); err != nil {
			return c.mapAPIError(err, "files.delete")
		}
		logger.Info().Msg("Deleted")
		return nil
	})
}

// requireLocalFile enforces the local precondition before any remote call.
func (c *Client) requireLocalFile(localPath string) error {
	info, err := c.fs.Stat(localPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrLocalFileMissing,
			"local file not found: %s", localPath)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrLocalFileMissing,
			"local path is a directory: %s", localPath)
	}
	return nil
}

// mapAPIError translates a Drive API failure onto the error taxonomy so
// the retry policy can tell permanent failures from transient ones.
func (c *Client) mapAPIError(err error, op string) error {
	// A rejected token refresh (expired or revoked grant) arrives as an
	// oauth2 error wrapped by the transport, not as a googleapi.Error.
	var retrieveErr *oauth2.RetrieveError
	if stderrors.As(err, &retrieveErr) {
		return errors.Wrapf(err, errors.ErrAuth, "%s: token refresh rejected", op)
	}

	var apiErr *googleapi.Error
	if !stderrors.As(err, &apiErr) {
		// Network-level failures stay transient.
		return errors.Wrapf(err, errors.ErrTransfer, "%s failed", op)
	}
	switch {
	case apiErr.Code == 404:
		return errors.Wrapf(err, errors.ErrNotFound, "%s: remote object not found", op)
	case apiErr.Code == 401:
		return errors.Wrapf(err, errors.ErrAuth, "%s: unauthorized", op)
	case apiErr.Code == 403 && !isRateLimit(apiErr):
		return errors.Wrapf(err, errors.ErrAuth, "%s: permission denied", op)
	default:
		// 403 rate limits, 429, and 5xx are retryable.
		return errors.Wrapf(err, errors.ErrTransfer, "%s failed with status %d", op, apiErr.Code)
	}
}

// isRateLimit reports whether a 403 carries a rate-limit reason.
func isRateLimit(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		if strings.Contains(item.Reason, "ateLimit") {
			return true
		}
	}
	return false
}

// toObject converts Drive file metadata to the capability type.
func toObject(f *drive.File) remote.Object {
	modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return remote.Object{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Parents:      f.Parents,
		ModifiedTime: modified,
		Size:         f.Size,
	}
}

// progressReader reports bytes read through the observer callback.
type progressReader struct {
	r       io.Reader
	id      string
	total   int64
	written int64
	fn      remote.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		p.fn(p.id, p.written, p.total)
	}
	return n, err
}
