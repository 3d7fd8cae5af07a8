package gdrive

import (
	"context"
	stderrors "errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/remote"
	"github.com/drivesync/drivesync/pkg/retry"
)

func apiError(code int, reasons ...string) *googleapi.Error {
	err := &googleapi.Error{Code: code}
	for _, r := range reasons {
		err.Errors = append(err.Errors, googleapi.ErrorItem{Reason: r})
	}
	return err
}

func TestMapAPIError(t *testing.T) {
	c := &Client{}

	tests := []struct {
		name      string
		err       error
		wantCode  errors.ErrorCode
		permanent bool
	}{
		{"404 not found", apiError(404), errors.ErrNotFound, true},
		{"401 unauthorized", apiError(401), errors.ErrAuth, true},
		{"403 permission", apiError(403, "insufficientPermissions"), errors.ErrAuth, true},
		{"403 user rate limit", apiError(403, "userRateLimitExceeded"), errors.ErrTransfer, false},
		{"403 rate limit", apiError(403, "rateLimitExceeded"), errors.ErrTransfer, false},
		{"429 too many requests", apiError(429), errors.ErrTransfer, false},
		{"500 server error", apiError(500), errors.ErrTransfer, false},
		{"503 unavailable", apiError(503), errors.ErrTransfer, false},
		{"network failure", stderrors.New("connection reset"), errors.ErrTransfer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.mapAPIError(tt.err, "list")
			require.Error(t, got)
			assert.Equal(t, tt.wantCode, errors.GetErrorCode(got))
			assert.Equal(t, tt.permanent, errors.IsPermanent(got))
		})
	}
}

func refreshFailure() error {
	return &url.Error{
		Op:  "Post",
		URL: "https://oauth2.googleapis.com/token",
		Err: &oauth2.RetrieveError{ErrorCode: "invalid_grant"},
	}
}

func TestMapAPIErrorTokenRefreshRejected(t *testing.T) {
	c := &Client{}

	got := c.mapAPIError(refreshFailure(), "list")
	assert.Equal(t, errors.ErrAuth, errors.GetErrorCode(got))
	assert.True(t, errors.IsPermanent(got))

	var retrieveErr *oauth2.RetrieveError
	require.True(t, stderrors.As(got, &retrieveErr))
	assert.Equal(t, "invalid_grant", retrieveErr.ErrorCode)
}

func TestTokenRefreshFailureIsNotRetried(t *testing.T) {
	c := &Client{}
	mapped := c.mapAPIError(refreshFailure(), "upload")

	attempts := 0
	err := retry.Default().Do(context.Background(), "upload", func() error {
		attempts++
		return mapped
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, errors.ErrAuth, errors.GetErrorCode(err))
	assert.False(t, errors.IsErrorCode(err, errors.ErrRetryExhausted))
}

func TestMapAPIErrorKeepsCause(t *testing.T) {
	c := &Client{}
	cause := apiError(500)
	got := c.mapAPIError(cause, "download")

	var apiErr *googleapi.Error
	require.True(t, stderrors.As(got, &apiErr))
	assert.Equal(t, 500, apiErr.Code)
}

func TestIsRateLimit(t *testing.T) {
	assert.True(t, isRateLimit(apiError(403, "rateLimitExceeded")))
	assert.True(t, isRateLimit(apiError(403, "userRateLimitExceeded")))
	assert.False(t, isRateLimit(apiError(403, "insufficientPermissions")))
	assert.False(t, isRateLimit(apiError(403)))
}

func TestToObject(t *testing.T) {
	obj := toObject(&drive.File{
		Id:           "abc123",
		Name:         "report.txt",
		MimeType:     "text/plain",
		Parents:      []string{"folder1"},
		ModifiedTime: "2026-03-01T10:30:00Z",
		Size:         42,
	})

	assert.Equal(t, remote.Object{
		ID:           "abc123",
		Name:         "report.txt",
		MimeType:     "text/plain",
		Parents:      []string{"folder1"},
		ModifiedTime: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Size:         42,
	}, obj)
	assert.False(t, obj.IsFolder())
}

func TestToObjectBadTimestamp(t *testing.T) {
	obj := toObject(&drive.File{Id: "x", ModifiedTime: "not-a-time"})
	assert.True(t, obj.ModifiedTime.IsZero())
}

func TestToObjectFolder(t *testing.T) {
	obj := toObject(&drive.File{Id: "f", MimeType: remote.MimeTypeFolder})
	assert.True(t, obj.IsFolder())
}

func TestProgressReaderReportsCumulativeBytes(t *testing.T) {
	var calls [][2]int64
	pr := &progressReader{
		r:     strings.NewReader("0123456789"),
		id:    "abc123",
		total: 10,
		fn: func(id string, written, total int64) {
			assert.Equal(t, "abc123", id)
			calls = append(calls, [2]int64{written, total})
		},
	}

	buf := make([]byte, 4)
	_, err := io.ReadFull(pr, buf)
	require.NoError(t, err)
	rest, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(rest))

	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	assert.Equal(t, int64(10), last[0])
	assert.Equal(t, int64(10), last[1])

	var prev int64
	for _, c := range calls {
		assert.Greater(t, c[0], prev)
		prev = c[0]
	}
}
