// Package testutil provides testing utilities
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/remote"
)

// MockStore is a mock implementation of remote.Store for testing. It
// records every call and can be seeded with objects and per-operation
// errors.
type MockStore struct {
	mu      sync.Mutex
	objects []remote.Object
	calls   []string
	nextID  int

	// ErrorOn makes the named operation fail with ErrorToReturn.
	ErrorOn       string
	ErrorToReturn error
	// FailPaths makes Upload/UpdateContent fail for specific local paths.
	FailPaths map[string]error
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{FailPaths: map[string]error{}}
}

// Seed adds an object to the remote state.
func (m *MockStore) Seed(obj remote.Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = append(m.objects, obj)
}

// Calls returns the recorded call log.
func (m *MockStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many recorded calls start with op.
func (m *MockStore) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if len(c) >= len(op) && c[:len(op)] == op {
			count++
		}
	}
	return count
}

// MutationCount returns how many mutating calls were recorded.
func (m *MockStore) MutationCount() int {
	return m.CallCount("Upload") + m.CallCount("UpdateContent") +
		m.CallCount("CreateFolder") + m.CallCount("Delete")
}

func (m *MockStore) record(format string, args ...interface{}) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *MockStore) failure(op string) error {
	if m.ErrorOn == op {
		return m.ErrorToReturn
	}
	return nil
}

// List returns seeded objects matching the query.
func (m *MockStore) List(ctx context.Context, q remote.Query) ([]remote.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("List(%s,%s)", q.Name, q.ParentID)

	if err := m.failure("List"); err != nil {
		return nil, err
	}

	var matches []remote.Object
	for _, obj := range m.objects {
		if q.Name != "" && obj.Name != q.Name {
			continue
		}
		if q.ParentID != "" && !hasParent(obj, q.ParentID) {
			continue
		}
		if q.OnlyFolders && !obj.IsFolder() {
			continue
		}
		matches = append(matches, obj)
	}
	return matches, nil
}

// GetMetadata returns a seeded object by id.
func (m *MockStore) GetMetadata(ctx context.Context, id string) (remote.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetMetadata(%s)", id)

	if err := m.failure("GetMetadata"); err != nil {
		return remote.Object{}, err
	}
	for _, obj := range m.objects {
		if obj.ID == id {
			return obj, nil
		}
	}
	return remote.Object{}, errors.Newf(errors.ErrNotFound, "no object %s", id)
}

// Download records the call; content transfer is not simulated.
func (m *MockStore) Download(ctx context.Context, id, destPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Download(%s,%s)", id, destPath)
	return m.failure("Download")
}

// Upload creates a new object with a generated id.
func (m *MockStore) Upload(ctx context.Context, localPath, parentID, mimeType string) (remote.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Upload(%s,%s)", localPath, parentID)

	if err := m.failure("Upload"); err != nil {
		return remote.Object{}, err
	}
	if err := m.FailPaths[localPath]; err != nil {
		return remote.Object{}, err
	}

	m.nextID++
	obj := remote.Object{
		ID:   fmt.Sprintf("mock-id-%d", m.nextID),
		Name: filepath.Base(localPath),
	}
	if parentID != "" {
		obj.Parents = []string{parentID}
	}
	m.objects = append(m.objects, obj)
	return obj, nil
}

// UpdateContent replaces the content of an existing object.
func (m *MockStore) UpdateContent(ctx context.Context, id, localPath, mimeType string) (remote.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateContent(%s,%s)", id, localPath)

	if err := m.failure("UpdateContent"); err != nil {
		return remote.Object{}, err
	}
	if err := m.FailPaths[localPath]; err != nil {
		return remote.Object{}, err
	}
	for _, obj := range m.objects {
		if obj.ID == id {
			return obj, nil
		}
	}
	return remote.Object{}, errors.Newf(errors.ErrNotFound, "no object %s", id)
}

// CreateFolder creates a folder object with a generated id.
func (m *MockStore) CreateFolder(ctx context.Context, name, parentID string) (remote.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateFolder(%s,%s)", name, parentID)

	if err := m.failure("CreateFolder"); err != nil {
		return remote.Object{}, err
	}

	m.nextID++
	obj := remote.Object{
		ID:       fmt.Sprintf("mock-folder-%d", m.nextID),
		Name:     name,
		MimeType: remote.MimeTypeFolder,
	}
	if parentID != "" {
		obj.Parents = []string{parentID}
	}
	m.objects = append(m.objects, obj)
	return obj, nil
}

// Delete removes a seeded object by id.
func (m *MockStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Delete(%s)", id)

	if err := m.failure("Delete"); err != nil {
		return err
	}
	for i, obj := range m.objects {
		if obj.ID == id {
			m.objects = append(m.objects[:i], m.objects[i+1:]...)
			return nil
		}
	}
	return errors.Newf(errors.ErrNotFound, "no object %s", id)
}

func hasParent(obj remote.Object, parentID string) bool {
	for _, p := range obj.Parents {
		if p == parentID {
			return true
		}
	}
	return false
}
