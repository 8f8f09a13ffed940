package files

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
)

// Storage is the durable object store for submission files. Upload returns
// a stable, publicly dereferenceable URL for the stored object.
type Storage interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	Close() error
}

// ObjectKey composes the storage path for an upload: student, assignment,
// then an upload timestamp so re-uploads never collide with the file they
// replace.
func ObjectKey(studentID, assignmentID, fileName string, ts int64) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%s/%d%s", studentID, assignmentID, ts, ext)
}

// MemStorage keeps uploads in memory. Used in tests.
type MemStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{objects: make(map[string][]byte)}
}

func (s *MemStorage) Upload(_ context.Context, key string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()

	return "mem://" + key, nil
}

func (s *MemStorage) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

func (s *MemStorage) Close() error {
	return nil
}
