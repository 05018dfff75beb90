// Package memory keeps uploaded images in process. Used when object storage
// is disabled and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/storage/s3"
)

type Storage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

func NewStorage(baseURL string) *Storage {
	return &Storage{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (s *Storage) Upload(ctx context.Context, fileName string, data []byte) (string, string, error) {
	key := s3.ObjectKey(fileName)
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[key] = buf
	s.mu.Unlock()
	return key, fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// Object returns the stored bytes of key.
func (s *Storage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}
