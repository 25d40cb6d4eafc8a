package inmemory

import (
	"context"
	"sync"
)

// ObjectStore is an in-process stand-in for the media bucket.
type ObjectStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{
		baseURL: baseURL,
		objects: make(map[string][]byte),
	}
}

func (s *ObjectStore) Put(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[objectName] = append([]byte(nil), data...)
	return s.baseURL + "/" + objectName, nil
}

// Get returns a stored object, or nil when absent.
func (s *ObjectStore) Get(objectName string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.objects[objectName]
}

// Len reports how many objects were uploaded.
func (s *ObjectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.objects)
}
