package blob

import (
	"context"
	"fmt"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore is an in-process Store for tests and local experiments.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	next    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Put(_ context.Context, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	ref := fmt.Sprintf("mem_%d.%s", s.next, ExtensionFor(contentType))
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[ref] = memoryObject{data: cp, contentType: contentType}
	return ref, nil
}

func (s *MemoryStore) Get(_ context.Context, ref string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[ref]
	if !ok {
		return nil, "", ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

func (s *MemoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[ref]; !ok {
		return ErrNotFound
	}
	delete(s.objects, ref)
	return nil
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
