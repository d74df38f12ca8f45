package objstore

import (
	"context"
	"sync"
)

// Memory keeps objects in process. It counts calls so tests can assert that
// an operation never reached storage.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	gets    int
	puts    int

	// GetErr and PutErr, when set, are returned instead of touching the map.
	GetErr error
	PutErr error
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.PutErr != nil {
		return m.PutErr
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

// Calls reports how many Get and Put calls were made.
func (m *Memory) Calls() (gets, puts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets, m.puts
}

// Raw returns the stored bytes for key without counting a call.
func (m *Memory) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
