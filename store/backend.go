// Package store carries finished partial states between pipeline workers:
// a leaf worker puts its serialized state under (groupID, workerID), the
// merge destination scans the group and combines. It is not a spill
// target — an accumulator that exceeds its memory ceiling fails, its state
// never lands here.
package store

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("partial state not found")

type Backend interface {
	Get(groupID, workerID int64) ([]byte, error)
	Put(groupID, workerID int64, partial []byte) error
	Delete(groupID, workerID int64) error

	// Scan visits every partial of one group. A non-nil return from fn
	// stops the scan and is returned as is.
	Scan(groupID int64, fn func(workerID int64, partial []byte) error) error

	Close() error
}

// <8 bytes group ID> <8 bytes worker ID>
func Key(groupID, workerID int64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[:8], uint64(groupID))
	binary.LittleEndian.PutUint64(buf[8:], uint64(workerID))
	return buf
}

func GroupPrefix(groupID int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(groupID))
	return buf
}

func GroupIDFromKey(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf[:8]))
}

func WorkerIDFromKey(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf[8:]))
}

type InMemoryBackend struct {
	mutex    sync.Mutex
	partials map[string][]byte
}

func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		partials: make(map[string][]byte),
	}
}

func (backend *InMemoryBackend) Get(groupID, workerID int64) ([]byte, error) {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	partial, ok := backend.partials[string(Key(groupID, workerID))]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "group %d worker %d", groupID, workerID)
	}
	return partial, nil
}

func (backend *InMemoryBackend) Put(groupID, workerID int64, partial []byte) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.partials[string(Key(groupID, workerID))] = partial
	return nil
}

func (backend *InMemoryBackend) Delete(groupID, workerID int64) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	delete(backend.partials, string(Key(groupID, workerID)))
	return nil
}

func (backend *InMemoryBackend) Scan(groupID int64, fn func(int64, []byte) error) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	for k, partial := range backend.partials {
		key := []byte(k)
		if GroupIDFromKey(key) != groupID {
			continue
		}
		if err := fn(WorkerIDFromKey(key), partial); err != nil {
			return err
		}
	}
	return nil
}

func (backend *InMemoryBackend) Close() error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.partials = nil
	return nil
}
