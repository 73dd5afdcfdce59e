package state

import (
	"fmt"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"marketnet/storage"
)

// Manager provides typed access to the settlement state stored in the backing
// key-value database. Keys are keccak256 hashes of prefixed byte strings and
// values are RLP encoded, matching the historical storage layout.
//
// A Manager either operates directly on the database or on a write overlay
// created via Snapshot. Overlay managers buffer every mutation in memory until
// Commit flushes them, giving each settlement operation all-or-nothing
// semantics without write-ahead logging.
type Manager struct {
	kv kvStore
}

type kvStore interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// NewManager creates a state manager operating directly on the provided
// database.
func NewManager(db storage.Database) *Manager {
	return &Manager{kv: &dbStore{db: db}}
}

// Snapshot returns a manager whose writes are buffered until Commit. Reads
// fall through to the parent for keys that have not been touched.
func (m *Manager) Snapshot() *Manager {
	return &Manager{kv: newOverlay(m.kv)}
}

// Commit flushes a snapshot's buffered writes to its parent store. Calling
// Commit on a manager that is not a snapshot is an error.
func (m *Manager) Commit() error {
	ov, ok := m.kv.(*overlay)
	if !ok {
		return fmt.Errorf("state: commit requires a snapshot manager")
	}
	return ov.flush()
}

// --- raw database adapter ---

type dbStore struct {
	mu sync.RWMutex
	db storage.Database
}

func (s *dbStore) Get(key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, err := s.db.Get(key)
	if err == storage.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *dbStore) Put(key []byte, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Put(key, value)
}

func (s *dbStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Delete(key)
}

// --- write overlay ---

type overlay struct {
	parent  kvStore
	writes  map[string][]byte
	deletes map[string]struct{}
}

func newOverlay(parent kvStore) *overlay {
	return &overlay{
		parent:  parent,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (o *overlay) Get(key []byte) ([]byte, bool, error) {
	k := string(key)
	if _, ok := o.deletes[k]; ok {
		return nil, false, nil
	}
	if value, ok := o.writes[k]; ok {
		return append([]byte(nil), value...), true, nil
	}
	return o.parent.Get(key)
}

func (o *overlay) Put(key []byte, value []byte) error {
	k := string(key)
	delete(o.deletes, k)
	o.writes[k] = append([]byte(nil), value...)
	return nil
}

func (o *overlay) Delete(key []byte) error {
	k := string(key)
	delete(o.writes, k)
	o.deletes[k] = struct{}{}
	return nil
}

func (o *overlay) flush() error {
	for k := range o.deletes {
		if err := o.parent.Delete([]byte(k)); err != nil {
			return err
		}
	}
	for k, v := range o.writes {
		if err := o.parent.Put([]byte(k), v); err != nil {
			return err
		}
	}
	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
	return nil
}

// --- typed helpers ---

func kvKey(raw []byte) []byte {
	return ethcrypto.Keccak256(raw)
}

func prefixedKey(prefix []byte, components ...[]byte) []byte {
	size := len(prefix)
	for _, c := range components {
		size += len(c)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, prefix...)
	for _, c := range components {
		buf = append(buf, c...)
	}
	return kvKey(buf)
}

func (m *Manager) getRecord(key []byte, out interface{}) (bool, error) {
	data, ok, err := m.kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) putRecord(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.kv.Put(key, encoded)
}

func (m *Manager) deleteRecord(key []byte) error {
	return m.kv.Delete(key)
}
