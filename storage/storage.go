// Package storage provides the engine's partial-path stores (SPEC_FULL.md
// §12): MemoryDatabase, an in-memory partial.Database for tests and
// single-shot runs, and BadgerDatabase, a Badger-backed store that keeps
// partial paths across process restarts for long-lived indexers.
package storage

import (
	"github.com/github/stack-graphs/partial"
)

// Database extends partial.Database with a Close for implementations that
// own an external resource. storage.MemoryDatabase's Close is a no-op.
// storage.BadgerDatabase does not implement this interface (see its doc).
type Database interface {
	partial.Database
	Close() error
}

// MemoryDatabase is storage's re-export of partial.MemoryDatabase, the
// in-memory Database used by tests and single-shot CLI runs (SPEC_FULL.md
// §12). It lives under this name here so callers working against the
// storage package's two implementations don't need to reach into partial
// for the non-persistent one.
type MemoryDatabase struct {
	*partial.MemoryDatabase
}

// NewMemoryDatabase returns an empty, in-memory Database.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{MemoryDatabase: partial.NewMemoryDatabase()}
}

// Close is a no-op; MemoryDatabase owns no external resource.
func (d *MemoryDatabase) Close() error { return nil }

var _ Database = (*MemoryDatabase)(nil)
var _ partial.Database = (*MemoryDatabase)(nil)

// key builds the Badger key for a partial path: content hash, the local ID
// of its start node (stable across a rebuild of the same file content, even
// though the graph.NodeHandle the database was written with may differ once
// the file is reloaded), and a per-start sequence number.
func key(contentHash string, startLocal uint32, sequence int) []byte {
	k := make([]byte, 0, len(contentHash)+4+4+2)
	k = append(k, contentHash...)
	k = append(k, '|')
	k = appendUint32(k, startLocal)
	k = append(k, '|')
	k = appendUint32(k, uint32(sequence))
	return k
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// keyPrefix is the scan prefix for every partial path stored for a given
// (contentHash, startLocal) pair, i.e. key(contentHash, startLocal, 0)
// truncated before the sequence number.
func keyPrefix(contentHash string, startLocal uint32) []byte {
	k := make([]byte, 0, len(contentHash)+4+1)
	k = append(k, contentHash...)
	k = append(k, '|')
	k = appendUint32(k, startLocal)
	k = append(k, '|')
	return k
}
