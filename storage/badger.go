package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/github/stack-graphs/graph"
	"github.com/github/stack-graphs/partial"
)

// BadgerDatabase is a Badger-backed partial-path store (SPEC_FULL.md §12):
// an indexer's working set of partial paths, keyed so that a later process
// (or the same one, restarted) can recover every partial path computed for
// a file's content without needing the *graph.Graph instance that produced
// them to still be alive.
//
// Keys are "{contentHash}|{startLocal}|{sequence}": the SHA-256 content
// hash the caller supplied at add_file time, the local ID of the partial
// path's start node, and a per-start sequence number that disambiguates
// multiple partial paths sharing a start. Values are gob-encoded
// storedPartialPath records, which carry graph.NodeID instead of
// graph.NodeHandle so they can be rehydrated against a freshly built graph
// whose handle numbering differs from the one that wrote them.
//
// BadgerDatabase does not implement partial.Database: its methods need a
// *graph.Graph and a content hash that the in-process, handle-keyed
// Database interface has no room for. Callers load a file's partial paths
// into a partial.MemoryDatabase (or storage.MemoryDatabase) before handing
// them to a stitcher, and persist new ones back through Insert once a run
// completes.
type BadgerDatabase struct {
	db *badger.DB
}

// OpenBadgerDatabase opens (creating if absent) a Badger store at dir.
func OpenBadgerDatabase(dir string) (*BadgerDatabase, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger at %s: %w", dir, err)
	}
	return &BadgerDatabase{db: db}, nil
}

// Close flushes and closes the underlying badger.DB.
func (d *BadgerDatabase) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("storage: close badger: %w", err)
	}
	return nil
}

// Insert stores p under contentHash, rejecting it first if it is divergent
// (SPEC_FULL.md §4.4): a divergent partial path would match every query and
// must never reach the store, persisted or not.
func (d *BadgerDatabase) Insert(g *graph.Graph, contentHash string, p partial.PartialPath) error {
	if _, err := partial.NewPartialPath(g, p); err != nil {
		return err
	}

	stored, err := encodePartialPath(g, p)
	if err != nil {
		return fmt.Errorf("storage: encode partial path: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(stored); err != nil {
		return fmt.Errorf("storage: gob-encode partial path: %w", err)
	}

	prefix := keyPrefix(contentHash, stored.Start.Local)
	return d.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSequence(txn, prefix)
		if err != nil {
			return err
		}
		k := key(contentHash, stored.Start.Local, seq)
		return txn.Set(k, buf.Bytes())
	})
}

// nextSequence scans existing keys under prefix and returns one past the
// highest sequence number in use, so concurrent Insert calls targeting the
// same start node never collide. Callers hold txn inside an Update, so this
// is serialized with respect to other writers of the same key space.
func nextSequence(txn *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		count++
	}
	return count, nil
}

// PartialsStartingAt returns every partial path stored for contentHash whose
// start node has local ID startLocal, rehydrated against g. g must contain,
// for every node referenced by a stored path, a node with the same NodeID
// the path was written with; a rebuild of the same file content satisfies
// this as long as local IDs are assigned deterministically from source
// position, as add_file callers are expected to do.
func (d *BadgerDatabase) PartialsStartingAt(g *graph.Graph, contentHash string, startLocal uint32) ([]partial.PartialPath, error) {
	prefix := keyPrefix(contentHash, startLocal)

	var out []partial.PartialPath
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var stored storedPartialPath
			err := item.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&stored)
			})
			if err != nil {
				return fmt.Errorf("storage: decode partial path at key %q: %w", item.Key(), err)
			}
			p, err := decodePartialPath(g, stored)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
