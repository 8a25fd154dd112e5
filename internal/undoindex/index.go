package undoindex

import (
	"encoding/json"
	"fmt"

	"github.com/vundo-dev/vundo/internal/log"
	"github.com/vundo-dev/vundo/internal/storage"
)

// keyPrefix namespaces this catalog's keys within a shared DB, the same
// way internal/storage.PrefixDB isolates one logical keyspace from any
// others sharing the same underlying store.
var keyPrefix = []byte("undoindex/")

// Record is one buffer's entry in the catalog: where its undo file
// lives and what it held as of the last write, cached so a host can
// list known buffers without opening every file under its undo
// directories.
type Record struct {
	BufferPath   string `json:"buffer_path"`
	UndoFilePath string `json:"undo_file_path"`
	LastWritten  int64  `json:"last_written"`
	LastSaveNr   uint32 `json:"last_save_nr"`
	NumHeads     int    `json:"num_heads"`
	SeqLast      uint32 `json:"seq_last"`
}

// Index is a catalog of undo files, backed by any internal/storage.DB
// implementation. It is a cache alongside the undo files themselves —
// never the source of truth for one buffer's history, which always
// lives in the bit-exact file that package undofile reads and writes.
type Index struct {
	db storage.DB
}

// Open wraps an already-opened DB as an undo-file catalog.
func Open(db storage.DB) *Index {
	return &Index{db: db}
}

func keyFor(bufferPath string) []byte {
	return append(append([]byte{}, keyPrefix...), bufferPath...)
}

// Put records or replaces a buffer's catalog entry.
func (ix *Index) Put(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("undoindex: encode record: %w", err)
	}
	if err := ix.db.Put(keyFor(rec.BufferPath), data); err != nil {
		return fmt.Errorf("undoindex: put %s: %w", rec.BufferPath, err)
	}
	log.Index.Debug().Str("buffer", rec.BufferPath).Uint32("seq_last", rec.SeqLast).Msg("indexed undo file")
	return nil
}

// Lookup returns the catalog entry for bufferPath, if any.
func (ix *Index) Lookup(bufferPath string) (Record, bool, error) {
	data, err := ix.db.Get(keyFor(bufferPath))
	if err != nil {
		return Record{}, false, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("undoindex: decode record for %s: %w", bufferPath, err)
	}
	return rec, true, nil
}

// Forget removes bufferPath's catalog entry, e.g. after its undo file
// is deleted.
func (ix *Index) Forget(bufferPath string) error {
	if err := ix.db.Delete(keyFor(bufferPath)); err != nil {
		return fmt.Errorf("undoindex: forget %s: %w", bufferPath, err)
	}
	return nil
}

// List returns every catalogued record. Order is unspecified.
func (ix *Index) List() ([]Record, error) {
	var out []Record
	err := ix.db.ForEach(keyPrefix, func(_, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("undoindex: decode catalog entry: %w", err)
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying DB.
func (ix *Index) Close() error {
	return ix.db.Close()
}
