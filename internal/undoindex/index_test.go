package undoindex_test

import (
	"testing"

	"github.com/vundo-dev/vundo/internal/storage"
	"github.com/vundo-dev/vundo/internal/undoindex"
)

func TestIndexPutLookupList(t *testing.T) {
	ix := undoindex.Open(storage.NewMemory())

	rec := undoindex.Record{
		BufferPath:   "/home/user/notes.txt",
		UndoFilePath: "/home/user/.notes.txt.un~",
		LastWritten:  1000,
		LastSaveNr:   3,
		NumHeads:     5,
		SeqLast:      12,
	}
	if err := ix.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := ix.Lookup(rec.BufferPath)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatalf("Lookup: record not found")
	}
	if got != rec {
		t.Fatalf("Lookup = %+v, want %+v", got, rec)
	}

	if _, ok, err := ix.Lookup("/no/such/buffer"); err != nil || ok {
		t.Fatalf("Lookup unknown buffer: ok=%v err=%v", ok, err)
	}

	list, err := ix.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0] != rec {
		t.Fatalf("List = %+v, want [%+v]", list, rec)
	}

	if err := ix.Forget(rec.BufferPath); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, ok, _ := ix.Lookup(rec.BufferPath); ok {
		t.Fatalf("Lookup after Forget still found a record")
	}
}

func TestGetUndofilePathDotMeansAlongsideBuffer(t *testing.T) {
	path, err := undoindex.GetUndofilePath([]string{"."}, "/tmp/example.txt", false)
	if err != nil {
		t.Fatalf("GetUndofilePath: %v", err)
	}
	want := "/tmp/.example.txt.un~"
	if path != want {
		t.Fatalf("GetUndofilePath = %q, want %q", path, want)
	}
}

func TestGetUndofilePathNoWritableDir(t *testing.T) {
	_, err := undoindex.GetUndofilePath([]string{"/no/such/undo/dir"}, "/tmp/example.txt", false)
	if err != undoindex.ErrNoWritableDir {
		t.Fatalf("GetUndofilePath error = %v, want ErrNoWritableDir", err)
	}
}
