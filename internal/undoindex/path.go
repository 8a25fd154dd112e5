// Package undoindex locates undo files on disk (spec.md §6.3
// get_undofile_path) and maintains a Badger-backed catalog of which
// buffers have undo history, so a host can answer that question
// without re-opening every ".un~" file under its undo directories.
package undoindex

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoUndoFile is returned by GetUndofilePath when reading and no
// directory in dirs holds a file for bufferPath.
var ErrNoUndoFile = errors.New("undoindex: no undo file found for buffer")

// ErrNoWritableDir is returned by GetUndofilePath when writing and no
// directory in dirs exists as a directory. Write permission is not
// checked.
var ErrNoWritableDir = errors.New("undoindex: no writable undo directory configured")

// GetUndofilePath resolves the undo file for bufferPath against dirs,
// the ordered list of configured undo directories (spec.md §6.3). The
// entry "." means "alongside the buffer itself", as a dotfile, the way
// a real editor's 'undodir' setting treats it. When reading, the first
// directory that already holds a matching file wins; when writing, the
// first directory that exists wins, since that is where the caller
// should create the file.
func GetUndofilePath(dirs []string, bufferPath string, reading bool) (string, error) {
	abs, err := filepath.Abs(bufferPath)
	if err != nil {
		return "", err
	}

	for _, dir := range dirs {
		var candidate string
		if dir == "." {
			candidate = filepath.Join(filepath.Dir(abs), "."+filepath.Base(abs)+".un~")
		} else {
			candidate = filepath.Join(dir, escapeForUndofileName(abs)+".un~")
		}

		if reading {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			continue
		}

		checkDir := dir
		if dir == "." {
			checkDir = filepath.Dir(abs)
		}
		if info, err := os.Stat(checkDir); err == nil && info.IsDir() {
			return candidate, nil
		}
	}

	if reading {
		return "", ErrNoUndoFile
	}
	return "", ErrNoWritableDir
}

// escapeForUndofileName collapses an absolute path into a single
// filename component: literal '%' is doubled first, then the path
// separator is replaced by '%', mirroring the scheme a real editor
// uses so two buffers never collide on the same undo-directory entry.
func escapeForUndofileName(abs string) string {
	escaped := strings.ReplaceAll(abs, "%", "%%")
	return strings.ReplaceAll(escaped, string(filepath.Separator), "%")
}
