package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSet creates output files under temporary names and moves them into
// place only on Commit. Abort (or a failed Commit) removes every temporary
// file, so a failed run never leaves partial outputs behind.
type FileSet struct {
	files []*pendingFile
	done  bool
}

type pendingFile struct {
	*os.File
	final string
}

// Create opens a temporary file that becomes path on Commit.
func (fs *FileSet) Create(path string) (*os.File, error) {
	if fs.done {
		return nil, errors.New("file set already finished")
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	fs.files = append(fs.files, &pendingFile{File: f, final: path})
	return f, nil
}

// Commit closes every file and renames it to its final path.
func (fs *FileSet) Commit() error {
	if fs.done {
		return nil
	}
	for _, f := range fs.files {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			fs.Abort()
			return fmt.Errorf("close %s: %w", f.final, err)
		}
	}
	for i, f := range fs.files {
		if err := os.Rename(f.Name(), f.final); err != nil {
			for _, renamed := range fs.files[:i] {
				os.Remove(renamed.final)
			}
			fs.Abort()
			return fmt.Errorf("rename %s: %w", f.final, err)
		}
	}
	fs.done = true
	return nil
}

// Abort removes every temporary file. It is a no-op after Commit.
func (fs *FileSet) Abort() {
	if fs.done {
		return
	}
	for _, f := range fs.files {
		f.Close()
		os.Remove(f.Name())
	}
	fs.done = true
}

// Paths returns the final paths of the files in creation order.
func (fs *FileSet) Paths() []string {
	paths := make([]string, len(fs.files))
	for i, f := range fs.files {
		paths[i] = f.final
	}
	return paths
}
