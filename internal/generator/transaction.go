package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Transaction represents a set of file writes that are committed together.
type Transaction struct {
	operations []fileOperation
	committed  bool
}

// fileOperation represents a single staged file write
type fileOperation struct {
	path    string
	content []byte
	mode    os.FileMode
}

// journalEntry records what a path held before the commit touched it.
type journalEntry struct {
	path    string
	existed bool
	content []byte
	mode    os.FileMode
}

// NewTransaction creates an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{
		operations: make([]fileOperation, 0),
	}
}

// AddFile stages a file write (doesn't write yet). A later write to the same
// path replaces the earlier one.
func (t *Transaction) AddFile(path string, content []byte, mode os.FileMode) {
	for i := range t.operations {
		if t.operations[i].path == path {
			t.operations[i] = fileOperation{path: path, content: content, mode: mode}
			return
		}
	}
	t.operations = append(t.operations, fileOperation{
		path:    path,
		content: content,
		mode:    mode,
	})
}

// Paths returns the staged paths in staging order.
func (t *Transaction) Paths() []string {
	paths := make([]string, 0, len(t.operations))
	for _, op := range t.operations {
		paths = append(paths, op.path)
	}
	return paths
}

// Commit writes all staged files to disk. If any write fails, every file it
// already wrote is restored and the directories it created are removed.
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}

	var (
		journal []journalEntry
		dirs    []string
	)
	fail := func(err error) error {
		if rbErr := restore(journal, dirs); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback incomplete: %w", rbErr))
		}
		return err
	}

	for _, op := range t.operations {
		entry, err := snapshot(op.path)
		if err != nil {
			return fail(err)
		}

		created, err := mkdirAll(filepath.Dir(op.path))
		dirs = append(dirs, created...)
		if err != nil {
			return fail(fmt.Errorf("failed to create directory %s: %w", filepath.Dir(op.path), err))
		}

		journal = append(journal, entry)
		if err := os.WriteFile(op.path, op.content, op.mode); err != nil {
			return fail(fmt.Errorf("failed to write file %s: %w", op.path, err))
		}
	}

	t.committed = true
	return nil
}

func snapshot(path string) (journalEntry, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return journalEntry{path: path}, nil
	}
	if err != nil {
		return journalEntry{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return journalEntry{}, fmt.Errorf("%s is a directory", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return journalEntry{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return journalEntry{path: path, existed: true, content: content, mode: info.Mode().Perm()}, nil
}

// mkdirAll creates dir and its missing parents, returning the directories it
// created from the outermost in.
func mkdirAll(dir string) ([]string, error) {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if filepath.Dir(d) == d {
			break
		}
	}

	created := make([]string, 0, len(missing))
	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return created, err
		}
		created = append(created, missing[i])
	}
	return created, nil
}

// restore undoes journal in reverse order, then removes created directories
// innermost first.
func restore(journal []journalEntry, dirs []string) error {
	var errs []error
	for i := len(journal) - 1; i >= 0; i-- {
		e := journal[i]
		if e.existed {
			if err := os.WriteFile(e.path, e.content, e.mode); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Remove(dirs[i]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
