package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Operation represents a file change that can be validated and staged.
//
// Validate checks that the operation would succeed without touching the
// filesystem. force=true skips conflict checks (e.g., file already exists).
//
// Execute stages the change in tx. Nothing is written until the transaction
// commits.
//
// Description returns a human-readable description for output (e.g., "Create schemas/ent_user.thrift (234 bytes)").
type Operation interface {
	Validate(ctx context.Context, force bool) error
	Execute(ctx context.Context, tx *Transaction) error
	Description() string
}

// WriteFileOp writes a generated file.
//
// Validation behavior:
//   - Rejects nil content (empty is OK)
//   - Checks for an existing file unless Overwrite or force is set
//   - Checks that the parent directory exists or can be created
type WriteFileOp struct {
	Path      string      // File path to write
	Content   []byte      // File content (can be empty, must not be nil)
	Mode      fs.FileMode // File permissions (e.g., 0644)
	Overwrite bool        // Replace an existing file (conflict already resolved)
}

func (op *WriteFileOp) Validate(ctx context.Context, force bool) error {
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}

	info, err := os.Stat(op.Path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%s is a directory", op.Path)
	case err == nil && !op.Overwrite && !force:
		return fmt.Errorf("file already exists: %s", op.Path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("cannot stat %s: %w", op.Path, err)
	}

	return checkParent(filepath.Dir(op.Path))
}

func (op *WriteFileOp) Execute(ctx context.Context, tx *Transaction) error {
	mode := op.Mode
	if mode == 0 {
		mode = 0o644
	}
	tx.AddFile(op.Path, op.Content, mode)
	return nil
}

func (op *WriteFileOp) Description() string {
	verb := "Create"
	if op.Overwrite {
		verb = "Overwrite"
	}
	return fmt.Sprintf("%s %s (%d bytes)", verb, op.Path, len(op.Content))
}

// PatchFileOp rewrites an existing file whose content was read when the
// change was planned. It refuses to run if the file changed since then.
type PatchFileOp struct {
	Path   string
	Before []byte
	After  []byte
	// Label names what the patch adds, for output (e.g., "EntityType enum").
	Label string
}

func (op *PatchFileOp) Validate(ctx context.Context, force bool) error {
	current, err := os.ReadFile(op.Path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", op.Path, err)
	}
	if !bytes.Equal(current, op.Before) {
		return fmt.Errorf("%s changed since the patch was planned", op.Path)
	}
	return nil
}

func (op *PatchFileOp) Execute(ctx context.Context, tx *Transaction) error {
	info, err := os.Stat(op.Path)
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", op.Path, err)
	}
	tx.AddFile(op.Path, op.After, info.Mode().Perm())
	return nil
}

func (op *PatchFileOp) Description() string {
	if op.Label == "" {
		return fmt.Sprintf("Update %s", op.Path)
	}
	return fmt.Sprintf("Update %s (%s)", op.Path, op.Label)
}

// checkParent walks up from dir to the nearest existing ancestor and
// requires it to be a directory.
func checkParent(dir string) error {
	for d := dir; ; d = filepath.Dir(d) {
		info, err := os.Stat(d)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("cannot create directory %s: %s is not a directory", dir, d)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
		if filepath.Dir(d) == d {
			return nil
		}
	}
}
