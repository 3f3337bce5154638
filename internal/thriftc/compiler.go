package thriftc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Compiler invokes the Thrift compiler for Go output.
type Compiler struct {
	// Binary is the compiler executable, "thrift" by default.
	Binary string
	// Root is the project root; schema and output paths are relative to it.
	Root string
	// Out is the output directory passed to -out.
	Out string
	// Spinner shows progress instead of streaming compiler output.
	Spinner bool

	exec *Executor
}

// New creates a compiler that runs commands in root.
func New(binary, root, out string, opts Options) *Compiler {
	if binary == "" {
		binary = "thrift"
	}
	opts.Dir = root
	return &Compiler{
		Binary: binary,
		Root:   root,
		Out:    out,
		exec:   NewExecutor(opts),
	}
}

// Args returns the compiler arguments for one schema.
func (c *Compiler) Args(schema string) []string {
	return []string{"--gen", "go", "-out", c.Out, schema}
}

// Compile runs the compiler once per schema, in order, stopping at the first
// failure. The output directory is created first; the compiler requires it.
func (c *Compiler) Compile(ctx context.Context, schemas ...string) error {
	if err := os.MkdirAll(filepath.Join(c.Root, filepath.FromSlash(c.Out)), 0o755); err != nil {
		return fmt.Errorf("creating thrift output directory: %w", err)
	}

	for _, schema := range schemas {
		args := c.Args(schema)
		slog.Debug("running thrift compiler", "binary", c.Binary, "args", args, "dir", c.Root)

		var err error
		if c.Spinner {
			err = c.exec.RunWithSpinner(ctx, "Compiling "+schema, c.Binary, args...)
		} else {
			err = c.exec.Run(ctx, c.Binary, args...)
		}
		if err != nil {
			return fmt.Errorf("compiling %s: %w", schema, err)
		}
	}
	return nil
}
