package generator

import (
	"context"
	"fmt"
	"io"

	"github.com/romilpunetha/tao/internal/output"
)

// ExecuteOptions configures execution behavior
type ExecuteOptions struct {
	DryRun bool
	Force  bool
	Writer io.Writer // Where to write output (defaults to output.Writer())
}

// Execute validates every operation, then stages and commits them as one
// transaction. Nothing is written when validation fails, and a failed commit
// restores what it already wrote.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = output.Writer()
	}

	// Phase 1: Validate all operations
	for _, op := range ops {
		if err := op.Validate(ctx, opts.Force); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	if opts.DryRun {
		for _, op := range ops {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
		}
		return nil
	}

	// Phase 2: Stage
	tx := NewTransaction()
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := op.Execute(ctx, tx); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
	}

	// Phase 3: Commit
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	for _, op := range ops {
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}
	return nil
}
