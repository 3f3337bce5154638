package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/romilpunetha/tao/internal/generator"
	"github.com/romilpunetha/tao/internal/output"
	"github.com/romilpunetha/tao/internal/registry"
)

// InitCmd creates and returns the 'init' command, which seeds any missing
// registry documents.
func InitCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the registry files generate expects",
		Long: `Create any missing registry documents with the anchors generate patches:
the EntityType enum, the models and entities declarations and the Thrift build
manifest. Existing files are never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show which files would be created")
	addRootFlag(cmd)

	return cmd
}

func runInit(cmd *cobra.Command, dryRun bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	seeds, err := registry.Seeds(cfg.Layout)
	if err != nil {
		return err
	}
	missing, err := registry.Missing(cfg.Root, seeds)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		output.Success("All registries already exist")
		return nil
	}

	ops := make([]generator.Operation, 0, len(missing))
	for _, s := range missing {
		ops = append(ops, &generator.WriteFileOp{
			Path:    cfg.Abs(s.Path),
			Content: s.Content,
			Mode:    0o644,
		})
	}
	if err := generator.Execute(cmd.Context(), ops, generator.ExecuteOptions{DryRun: dryRun}); err != nil {
		return err
	}

	if !dryRun {
		output.Success(fmt.Sprintf("Initialized %d registr%s", len(missing), plural(len(missing), "y", "ies")))
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
