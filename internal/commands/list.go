package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/romilpunetha/tao/internal/astutil"
	"github.com/romilpunetha/tao/internal/entity"
	"github.com/romilpunetha/tao/internal/naming"
	"github.com/romilpunetha/tao/internal/output"
	"github.com/romilpunetha/tao/internal/registry"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// ListCmd creates and returns the 'list' command.
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered entities",
		Long: `List every entity in the EntityType enum with its storage tag and schema
file. The zero value EntityTypeUnknown is not listed.`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
	addRootFlag(cmd)
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rel := cfg.Layout.EntityTypes
	content, err := os.ReadFile(cfg.Abs(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return &entity.MissingRegistryError{Registry: registry.EnumConst.Registry, Path: rel}
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", rel, err)
	}

	types, err := astutil.EntityTypes(content)
	if err != nil {
		return fmt.Errorf("%s: %w", rel, err)
	}

	var rows [][]string
	for _, t := range types {
		if t.Const == "EntityTypeUnknown" {
			continue
		}
		schema := "-"
		if t.Tag != "" {
			schema = cfg.Layout.SchemaPath(naming.Names{EntitySnake: t.Tag})
			if _, err := os.Stat(cfg.Abs(schema)); err != nil {
				schema += " (missing)"
			}
		}
		rows = append(rows, []string{strings.TrimPrefix(t.Const, "EntityType"), t.Const, t.Tag, schema})
	}

	if len(rows) == 0 {
		output.Info("No entities registered yet")
		return nil
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ENTITY", "CONSTANT", "TAG", "SCHEMA").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
	output.Verbose(fmt.Sprintf("%d entities in %s", len(rows), rel))
	return nil
}
