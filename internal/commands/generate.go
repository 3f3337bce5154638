package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/romilpunetha/tao/internal/entity"
	"github.com/romilpunetha/tao/internal/fields"
	"github.com/romilpunetha/tao/internal/generator"
	"github.com/romilpunetha/tao/internal/naming"
	"github.com/romilpunetha/tao/internal/output"
	"github.com/romilpunetha/tao/internal/project"
	"github.com/romilpunetha/tao/internal/thriftc"
)

type generateOptions struct {
	fields  string
	dryRun  bool
	force   bool
	skip    bool
	diff    bool
	compile bool
}

// GenerateCmd creates and returns the 'generate' command.
func GenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate <SchemaName>",
		Short: "Generate a TAO entity and register it",
		Long: `Generate the Thrift schema and Go operations for one entity, then register
it in the project's registries.

The schema name must end with "Schema"; the entity name is what precedes it.
Fields default to a template picked by keyword (User, Post, Event) and can be
replaced with --fields. created_time and updated_time are always fields 1 and 2.

Every change is planned in memory first. A malformed name, a missing registry
or a registry without its anchor stops the run before any file is written.

Examples:
  taogen generate EntUserSchema
  taogen generate EntWidgetSchema --dry-run
  taogen generate EntProductSchema --fields "sku:string,price:double,stock:i32?"
  taogen generate EntPostSchema --force --compile

Field syntax: name:type, with a trailing "?" for optional fields.
  Types: bool, byte, i16, i32, i64, double, string, binary`,
		Args: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 1:
				return nil
			case 0:
				return &naming.UsageError{Reason: "a schema name is required (e.g. EntUserSchema)"}
			default:
				return &naming.UsageError{Reason: fmt.Sprintf("expected one schema name, got %d arguments", len(args))}
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.fields, "fields", "", `Replace the default fields, e.g. "title:string,score:i32?"`)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would change without writing files")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite existing files without prompting")
	cmd.Flags().BoolVar(&opts.skip, "skip", false, "Keep existing files that differ")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "Show the diff of existing files, then prompt")
	cmd.Flags().BoolVar(&opts.compile, "compile", false, "Run the Thrift compiler on the schema afterwards")
	cmd.MarkFlagsMutuallyExclusive("force", "skip", "diff")
	addRootFlag(cmd)

	return cmd
}

func runGenerate(cmd *cobra.Command, schemaName string, opts generateOptions) error {
	ctx := cmd.Context()

	names, err := naming.Derive(schemaName)
	if err != nil {
		return err
	}
	custom, err := fields.Parse(opts.fields)
	if err != nil {
		return &naming.UsageError{Reason: err.Error()}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	resolver, err := generator.NewResolver(opts.force, opts.skip, opts.diff)
	if err != nil {
		return err
	}

	output.Info(fmt.Sprintf("Generating entity: %s", names.Entity))
	if cfg.File != "" {
		output.Verbose(fmt.Sprintf("Using config %s", cfg.File))
	}

	gen := entity.New(cfg, entity.WithLogger(slog.Default()))
	plan, err := gen.Plan(ctx, entity.Request{SchemaName: schemaName, Fields: custom})
	if err != nil {
		return err
	}
	output.Verbose(fmt.Sprintf("Fields: %s", plan.Fields))

	res, err := gen.Apply(ctx, plan, entity.ApplyOptions{DryRun: opts.dryRun, Resolver: resolver})
	if err != nil {
		return err
	}
	report(res)

	if opts.dryRun {
		output.Success("Dry run complete: no files were written")
		return nil
	}
	output.Success(fmt.Sprintf("Entity %s generated", names.Entity))

	schema := cfg.Layout.SchemaPath(names)
	if !opts.compile {
		compiler := thriftc.New(cfg.Compiler, cfg.Root, cfg.Layout.ThriftOut, thriftc.Options{})
		output.Step(fmt.Sprintf("Next: run `%s %s` to build the Thrift code", compiler.Binary, strings.Join(compiler.Args(schema), " ")))
		return nil
	}
	return compileSchema(cmd, cfg, schema)
}

func report(res *entity.Result) {
	for _, p := range res.Unchanged {
		output.Info(fmt.Sprintf("Unchanged: %s", p))
	}
	for _, p := range res.Skipped {
		output.Warn(fmt.Sprintf("Skipped %s (kept existing content)", p))
	}
	for _, p := range res.Plan.Patches {
		if !p.Applied {
			output.Verbose(fmt.Sprintf("%s already lists %s", p.Step.Rule.Registry, res.Plan.Names.Entity))
		}
	}
	if len(res.Updated) == 0 {
		output.Info("Registries already up to date")
	}
}

func compileSchema(cmd *cobra.Command, cfg *project.Config, schema string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	compiler := thriftc.New(cfg.Compiler, cfg.Root, cfg.Layout.ThriftOut, thriftc.Options{
		Stdout: output.Writer(),
		Stderr: cmd.ErrOrStderr(),
		Prefix: cfg.Compiler + " │ ",
	})
	compiler.Spinner = !verbose && term.IsTerminal(int(os.Stderr.Fd()))

	if err := compiler.Compile(cmd.Context(), schema); err != nil {
		return err
	}
	output.Success(fmt.Sprintf("Compiled %s into %s", schema, cfg.Layout.ThriftOut))
	return nil
}

func addRootFlag(cmd *cobra.Command) {
	cmd.Flags().String("root", ".", "Project root (directory containing go.mod)")
}

func loadConfig(cmd *cobra.Command) (*project.Config, error) {
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		return nil, err
	}
	return project.LoadConfig(root)
}
