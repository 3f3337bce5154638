// Package entity generates a new TAO entity: it derives the entity's names,
// resolves its fields, renders its schema and implementation, and registers
// it in the project's registries.
//
// Generation is split into Plan, which computes every change in memory and
// touches nothing, and Apply, which resolves conflicts and commits the plan
// as a single transaction.
package entity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/romilpunetha/tao/internal/fields"
	"github.com/romilpunetha/tao/internal/generator"
	"github.com/romilpunetha/tao/internal/naming"
	"github.com/romilpunetha/tao/internal/output"
	"github.com/romilpunetha/tao/internal/project"
	"github.com/romilpunetha/tao/internal/registry"
	"github.com/romilpunetha/tao/internal/render"
)

// Request names the entity to generate.
type Request struct {
	// SchemaName is the schema identifier, e.g. "EntUserSchema".
	SchemaName string
	// Fields replaces the default field policy when non-empty. The timestamp
	// fields are always added in front.
	Fields []fields.Field
}

// ArtifactStatus describes an artifact relative to what is on disk.
type ArtifactStatus int

const (
	ArtifactNew ArtifactStatus = iota
	ArtifactUnchanged
	ArtifactConflict
)

func (s ArtifactStatus) String() string {
	switch s {
	case ArtifactNew:
		return "new"
	case ArtifactUnchanged:
		return "unchanged"
	default:
		return "conflict"
	}
}

// Artifact is one rendered file.
type Artifact struct {
	Kind     string // "schema" or "implementation"
	Path     string // relative to the project root
	Content  []byte
	Existing []byte // on-disk content, nil when the file does not exist
	Status   ArtifactStatus
}

// PatchResult records whether one registry step added its entry.
type PatchResult struct {
	Step    registry.Step
	Applied bool
}

// RegistryChange is the rewrite of one registry document.
type RegistryChange struct {
	Path   string
	Before []byte
	After  []byte
	Labels []string // registries patched in this document
}

// Plan is the complete set of changes for one entity, computed in memory.
type Plan struct {
	Names     naming.Names
	Fields    fields.Set
	Artifacts []Artifact
	Patches   []PatchResult
	// Registries lists the documents that change, in the order they were
	// first patched.
	Registries []RegistryChange
}

// Generator plans and applies entity generation for one project.
type Generator struct {
	cfg    *project.Config
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// New creates a generator for the project described by cfg.
func New(cfg *project.Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Plan computes every artifact and registry change for req without writing
// anything. Malformed names, unknown fields, missing registries and missing
// anchors are all reported here.
func (g *Generator) Plan(ctx context.Context, req Request) (*Plan, error) {
	names, err := naming.Derive(req.SchemaName)
	if err != nil {
		return nil, err
	}

	set, err := fields.Resolve(names.Entity, req.Fields)
	if err != nil {
		return nil, &naming.UsageError{Input: req.SchemaName, Reason: err.Error()}
	}
	g.logger.Debug("resolved fields", "entity", names.Entity, "fields", set.String(), "custom", len(req.Fields) > 0)

	plan := &Plan{Names: names, Fields: set}

	if err := g.planArtifacts(plan); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.planRegistries(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (g *Generator) planArtifacts(plan *Plan) error {
	layout := g.cfg.Layout
	opts := render.Options{
		Namespace:    layout.Namespace,
		Package:      path.Base(layout.Entities),
		ModelsImport: layout.ModelsImportPath(),
	}

	schema, err := render.Schema(plan.Names, plan.Fields, opts)
	if err != nil {
		return err
	}
	impl, err := render.Implementation(plan.Names, opts)
	if err != nil {
		return err
	}

	for _, a := range []Artifact{
		{Kind: "schema", Path: layout.SchemaPath(plan.Names), Content: schema},
		{Kind: "implementation", Path: layout.EntityPath(plan.Names), Content: impl},
	} {
		existing, err := g.readOptional(a.Path)
		if err != nil {
			return err
		}
		a.Existing = existing
		switch {
		case existing == nil:
			a.Status = ArtifactNew
		case bytes.Equal(existing, a.Content):
			a.Status = ArtifactUnchanged
		default:
			a.Status = ArtifactConflict
		}
		g.logger.Debug("staged artifact", "kind", a.Kind, "path", a.Path, "bytes", len(a.Content), "status", a.Status.String())
		plan.Artifacts = append(plan.Artifacts, a)
	}
	return nil
}

func (g *Generator) planRegistries(plan *Plan) error {
	layout := g.cfg.Layout
	docs := make(map[string]*registry.Document)
	labels := make(map[string][]string)
	var order []string

	for _, step := range registry.Steps(plan.Names, layout) {
		doc, ok := docs[step.Path]
		if !ok {
			content, err := g.readOptional(step.Path)
			if err != nil {
				return err
			}
			if content == nil {
				return &MissingRegistryError{Registry: step.Rule.Registry, Path: step.Path}
			}
			doc = registry.NewDocument(step.Path, content)
			docs[step.Path] = doc
			order = append(order, step.Path)
		}

		applied, err := doc.Apply(step)
		if err != nil {
			return err
		}
		if applied {
			labels[step.Path] = append(labels[step.Path], step.Rule.Registry)
		}
		g.logger.Debug("registry patch", "registry", step.Rule.Registry, "path", step.Path, "applied", applied)
		plan.Patches = append(plan.Patches, PatchResult{Step: step, Applied: applied})
	}

	for _, p := range order {
		doc := docs[p]
		if err := registry.Verify(doc); err != nil {
			return err
		}
		if p == layout.Manifest {
			if err := registry.VerifyManifest([]byte(doc.Content), layout.SchemaPath(plan.Names)); err != nil {
				return fmt.Errorf("patched %s: %w", p, err)
			}
		}
		if doc.Changed() {
			plan.Registries = append(plan.Registries, RegistryChange{
				Path:   p,
				Before: []byte(doc.Original),
				After:  []byte(doc.Content),
				Labels: labels[p],
			})
		}
	}
	return nil
}

func (g *Generator) readOptional(rel string) ([]byte, error) {
	content, err := os.ReadFile(g.cfg.Abs(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	return content, nil
}

// ApplyOptions configures Apply.
type ApplyOptions struct {
	DryRun bool
	// Resolver decides what happens to artifacts that exist with different
	// content. Nil means the interactive resolver.
	Resolver *generator.Resolver
	// Writer receives progress lines. Nil means output.Writer().
	Writer io.Writer
}

// Result summarizes an applied plan. Paths are relative to the project root.
type Result struct {
	Plan      *Plan
	Written   []string // artifacts created or overwritten
	Unchanged []string // artifacts identical to what is on disk
	Skipped   []string // conflicting artifacts kept as they were
	Updated   []string // registry documents rewritten
	DryRun    bool
}

// Apply resolves artifact conflicts and commits the plan. Every file is
// validated before any is written, and a failed write restores the files
// already written.
func (g *Generator) Apply(ctx context.Context, plan *Plan, opts ApplyOptions) (*Result, error) {
	resolver := opts.Resolver
	if resolver == nil {
		var err error
		if resolver, err = generator.NewResolver(false, false, false); err != nil {
			return nil, err
		}
	}

	w := opts.Writer
	if w == nil {
		w = output.Writer()
	}

	res := &Result{Plan: plan, DryRun: opts.DryRun}
	var ops []generator.Operation

	for _, a := range plan.Artifacts {
		switch a.Status {
		case ArtifactUnchanged:
			res.Unchanged = append(res.Unchanged, a.Path)
			continue
		case ArtifactConflict:
			decision, err := resolver.ResolveConflict(a.Path, a.Existing, a.Content)
			if err != nil {
				return nil, err
			}
			g.logger.Debug("resolved conflict", "path", a.Path, "decision", decision.String())
			switch decision {
			case generator.Overwrite:
			case generator.Skip:
				res.Skipped = append(res.Skipped, a.Path)
				continue
			default:
				return nil, ErrCancelled
			}
		}

		ops = append(ops, &generator.WriteFileOp{
			Path:      g.cfg.Abs(a.Path),
			Content:   a.Content,
			Mode:      0o644,
			Overwrite: a.Status == ArtifactConflict,
		})
		res.Written = append(res.Written, a.Path)
		if opts.DryRun {
			writeDiff(w, generator.Diff(a.Path, a.Existing, a.Content))
		}
	}

	for _, rc := range plan.Registries {
		ops = append(ops, &generator.PatchFileOp{
			Path:   g.cfg.Abs(rc.Path),
			Before: rc.Before,
			After:  rc.After,
			Label:  strings.Join(rc.Labels, ", "),
		})
		res.Updated = append(res.Updated, rc.Path)
		if opts.DryRun {
			writeDiff(w, generator.Diff(rc.Path, rc.Before, rc.After))
		}
	}

	if err := generator.Execute(ctx, ops, generator.ExecuteOptions{DryRun: opts.DryRun, Writer: w}); err != nil {
		return nil, err
	}
	return res, nil
}

func writeDiff(w io.Writer, diff string) {
	if diff != "" {
		fmt.Fprint(w, output.ColorizeDiff(diff))
	}
}

// Generate plans and applies req in one call.
func (g *Generator) Generate(ctx context.Context, req Request, opts ApplyOptions) (*Result, error) {
	plan, err := g.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.Apply(ctx, plan, opts)
}
