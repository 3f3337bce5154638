package render

import (
	"embed"
	"fmt"

	"github.com/romilpunetha/tao/internal/fields"
	"github.com/romilpunetha/tao/internal/naming"
)

//go:embed templates/*.tmpl
var templates embed.FS

var defaultRenderer = NewRenderer()

// Options carries the project-specific values the artifacts are rendered with.
type Options struct {
	// Namespace is the Thrift namespace prefix; the entity's snake name is
	// appended to it.
	Namespace string
	// Package is the Go package name of the entities directory.
	Package string
	// ModelsImport is the import path of the package declaring EntityType.
	ModelsImport string
}

var fieldComments = map[string]string{
	fields.CreatedTime: "Unix timestamp when entity was created",
	fields.UpdatedTime: "Unix timestamp when entity was last updated",
}

type schemaLine struct {
	ID        int
	Qualifier string
	Type      fields.Type
	Name      string
	Comment   string
}

type schemaData struct {
	Namespace string
	Entity    string
	Lines     []schemaLine
}

// Schema renders the Thrift struct declaration for the entity. Fields appear
// in set order, one per line.
func Schema(names naming.Names, set fields.Set, opts Options) ([]byte, error) {
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("rendering schema for %s: %w", names.Entity, err)
	}

	data := schemaData{
		Namespace: ThriftNamespace(opts.Namespace, names),
		Entity:    names.Entity,
		Lines:     make([]schemaLine, 0, len(set)),
	}
	for _, f := range set {
		data.Lines = append(data.Lines, schemaLine{
			ID:        f.ID,
			Qualifier: f.Qualifier(),
			Type:      f.Type,
			Name:      f.Name,
			Comment:   fieldComments[f.Name],
		})
	}

	return defaultRenderer.RenderFS(templates, "templates/schema.thrift.tmpl", data)
}

// ThriftNamespace returns the namespace the entity's schema is declared in.
func ThriftNamespace(prefix string, names naming.Names) string {
	if prefix == "" {
		return names.EntitySnake
	}
	return prefix + "." + names.EntitySnake
}
