package registry

import (
	"fmt"
	"path"
	"strings"

	"github.com/romilpunetha/tao/internal/naming"
)

// Layout locates the registries and generated code inside a project. Paths
// are slash-separated and relative to the project root.
type Layout struct {
	Module           string // module path from go.mod
	Schemas          string // directory of .thrift schemas
	Entities         string // directory of generated entity operations
	EntityTypes      string // file declaring the EntityType enum
	Manifest         string // Thrift build manifest
	Models           string // models layer declaration file
	EntitiesRegistry string // entities layer declaration file
	ThriftOut        string // Thrift compiler output directory
	Namespace        string // Thrift namespace prefix
}

// DefaultLayout is the layout used when the project configures nothing.
func DefaultLayout(module string) Layout {
	return Layout{
		Module:           module,
		Schemas:          "schemas",
		Entities:         "internal/entities",
		EntityTypes:      "internal/models/entity_type.go",
		Manifest:         "thrift.yml",
		Models:           "internal/models/models.go",
		EntitiesRegistry: "internal/entities/entities.go",
		ThriftOut:        "gen-go",
		Namespace:        "tao_db.schemas",
	}
}

// Registry rules. The Go anchors match a block opener followed by every
// indented line of the block, so entries land just before the closing token.
// goimports deletes an import block that holds no imports, so the models
// import rule recreates it after the package clause. The export rules append
// a new type block when theirs is gone.
var (
	EnumConst = Rule{
		Registry: "EntityType enum",
		Anchor:   `(?m)^const \(\n\t\w+ EntityType = iota.*\n(?:\t.*\n)*`,
	}
	EnumString = Rule{
		Registry: "EntityType String",
		Anchor:   `(?m)^func \(t EntityType\) String\(\) string \{\n\tswitch t \{\n(?:\t(?:case|\t).*\n)*`,
	}
	ManifestFiles = Rule{
		Registry: "Thrift manifest",
		Anchor:   `(?m)^thrift_files:[ \t]*\n(?:[ \t]+-.*\n)*`,
	}
	ModelsImport = Rule{
		Registry: "models imports",
		Anchor:   `(?m)^import \(\n(?:\t.*\n)*`,
		Fallback: `(?m)^package \w+[ \t]*\n`,
		Block:    "\nimport (\n%s)\n",
	}
	ModelsExport = Rule{
		Registry: "models exports",
		Anchor:   `(?m)^type \(\n(?:\t.*\n)*`,
		Fallback: `\z`,
		Block:    "\ntype (\n%s)\n",
	}
	EntitiesRegistered = Rule{
		Registry:  "entities registration",
		Anchor:    `(?s)var Registered = \[\]models\.EntityType\{[^}]*`,
		Separator: ",",
	}
	EntitiesExport = Rule{
		Registry: "entities exports",
		Anchor:   `(?m)^type \(\n(?:\t.*\n)*`,
		Fallback: `\z`,
		Block:    "\ntype (\n%s)\n",
	}
)

// SchemaPath returns the project-relative path of the entity's Thrift schema.
func (l Layout) SchemaPath(names naming.Names) string {
	return path.Join(l.Schemas, names.EntitySnake+".thrift")
}

// EntityPath returns the project-relative path of the entity's operations.
func (l Layout) EntityPath(names naming.Names) string {
	return path.Join(l.Entities, names.EntitySnake+".go")
}

// ModelsImportPath returns the import path of the models package.
func (l Layout) ModelsImportPath() string {
	return path.Join(l.Module, path.Dir(l.Models))
}

// ThriftPackage returns the import path of the Go package the Thrift compiler
// generates for the entity.
func (l Layout) ThriftPackage(names naming.Names) string {
	ns := strings.ReplaceAll(l.Namespace, ".", "/")
	return path.Join(l.Module, l.ThriftOut, ns, names.EntitySnake)
}

// Steps returns the registry edits for one entity in application order: the
// enum constant, its String case, the manifest entry, then the models and
// entities declarations.
func Steps(names naming.Names, l Layout) []Step {
	return []Step{
		{
			Rule:  EnumConst,
			Path:  l.EntityTypes,
			Entry: fmt.Sprintf("\t%s\n", names.TypeConst),
		},
		{
			Rule:  EnumString,
			Path:  l.EntityTypes,
			Entry: fmt.Sprintf("\tcase %s:\n\t\treturn %q\n", names.TypeConst, names.EntitySnake),
		},
		{
			Rule:  ManifestFiles,
			Path:  l.Manifest,
			Entry: fmt.Sprintf("  - %q\n", l.SchemaPath(names)),
		},
		{
			Rule:  ModelsImport,
			Path:  l.Models,
			Entry: fmt.Sprintf("\t%q\n", l.ThriftPackage(names)),
		},
		{
			Rule:  ModelsExport,
			Path:  l.Models,
			Entry: fmt.Sprintf("\t%s = %s.%s\n", names.Entity, names.EntitySnake, names.Entity),
		},
		{
			Rule:  EntitiesRegistered,
			Path:  l.EntitiesRegistry,
			Entry: fmt.Sprintf("\tmodels.%s,\n", names.TypeConst),
		},
		{
			Rule:  EntitiesExport,
			Path:  l.EntitiesRegistry,
			Entry: fmt.Sprintf("\t%s = models.%s\n", names.Entity, names.Entity),
		},
	}
}
