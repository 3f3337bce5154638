package registry

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/tools/imports"

	"github.com/romilpunetha/tao/internal/render"
)

//go:embed templates/*.tmpl
var seedTemplates embed.FS

var seedRenderer = render.NewRenderer()

// Seeds are formatted the way goimports would leave them, so a later
// goimports or gofmt pass changes nothing the anchors depend on. Each group
// an anchor points at carries a marker comment, which formatters keep.
var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// SeedFile is the initial content of one registry document.
type SeedFile struct {
	Path    string
	Content []byte
}

type seedData struct {
	ModelsImport    string
	EntitiesPackage string
	ThriftOut       string
}

// Seeds renders an empty registry document, anchors included, for each of
// the four registries.
func Seeds(l Layout) ([]SeedFile, error) {
	data := seedData{
		ModelsImport:    l.ModelsImportPath(),
		EntitiesPackage: path.Base(l.Entities),
		ThriftOut:       l.ThriftOut,
	}

	files := []struct {
		path string
		tmpl string
	}{
		{l.EntityTypes, "templates/entity_type.go.tmpl"},
		{l.Models, "templates/models.go.tmpl"},
		{l.EntitiesRegistry, "templates/entities.go.tmpl"},
		{l.Manifest, "templates/thrift.yml.tmpl"},
	}

	seeds := make([]SeedFile, 0, len(files))
	for _, f := range files {
		content, err := seedRenderer.RenderFS(seedTemplates, f.tmpl, data)
		if err != nil {
			return nil, err
		}
		if path.Ext(f.path) == ".go" {
			content, err = imports.Process(f.path, content, formatOptions)
			if err != nil {
				return nil, fmt.Errorf("formatting %s: %w", f.path, err)
			}
		}
		seeds = append(seeds, SeedFile{Path: f.path, Content: content})
	}
	return seeds, nil
}

// Missing returns the seeds whose files do not exist under root.
func Missing(root string, seeds []SeedFile) ([]SeedFile, error) {
	var out []SeedFile
	for _, s := range seeds {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(s.Path)))
		switch {
		case err == nil:
			continue
		case errors.Is(err, fs.ErrNotExist):
			out = append(out, s)
		default:
			return nil, fmt.Errorf("checking %s: %w", s.Path, err)
		}
	}
	return out, nil
}

// Seed writes every missing registry document under root and returns the
// paths it created. Existing files are left untouched.
func Seed(root string, l Layout) ([]string, error) {
	seeds, err := Seeds(l)
	if err != nil {
		return nil, err
	}
	missing, err := Missing(root, seeds)
	if err != nil {
		return nil, err
	}

	created := make([]string, 0, len(missing))
	for _, s := range missing {
		full := filepath.Join(root, filepath.FromSlash(s.Path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return created, fmt.Errorf("creating directory for %s: %w", s.Path, err)
		}
		if err := os.WriteFile(full, s.Content, 0o644); err != nil {
			return created, fmt.Errorf("writing %s: %w", s.Path, err)
		}
		created = append(created, s.Path)
	}
	return created, nil
}
