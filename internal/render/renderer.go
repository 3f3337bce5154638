package render

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"

	"github.com/go-openapi/inflect"

	"github.com/romilpunetha/tao/internal/naming"
)

// Renderer parses and executes text templates, caching parsed templates by
// source and name.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// NewRenderer creates a renderer with the built-in helper functions.
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// RenderString renders a template given as a string. name is used for caching
// and error messages.
func (r *Renderer) RenderString(name, text string, data any) ([]byte, error) {
	tmpl, err := r.lookup("string:"+name, func() (*template.Template, error) {
		return template.New(name).Funcs(r.funcMap).Parse(text)
	})
	if err != nil {
		return nil, err
	}
	return execute(tmpl, data)
}

// RenderFS renders the template at path inside fsys.
func (r *Renderer) RenderFS(fsys fs.FS, path string, data any) ([]byte, error) {
	tmpl, err := r.lookup("fs:"+path, func() (*template.Template, error) {
		text, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template from fs '%s': %w", path, err)
		}
		return template.New(path).Funcs(r.funcMap).Parse(string(text))
	})
	if err != nil {
		return nil, err
	}
	return execute(tmpl, data)
}

func (r *Renderer) lookup(key string, parse func() (*template.Template, error)) (*template.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", key, err)
	}

	r.mu.Lock()
	r.cache[key] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

func execute(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template '%s': %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"snakeCase": naming.SnakeCase, // EntUser → ent_user
		"plural":    inflect.Pluralize,
		"quote":     func(s string) string { return fmt.Sprintf("%q", s) },
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"join":      strings.Join,
		"trim":      strings.TrimSpace,
	}
}
