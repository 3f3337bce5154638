// Package render produces the two artifacts generated for every entity: the
// Thrift schema describing its fields and the Go implementation of its
// object-store operations.
//
// Both renderers are pure; writing is left to the caller:
//
//	schema, err := render.Schema(names, set, opts)
//	impl, err := render.Implementation(names, opts)
//
// Schemas come from text/template files embedded in the package. The
// implementation is built with jennifer, so its imports and formatting are
// always valid Go.
//
// Renderer caches parsed templates by name. The registry package uses it for
// its seed files as well.
package render
