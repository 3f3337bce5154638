// Package astutil parses and inspects the Go registry files the generator
// patches. Patches are text splices; this package is how their results are
// checked.
package astutil

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
)

// validateAST checks a parsed file for nodes that parse but cannot be printed
// back, such as empty identifiers produced by a bad splice.
func validateAST(file *ast.File) error {
	var errors []string

	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.Ident:
			if node.Name == "" {
				errors = append(errors, "found empty identifier")
			}
		case *ast.ValueSpec:
			if len(node.Names) == 0 {
				errors = append(errors, "found value spec without names")
			}
		case *ast.TypeSpec:
			if node.Type == nil {
				errors = append(errors, fmt.Sprintf("type %s has no type", node.Name.Name))
			}
		case *ast.ImportSpec:
			if node.Path == nil || len(node.Path.Value) < 2 {
				errors = append(errors, "found import with empty path")
			}
		}
		return true
	})

	errors = append(errors, redeclared(file)...)

	if len(errors) > 0 {
		return fmt.Errorf("AST validation failed: %v", errors)
	}
	return nil
}

// redeclared reports package-level names and import paths that appear more
// than once in the file. Both parse fine but fail to compile.
func redeclared(file *ast.File) []string {
	var errors []string
	names := make(map[string]bool)
	paths := make(map[string]bool)

	declare := func(name string) {
		if name == "_" || name == "init" {
			return
		}
		if names[name] {
			errors = append(errors, fmt.Sprintf("%s redeclared", name))
		}
		names[name] = true
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				declare(d.Name.Name)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch sp := spec.(type) {
				case *ast.ImportSpec:
					if sp.Path == nil {
						continue
					}
					if paths[sp.Path.Value] {
						errors = append(errors, fmt.Sprintf("import %s repeated", sp.Path.Value))
					}
					paths[sp.Path.Value] = true
				case *ast.TypeSpec:
					declare(sp.Name.Name)
				case *ast.ValueSpec:
					for _, n := range sp.Names {
						declare(n.Name)
					}
				}
			}
		}
	}
	return errors
}

// ValidateSyntax parses content to ensure it is valid Go.
func ValidateSyntax(content []byte) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", content, parser.AllErrors)
	if err != nil {
		return fmt.Errorf("syntax validation failed: %w", err)
	}
	return validateAST(file)
}
