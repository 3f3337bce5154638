package astutil

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// EntityType is one constant of the EntityType enum with the tag its String
// method returns. Tag is empty when the switch has no case for it.
type EntityType struct {
	Const string
	Tag   string
}

// EntityTypes lists the constants declared with type EntityType, in source
// order, joined with the tags from the String switch.
func EntityTypes(content []byte) ([]EntityType, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", content, 0)
	if err != nil {
		return nil, fmt.Errorf("parsing entity types: %w", err)
	}

	consts := enumConsts(file, "EntityType")
	tags := stringTags(file, "EntityType")

	out := make([]EntityType, 0, len(consts))
	for _, name := range consts {
		out = append(out, EntityType{Const: name, Tag: tags[name]})
	}
	return out, nil
}

// enumConsts returns the names of an iota enum. Specs without an explicit type
// continue the type of the previous spec in the block.
func enumConsts(file *ast.File, typeName string) []string {
	var names []string
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.CONST {
			continue
		}

		inEnum := false
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			if vs.Type != nil {
				ident, ok := vs.Type.(*ast.Ident)
				inEnum = ok && ident.Name == typeName
			} else if len(vs.Values) > 0 {
				inEnum = false
			}
			if !inEnum {
				continue
			}
			for _, n := range vs.Names {
				if n.Name != "_" {
					names = append(names, n.Name)
				}
			}
		}
	}
	return names
}

// stringTags maps each case of typeName's String switch to the string literal
// it returns.
func stringTags(file *ast.File, typeName string) map[string]string {
	tags := make(map[string]string)

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name.Name != "String" || !hasReceiver(fn, typeName) || fn.Body == nil {
			continue
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			clause, ok := n.(*ast.CaseClause)
			if !ok {
				return true
			}
			tag, ok := returnedLiteral(clause.Body)
			if !ok {
				return false
			}
			for _, expr := range clause.List {
				if ident, ok := expr.(*ast.Ident); ok {
					tags[ident.Name] = tag
				}
			}
			return false
		})
	}
	return tags
}

func hasReceiver(fn *ast.FuncDecl, typeName string) bool {
	if fn.Recv == nil || len(fn.Recv.List) != 1 {
		return false
	}
	switch t := fn.Recv.List[0].Type.(type) {
	case *ast.Ident:
		return t.Name == typeName
	case *ast.StarExpr:
		ident, ok := t.X.(*ast.Ident)
		return ok && ident.Name == typeName
	}
	return false
}

func returnedLiteral(body []ast.Stmt) (string, bool) {
	for _, stmt := range body {
		ret, ok := stmt.(*ast.ReturnStmt)
		if !ok || len(ret.Results) != 1 {
			continue
		}
		lit, ok := ret.Results[0].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			continue
		}
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}
