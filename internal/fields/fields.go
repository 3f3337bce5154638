// Package fields models the attribute list of a generated entity: the Thrift
// field vocabulary, the default policy used when the caller supplies nothing,
// and the --fields flag syntax.
package fields

import (
	"fmt"
	"strings"
)

// Type is a Thrift base type.
type Type string

const (
	Bool   Type = "bool"
	Byte   Type = "byte"
	I16    Type = "i16"
	I32    Type = "i32"
	I64    Type = "i64"
	Double Type = "double"
	String Type = "string"
	Binary Type = "binary"
)

var validTypes = map[Type]bool{
	Bool: true, Byte: true, I16: true, I32: true, I64: true,
	Double: true, String: true, Binary: true,
}

// Valid reports whether t is part of the supported vocabulary.
func (t Type) Valid() bool {
	return validTypes[t]
}

// Names of the two timestamp fields every entity starts with.
const (
	CreatedTime = "created_time"
	UpdatedTime = "updated_time"
)

// Field is a single numbered Thrift field.
type Field struct {
	ID       int
	Name     string
	Type     Type
	Required bool
}

// Qualifier returns "required" or "optional".
func (f Field) Qualifier() string {
	if f.Required {
		return "required"
	}
	return "optional"
}

// String renders the field as id:name(type), with "?" marking optional fields.
func (f Field) String() string {
	opt := ""
	if !f.Required {
		opt = "?"
	}
	return fmt.Sprintf("%d:%s(%s%s)", f.ID, f.Name, f.Type, opt)
}

// Set is an ordered, append-only list of fields.
type Set []Field

// Timestamps returns the two fields every entity starts with.
func Timestamps() Set {
	return Set{
		{ID: 1, Name: CreatedTime, Type: I64, Required: true},
		{ID: 2, Name: UpdatedTime, Type: I64, Required: false},
	}
}

// Extend returns a copy of s with the given fields appended. IDs are assigned
// after the current last id, ignoring whatever the arguments carry.
func (s Set) Extend(extra ...Field) Set {
	next := 1
	if len(s) > 0 {
		next = s[len(s)-1].ID + 1
	}

	out := make(Set, 0, len(s)+len(extra))
	out = append(out, s...)
	for _, f := range extra {
		f.ID = next
		next++
		out = append(out, f)
	}
	return out
}

// Names returns the field names in order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Validate checks the structural shape of the set: ids start at 1 and are
// strictly increasing, names are unique identifiers, types are known, and the
// first two fields are the timestamps.
func (s Set) Validate() error {
	if len(s) < 2 || s[0].Name != CreatedTime || s[1].Name != UpdatedTime {
		return fmt.Errorf("field set must start with %s and %s", CreatedTime, UpdatedTime)
	}
	if !s[0].Required || s[1].Required {
		return fmt.Errorf("%s must be required and %s optional", CreatedTime, UpdatedTime)
	}

	seen := make(map[string]bool, len(s))
	prev := 0
	for _, f := range s {
		if f.ID <= prev {
			return fmt.Errorf("field %s: id %d is not greater than %d", f.Name, f.ID, prev)
		}
		prev = f.ID

		if !isIdentifier(f.Name) {
			return fmt.Errorf("field id %d: invalid name %q", f.ID, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = true

		if !f.Type.Valid() {
			return fmt.Errorf("field %s: unknown type %q", f.Name, f.Type)
		}
	}
	if s[0].ID != 1 {
		return fmt.Errorf("field ids must start at 1, got %d", s[0].ID)
	}
	return nil
}

// String renders the set for progress output.
func (s Set) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

// isIdentifier accepts lower snake case names: [a-z][a-z0-9_]*.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_' || (r >= '0' && r <= '9'):
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
