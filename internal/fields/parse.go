package fields

import (
	"fmt"
	"strings"
)

// Parse parses the --fields flag: "title:string,score:i32?,tags:binary".
// A trailing "?" marks the field optional. IDs are left zero; Resolve numbers
// them after the timestamps.
func Parse(spec string) ([]Field, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var out []Field
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		f, err := parseField(part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func parseField(spec string) (Field, error) {
	name, typ, ok := strings.Cut(spec, ":")
	if !ok {
		return Field{}, fmt.Errorf("invalid field spec %q: expected 'name:type'", spec)
	}

	name = strings.TrimSpace(name)
	typ = strings.TrimSpace(typ)
	if name == "" {
		return Field{}, fmt.Errorf("invalid field spec %q: empty field name", spec)
	}
	if name == CreatedTime || name == UpdatedTime {
		return Field{}, fmt.Errorf("invalid field spec %q: %s is always generated", spec, name)
	}

	required := true
	if strings.HasSuffix(typ, "?") {
		required = false
		typ = strings.TrimSuffix(typ, "?")
	}

	t := Type(typ)
	if !t.Valid() {
		return Field{}, fmt.Errorf("invalid field spec %q: unknown type %q (valid: bool, byte, i16, i32, i64, double, string, binary)", spec, typ)
	}
	if !isIdentifier(name) {
		return Field{}, fmt.Errorf("invalid field spec %q: name must be lower snake case", spec)
	}

	return Field{Name: name, Type: t, Required: required}, nil
}
