package astutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entityTypesSrc = `package models

import "fmt"

type EntityType int

const (
	EntityTypeUnknown EntityType = iota
	EntityTypeEntUser
	EntityTypeEntPost
)

const maxTags = 8

func (t EntityType) String() string {
	switch t {
	case EntityTypeUnknown:
		return "unknown"
	case EntityTypeEntUser:
		return "ent_user"
	}
	return fmt.Sprintf("entity_type(%d)", int(t))
}
`

func TestValidateSyntax(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"valid file", entityTypesSrc, false},
		{"empty groups", "package m\n\nimport (\n)\n\ntype (\n)\n", false},
		{"missing brace", "package m\n\nfunc f() {\n", true},
		{"dangling comma", "package m\n\nvar x = []int{1,,2}\n", true},
		{"no package clause", "func f() {}\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSyntax([]byte(tt.src))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "syntax validation failed")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateSyntax_Redeclared(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "alias declared twice across reformatting",
			src:  "package m\n\ntype (\n\tEntUser        = int\n\tEntWidgetThing = int\n\tEntUser = int\n)\n",
			want: "EntUser redeclared",
		},
		{
			name: "const repeated in enum",
			src:  "package m\n\nconst (\n\tA = iota\n\tB\n\tA\n)\n",
			want: "A redeclared",
		},
		{
			name: "var and func share a name",
			src:  "package m\n\nvar f = 1\n\nfunc f() {}\n",
			want: "f redeclared",
		},
		{
			name: "import repeated",
			src:  "package m\n\nimport (\n\t\"fmt\"\n\t\"fmt\"\n)\n",
			want: `import "fmt" repeated`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSyntax([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateSyntax_AllowsRepeatableNames(t *testing.T) {
	src := `package m

var _ = 1
var _ = 2

func init() {}
func init() {}

type T struct{}

func (T) String() string { return "" }
func String() string     { return "" }
`
	require.NoError(t, ValidateSyntax([]byte(src)))
}

func TestEntityTypes(t *testing.T) {
	got, err := EntityTypes([]byte(entityTypesSrc))
	require.NoError(t, err)

	want := []EntityType{
		{Const: "EntityTypeUnknown", Tag: "unknown"},
		{Const: "EntityTypeEntUser", Tag: "ent_user"},
		{Const: "EntityTypeEntPost", Tag: ""},
	}
	assert.Equal(t, want, got)
}

func TestEntityTypes_PointerReceiverAndOtherTypes(t *testing.T) {
	src := `package models

type EntityType int
type Color int

const (
	Red Color = iota
	Blue
)

const (
	EntityTypeA EntityType = iota
	_
	EntityTypeB
)

func (t *EntityType) String() string {
	switch *t {
	case EntityTypeA:
		return "a"
	case EntityTypeB:
		return "b"
	}
	return ""
}
`
	got, err := EntityTypes([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []EntityType{{Const: "EntityTypeA", Tag: "a"}, {Const: "EntityTypeB", Tag: "b"}}, got)
}

func TestEntityTypes_ParseError(t *testing.T) {
	_, err := EntityTypes([]byte("package models\nconst ("))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing entity types")
}
