package registry

import (
	"errors"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romilpunetha/tao/internal/astutil"
	"github.com/romilpunetha/tao/internal/naming"
)

const testModule = "example.com/app"

func mustNames(t *testing.T, schema string) naming.Names {
	t.Helper()
	names, err := naming.Derive(schema)
	require.NoError(t, err)
	return names
}

// seededDocs returns the seed documents keyed by path.
func seededDocs(t *testing.T, l Layout) map[string]*Document {
	t.Helper()
	seeds, err := Seeds(l)
	require.NoError(t, err)

	docs := make(map[string]*Document, len(seeds))
	for _, s := range seeds {
		docs[s.Path] = NewDocument(s.Path, s.Content)
	}
	return docs
}

func applyAll(t *testing.T, docs map[string]*Document, steps []Step) int {
	t.Helper()
	changed := 0
	for _, step := range steps {
		doc, ok := docs[step.Path]
		require.True(t, ok, "no document for %s", step.Path)
		ok, err := doc.Apply(step)
		require.NoError(t, err, step.Rule.Registry)
		if ok {
			changed++
		}
	}
	return changed
}

func TestPatch_AppendsAfterRegion(t *testing.T) {
	doc := "header\nconst (\n\tA EntityType = iota\n\tB\n)\nfooter\n"

	out, changed, err := Patch(doc, EnumConst, "\tC\n")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "header\nconst (\n\tA EntityType = iota\n\tB\n\tC\n)\nfooter\n", out)
}

func TestPatch_Idempotent(t *testing.T) {
	doc := "thrift_files:\n  - \"schemas/a.thrift\"\nother: 1\n"
	entry := "  - \"schemas/b.thrift\"\n"

	once, changed, err := Patch(doc, ManifestFiles, entry)
	require.NoError(t, err)
	require.True(t, changed)

	twice, changed, err := Patch(once, ManifestFiles, entry)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "b.thrift"))
}

func TestPatch_PreservesBytesOutsideRegion(t *testing.T) {
	prefix := "# keep me\r\n\n  odd   spacing\n"
	suffix := "\nafter:\n  - x\n# trailing comment without newline"
	doc := prefix + "thrift_files:\n  - \"a\"\n" + suffix
	entry := "  - \"b\"\n"

	out, changed, err := Patch(doc, ManifestFiles, entry)
	require.NoError(t, err)
	require.True(t, changed)

	assert.True(t, strings.HasPrefix(out, prefix+"thrift_files:\n  - \"a\"\n"))
	assert.True(t, strings.HasSuffix(out, entry+suffix))
	assert.Equal(t, len(doc)+len(entry), len(out))
}

func TestPatch_AnchorMissing(t *testing.T) {
	doc := "package models\n\nconst x = 1\n"

	out, changed, err := Patch(doc, EnumConst, "\tEntityTypeEntWidget\n")
	require.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, doc, out)

	var anchorErr *AnchorNotFoundError
	require.True(t, errors.As(err, &anchorErr))
	assert.Equal(t, "EntityType enum", anchorErr.Registry)
	assert.Equal(t, EnumConst.Anchor, anchorErr.Anchor)
}

func TestPatch_AnchorCheckedBeforePresence(t *testing.T) {
	// The entry text exists, but the block it belongs to does not.
	doc := "package models\n\n\tEntityTypeEntWidget\n"

	_, _, err := Patch(doc, EnumConst, "\tEntityTypeEntWidget\n")
	var anchorErr *AnchorNotFoundError
	assert.True(t, errors.As(err, &anchorErr))
}

func TestPatch_InvalidPattern(t *testing.T) {
	_, _, err := Patch("x", Rule{Registry: "broken", Anchor: "("}, "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid anchor pattern")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		region string
		sep    string
		want   string
	}{
		{"no separator", "a\n", "", "a\n"},
		{"already separated", "{\n\ta,\n", ",", "{\n\ta,\n"},
		{"opening brace", "list{\n", ",", "list{\n"},
		{"opening bracket", "[ ", ",", "[ "},
		{"opening paren", "(", ",", "("},
		{"colon", "files:\n", ",", "files:\n"},
		{"missing separator", "{\n\ta\n", ",", "{\n\ta,\n"},
		{"missing separator keeps whitespace", "{a  \t", ",", "{a,  \t"},
		{"whitespace only", " \n", ",", " \n"},
		{"marker comment after opener", "{\n\t// taogen:registered\n", ",", "{\n\t// taogen:registered\n"},
		{"marker comment after entry", "{\n\t// taogen:registered\n\ta\n", ",", "{\n\t// taogen:registered\n\ta,\n"},
		{"comment after unseparated entry", "{\n\ta\n\t// note\n", ",", "{\n\ta,\n\t// note\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.region, tt.sep))
		})
	}
}

func TestPatch_SeparatorInsertedOnce(t *testing.T) {
	doc := "var Registered = []models.EntityType{models.EntityTypeA}\n"

	out, changed, err := Patch(doc, EntitiesRegistered, "\tmodels.EntityTypeB,\n")
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, "var Registered = []models.EntityType{models.EntityTypeA,\n\tmodels.EntityTypeB,\n}\n", out)
	assert.NoError(t, astutil.ValidateSyntax([]byte("package m\n\n"+out)))
}

func TestPresent(t *testing.T) {
	doc := "a\n\t  case X:\n\t\treturn \"x\"\n"

	assert.True(t, Present(doc, "\n\tcase X:\n\t\treturn \"other\"\n"))
	assert.False(t, Present(doc, "\tcase XY:\n"))
	assert.False(t, Present(doc, "case"), "partial lines do not count")
	assert.True(t, Present(doc, "  \n"), "blank entries are trivially present")
}

func TestPresent_IgnoresAlignment(t *testing.T) {
	doc := "type (\n\tEntUser        = ent_user.EntUser\n\tEntWidgetThing = ent_widget_thing.EntWidgetThing\n)\n"

	assert.True(t, Present(doc, "\tEntUser = ent_user.EntUser\n"))
	assert.True(t, Present(doc, "\tEntWidgetThing = ent_widget_thing.EntWidgetThing\n"))
	assert.False(t, Present(doc, "\tEntUs = ent_user.EntUser\n"))
	assert.False(t, Present(doc, "\tEntUser = ent_user.EntUse\n"))
}

func TestPatch_FallbackRecreatesImportGroup(t *testing.T) {
	doc := "// Package models is generated.\npackage models\n\n// AssociationType names an edge kind.\ntype AssociationType string\n"

	out, changed, err := Patch(doc, ModelsImport, "\t\"example.com/app/gen-go/ent_user\"\n")
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, "// Package models is generated.\npackage models\n\nimport (\n\t\"example.com/app/gen-go/ent_user\"\n)\n\n// AssociationType names an edge kind.\ntype AssociationType string\n", out)
	require.NoError(t, astutil.ValidateSyntax([]byte(out)))

	// The recreated group is the anchor from now on.
	out, changed, err = Patch(out, ModelsImport, "\t\"example.com/app/gen-go/ent_post\"\n")
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out, "import (\n\t\"example.com/app/gen-go/ent_user\"\n\t\"example.com/app/gen-go/ent_post\"\n)\n")
	assert.Equal(t, 1, strings.Count(out, "import ("))
}

func TestPatch_FallbackRecreatesTypeGroup(t *testing.T) {
	doc := "package models\n\ntype AssociationType string\n"

	out, changed, err := Patch(doc, ModelsExport, "\tEntUser = ent_user.EntUser\n")
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, "package models\n\ntype AssociationType string\n\ntype (\n\tEntUser = ent_user.EntUser\n)\n", out)

	out, changed, err = Patch(out, ModelsExport, "\tEntUser = ent_user.EntUser\n")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, strings.Count(out, "type ("))
}

func TestPatch_NoFallbackForEnum(t *testing.T) {
	_, _, err := Patch("package models\n", EnumConst, "\tEntityTypeEntUser\n")
	var anchorErr *AnchorNotFoundError
	require.True(t, errors.As(err, &anchorErr))
}

func TestDocument_ApplyFillsPath(t *testing.T) {
	doc := NewDocument("internal/models/models.go", []byte("package models\n"))

	_, err := doc.Apply(Step{Rule: EnumConst, Path: doc.Path, Entry: "\tEntityTypeX\n"})

	var anchorErr *AnchorNotFoundError
	require.True(t, errors.As(err, &anchorErr))
	assert.Equal(t, "internal/models/models.go", anchorErr.Path)
	assert.Contains(t, err.Error(), "internal/models/models.go")
	assert.False(t, doc.Changed())
}

func TestSteps_Order(t *testing.T) {
	l := DefaultLayout(testModule)
	steps := Steps(mustNames(t, "EntWidgetSchema"), l)

	var got []string
	for _, s := range steps {
		got = append(got, s.Rule.Registry)
	}
	assert.Equal(t, []string{
		"EntityType enum",
		"EntityType String",
		"Thrift manifest",
		"models imports",
		"models exports",
		"entities registration",
		"entities exports",
	}, got)

	assert.Equal(t, "\tEntityTypeEntWidget\n", steps[0].Entry)
	assert.Equal(t, "\tcase EntityTypeEntWidget:\n\t\treturn \"ent_widget\"\n", steps[1].Entry)
	assert.Equal(t, "  - \"schemas/ent_widget.thrift\"\n", steps[2].Entry)
	assert.Equal(t, "\t\"example.com/app/gen-go/tao_db/schemas/ent_widget\"\n", steps[3].Entry)
	assert.Equal(t, "\tEntWidget = ent_widget.EntWidget\n", steps[4].Entry)
	assert.Equal(t, "\tmodels.EntityTypeEntWidget,\n", steps[5].Entry)
	assert.Equal(t, "\tEntWidget = models.EntWidget\n", steps[6].Entry)
}

func TestSteps_AgainstSeeds(t *testing.T) {
	l := DefaultLayout(testModule)
	docs := seededDocs(t, l)

	changed := applyAll(t, docs, Steps(mustNames(t, "EntWidgetSchema"), l))
	assert.Equal(t, 7, changed)

	for path, doc := range docs {
		require.NoError(t, Verify(doc), path)
	}
	require.NoError(t, VerifyManifest([]byte(docs[l.Manifest].Content), "schemas/ent_widget.thrift"))

	enum := docs[l.EntityTypes].Content
	assert.Contains(t, enum, "\tEntityTypeUnknown EntityType = iota\n\tEntityTypeEntWidget\n)")
	assert.Contains(t, enum, "\tcase EntityTypeEntWidget:\n\t\treturn \"ent_widget\"\n\t}")

	types, err := astutil.EntityTypes([]byte(enum))
	require.NoError(t, err)
	assert.Equal(t, []astutil.EntityType{
		{Const: "EntityTypeUnknown", Tag: "unknown"},
		{Const: "EntityTypeEntWidget", Tag: "ent_widget"},
	}, types)

	models := docs[l.Models].Content
	assert.Contains(t, models, "import (\n\t\"example.com/app/gen-go/tao_db/schemas/ent_widget\"\n)")
	assert.Contains(t, models, "\tEntWidget = ent_widget.EntWidget\n")
	assert.Contains(t, models, "// taogen:records")
	assert.Equal(t, 1, strings.Count(models, "type ("))

	entities := docs[l.EntitiesRegistry].Content
	assert.Contains(t, entities, "// taogen:registered\n\tmodels.EntityTypeEntWidget,\n}")
	assert.Contains(t, entities, "\tEntWidget = models.EntWidget\n")
	assert.Equal(t, 1, strings.Count(entities, "type ("))
}

func TestSteps_SecondEntityAndRerun(t *testing.T) {
	l := DefaultLayout(testModule)
	docs := seededDocs(t, l)

	applyAll(t, docs, Steps(mustNames(t, "EntUserSchema"), l))
	applyAll(t, docs, Steps(mustNames(t, "EntPostSchema"), l))

	snapshot := make(map[string]string, len(docs))
	for path, doc := range docs {
		snapshot[path] = doc.Content
	}

	assert.Zero(t, applyAll(t, docs, Steps(mustNames(t, "EntUserSchema"), l)))
	assert.Zero(t, applyAll(t, docs, Steps(mustNames(t, "EntPostSchema"), l)))
	for path, doc := range docs {
		assert.Equal(t, snapshot[path], doc.Content, path)
		require.NoError(t, Verify(doc), path)
	}

	m, err := ParseManifest([]byte(docs[l.Manifest].Content))
	require.NoError(t, err)
	assert.Equal(t, []string{"schemas/ent_user.thrift", "schemas/ent_post.thrift"}, m.ThriftFiles)
	assert.Equal(t, "gen-go", m.Out)

	entities := docs[l.EntitiesRegistry].Content
	assert.Contains(t, entities, "\tmodels.EntityTypeEntUser,\n\tmodels.EntityTypeEntPost,\n}")
}

// gofmtDocs rewrites every Go document the way gofmt would.
func gofmtDocs(t *testing.T, docs map[string]*Document) {
	t.Helper()
	for path, doc := range docs {
		if filepath.Ext(path) != ".go" {
			continue
		}
		out, err := format.Source([]byte(doc.Content))
		require.NoError(t, err, path)
		doc.Content = string(out)
	}
}

func TestSteps_RerunAfterGofmt(t *testing.T) {
	l := DefaultLayout(testModule)
	docs := seededDocs(t, l)

	applyAll(t, docs, Steps(mustNames(t, "EntUserSchema"), l))
	applyAll(t, docs, Steps(mustNames(t, "EntWidgetThingSchema"), l))
	gofmtDocs(t, docs)

	models := docs[l.Models].Content
	require.Contains(t, models, "EntUser        = ent_user.EntUser", "gofmt aligns the alias group")

	snapshot := make(map[string]string, len(docs))
	for path, doc := range docs {
		snapshot[path] = doc.Content
	}

	assert.Zero(t, applyAll(t, docs, Steps(mustNames(t, "EntUserSchema"), l)))
	assert.Zero(t, applyAll(t, docs, Steps(mustNames(t, "EntWidgetThingSchema"), l)))
	for path, doc := range docs {
		assert.Equal(t, snapshot[path], doc.Content, path)
		require.NoError(t, Verify(doc), path)
	}
}

func TestSteps_AgainstFormattedSeeds(t *testing.T) {
	l := DefaultLayout(testModule)
	docs := seededDocs(t, l)
	gofmtDocs(t, docs)

	assert.Equal(t, 7, applyAll(t, docs, Steps(mustNames(t, "EntUserSchema"), l)))
	gofmtDocs(t, docs)
	assert.Equal(t, 7, applyAll(t, docs, Steps(mustNames(t, "EntPostSchema"), l)))
	gofmtDocs(t, docs)

	for path, doc := range docs {
		require.NoError(t, Verify(doc), path)
	}

	models := docs[l.Models].Content
	assert.Equal(t, 1, strings.Count(models, "import ("))
	assert.Equal(t, 1, strings.Count(models, "type ("))
	assert.Contains(t, models, "EntPost = ent_post.EntPost")
	assert.Contains(t, models, "EntUser = ent_user.EntUser")

	entities := docs[l.EntitiesRegistry].Content
	assert.Contains(t, entities, "\tmodels.EntityTypeEntUser,\n\tmodels.EntityTypeEntPost,\n}")
	assert.Equal(t, 1, strings.Count(entities, "type ("))
}

func TestSteps_AfterFormatterDropsGroups(t *testing.T) {
	l := DefaultLayout(testModule)
	docs := seededDocs(t, l)

	// goimports deletes empty import blocks and gofmt keeps empty type blocks,
	// but a user may remove either by hand.
	docs[l.Models].Content = "// Package models declares records.\npackage models\n\ntype AssociationType string\n"

	assert.Equal(t, 7, applyAll(t, docs, Steps(mustNames(t, "EntUserSchema"), l)))
	models := docs[l.Models].Content
	assert.Contains(t, models, "package models\n\nimport (\n\t\"example.com/app/gen-go/tao_db/schemas/ent_user\"\n)\n")
	assert.Contains(t, models, "\ntype (\n\tEntUser = ent_user.EntUser\n)\n")
	require.NoError(t, Verify(docs[l.Models]))
}

func TestVerify_RejectsBrokenGo(t *testing.T) {
	doc := NewDocument("internal/models/models.go", []byte("package models\n\nimport (\n"))
	err := Verify(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid Go")
}

func TestVerify_RejectsRedeclaredAlias(t *testing.T) {
	src := "package models\n\ntype (\n\tEntUser        = ent_user.EntUser\n\tEntWidgetThing = ent_widget_thing.EntWidgetThing\n\tEntUser = ent_user.EntUser\n)\n"
	err := Verify(NewDocument("internal/models/models.go", []byte(src)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EntUser redeclared")
}

func TestVerifyManifest_MissingEntry(t *testing.T) {
	err := VerifyManifest([]byte("thrift_files:\n  - a.thrift\n"), "b.thrift")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not list b.thrift")
}

func TestSeed_WritesOnlyMissingFiles(t *testing.T) {
	root := t.TempDir()
	l := DefaultLayout(testModule)

	custom := []byte("# hand written\nthrift_files:\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "thrift.yml"), custom, 0o644))

	created, err := Seed(root, l)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{l.EntityTypes, l.Models, l.EntitiesRegistry}, created)

	got, err := os.ReadFile(filepath.Join(root, "thrift.yml"))
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	created, err = Seed(root, l)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestSeeds_AreValid(t *testing.T) {
	l := DefaultLayout(testModule)
	seeds, err := Seeds(l)
	require.NoError(t, err)
	require.Len(t, seeds, 4)

	for _, s := range seeds {
		require.NoError(t, Verify(NewDocument(s.Path, s.Content)), s.Path)
	}

	entities := string(seeds[2].Content)
	assert.Contains(t, entities, "package entities\n")
	assert.Contains(t, entities, "\"example.com/app/internal/models\"")
}
