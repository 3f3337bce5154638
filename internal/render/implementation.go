package render

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/romilpunetha/tao/internal/naming"
)

// DefaultGenAllLimit is the number of records GenAll loads when the caller
// passes no positive limit.
const DefaultGenAllLimit = 100

// Implementation renders the Go file holding the object-store operations for
// one entity. The operations treat the record as an opaque serialized value,
// so the field list plays no part here.
//
// The generated code expects the entities package to provide EntityContext
// (with a Store), Serialize, Deserialize and ErrNotFound, and the models
// package to provide EntityType and AssociationType.
func Implementation(names naming.Names, opts Options) ([]byte, error) {
	if opts.ModelsImport == "" {
		return nil, fmt.Errorf("rendering implementation for %s: models import path is required", names.Entity)
	}
	pkg := opts.Package
	if pkg == "" {
		pkg = "entities"
	}

	g := implGen{
		models: opts.ModelsImport,
		entity: names.Entity,
		query:  names.Entity + "Query",
		entry:  names.Entity + "Entry",
		tag:    names.TypeConst,
	}

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by taogen. DO NOT EDIT.")
	f.ImportName(opts.ModelsImport, "models")

	f.Commentf("%s is a %s loaded from the object store together with its id.", g.entry, g.entity)
	f.Type().Id(g.entry).Struct(
		jen.Id("ID").Int64(),
		jen.Id("Record").Op("*").Id(g.entity),
	)

	f.Commentf("%s runs object store operations for %s records.", g.query, g.entity)
	f.Type().Id(g.query).Struct(
		jen.Id("ec").Op("*").Id("EntityContext"),
	)

	f.Commentf("%s returns the %s operations bound to ec.", names.Plural, g.entity)
	f.Func().Id(names.Plural).Params(jen.Id("ec").Op("*").Id("EntityContext")).Op("*").Id(g.query).Block(
		jen.Return(jen.Op("&").Id(g.query).Values(jen.Dict{jen.Id("ec"): jen.Id("ec")})),
	)

	f.Commentf("EntityType returns the type tag stored with every %s.", g.entity)
	g.method(f, "EntityType").Params().Qual(g.models, "EntityType").Block(
		jen.Return(g.typeTag()),
	)

	g.genNullable(f)
	g.genMulti(f)
	g.genAll(f)
	g.genEnforce(f)
	g.create(f)
	g.update(f)
	g.delete(f)
	g.associations(f)
	g.createMany(f)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering implementation for %s: %w", names.Entity, err)
	}
	return buf.Bytes(), nil
}

type implGen struct {
	models string
	entity string
	query  string
	entry  string
	tag    string
}

func (g implGen) method(f *jen.File, name string) *jen.Statement {
	return f.Func().Params(jen.Id("q").Op("*").Id(g.query)).Id(name)
}

func (g implGen) typeTag() *jen.Statement {
	return jen.Qual(g.models, g.tag)
}

// typeString renders models.EntityTypeX.String().
func (g implGen) typeString() *jen.Statement {
	return g.typeTag().Dot("String").Call()
}

func (g implGen) store() *jen.Statement {
	return jen.Id("q").Dot("ec").Dot("Store")
}

func ctxParam() *jen.Statement {
	return jen.Id("ctx").Qual("context", "Context")
}

func returnOnErr(values ...jen.Code) *jen.Statement {
	return jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(values...))
}

func (g implGen) genNullable(f *jen.File) {
	f.Commentf("GenNullable loads the %s with the given id. It returns nil when no object", g.entity)
	f.Comment("exists or the stored object has another type.")
	g.method(f, "GenNullable").Params(ctxParam(), jen.Id("id").Int64()).Params(
		jen.Op("*").Id(g.entry), jen.Error(),
	).Block(
		jen.List(jen.Id("obj"), jen.Err()).Op(":=").Add(g.store()).Dot("GetObject").Call(jen.Id("ctx"), jen.Id("id")),
		returnOnErr(jen.Nil(), jen.Err()),
		jen.If(jen.Id("obj").Op("==").Nil().Op("||").Id("obj").Dot("Type").Op("!=").Add(g.typeString())).Block(
			jen.Return(jen.Nil(), jen.Nil()),
		),
		jen.Id("record").Op(":=").New(jen.Id(g.entity)),
		jen.If(
			jen.Err().Op(":=").Id("Deserialize").Call(jen.Id("obj").Dot("Data"), jen.Id("record")),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("decoding "+g.entity+" %d: %w"), jen.Id("id"), jen.Err())),
		),
		jen.Return(jen.Op("&").Id(g.entry).Values(jen.Dict{
			jen.Id("ID"):     jen.Id("obj").Dot("ID"),
			jen.Id("Record"): jen.Id("record"),
		}), jen.Nil()),
	)
}

func (g implGen) genMulti(f *jen.File) {
	f.Comment("GenMulti loads each id in order, skipping ids that resolve to nothing.")
	g.method(f, "GenMulti").Params(ctxParam(), jen.Id("ids").Index().Int64()).Params(
		jen.Index().Op("*").Id(g.entry), jen.Error(),
	).Block(
		jen.Id("entries").Op(":=").Make(jen.Index().Op("*").Id(g.entry), jen.Lit(0), jen.Len(jen.Id("ids"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("id")).Op(":=").Range().Id("ids")).Block(
			jen.List(jen.Id("entry"), jen.Err()).Op(":=").Id("q").Dot("GenNullable").Call(jen.Id("ctx"), jen.Id("id")),
			returnOnErr(jen.Nil(), jen.Err()),
			jen.If(jen.Id("entry").Op("!=").Nil()).Block(
				jen.Id("entries").Op("=").Append(jen.Id("entries"), jen.Id("entry")),
			),
		),
		jen.Return(jen.Id("entries"), jen.Nil()),
	)
}

func (g implGen) genAll(f *jen.File) {
	f.Commentf("GenAll loads up to limit %s records. A limit of zero or less means %d.", g.entity, DefaultGenAllLimit)
	g.method(f, "GenAll").Params(ctxParam(), jen.Id("limit").Int()).Params(
		jen.Index().Op("*").Id(g.entry), jen.Error(),
	).Block(
		jen.If(jen.Id("limit").Op("<=").Lit(0)).Block(
			jen.Id("limit").Op("=").Lit(DefaultGenAllLimit),
		),
		jen.List(jen.Id("ids"), jen.Err()).Op(":=").Add(g.store()).Dot("ListObjectIDs").Call(
			jen.Id("ctx"), g.typeString(), jen.Id("limit"),
		),
		returnOnErr(jen.Nil(), jen.Err()),
		jen.Return(jen.Id("q").Dot("GenMulti").Call(jen.Id("ctx"), jen.Id("ids"))),
	)
}

func (g implGen) genEnforce(f *jen.File) {
	f.Commentf("GenEnforce is GenNullable, failing with ErrNotFound when the %s does not exist.", g.entity)
	g.method(f, "GenEnforce").Params(ctxParam(), jen.Id("id").Int64()).Params(
		jen.Op("*").Id(g.entry), jen.Error(),
	).Block(
		jen.List(jen.Id("entry"), jen.Err()).Op(":=").Id("q").Dot("GenNullable").Call(jen.Id("ctx"), jen.Id("id")),
		returnOnErr(jen.Nil(), jen.Err()),
		jen.If(jen.Id("entry").Op("==").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit(g.entity+" with id %d: %w"), jen.Id("id"), jen.Id("ErrNotFound"))),
		),
		jen.Return(jen.Id("entry"), jen.Nil()),
	)
}

func (g implGen) create(f *jen.File) {
	f.Commentf("Create stores record as a new %s and returns its id.", g.entity)
	g.method(f, "Create").Params(ctxParam(), jen.Id("record").Op("*").Id(g.entity)).Params(
		jen.Int64(), jen.Error(),
	).Block(
		jen.List(jen.Id("data"), jen.Err()).Op(":=").Id("Serialize").Call(jen.Id("record")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Lit(0), jen.Qual("fmt", "Errorf").Call(jen.Lit("encoding "+g.entity+": %w"), jen.Err())),
		),
		jen.Return(g.store().Dot("CreateObject").Call(jen.Id("ctx"), g.typeString(), jen.Id("data"))),
	)
}

func (g implGen) update(f *jen.File) {
	f.Commentf("Update overwrites the %s stored at id.", g.entity)
	g.method(f, "Update").Params(ctxParam(), jen.Id("id").Int64(), jen.Id("record").Op("*").Id(g.entity)).Error().Block(
		jen.List(jen.Id("data"), jen.Err()).Op(":=").Id("Serialize").Call(jen.Id("record")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("encoding "+g.entity+" %d: %w"), jen.Id("id"), jen.Err())),
		),
		jen.Return(g.store().Dot("UpdateObject").Call(jen.Id("ctx"), jen.Id("id"), jen.Id("data"))),
	)
}

func (g implGen) delete(f *jen.File) {
	f.Commentf("Delete removes the %s stored at id.", g.entity)
	g.method(f, "Delete").Params(ctxParam(), jen.Id("id").Int64()).Error().Block(
		jen.Return(g.store().Dot("DeleteObject").Call(jen.Id("ctx"), jen.Id("id"))),
	)
}

func (g implGen) associations(f *jen.File) {
	f.Commentf("Associations returns the ids associated with the %s through assocType.", g.entity)
	g.method(f, "Associations").Params(
		ctxParam(), jen.Id("id").Int64(), jen.Id("assocType").Qual(g.models, "AssociationType"),
	).Params(jen.Index().Int64(), jen.Error()).Block(
		jen.Return(g.store().Dot("AssociationsByIndex").Call(jen.Id("ctx"), jen.Id("id"), jen.Id("assocType"), jen.Lit(0))),
	)
}

func (g implGen) createMany(f *jen.File) {
	f.Comment("CreateMany creates records in order and returns their ids. Records created")
	f.Comment("before a failure stay persisted; their ids are returned with the error.")
	g.method(f, "CreateMany").Params(ctxParam(), jen.Id("records").Index().Op("*").Id(g.entity)).Params(
		jen.Index().Int64(), jen.Error(),
	).Block(
		jen.Id("ids").Op(":=").Make(jen.Index().Int64(), jen.Lit(0), jen.Len(jen.Id("records"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("record")).Op(":=").Range().Id("records")).Block(
			jen.List(jen.Id("id"), jen.Err()).Op(":=").Id("q").Dot("Create").Call(jen.Id("ctx"), jen.Id("record")),
			returnOnErr(jen.Id("ids"), jen.Err()),
			jen.Id("ids").Op("=").Append(jen.Id("ids"), jen.Id("id")),
		),
		jen.Return(jen.Id("ids"), jen.Nil()),
	)
}
