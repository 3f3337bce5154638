// Package registry keeps the project's hand-maintained registries in sync with
// the generated entities.
//
// There are four registries: the EntityType enum and its String method, the
// Thrift build manifest, the models re-exports, and the entities registration
// list. Each is patched by splicing an entry after the region an anchor
// pattern matches. Nothing outside that region is touched, and an entry whose
// first line already appears in the document is not added again. Whitespace
// runs compare equal, so a gofmt pass that aligns an alias group does not
// hide an existing entry.
//
// # Usage
//
// Steps lists the edits for one entity in a fixed order. Apply them to
// in-memory documents and verify the result before writing anything:
//
//	doc := registry.NewDocument(l.Models, content)
//	for _, step := range registry.Steps(names, l) {
//	    if step.Path != doc.Path {
//	        continue
//	    }
//	    if _, err := doc.Apply(step); err != nil {
//	        return err // *AnchorNotFoundError when the structure is missing
//	    }
//	}
//	if err := registry.Verify(doc); err != nil {
//	    return err
//	}
//
// # Seeds
//
// Seed writes an empty registry, anchors included, for each file that does
// not exist yet. Seeds are formatted the way goimports leaves them. Groups an
// anchor relies on carry a marker comment (// taogen:records), and the import
// and type groups are recreated after the package clause or at the end of the
// file when a formatter or a person has removed them.
package registry
