// Package generator applies a planned set of file changes to disk.
//
// Every change is an Operation. Execute validates all of them before any is
// run, then stages their writes in a Transaction and commits it:
//
//	ops := []generator.Operation{
//	    &generator.WriteFileOp{Path: "schemas/ent_user.thrift", Content: schema, Mode: 0o644},
//	    &generator.PatchFileOp{Path: "thrift.yml", Before: before, After: after},
//	}
//	err := generator.Execute(ctx, ops, generator.ExecuteOptions{})
//
// If any write fails, files already written are restored to their previous
// contents and files that did not exist are removed, along with any
// directories the commit created.
//
// Existing files with different content are handled by a Resolver, which
// decides per file whether to overwrite, skip or cancel, either from flags
// (--force, --skip) or by asking through an interactive menu.
package generator
