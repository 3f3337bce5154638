// Package thriftc runs the Thrift compiler over generated schemas so the Go
// records they declare exist before the project is built.
//
// # Usage
//
//	c := thriftc.New("thrift", root, "gen-go", thriftc.Options{Prefix: "thrift: "})
//	err := c.Compile(ctx, "schemas/ent_user.thrift")
//
// Compiler output is streamed line by line with the prefix, or hidden behind
// a spinner when Spinner is set. A missing compiler binary is reported with
// an install hint rather than a bare exec error.
package thriftc
