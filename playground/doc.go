// Package playground sequences one evaluation run per edit.
//
// A run compiles the WAT source, decodes the binary into the structure pane,
// evaluates the host script into bindings, instantiates the module against
// them and calls its "main" export. Every console write is gated on the run
// still being current:
//
//	pg.Trigger(ctx, SourcePair{WAT: wat1, Host: host}) // run 1, still executing
//	pg.Trigger(ctx, SourcePair{WAT: wat2, Host: host}) // run 2 supersedes run 1
//
// Run 1 keeps going but nothing it prints reaches the console. The structure
// pane is written without that check unless Config.AST.Guard is set.
package playground
