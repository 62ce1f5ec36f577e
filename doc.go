package rekodo

// Package rekodo provides:
//
// - Declarative records: a ClassSchema of typed, validated fields backing a
//   single key/value store per instance (Record)
// - A composable Validator algebra (convert -> isa -> verify) with fluent
//   combinators (AndThen/OrElse/AtLeast/OneOf/Strip/...)
// - Class-tagged JSON and YAML serialization with a process-wide type
//   registry for non-native values (Set, FrozenSet, time.Time, ...)
// - A stable error model via Issues (field path, code, message)
//
// Design policy:
// - Keep the public API in the root package; schemas are built once, at
//   program start, and frozen.
// - Place ready-made registry codecs under codec/ and the CLI under cmd/rekodo.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  msg := rekodo.NewSchema("mail.Message").
//      Field("subject", rekodo.Is[string]().Strip("")).
//      Field("size", rekodo.Int().AtLeast(0)).Default(0).
//      MustBuild()
//
//  r := rekodo.NewRecord(msg)
//  _ = r.Set("subject", "  hello ")
//  wire, _ := r.ToJSON()
//  r2, _ := rekodo.NewFromJSON(msg, wire)
