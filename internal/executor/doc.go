// Package executor executes query and mutation operations against a
// schema.Schema.
//
// # Execution Model
//
// Execution is synchronous and depth-first. Fields are collected from the
// selection set (aliases, fragments, inline fragments, @skip and @include),
// keeping request order and merging fields that share a response name. Each
// field then goes through:
//
//  1. Definition lookup on the parent object type. An unknown field records a
//     FIELD_NOT_FOUND error, its response key is null, and siblings continue.
//  2. Argument coercion through schema.CoerceInput, substituting variables.
//     A failure or a missing required argument fails only that field.
//  3. Resolution with the field's schema.Resolver, or by projecting the
//     same-named property of the parent value when the field has none.
//  4. Value completion.
//
// Mutation root fields run serially in request order. Query root fields run
// the same way; resolvers never execute concurrently within one request.
//
// # Value Completion
//
//   - Non-Null: complete the inner type. A null result records exactly one
//     NULLABILITY_ERROR and propagates null upwards.
//   - Null: nil results, including typed nils, produce null.
//   - List: complete each element with an index in the path. A null
//     propagating out of an element nulls the list.
//   - Leaf (Scalar/Enum): the type's Serialize function. A failure records a
//     COERCION_ERROR and the value becomes null.
//   - Object: collect subfields and recurse.
//
// # Errors and Partial Success
//
// A failed field becomes null. If its type is Non-Null the null propagates to
// the nearest nullable ancestor. When no nullable ancestor exists the root
// becomes null and Data is nil. Errors form one flat
// list in occurrence order. Each carries the response path and an
// extensions.code.
//
// Results are built from Object values, which encode as JSON with keys in
// request order.
package executor
