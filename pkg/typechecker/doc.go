// Package typechecker assigns types to AirScript programs without
// annotations. It removes pipe and compose sugar, registers declared sum
// types, resolves names, rejects recursive definitions and runs level-based
// Hindley-Milner inference over the result. The output is a TypedScript the
// pattern-match compiler and the evaluator consume.
package typechecker
