// Package rule defines the expression tree that encodes per-game
// accessibility logic.
//
// A rule is a boolean expression over named predicates ("helpers").
// Each game registers its own helper vocabulary; the tree itself is a
// closed tagged union so the validator and evaluator can match it
// exhaustively while the leaf vocabulary stays open.
//
// Node types:
//   - Call: invoke a named helper with literal arguments
//   - And:  all children must hold
//   - Or:   at least one child must hold
//   - Not:  negation of a single child
//
// Trees are immutable after validation. Structural identity is computed
// via canonical JSON (fixed field order, NFC-normalized strings, no
// floats) hashed with domain separation, so identical subtrees share a
// hash regardless of how they were constructed. The hash doubles as the
// memoization key component in the evaluator.
package rule
