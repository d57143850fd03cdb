// Package eval computes boolean results for validated rule trees.
//
// Evaluation is synchronous and side-effect-free with respect to its
// own data: predicate implementations may only read the caller's state
// snapshot, never mutate it. And/Or short-circuit in declaration order,
// so later children are not invoked once the result is decided.
//
// The evaluator only accepts *validate.Validated trees. Calling it with
// anything else is a programming error surfaced as an
// INVARIANT_VIOLATION runtime error, not a recoverable condition.
package eval

import (
	"github.com/PeerInfinity/reachrules/internal/rule"
	"github.com/PeerInfinity/reachrules/internal/validate"
)

// State is the caller-supplied snapshot of player/world status
// (inventory counts, flags, settings) that predicate implementations
// consult. It is opaque to the engine and read-only during a single
// evaluation call.
type State any

// Fingerprinter is implemented by states that can summarize every
// field a predicate could read into a stable identity string. Only
// fingerprintable states participate in memoization; without a
// fingerprint the safe default is no caching at all.
type Fingerprinter interface {
	Fingerprint() string
}

// PredicateFunc is a helper implementation: a pure function of the
// call's literal arguments and the state snapshot. Implementations
// must have no observable side effects beyond reading state.
type PredicateFunc func(args []rule.Value, state State) bool

// Bindings supplies predicate implementations by helper name. A game
// adapter is the canonical implementation; the evaluator is
// polymorphic over anything providing this capability.
type Bindings interface {
	// Impl returns the implementation for a helper name.
	Impl(name string) (PredicateFunc, bool)
}

// Evaluator evaluates validated rule trees against state snapshots.
//
// Safe for concurrent use: evaluation mutates nothing but the optional
// memo cache, which is internally synchronized.
type Evaluator struct {
	bindings Bindings
	memo     *memoCache // nil when memoization is disabled
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMemo enables result memoization keyed on (tree hash, state
// fingerprint). Results are cached only while the fingerprint stays
// the same; any change invalidates the whole cache. States that do not
// implement Fingerprinter bypass the cache entirely.
func WithMemo() Option {
	return func(e *Evaluator) {
		e.memo = newMemoCache()
	}
}

// New creates an Evaluator over the given bindings.
func New(bindings Bindings, opts ...Option) *Evaluator {
	e := &Evaluator{bindings: bindings}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate computes the boolean result of a validated tree against a
// state snapshot.
//
// Determinism: for a fixed tree and a fixed state the result is
// identical across repeated calls. The only error path is
// INVARIANT_VIOLATION (nil/unvalidated tree, or a helper without a
// binding - a configuration defect that adapter construction should
// have caught).
func (e *Evaluator) Evaluate(v *validate.Validated, state State) (bool, error) {
	if v == nil || v.Root() == nil {
		return false, invariantViolation("evaluate called with unvalidated tree")
	}

	if e.memo != nil {
		if fp, ok := state.(Fingerprinter); ok {
			return e.evaluateMemoized(v, state, fp.Fingerprint())
		}
	}

	return e.eval(v.Root(), state)
}

func (e *Evaluator) evaluateMemoized(v *validate.Validated, state State, fingerprint string) (bool, error) {
	if result, hit := e.memo.get(v.Hash(), fingerprint); hit {
		return result, nil
	}
	result, err := e.eval(v.Root(), state)
	if err != nil {
		return false, err
	}
	e.memo.put(v.Hash(), fingerprint, result)
	return result, nil
}

// eval walks the tree with short-circuit semantics.
func (e *Evaluator) eval(n rule.Node, state State) (bool, error) {
	switch node := n.(type) {
	case rule.Call:
		impl, ok := e.bindings.Impl(node.Name)
		if !ok {
			return false, &RuntimeError{
				Code:    CodeInvariantViolation,
				Message: "no implementation bound for helper",
				Helper:  node.Name,
			}
		}
		return impl(node.Args, state), nil

	case rule.And:
		for _, child := range node.Children {
			ok, err := e.eval(child, state)
			if err != nil {
				return false, err
			}
			if !ok {
				// Remaining children are not evaluated.
				return false, nil
			}
		}
		return true, nil

	case rule.Or:
		for _, child := range node.Children {
			ok, err := e.eval(child, state)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case rule.Not:
		ok, err := e.eval(node.Child, state)
		if err != nil {
			return false, err
		}
		return !ok, nil

	default:
		return false, invariantViolation("unknown node type %T in validated tree", n)
	}
}
