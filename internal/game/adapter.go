// Package game defines the pluggable per-game layer of the rule
// engine: the adapter bundling a helper registry with its
// implementation table, and the process-wide catalog game modules
// register into at load time.
//
// The engine core never special-cases a game by name - any module
// supplying {registry, implementations} is pluggable without engine
// changes.
package game

import (
	"fmt"

	"github.com/PeerInfinity/reachrules/internal/eval"
	"github.com/PeerInfinity/reachrules/internal/registry"
)

// Adapter supplies the helper registry and predicate implementations
// for one game. Construction is the only place game-specific logic
// (helper arities, runtime semantics) lives.
//
// Adapters are immutable after New and safe to share across
// goroutines.
type Adapter struct {
	name       string
	reg        *registry.Registry
	impls      map[string]eval.PredicateFunc
	parseState StateParserFunc // nil when the game has no state format
}

// StateParserFunc builds an evaluation state from a serialized
// document (e.g. a YAML snapshot). Games that provide one gain CLI
// `eval` support; the engine core does not require it.
type StateParserFunc func(data []byte) (eval.State, error)

// AdapterOption configures optional adapter capabilities.
type AdapterOption func(*Adapter)

// WithStateParser attaches a state-document parser to the adapter.
func WithStateParser(parse StateParserFunc) AdapterOption {
	return func(a *Adapter) {
		a.parseState = parse
	}
}

// New builds an adapter, checking the implementation table for
// completeness against the registry. A registered helper with no
// implementation, or an implementation for an unregistered name, is a
// configuration defect and fails here - never later, at evaluation
// time.
//
// The registry is frozen as a side effect: adapter construction marks
// the end of the game's load phase.
func New(name string, reg *registry.Registry, impls map[string]eval.PredicateFunc, opts ...AdapterOption) (*Adapter, error) {
	if name == "" {
		return nil, fmt.Errorf("game adapter: name must be non-empty")
	}
	if reg == nil {
		return nil, fmt.Errorf("game adapter %q: nil registry", name)
	}

	for _, helper := range reg.Names() {
		if impls[helper] == nil {
			return nil, fmt.Errorf("game adapter %q: registered helper %q has no implementation", name, helper)
		}
	}
	for helper := range impls {
		if _, ok := reg.Lookup(helper); !ok {
			return nil, fmt.Errorf("game adapter %q: implementation for unregistered helper %q", name, helper)
		}
	}

	reg.Freeze()

	// Copy the table so later caller mutation cannot reach the adapter.
	table := make(map[string]eval.PredicateFunc, len(impls))
	for helper, fn := range impls {
		table[helper] = fn
	}

	a := &Adapter{name: name, reg: reg, impls: table}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Name returns the game's name.
func (a *Adapter) Name() string { return a.name }

// Registry returns the game's frozen helper registry.
func (a *Adapter) Registry() *registry.Registry { return a.reg }

// Impl implements eval.Bindings.
func (a *Adapter) Impl(name string) (eval.PredicateFunc, bool) {
	fn, ok := a.impls[name]
	return fn, ok
}

// CanParseState reports whether the game supplied a state parser.
func (a *Adapter) CanParseState() bool {
	return a.parseState != nil
}

// ParseState builds an evaluation state from a serialized document
// using the game's parser. Errors if the game registered none.
func (a *Adapter) ParseState(data []byte) (eval.State, error) {
	if a.parseState == nil {
		return nil, fmt.Errorf("game %q does not support state parsing", a.name)
	}
	return a.parseState(data)
}
