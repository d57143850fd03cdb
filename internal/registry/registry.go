// Package registry holds the per-game helper vocabulary.
//
// A Registry maps helper names to declared signatures. It is built once
// during game-module load (single-threaded), frozen, and then shared
// read-only by every validation and evaluation for that game.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/PeerInfinity/reachrules/internal/rule"
)

// Signature is the ordered list of argument kinds a helper accepts.
// A nil or empty signature is a zero-arity helper.
type Signature []rule.Kind

// String renders a signature as "(item, int)" for diagnostics.
func (s Signature) String() string {
	if len(s) == 0 {
		return "()"
	}
	out := "("
	for i, k := range s {
		if i > 0 {
			out += ", "
		}
		out += k.String()
	}
	return out + ")"
}

// ErrDuplicateName is returned when a helper name is registered twice.
// Registration conflicts are fatal at game-module load time - the
// process cannot proceed with an ambiguous registry.
var ErrDuplicateName = errors.New("duplicate helper name")

// ErrFrozen is returned when registering into a frozen registry.
var ErrFrozen = errors.New("registry is frozen")

// Registry is an append-only mapping from helper name to signature.
// Not safe for concurrent mutation; build single-threaded, then call
// Freeze. A frozen registry is immutable and safe to share across
// goroutines.
type Registry struct {
	sigs   map[string]Signature
	frozen bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{sigs: make(map[string]Signature)}
}

// Register declares a helper with its signature.
// Returns ErrDuplicateName if the name is already registered and
// ErrFrozen if the registry has been frozen.
func (r *Registry) Register(name string, sig Signature) error {
	if r.frozen {
		return fmt.Errorf("register %q: %w", name, ErrFrozen)
	}
	if name == "" {
		return fmt.Errorf("register: helper name must be non-empty")
	}
	if _, exists := r.sigs[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateName)
	}
	// Copy to keep the registry immune to caller mutation.
	r.sigs[name] = append(Signature(nil), sig...)
	return nil
}

// MustRegister is Register but panics on error. For use in adapter
// construction where a conflict is a load-time defect.
func (r *Registry) MustRegister(name string, sig Signature) {
	if err := r.Register(name, sig); err != nil {
		panic(err)
	}
}

// Freeze makes the registry immutable. Idempotent.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Lookup returns the signature for a helper name.
// This is the only query the validator uses.
func (r *Registry) Lookup(name string) (Signature, bool) {
	sig, ok := r.sigs[name]
	return sig, ok
}

// Names returns all registered helper names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sigs))
	for name := range r.sigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered helpers.
func (r *Registry) Len() int {
	return len(r.sigs)
}
