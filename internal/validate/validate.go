// Package validate checks rule trees against a game's helper registry
// and normalizes their shape.
//
// Validation collects ALL diagnostics for a tree in one pass rather
// than failing fast, so a caller (e.g. a game-data linter) can report
// every authoring mistake at once. It is a pure, deterministic function
// of (tree, registry): no evaluation, no live state.
package validate

import (
	"fmt"

	"github.com/PeerInfinity/reachrules/internal/registry"
	"github.com/PeerInfinity/reachrules/internal/rule"
)

// Validated is a rule tree that passed validation.
//
// It wraps the normalized tree together with the registry it was
// checked against. The evaluator accepts only Validated trees - this is
// how "evaluation assumes pre-validated input" is enforced at the type
// level rather than by convention.
//
// Validated trees are immutable and safe to share across goroutines.
type Validated struct {
	root rule.Node
	hash string
	reg  *registry.Registry
}

// Root returns the normalized tree.
func (v *Validated) Root() rule.Node { return v.root }

// Hash returns the structural identity of the normalized tree.
func (v *Validated) Hash() string { return v.hash }

// Registry returns the registry the tree was validated against.
func (v *Validated) Registry() *registry.Registry { return v.reg }

// Result is the outcome of a validation pass: either a Validated tree
// or a non-empty set of diagnostics, never both.
type Result struct {
	valid *Validated
	diags []Diagnostic
}

// OK reports whether validation produced zero diagnostics.
func (r Result) OK() bool { return r.valid != nil }

// Valid returns the validated tree, or nil if validation failed.
func (r Result) Valid() *Validated { return r.valid }

// Diagnostics returns all collected diagnostics in traversal order.
// Empty when OK.
func (r Result) Diagnostics() []Diagnostic { return r.diags }

// Validate checks every call node in the tree against the registry,
// collects all diagnostics, and on success returns the normalized tree.
//
// Unknown helpers, arity mismatches, and empty composites do not abort
// the traversal - sibling branches are still visited so one pass
// surfaces the full picture.
func Validate(root rule.Node, reg *registry.Registry) Result {
	w := &walker{reg: reg}
	w.walk(root, labelOf(root))

	if len(w.diags) > 0 {
		return Result{diags: w.diags}
	}

	normalized, err := Normalize(root)
	if err != nil {
		// Unreachable after a clean walk; surface as a malformed-node
		// diagnostic rather than panicking.
		return Result{diags: []Diagnostic{{
			Code:    CodeMalformedNode,
			Path:    labelOf(root),
			Message: err.Error(),
		}}}
	}

	hash, err := rule.NodeHash(normalized)
	if err != nil {
		return Result{diags: []Diagnostic{{
			Code:    CodeMalformedNode,
			Path:    labelOf(root),
			Message: err.Error(),
		}}}
	}

	return Result{valid: &Validated{root: normalized, hash: hash, reg: reg}}
}

// walker accumulates diagnostics during depth-first traversal.
type walker struct {
	reg   *registry.Registry
	diags []Diagnostic
}

func (w *walker) add(code, path, format string, args ...any) {
	w.diags = append(w.diags, Diagnostic{
		Code:    code,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

// walk visits a node at the given path. The path of a child is the
// parent's path plus "/children[i]" (or "/child" for Not); the root's
// path is its own kind label.
func (w *walker) walk(n rule.Node, path string) {
	switch node := n.(type) {
	case rule.Call:
		w.walkCall(node, path)
	case rule.And:
		w.walkComposite(node.Kind(), node.Children, path)
	case rule.Or:
		w.walkComposite(node.Kind(), node.Children, path)
	case rule.Not:
		if node.Child == nil {
			w.add(CodeMalformedNode, path, "Not node has nil child")
			return
		}
		w.walk(node.Child, path+"/child")
	case nil:
		w.add(CodeMalformedNode, path, "nil node")
	default:
		w.add(CodeMalformedNode, path, "unknown node type: %T", n)
	}
}

func (w *walker) walkCall(call rule.Call, path string) {
	for i, arg := range call.Args {
		if arg == nil {
			w.add(CodeMalformedNode, path, "call %q has nil argument at index %d", call.Name, i)
			return
		}
	}

	sig, ok := w.reg.Lookup(call.Name)
	if !ok {
		w.add(CodeUnknownHelper, path, "unknown helper %q", call.Name)
		return
	}

	if len(call.Args) != len(sig) {
		w.add(CodeArityMismatch, path,
			"helper %q expects %d argument(s) %s, got %d",
			call.Name, len(sig), sig, len(call.Args))
		return
	}

	for i, arg := range call.Args {
		if !rule.Matches(sig[i], arg.Kind()) {
			w.add(CodeArityMismatch, path,
				"helper %q argument %d: expected %s, got %s %s",
				call.Name, i, sig[i], arg.Kind(), rule.GoString(arg))
		}
	}
}

func (w *walker) walkComposite(kind string, children []rule.Node, path string) {
	if len(children) == 0 {
		w.add(CodeEmptyComposite, path, "%s node has no children", kind)
		return
	}
	for i, child := range children {
		w.walk(child, fmt.Sprintf("%s/children[%d]", path, i))
	}
}

// labelOf returns the path label for a root node. Nil and foreign nodes
// get a placeholder label so their diagnostics still carry a path.
func labelOf(n rule.Node) string {
	if n == nil {
		return "(nil)"
	}
	return n.Kind()
}
