package validate

import (
	"fmt"

	"github.com/PeerInfinity/reachrules/internal/rule"
)

// Normalize applies pure tree-shape rewrites that never change the
// truth value of a rule:
//
//  1. Flatten nested same-kind composites: And(And(a,b),c) -> And(a,b,c)
//  2. Drop structurally duplicate children within a composite
//     (And/Or are idempotent over a set of operands)
//  3. Collapse single-child composites to the child: And(a) -> a
//
// Rewrites apply bottom-up, so collapsing can expose further
// flattening one level up. Normalize is idempotent: normalizing an
// already-normal tree returns an identical tree.
//
// Child order is preserved (first occurrence wins on duplicates).
// Commutative canonicalization - treating And(a,b) and And(b,a) as the
// same tree - is deliberately NOT performed; only syntactic shape is
// rewritten.
func Normalize(n rule.Node) (rule.Node, error) {
	switch node := n.(type) {
	case rule.Call:
		return node, nil
	case rule.Not:
		if node.Child == nil {
			return nil, fmt.Errorf("Not node has nil child")
		}
		child, err := Normalize(node.Child)
		if err != nil {
			return nil, err
		}
		return rule.Not{Child: child}, nil
	case rule.And:
		return normalizeComposite(node.Kind(), node.Children)
	case rule.Or:
		return normalizeComposite(node.Kind(), node.Children)
	case nil:
		return nil, fmt.Errorf("nil node")
	default:
		return nil, fmt.Errorf("unknown node type: %T", n)
	}
}

func normalizeComposite(kind string, children []rule.Node) (rule.Node, error) {
	var flat []rule.Node
	seen := make(map[string]bool, len(children))

	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("%s child %d is nil", kind, i)
		}
		norm, err := Normalize(child)
		if err != nil {
			return nil, err
		}

		// Flatten a same-kind composite into this one (associativity).
		var grandchildren []rule.Node
		switch sub := norm.(type) {
		case rule.And:
			if kind == sub.Kind() {
				grandchildren = sub.Children
			}
		case rule.Or:
			if kind == sub.Kind() {
				grandchildren = sub.Children
			}
		}

		candidates := []rule.Node{norm}
		if grandchildren != nil {
			candidates = grandchildren
		}

		for _, c := range candidates {
			hash, err := rule.NodeHash(c)
			if err != nil {
				return nil, err
			}
			if seen[hash] {
				continue
			}
			seen[hash] = true
			flat = append(flat, c)
		}
	}

	if len(flat) == 0 {
		return nil, fmt.Errorf("%s node has no children", kind)
	}
	if len(flat) == 1 {
		return flat[0], nil
	}
	if kind == "And" {
		return rule.And{Children: flat}, nil
	}
	return rule.Or{Children: flat}, nil
}
