// Package loader parses rule documents into rule trees.
//
// Two front-ends share one document shape: YAML files (the common
// authoring format) and CUE manifests (schema-checked, for games that
// keep logic under cue vet). Loaders produce raw trees or structured
// syntax diagnostics - they never consult a helper registry;
// validation against the game's vocabulary is a separate pass.
package loader

import (
	"fmt"
	"math"

	"github.com/PeerInfinity/reachrules/internal/rule"
)

// Error codes for load failures (L200-L299)
const (
	// ErrCodeNotFound - rules file does not exist.
	ErrCodeNotFound = "L200"
	// ErrCodeUnreadable - file exists but cannot be read or parsed.
	ErrCodeUnreadable = "L201"
	// ErrCodeBadNode - a rule node violates the document shape.
	ErrCodeBadNode = "L202"
	// ErrCodeFloatForbidden - a float literal in helper arguments.
	ErrCodeFloatForbidden = "L203"
	// ErrCodeEmptyDocument - document has no rules.
	ErrCodeEmptyDocument = "L204"
	// ErrCodeMissingGame - document does not name its game.
	ErrCodeMissingGame = "L205"
	// ErrCodeDuplicateRule - two rules share a name.
	ErrCodeDuplicateRule = "L206"
)

// LoadError is a structured syntax diagnostic from a rule document.
type LoadError struct {
	Code    string
	Path    string // document path, e.g. "rules[2].rule.or[1]"
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// LoadMode controls how errors are handled during document loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Document is the on-disk shape shared by the YAML and CUE front-ends.
type Document struct {
	Game  string      `yaml:"game" json:"game"`
	Rules []RuleEntry `yaml:"rules" json:"rules"`
}

// RuleEntry is one named rule in a document.
type RuleEntry struct {
	Name string   `yaml:"name" json:"name"`
	Rule *NodeDoc `yaml:"rule" json:"rule"`
}

// NodeDoc is the wire form of a rule node. Exactly one of Helper, And,
// Or, Not must be set; Args may accompany Helper only.
type NodeDoc struct {
	Helper string     `yaml:"helper,omitempty" json:"helper,omitempty"`
	Args   []any      `yaml:"args,omitempty" json:"args,omitempty"`
	And    []*NodeDoc `yaml:"and,omitempty" json:"and,omitempty"`
	Or     []*NodeDoc `yaml:"or,omitempty" json:"or,omitempty"`
	Not    *NodeDoc   `yaml:"not,omitempty" json:"not,omitempty"`
}

// RuleSet is a loaded document: the game it belongs to plus its parsed
// rule trees in declaration order.
type RuleSet struct {
	Game  string
	Rules []NamedRule
}

// NamedRule pairs a rule's document name with its raw (unvalidated)
// tree.
type NamedRule struct {
	Name string
	Root rule.Node
}

// buildRuleSet converts a decoded document into rule trees, collecting
// document-shape errors per the load mode.
func buildRuleSet(doc *Document, mode LoadMode) (*RuleSet, []error) {
	var errs []error
	fail := func(e *LoadError) bool {
		errs = append(errs, e)
		return mode == LoadModeFailFast
	}

	if doc.Game == "" {
		if fail(&LoadError{Code: ErrCodeMissingGame, Message: "document must name its game"}) {
			return nil, errs
		}
	}
	if len(doc.Rules) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeEmptyDocument, Message: "document has no rules"})
		return nil, errs
	}

	set := &RuleSet{Game: doc.Game}
	seen := make(map[string]bool, len(doc.Rules))

	for i, entry := range doc.Rules {
		path := fmt.Sprintf("rules[%d]", i)

		if entry.Name == "" {
			if fail(&LoadError{Code: ErrCodeBadNode, Path: path, Message: "rule must have a name"}) {
				return nil, errs
			}
			continue
		}
		if seen[entry.Name] {
			if fail(&LoadError{Code: ErrCodeDuplicateRule, Path: path, Message: fmt.Sprintf("duplicate rule name %q", entry.Name)}) {
				return nil, errs
			}
			continue
		}
		seen[entry.Name] = true

		if entry.Rule == nil {
			if fail(&LoadError{Code: ErrCodeBadNode, Path: path, Message: fmt.Sprintf("rule %q has no expression", entry.Name)}) {
				return nil, errs
			}
			continue
		}

		root, nodeErrs := buildNode(entry.Rule, path+".rule", mode)
		if len(nodeErrs) > 0 {
			errs = append(errs, nodeErrs...)
			if mode == LoadModeFailFast {
				return nil, errs
			}
			continue
		}
		set.Rules = append(set.Rules, NamedRule{Name: entry.Name, Root: root})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return set, nil
}

// buildNode converts one NodeDoc into a rule.Node, enforcing the
// exactly-one-variant shape.
func buildNode(doc *NodeDoc, path string, mode LoadMode) (rule.Node, []error) {
	variants := 0
	if doc.Helper != "" {
		variants++
	}
	if doc.And != nil {
		variants++
	}
	if doc.Or != nil {
		variants++
	}
	if doc.Not != nil {
		variants++
	}
	if variants != 1 {
		return nil, []error{&LoadError{
			Code:    ErrCodeBadNode,
			Path:    path,
			Message: "node must have exactly one of helper, and, or, not",
		}}
	}
	if doc.Args != nil && doc.Helper == "" {
		return nil, []error{&LoadError{
			Code:    ErrCodeBadNode,
			Path:    path,
			Message: "args are only allowed on helper nodes",
		}}
	}

	switch {
	case doc.Helper != "":
		args, errs := buildArgs(doc.Args, path, mode)
		if len(errs) > 0 {
			return nil, errs
		}
		return rule.Call{Name: doc.Helper, Args: args}, nil

	case doc.And != nil:
		children, errs := buildChildren(doc.And, path+".and", mode)
		if len(errs) > 0 {
			return nil, errs
		}
		return rule.And{Children: children}, nil

	case doc.Or != nil:
		children, errs := buildChildren(doc.Or, path+".or", mode)
		if len(errs) > 0 {
			return nil, errs
		}
		return rule.Or{Children: children}, nil

	default:
		child, errs := buildNode(doc.Not, path+".not", mode)
		if len(errs) > 0 {
			return nil, errs
		}
		return rule.Not{Child: child}, nil
	}
}

func buildChildren(docs []*NodeDoc, path string, mode LoadMode) ([]rule.Node, []error) {
	var errs []error
	children := make([]rule.Node, 0, len(docs))
	for i, d := range docs {
		childPath := fmt.Sprintf("%s[%d]", path, i)
		if d == nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadNode, Path: childPath, Message: "null node"})
			if mode == LoadModeFailFast {
				return nil, errs
			}
			continue
		}
		child, childErrs := buildNode(d, childPath, mode)
		if len(childErrs) > 0 {
			errs = append(errs, childErrs...)
			if mode == LoadModeFailFast {
				return nil, errs
			}
			continue
		}
		children = append(children, child)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return children, nil
}

// buildArgs converts decoded scalar literals into rule values. Floats
// are forbidden: they break deterministic structural hashing.
func buildArgs(raw []any, path string, mode LoadMode) ([]rule.Value, []error) {
	var errs []error
	args := make([]rule.Value, 0, len(raw))
	for i, a := range raw {
		argPath := fmt.Sprintf("%s.args[%d]", path, i)
		v, err := scalarValue(a, argPath)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return nil, errs
			}
			continue
		}
		args = append(args, v)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return args, nil
}

func scalarValue(a any, path string) (rule.Value, error) {
	switch val := a.(type) {
	case string:
		return rule.String(val), nil
	case bool:
		return rule.Bool(val), nil
	case int:
		return rule.Int(val), nil
	case int64:
		return rule.Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, &LoadError{Code: ErrCodeBadNode, Path: path, Message: fmt.Sprintf("integer out of range: %d", val)}
		}
		return rule.Int(val), nil
	case float64, float32:
		return nil, &LoadError{Code: ErrCodeFloatForbidden, Path: path, Message: fmt.Sprintf("floats are forbidden in rule arguments: %v", val)}
	case nil:
		return nil, &LoadError{Code: ErrCodeBadNode, Path: path, Message: "null argument"}
	default:
		return nil, &LoadError{Code: ErrCodeBadNode, Path: path, Message: fmt.Sprintf("unsupported argument type %T", a)}
	}
}
