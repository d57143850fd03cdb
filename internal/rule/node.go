package rule

// Node is a sealed interface representing one node of a rule tree.
// Only Call, And, Or, and Not implement it. The marker method prevents
// external implementations and enables exhaustive type switches in the
// validator and evaluator.
type Node interface {
	ruleNode() // Sealed - only types in this package implement it

	// Kind returns the node's label ("Call", "And", "Or", "Not").
	// Used for diagnostic paths and canonical serialization.
	Kind() string
}

// Call invokes a named helper with literal arguments.
//
// The helper name must exist in the owning game's registry and the
// argument count/kinds must match the registered signature. Both are
// checked by the validator, never at evaluation time.
type Call struct {
	Name string  // Helper name, e.g. "can_lift_rocks"
	Args []Value // Literal arguments in declaration order
}

func (Call) ruleNode()    {}
func (Call) Kind() string { return "Call" }

// And holds when all children hold. Children are evaluated in
// declaration order with short-circuit semantics.
type And struct {
	Children []Node
}

func (And) ruleNode()    {}
func (And) Kind() string { return "And" }

// Or holds when at least one child holds. Children are evaluated in
// declaration order with short-circuit semantics.
type Or struct {
	Children []Node
}

func (Or) ruleNode()    {}
func (Or) Kind() string { return "Or" }

// Not negates its child.
type Not struct {
	Child Node
}

func (Not) ruleNode()    {}
func (Not) Kind() string { return "Not" }
