package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeerInfinity/reachrules/internal/registry"
	"github.com/PeerInfinity/reachrules/internal/rule"
	"github.com/PeerInfinity/reachrules/internal/validate"
)

// mapBindings is a test double for a game adapter's implementation table.
type mapBindings map[string]PredicateFunc

func (m mapBindings) Impl(name string) (PredicateFunc, bool) {
	fn, ok := m[name]
	return fn, ok
}

// flagState is a minimal fingerprintable state: helper name -> result.
type flagState map[string]bool

func (s flagState) Fingerprint() string {
	// Deterministic enough for tests: flags are set via fresh maps.
	fp := ""
	for _, name := range []string{"has_sword", "can_lift_rocks", "has_shield"} {
		if s[name] {
			fp += name + "=1;"
		} else {
			fp += name + "=0;"
		}
	}
	return fp
}

// constTrue/constFalse ignore args and state.
func constTrue(_ []rule.Value, _ State) bool  { return true }
func constFalse(_ []rule.Value, _ State) bool { return false }

// mustValidate builds a registry covering every helper the tree names
// and returns the validated tree.
func mustValidate(t *testing.T, tree rule.Node, names ...string) *validate.Validated {
	t.Helper()
	reg := registry.New()
	for _, name := range names {
		require.NoError(t, reg.Register(name, nil))
	}
	reg.Freeze()
	result := validate.Validate(tree, reg)
	require.True(t, result.OK(), "diagnostics: %v", result.Diagnostics())
	return result.Valid()
}

func TestEvaluate_Call(t *testing.T) {
	v := mustValidate(t, rule.Call{Name: "has_sword"}, "has_sword")

	e := New(mapBindings{"has_sword": constTrue})
	got, err := e.Evaluate(v, nil)
	require.NoError(t, err)
	assert.True(t, got)

	e = New(mapBindings{"has_sword": constFalse})
	got, err = e.Evaluate(v, nil)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluate_CallReceivesArgsAndState(t *testing.T) {
	tree := rule.Call{Name: "has_bombs", Args: []rule.Value{rule.Int(3)}}
	reg := registry.New()
	require.NoError(t, reg.Register("has_bombs", registry.Signature{rule.KindInt}))
	reg.Freeze()
	result := validate.Validate(tree, reg)
	require.True(t, result.OK())

	type inventory struct{ bombs int64 }
	state := &inventory{bombs: 5}

	e := New(mapBindings{
		"has_bombs": func(args []rule.Value, s State) bool {
			require.Len(t, args, 1)
			want := int64(args[0].(rule.Int))
			return s.(*inventory).bombs >= want
		},
	})

	got, err := e.Evaluate(result.Valid(), state)
	require.NoError(t, err)
	assert.True(t, got)

	state.bombs = 2
	got, err = e.Evaluate(result.Valid(), state)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluate_AndShortCircuits(t *testing.T) {
	// Given p1 -> false, p2 must never be invoked.
	v := mustValidate(t, rule.And{Children: []rule.Node{
		rule.Call{Name: "p1"},
		rule.Call{Name: "p2"},
	}}, "p1", "p2")

	e := New(mapBindings{
		"p1": constFalse,
		"p2": func(_ []rule.Value, _ State) bool {
			t.Fatal("p2 must not be invoked after p1 returned false")
			return false
		},
	})

	got, err := e.Evaluate(v, nil)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluate_OrShortCircuits(t *testing.T) {
	v := mustValidate(t, rule.Or{Children: []rule.Node{
		rule.Call{Name: "p1"},
		rule.Call{Name: "p2"},
	}}, "p1", "p2")

	e := New(mapBindings{
		"p1": constTrue,
		"p2": func(_ []rule.Value, _ State) bool {
			t.Fatal("p2 must not be invoked after p1 returned true")
			return false
		},
	})

	got, err := e.Evaluate(v, nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluate_Not(t *testing.T) {
	v := mustValidate(t, rule.Not{Child: rule.Call{Name: "sealed"}}, "sealed")

	e := New(mapBindings{"sealed": constFalse})
	got, err := e.Evaluate(v, nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluate_UnvalidatedTree(t *testing.T) {
	e := New(mapBindings{})

	_, err := e.Evaluate(nil, nil)
	require.Error(t, err)
	assert.True(t, IsInvariantViolation(err))
}

func TestEvaluate_MissingBinding(t *testing.T) {
	// A validated tree whose helper has no implementation is a
	// configuration defect surfaced as an invariant violation.
	v := mustValidate(t, rule.Call{Name: "has_sword"}, "has_sword")

	e := New(mapBindings{})
	_, err := e.Evaluate(v, nil)
	require.Error(t, err)
	assert.True(t, IsInvariantViolation(err))
	assert.Contains(t, err.Error(), "has_sword")
}

func TestEvaluate_Deterministic(t *testing.T) {
	v := mustValidate(t, rule.Or{Children: []rule.Node{
		rule.Call{Name: "has_sword"},
		rule.Call{Name: "can_lift_rocks"},
	}}, "has_sword", "can_lift_rocks")

	state := flagState{"can_lift_rocks": true}
	e := New(mapBindings{
		"has_sword":      func(_ []rule.Value, s State) bool { return s.(flagState)["has_sword"] },
		"can_lift_rocks": func(_ []rule.Value, s State) bool { return s.(flagState)["can_lift_rocks"] },
	})

	for i := 0; i < 100; i++ {
		got, err := e.Evaluate(v, state)
		require.NoError(t, err)
		assert.True(t, got)
	}
}

func TestEvaluate_NormalizationPreservesTruth(t *testing.T) {
	// evaluate(tree, state) == evaluate(normalize(tree), state) for
	// every state assignment over the involved helpers.
	raw := rule.And{Children: []rule.Node{
		rule.And{Children: []rule.Node{
			rule.Call{Name: "has_sword"},
			rule.Call{Name: "has_sword"},
		}},
		rule.Or{Children: []rule.Node{
			rule.Call{Name: "can_lift_rocks"},
			rule.Or{Children: []rule.Node{rule.Call{Name: "has_shield"}}},
		}},
	}}

	normalized, err := validate.Normalize(raw)
	require.NoError(t, err)
	assert.NotEqual(t, raw, normalized, "sanity: rewrites applied")

	vRaw := mustValidate(t, raw, "has_sword", "can_lift_rocks", "has_shield")
	vNorm := mustValidate(t, normalized, "has_sword", "can_lift_rocks", "has_shield")

	lookup := func(name string) PredicateFunc {
		return func(_ []rule.Value, s State) bool { return s.(flagState)[name] }
	}
	e := New(mapBindings{
		"has_sword":      lookup("has_sword"),
		"can_lift_rocks": lookup("can_lift_rocks"),
		"has_shield":     lookup("has_shield"),
	})

	// All 8 truth assignments.
	for mask := 0; mask < 8; mask++ {
		state := flagState{
			"has_sword":      mask&1 != 0,
			"can_lift_rocks": mask&2 != 0,
			"has_shield":     mask&4 != 0,
		}
		a, err := e.Evaluate(vRaw, state)
		require.NoError(t, err)
		b, err := e.Evaluate(vNorm, state)
		require.NoError(t, err)
		assert.Equal(t, a, b, "mask %d", mask)
	}
}

func TestEvaluate_ReorderingPureChainPreservesResult(t *testing.T) {
	// AND/OR are associative and commutative for evaluation purposes.
	forward := rule.Or{Children: []rule.Node{
		rule.Call{Name: "has_sword"},
		rule.Call{Name: "can_lift_rocks"},
		rule.Call{Name: "has_shield"},
	}}
	reversed := rule.Or{Children: []rule.Node{
		rule.Call{Name: "has_shield"},
		rule.Call{Name: "can_lift_rocks"},
		rule.Call{Name: "has_sword"},
	}}
	renested := rule.Or{Children: []rule.Node{
		rule.Or{Children: []rule.Node{
			rule.Call{Name: "has_sword"},
			rule.Call{Name: "can_lift_rocks"},
		}},
		rule.Call{Name: "has_shield"},
	}}

	names := []string{"has_sword", "can_lift_rocks", "has_shield"}
	lookup := func(name string) PredicateFunc {
		return func(_ []rule.Value, s State) bool { return s.(flagState)[name] }
	}
	e := New(mapBindings{
		"has_sword":      lookup("has_sword"),
		"can_lift_rocks": lookup("can_lift_rocks"),
		"has_shield":     lookup("has_shield"),
	})

	for mask := 0; mask < 8; mask++ {
		state := flagState{}
		for bit, name := range names {
			state[name] = mask&(1<<bit) != 0
		}

		var results []bool
		for _, tree := range []rule.Node{forward, reversed, renested} {
			v := mustValidate(t, tree, names...)
			got, err := e.Evaluate(v, state)
			require.NoError(t, err)
			results = append(results, got)
		}
		assert.Equal(t, results[0], results[1], "mask %d", mask)
		assert.Equal(t, results[0], results[2], "mask %d", mask)
	}
}
