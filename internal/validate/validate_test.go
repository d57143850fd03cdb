package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeerInfinity/reachrules/internal/registry"
	"github.com/PeerInfinity/reachrules/internal/rule"
)

// testRegistry builds a small frozen registry shared by the tests.
func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register("has_sword", nil))
	require.NoError(t, reg.Register("can_lift_rocks", nil))
	require.NoError(t, reg.Register("has_hearts", nil))
	require.NoError(t, reg.Register("has_bombs", registry.Signature{rule.KindInt}))
	require.NoError(t, reg.Register("has_item", registry.Signature{rule.KindItem}))
	reg.Freeze()
	return reg
}

func TestValidate_SimpleOr(t *testing.T) {
	reg := testRegistry(t)
	tree := rule.Or{Children: []rule.Node{
		rule.Call{Name: "has_sword"},
		rule.Call{Name: "can_lift_rocks"},
	}}

	result := Validate(tree, reg)

	require.True(t, result.OK())
	assert.Empty(t, result.Diagnostics())
	require.NotNil(t, result.Valid())
	assert.NotEmpty(t, result.Valid().Hash())
	assert.Same(t, reg, result.Valid().Registry())
}

func TestValidate_UnknownHelper(t *testing.T) {
	reg := testRegistry(t)
	tree := rule.Call{Name: "does_not_exist"}

	result := Validate(tree, reg)

	require.False(t, result.OK())
	assert.Nil(t, result.Valid())
	require.Len(t, result.Diagnostics(), 1)

	d := result.Diagnostics()[0]
	assert.Equal(t, CodeUnknownHelper, d.Code)
	assert.Equal(t, "Call", d.Path)
	assert.Contains(t, d.Message, `"does_not_exist"`)
}

func TestValidate_UnknownHelperPath(t *testing.T) {
	// And(has_sword, unknown_helper) must yield exactly one diagnostic
	// at path And/children[1].
	reg := testRegistry(t)
	tree := rule.And{Children: []rule.Node{
		rule.Call{Name: "has_sword"},
		rule.Call{Name: "unknown_helper"},
	}}

	result := Validate(tree, reg)

	require.False(t, result.OK())
	require.Len(t, result.Diagnostics(), 1)

	d := result.Diagnostics()[0]
	assert.Equal(t, CodeUnknownHelper, d.Code)
	assert.Equal(t, "And/children[1]", d.Path)
}

func TestValidate_ArityMismatch_ExtraArg(t *testing.T) {
	// has_hearts is zero-arity; passing an argument is an arity mismatch.
	reg := testRegistry(t)
	tree := rule.Call{Name: "has_hearts", Args: []rule.Value{rule.String("extra_arg")}}

	result := Validate(tree, reg)

	require.False(t, result.OK())
	require.Len(t, result.Diagnostics(), 1)

	d := result.Diagnostics()[0]
	assert.Equal(t, CodeArityMismatch, d.Code)
	assert.Equal(t, "Call", d.Path)
	assert.Contains(t, d.Message, "has_hearts")
	assert.Contains(t, d.Message, "expects 0 argument(s)")
}

func TestValidate_ArityMismatch_WrongKind(t *testing.T) {
	reg := testRegistry(t)
	tree := rule.Call{Name: "has_bombs", Args: []rule.Value{rule.String("three")}}

	result := Validate(tree, reg)

	require.False(t, result.OK())
	require.Len(t, result.Diagnostics(), 1)

	d := result.Diagnostics()[0]
	assert.Equal(t, CodeArityMismatch, d.Code)
	assert.Contains(t, d.Message, "expected int")
	assert.Contains(t, d.Message, `"three"`)
}

func TestValidate_ItemSlotAcceptsString(t *testing.T) {
	reg := testRegistry(t)
	tree := rule.Call{Name: "has_item", Args: []rule.Value{rule.String("Power Glove")}}

	result := Validate(tree, reg)

	assert.True(t, result.OK())
}

func TestValidate_EmptyComposite(t *testing.T) {
	reg := testRegistry(t)
	tree := rule.And{}

	result := Validate(tree, reg)

	require.False(t, result.OK())
	require.Len(t, result.Diagnostics(), 1)

	d := result.Diagnostics()[0]
	assert.Equal(t, CodeEmptyComposite, d.Code)
	assert.Equal(t, "And", d.Path)
}

func TestValidate_CollectsAllDiagnostics(t *testing.T) {
	// One pass must surface every problem, not just the first.
	reg := testRegistry(t)
	tree := rule.And{Children: []rule.Node{
		rule.Call{Name: "no_such_helper"},
		rule.Or{}, // empty composite
		rule.Call{Name: "has_bombs"}, // missing int argument
		rule.Call{Name: "has_sword"}, // fine
	}}

	result := Validate(tree, reg)

	require.False(t, result.OK())
	require.Len(t, result.Diagnostics(), 3)

	codes := make([]string, 0, 3)
	paths := make([]string, 0, 3)
	for _, d := range result.Diagnostics() {
		codes = append(codes, d.Code)
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{CodeUnknownHelper, CodeEmptyComposite, CodeArityMismatch}, codes)
	assert.Equal(t, []string{"And/children[0]", "And/children[1]", "And/children[2]"}, paths)
}

func TestValidate_NestedPaths(t *testing.T) {
	reg := testRegistry(t)
	tree := rule.Or{Children: []rule.Node{
		rule.Call{Name: "has_sword"},
		rule.Not{Child: rule.Call{Name: "phantom"}},
	}}

	result := Validate(tree, reg)

	require.False(t, result.OK())
	require.Len(t, result.Diagnostics(), 1)
	assert.Equal(t, "Or/children[1]/child", result.Diagnostics()[0].Path)
}

func TestValidate_NilNodes(t *testing.T) {
	reg := testRegistry(t)

	result := Validate(nil, reg)
	require.False(t, result.OK())
	assert.Equal(t, CodeMalformedNode, result.Diagnostics()[0].Code)

	result = Validate(rule.And{Children: []rule.Node{rule.Call{Name: "has_sword"}, nil}}, reg)
	require.False(t, result.OK())
	require.Len(t, result.Diagnostics(), 1)
	assert.Equal(t, CodeMalformedNode, result.Diagnostics()[0].Code)
	assert.Equal(t, "And/children[1]", result.Diagnostics()[0].Path)

	result = Validate(rule.Not{}, reg)
	require.False(t, result.OK())
	assert.Equal(t, CodeMalformedNode, result.Diagnostics()[0].Code)
}

func TestValidate_Idempotent(t *testing.T) {
	// Re-validating an already-valid tree yields the same tree and zero
	// diagnostics.
	reg := testRegistry(t)
	tree := rule.And{Children: []rule.Node{
		rule.And{Children: []rule.Node{
			rule.Call{Name: "has_sword"},
			rule.Call{Name: "has_sword"},
		}},
		rule.Call{Name: "can_lift_rocks"},
	}}

	first := Validate(tree, reg)
	require.True(t, first.OK())

	second := Validate(first.Valid().Root(), reg)
	require.True(t, second.OK())
	assert.Empty(t, second.Diagnostics())
	assert.Equal(t, first.Valid().Hash(), second.Valid().Hash())
	assert.Equal(t, first.Valid().Root(), second.Valid().Root())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Code: CodeUnknownHelper, Path: "And/children[1]", Message: `unknown helper "x"`}
	assert.Equal(t, `[R100] And/children[1]: unknown helper "x"`, d.String())
}
