package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeerInfinity/reachrules/internal/rule"
)

const sampleYAML = `
game: demo
rules:
  - name: "Dark Cave entrance"
    rule:
      or:
        - helper: has_sword
        - and:
            - helper: can_lift_rocks
            - helper: has_bombs
              args: [3]
  - name: "Boss door"
    rule:
      not:
        helper: flag_set
        args: ["door_sealed"]
`

func TestParseYAML(t *testing.T) {
	set, errs := ParseYAML([]byte(sampleYAML), LoadModeCollectAll)
	require.Empty(t, errs)
	require.NotNil(t, set)

	assert.Equal(t, "demo", set.Game)
	require.Len(t, set.Rules, 2)

	assert.Equal(t, "Dark Cave entrance", set.Rules[0].Name)
	want := rule.Or{Children: []rule.Node{
		rule.Call{Name: "has_sword", Args: []rule.Value{}},
		rule.And{Children: []rule.Node{
			rule.Call{Name: "can_lift_rocks", Args: []rule.Value{}},
			rule.Call{Name: "has_bombs", Args: []rule.Value{rule.Int(3)}},
		}},
	}}
	assert.Equal(t, want, set.Rules[0].Root)

	assert.Equal(t, "Boss door", set.Rules[1].Name)
	assert.Equal(t, rule.Not{Child: rule.Call{Name: "flag_set", Args: []rule.Value{rule.String("door_sealed")}}}, set.Rules[1].Root)
}

func TestParseYAML_ScalarKinds(t *testing.T) {
	doc := `
game: demo
rules:
  - name: scalars
    rule:
      helper: mixed
      args: ["text", 42, true]
`
	set, errs := ParseYAML([]byte(doc), LoadModeCollectAll)
	require.Empty(t, errs)

	call := set.Rules[0].Root.(rule.Call)
	require.Len(t, call.Args, 3)
	assert.Equal(t, rule.String("text"), call.Args[0])
	assert.Equal(t, rule.Int(42), call.Args[1])
	assert.Equal(t, rule.Bool(true), call.Args[2])
}

func TestParseYAML_FloatForbidden(t *testing.T) {
	doc := `
game: demo
rules:
  - name: bad
    rule:
      helper: has_bombs
      args: [3.5]
`
	_, errs := ParseYAML([]byte(doc), LoadModeCollectAll)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeFloatForbidden, le.Code)
	assert.Equal(t, "rules[0].rule.args[0]", le.Path)
}

func TestParseYAML_AmbiguousNode(t *testing.T) {
	doc := `
game: demo
rules:
  - name: bad
    rule:
      helper: has_sword
      or:
        - helper: can_lift_rocks
`
	_, errs := ParseYAML([]byte(doc), LoadModeCollectAll)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeBadNode, le.Code)
	assert.Contains(t, le.Message, "exactly one")
}

func TestParseYAML_ArgsOnComposite(t *testing.T) {
	doc := `
game: demo
rules:
  - name: bad
    rule:
      args: [1]
      and:
        - helper: has_sword
`
	_, errs := ParseYAML([]byte(doc), LoadModeCollectAll)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Contains(t, le.Message, "args are only allowed on helper nodes")
}

func TestParseYAML_CollectAllVsFailFast(t *testing.T) {
	doc := `
game: demo
rules:
  - name: first_bad
    rule:
      helper: f
      args: [1.5]
  - name: second_bad
    rule: {}
`
	_, errs := ParseYAML([]byte(doc), LoadModeCollectAll)
	assert.Len(t, errs, 2)

	_, errs = ParseYAML([]byte(doc), LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestParseYAML_MissingGame(t *testing.T) {
	doc := `
rules:
  - name: r
    rule:
      helper: has_sword
`
	_, errs := ParseYAML([]byte(doc), LoadModeCollectAll)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeMissingGame, le.Code)
}

func TestParseYAML_EmptyDocument(t *testing.T) {
	_, errs := ParseYAML([]byte("game: demo\nrules: []\n"), LoadModeCollectAll)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeEmptyDocument, le.Code)
}

func TestParseYAML_DuplicateRuleNames(t *testing.T) {
	doc := `
game: demo
rules:
  - name: twin
    rule: {helper: has_sword}
  - name: twin
    rule: {helper: has_shield}
`
	_, errs := ParseYAML([]byte(doc), LoadModeCollectAll)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeDuplicateRule, le.Code)
}

func TestParseYAML_Garbage(t *testing.T) {
	_, errs := ParseYAML([]byte("{not valid yaml"), LoadModeCollectAll)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeUnreadable, le.Code)
}

func TestLoadYAML_NotFound(t *testing.T) {
	_, errs := LoadYAML("/nonexistent/rules.yaml", LoadModeFailFast)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoad_DispatchesOnExtension(t *testing.T) {
	_, errs := Load("rules.toml", LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "unsupported rules file extension")
}
