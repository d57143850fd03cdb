package harness

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/PeerInfinity/reachrules/internal/eval"
	"github.com/PeerInfinity/reachrules/internal/game"
	"github.com/PeerInfinity/reachrules/internal/loader"
	"github.com/PeerInfinity/reachrules/internal/validate"
)

// Outcome is one cell of the result matrix: a rule evaluated against
// a named state.
type Outcome struct {
	Rule   string `json:"rule"`
	State  string `json:"state"`
	Result bool   `json:"result"`
}

// Result holds a scenario's full outcome matrix, rule-major in
// document order, states in declaration order.
type Result struct {
	Scenario string    `json:"scenario"`
	Game     string    `json:"game"`
	Outcomes []Outcome `json:"outcomes"`
}

// Lookup returns the outcome for a rule/state pair.
func (r *Result) Lookup(rule, state string) (bool, bool) {
	for _, o := range r.Outcomes {
		if o.Rule == rule && o.State == state {
			return o.Result, true
		}
	}
	return false, false
}

// Run executes a scenario: loads the rules file, validates every rule
// against the game's registry, parses every state snapshot, and
// evaluates the full rule-by-state matrix.
//
// Any validation diagnostic is an error here. Scenarios exercise
// evaluation semantics and must start from well-formed rules.
func Run(scenario *Scenario) (*Result, error) {
	set, errs := loader.Load(scenario.RulesPath(), loader.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("scenario %s: load rules: %w", scenario.Name, errs[0])
	}

	gameName := scenario.Game
	if gameName == "" {
		gameName = set.Game
	}
	adapter, err := game.Lookup(gameName)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	if !adapter.CanParseState() {
		return nil, fmt.Errorf("scenario %s: game %q has no state parser", scenario.Name, gameName)
	}

	validated := make([]*validate.Validated, 0, len(set.Rules))
	for _, named := range set.Rules {
		result := validate.Validate(named.Root, adapter.Registry())
		if !result.OK() {
			return nil, fmt.Errorf("scenario %s: rule %q: %s", scenario.Name, named.Name, result.Diagnostics()[0])
		}
		validated = append(validated, result.Valid())
	}

	states := make([]eval.State, 0, len(scenario.States))
	for _, sc := range scenario.States {
		data, err := yaml.Marshal(&sc.State)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: state %q: %w", scenario.Name, sc.Name, err)
		}
		state, err := adapter.ParseState(data)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: state %q: %w", scenario.Name, sc.Name, err)
		}
		states = append(states, state)
	}

	ev := eval.New(adapter, eval.WithMemo())
	result := &Result{Scenario: scenario.Name, Game: adapter.Name()}
	for i, v := range validated {
		for j, state := range states {
			ok, err := ev.Evaluate(v, state)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: rule %q against state %q: %w",
					scenario.Name, set.Rules[i].Name, scenario.States[j].Name, err)
			}
			result.Outcomes = append(result.Outcomes, Outcome{
				Rule:   set.Rules[i].Name,
				State:  scenario.States[j].Name,
				Result: ok,
			})
		}
	}
	return result, nil
}

// EvaluateExpectations checks a result against a scenario's pinned
// expectations and returns one failure message per mismatch.
func EvaluateExpectations(result *Result, scenario *Scenario) []string {
	var failures []string
	for _, e := range scenario.Expect {
		got, found := result.Lookup(e.Rule, e.State)
		if !found {
			failures = append(failures, fmt.Sprintf("expect %s/%s: no such outcome", e.Rule, e.State))
			continue
		}
		if got != e.Result {
			failures = append(failures, fmt.Sprintf("expect %s/%s: got %v, want %v", e.Rule, e.State, got, e.Result))
		}
	}
	return failures
}
