package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: one rules file
// evaluated against a set of state snapshots.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed
	// by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules is the path to the rules file, relative to the scenario
	// file location.
	Rules string `yaml:"rules"`

	// Game optionally overrides the rules document's game.
	Game string `yaml:"game,omitempty"`

	// States lists the named state snapshots to evaluate against.
	States []StateCase `yaml:"states"`

	// Expect pins individual outcomes. Each entry must name a rule
	// and a state from this scenario.
	Expect []Expectation `yaml:"expect,omitempty"`

	// basePath is the directory of the scenario file, used to resolve
	// the rules path.
	basePath string
}

// StateCase is one named state snapshot. The document under State is
// game-specific and passed verbatim to the adapter's state parser.
type StateCase struct {
	Name  string    `yaml:"name"`
	State yaml.Node `yaml:"state"`
}

// Expectation pins the outcome of one rule against one state.
type Expectation struct {
	Rule   string `yaml:"rule"`
	State  string `yaml:"state"`
	Result bool   `yaml:"result"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	scenario.basePath = filepath.Dir(path)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// RulesPath returns the absolute-or-relative path of the rules file,
// resolved against the scenario file's directory.
func (s *Scenario) RulesPath() string {
	if filepath.IsAbs(s.Rules) || s.basePath == "" {
		return s.Rules
	}
	return filepath.Join(s.basePath, s.Rules)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	if s.Description == "" {
		return fmt.Errorf("missing required field: description")
	}
	if s.Rules == "" {
		return fmt.Errorf("missing required field: rules")
	}
	if len(s.States) == 0 {
		return fmt.Errorf("missing required field: states (at least one state)")
	}

	seen := make(map[string]bool, len(s.States))
	for i, sc := range s.States {
		if sc.Name == "" {
			return fmt.Errorf("state %d: missing required field: name", i)
		}
		if seen[sc.Name] {
			return fmt.Errorf("state %d: duplicate state name %q", i, sc.Name)
		}
		seen[sc.Name] = true
		if sc.State.IsZero() {
			return fmt.Errorf("state %q: missing required field: state", sc.Name)
		}
	}

	for i, e := range s.Expect {
		if e.Rule == "" {
			return fmt.Errorf("expect %d: missing required field: rule", i)
		}
		if e.State == "" {
			return fmt.Errorf("expect %d: missing required field: state", i)
		}
		if !seen[e.State] {
			return fmt.Errorf("expect %d: unknown state %q", i, e.State)
		}
	}
	return nil
}
