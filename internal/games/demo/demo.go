// Package demo ships the reference game adapter.
//
// It models a small action-adventure inventory (items, flags, unlocked
// regions, settings) with a helper vocabulary just rich enough to
// exercise every engine feature: zero-arity helpers, item-name
// arguments, integer thresholds, and a settings toggle. Real game
// modules follow the same shape: declare the registry, bind one
// implementation per helper, register a factory with the catalog.
package demo

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PeerInfinity/reachrules/internal/eval"
	"github.com/PeerInfinity/reachrules/internal/game"
	"github.com/PeerInfinity/reachrules/internal/registry"
	"github.com/PeerInfinity/reachrules/internal/rule"
)

// Name is the game's catalog name.
const Name = "demo"

func init() {
	game.Register(Name, New)
}

// State is the demo game's evaluation snapshot: what the player holds
// and has reached. The engine never mutates it; predicate
// implementations only read it.
type State struct {
	Items    map[string]int  `yaml:"items"`
	Flags    map[string]bool `yaml:"flags"`
	Regions  map[string]bool `yaml:"regions"`
	Settings map[string]bool `yaml:"settings"`
}

// Fingerprint summarizes every field a demo predicate can read into a
// stable identity string, enabling evaluator memoization. Keys are
// emitted sorted so two equal snapshots always fingerprint equal.
func (s *State) Fingerprint() string {
	var b strings.Builder
	writeInts(&b, "items", s.Items)
	writeBools(&b, "flags", s.Flags)
	writeBools(&b, "regions", s.Regions)
	writeBools(&b, "settings", s.Settings)
	return b.String()
}

func writeInts(b *strings.Builder, section string, m map[string]int) {
	b.WriteString(section)
	b.WriteByte('{')
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(b, "%s=%d;", k, m[k])
	}
	b.WriteByte('}')
}

func writeBools(b *strings.Builder, section string, m map[string]bool) {
	b.WriteString(section)
	b.WriteByte('{')
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(b, "%s=%t;", k, m[k])
	}
	b.WriteByte('}')
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// itemCount returns the held count of an item, zero when absent.
func (s *State) itemCount(item string) int {
	return s.Items[item]
}

// New constructs the demo adapter. Registered with the game catalog
// from init; also callable directly in tests.
func New() (*game.Adapter, error) {
	reg := registry.New()

	declarations := []struct {
		name string
		sig  registry.Signature
	}{
		{"has_sword", nil},
		{"has_shield", nil},
		{"has_hearts", nil},
		{"can_lift_rocks", nil},
		{"can_swim", nil},
		{"has_item", registry.Signature{rule.KindItem}},
		{"item_count_at_least", registry.Signature{rule.KindItem, rule.KindInt}},
		{"has_bombs", registry.Signature{rule.KindInt}},
		{"flag_set", registry.Signature{rule.KindString}},
		{"region_unlocked", registry.Signature{rule.KindString}},
		{"setting_enabled", registry.Signature{rule.KindString}},
	}
	for _, d := range declarations {
		if err := reg.Register(d.name, d.sig); err != nil {
			return nil, err
		}
	}

	impls := map[string]eval.PredicateFunc{
		"has_sword":      hasItem("Sword"),
		"has_shield":     hasItem("Shield"),
		"has_hearts":     hasItem("Heart Container"),
		"can_lift_rocks": hasItem("Power Glove"),
		"can_swim":       hasItem("Flippers"),
		"has_item": func(args []rule.Value, state eval.State) bool {
			return snapshot(state).itemCount(string(args[0].(rule.String))) >= 1
		},
		"item_count_at_least": func(args []rule.Value, state eval.State) bool {
			item := string(args[0].(rule.String))
			n := int64(args[1].(rule.Int))
			return int64(snapshot(state).itemCount(item)) >= n
		},
		"has_bombs": func(args []rule.Value, state eval.State) bool {
			n := int64(args[0].(rule.Int))
			return int64(snapshot(state).itemCount("Bombs")) >= n
		},
		"flag_set": func(args []rule.Value, state eval.State) bool {
			return snapshot(state).Flags[string(args[0].(rule.String))]
		},
		"region_unlocked": func(args []rule.Value, state eval.State) bool {
			return snapshot(state).Regions[string(args[0].(rule.String))]
		},
		"setting_enabled": func(args []rule.Value, state eval.State) bool {
			return snapshot(state).Settings[string(args[0].(rule.String))]
		},
	}

	return game.New(Name, reg, impls, game.WithStateParser(ParseState))
}

// hasItem builds a zero-arity helper testing for at least one of an item.
func hasItem(item string) eval.PredicateFunc {
	return func(_ []rule.Value, state eval.State) bool {
		return snapshot(state).itemCount(item) >= 1
	}
}

// snapshot coerces the opaque state. A foreign state type is an
// integration defect on par with an unvalidated tree; an empty
// snapshot (everything false) keeps predicates total without masking
// the defect in tests that check specific holdings.
func snapshot(state eval.State) *State {
	if s, ok := state.(*State); ok && s != nil {
		return s
	}
	return &State{}
}

// ParseState implements game.StateParser for `reachrules eval`: a YAML
// document with items/flags/regions/settings sections.
func ParseState(data []byte) (eval.State, error) {
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("demo state: %w", err)
	}
	return &s, nil
}
