// Package harness provides scenario-driven conformance testing for
// game rule sets.
//
// A scenario names a rules file and a list of state snapshots; the
// harness validates every rule, evaluates each rule against each
// state, and returns the full outcome matrix. Scenarios can pin
// individual outcomes with expectations, and whole matrices with
// golden snapshot files.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	rules: path/to/rules.yaml
//	states:
//	  - name: fresh_start
//	    state:
//	      items: {}
//	  - name: armed
//	    state:
//	      items: { Sword: 1, Bombs: 5 }
//	expect:
//	  - rule: boss_door
//	    state: armed
//	    result: true
//
// The rules path is resolved relative to the scenario file. The state
// documents are handed verbatim to the game adapter's state parser, so
// their shape is game-specific.
package harness
