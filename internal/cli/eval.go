package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PeerInfinity/reachrules/internal/eval"
	"github.com/PeerInfinity/reachrules/internal/validate"
)

// EvalResult is one rule's evaluation outcome.
type EvalResult struct {
	Name   string `json:"name"`
	Result bool   `json:"result"`
}

// EvalReport is the eval command's JSON payload.
type EvalReport struct {
	Game    string       `json:"game"`
	State   string       `json:"state"`
	Results []EvalResult `json:"results"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	var gameName string
	var statePath string
	var ruleName string
	var memo bool

	cmd := &cobra.Command{
		Use:   "eval <rules-file>",
		Short: "Evaluate rules against a state snapshot",
		Long: `Validate a rules file and evaluate each rule against a YAML state
snapshot parsed by the game's adapter.

Only games whose adapter supplies a state parser can be evaluated from
the command line. With --memo, repeated evaluations against the same
snapshot reuse cached results.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, args[0], gameName, statePath, ruleName, memo, cmd)
		},
	}

	cmd.Flags().StringVar(&gameName, "game", "", "game adapter to evaluate with (default: the document's game)")
	cmd.Flags().StringVar(&statePath, "state", "", "YAML state snapshot to evaluate against (required)")
	cmd.Flags().StringVar(&ruleName, "rule", "", "evaluate only this rule")
	cmd.Flags().BoolVar(&memo, "memo", false, "memoize results per state fingerprint")
	cmd.MarkFlagRequired("state")

	return cmd
}

func runEval(opts *RootOptions, rulesPath, gameName, statePath, ruleName string, memo bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	set, adapter, err := loadForGame(formatter, rulesPath, gameName)
	if err != nil {
		return err
	}

	if !adapter.CanParseState() {
		msg := fmt.Sprintf("game %q does not support state parsing", adapter.Name())
		if err := formatter.Failure(msg+"\n", "E400", msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, msg)
	}

	stateData, err := os.ReadFile(statePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading state file", err)
	}
	state, err := adapter.ParseState(stateData)
	if err != nil {
		return WrapExitError(ExitCommandError, "parsing state file", err)
	}

	var evalOpts []eval.Option
	if memo {
		evalOpts = append(evalOpts, eval.WithMemo())
	}
	ev := eval.New(adapter, evalOpts...)

	report := EvalReport{Game: adapter.Name(), State: statePath}
	matched := false
	for _, named := range set.Rules {
		if ruleName != "" && named.Name != ruleName {
			continue
		}
		matched = true

		result := validate.Validate(named.Root, adapter.Registry())
		if !result.OK() {
			var sb strings.Builder
			fmt.Fprintf(&sb, "✗ %s\n", named.Name)
			for _, d := range result.Diagnostics() {
				fmt.Fprintf(&sb, "  %s\n", d)
			}
			if err := formatter.Failure(sb.String(), result.Diagnostics()[0].Code, "validation failed", result.Diagnostics()); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("rule %q failed validation", named.Name))
		}

		ok, err := ev.Evaluate(result.Valid(), state)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("evaluating rule %q", named.Name), err)
		}
		report.Results = append(report.Results, EvalResult{Name: named.Name, Result: ok})
	}
	if !matched {
		return NewExitError(ExitCommandError, fmt.Sprintf("rule %q not found in %s", ruleName, rulesPath))
	}

	var sb strings.Builder
	for _, r := range report.Results {
		fmt.Fprintf(&sb, "%-5v %s\n", r.Result, r.Name)
	}
	return formatter.Success(sb.String(), report)
}
