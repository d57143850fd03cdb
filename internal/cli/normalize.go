package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PeerInfinity/reachrules/internal/rule"
	"github.com/PeerInfinity/reachrules/internal/validate"
)

// NormalizedRule is one rule's canonical form.
type NormalizedRule struct {
	Name      string `json:"name"`
	Hash      string `json:"hash"`
	Canonical string `json:"canonical"`
}

// NormalizeReport is the normalize command's JSON payload.
type NormalizeReport struct {
	Game  string           `json:"game"`
	Rules []NormalizedRule `json:"rules"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	var gameName string

	cmd := &cobra.Command{
		Use:   "normalize <rules-file>",
		Short: "Print the canonical form and hash of each rule",
		Long: `Validate a rules file and print each rule's normalized canonical
encoding together with its content hash.

Normalization flattens nested And/Or of the same kind, drops duplicate
children, and collapses single-child composites. Two rules with the
same hash are structurally identical after normalization, so the output
is suitable for diffing rule sets across revisions.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(rootOpts, args[0], gameName, cmd)
		},
	}

	cmd.Flags().StringVar(&gameName, "game", "", "game adapter to validate against (default: the document's game)")

	return cmd
}

func runNormalize(opts *RootOptions, rulesPath, gameName string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	set, adapter, err := loadForGame(formatter, rulesPath, gameName)
	if err != nil {
		return err
	}

	report := NormalizeReport{Game: adapter.Name()}
	var failures ValidateReport
	for _, named := range set.Rules {
		result := validate.Validate(named.Root, adapter.Registry())
		if !result.OK() {
			failures.Rules = append(failures.Rules, RuleReport{Name: named.Name, Diagnostics: result.Diagnostics()})
			failures.DiagnosticCount += len(result.Diagnostics())
			continue
		}
		canonical, err := rule.MarshalCanonical(result.Valid().Root())
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("encoding rule %q", named.Name), err)
		}
		report.Rules = append(report.Rules, NormalizedRule{
			Name:      named.Name,
			Hash:      result.Valid().Hash(),
			Canonical: string(canonical),
		})
	}

	if failures.DiagnosticCount > 0 {
		failures.Game = adapter.Name()
		failures.Source = rulesPath
		failures.RuleCount = len(set.Rules)
		text := renderValidateFailure(failures)
		if err := formatter.Failure(text, firstDiagnosticCode(failures), "validation failed", failures); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d rule(s) failed validation", len(failures.Rules)))
	}

	var sb strings.Builder
	for _, nr := range report.Rules {
		fmt.Fprintf(&sb, "%s  %s\n  %s\n", nr.Hash, nr.Name, nr.Canonical)
	}
	return formatter.Success(sb.String(), report)
}
