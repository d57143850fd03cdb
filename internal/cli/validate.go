package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PeerInfinity/reachrules/internal/game"
	"github.com/PeerInfinity/reachrules/internal/loader"
	"github.com/PeerInfinity/reachrules/internal/store"
	"github.com/PeerInfinity/reachrules/internal/validate"
)

// RuleReport is one rule's validation outcome.
type RuleReport struct {
	Name        string                `json:"name"`
	Hash        string                `json:"hash,omitempty"`
	Diagnostics []validate.Diagnostic `json:"diagnostics,omitempty"`
}

// ValidateReport is the validate command's JSON payload.
type ValidateReport struct {
	Game            string       `json:"game"`
	Source          string       `json:"source"`
	RuleCount       int          `json:"rule_count"`
	DiagnosticCount int          `json:"diagnostic_count"`
	Rules           []RuleReport `json:"rules"`
	RunID           string       `json:"run_id,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var gameName string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "validate <rules-file>",
		Short: "Validate a rules file against a game's helper registry",
		Long: `Validate every rule in a YAML or CUE rules file against the named
game's helper registry.

All diagnostics are collected in one pass - unknown helpers, arity
mismatches, and empty composites are reported together so authoring
mistakes can be fixed in a single edit. With --db, the run is recorded
for later inspection via the history command.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], gameName, dbPath, cmd)
		},
	}

	cmd.Flags().StringVar(&gameName, "game", "", "game adapter to validate against (default: the document's game)")
	cmd.Flags().StringVar(&dbPath, "db", "", "record the run in this lint-history database")

	return cmd
}

func runValidate(opts *RootOptions, rulesPath, gameName, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	set, adapter, err := loadForGame(formatter, rulesPath, gameName)
	if err != nil {
		return err
	}

	report := ValidateReport{
		Game:   adapter.Name(),
		Source: rulesPath,
	}
	for _, named := range set.Rules {
		slog.Debug("validating rule", "rule", named.Name)
		result := validate.Validate(named.Root, adapter.Registry())

		rr := RuleReport{Name: named.Name}
		if result.OK() {
			rr.Hash = result.Valid().Hash()
		} else {
			rr.Diagnostics = result.Diagnostics()
			report.DiagnosticCount += len(rr.Diagnostics)
		}
		report.Rules = append(report.Rules, rr)
	}
	report.RuleCount = len(report.Rules)

	if dbPath != "" {
		runID, err := recordRun(cmd.Context(), dbPath, report)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		report.RunID = runID
	}

	if report.DiagnosticCount > 0 {
		text := renderValidateFailure(report)
		if err := formatter.Failure(text, firstDiagnosticCode(report), "validation failed", report); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d diagnostic(s) in %d rule(s)", report.DiagnosticCount, report.RuleCount))
	}

	return formatter.Success(renderValidateSuccess(report), report)
}

// loadForGame loads a rules file and resolves its game adapter.
// Shared by validate, normalize, and eval.
func loadForGame(formatter *OutputFormatter, rulesPath, gameName string) (*loader.RuleSet, *game.Adapter, error) {
	set, loadErrs := loader.Load(rulesPath, loader.LoadModeCollectAll)
	if len(loadErrs) > 0 {
		var sb strings.Builder
		messages := make([]string, 0, len(loadErrs))
		for _, e := range loadErrs {
			fmt.Fprintf(&sb, "%v\n", e)
			messages = append(messages, e.Error())
		}

		code := loader.ErrCodeUnreadable
		exitCode := ExitFailure
		var le *loader.LoadError
		if errors.As(loadErrs[0], &le) {
			code = le.Code
			if le.Code == loader.ErrCodeNotFound {
				exitCode = ExitCommandError
			}
		}
		if err := formatter.Failure(sb.String(), code, "failed to load rules", messages); err != nil {
			return nil, nil, err
		}
		return nil, nil, NewExitError(exitCode, loadErrs[0].Error())
	}

	if gameName == "" {
		gameName = set.Game
	}
	adapter, err := game.Lookup(gameName)
	if err != nil {
		msg := err.Error()
		if err := formatter.Failure(msg+"\n", "E404", msg, nil); err != nil {
			return nil, nil, err
		}
		return nil, nil, WrapExitError(ExitCommandError, "unknown game", err)
	}
	return set, adapter, nil
}

func recordRun(ctx context.Context, dbPath string, report ValidateReport) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer s.Close()

	var diags []store.RuleDiagnostic
	for _, rr := range report.Rules {
		for _, d := range rr.Diagnostics {
			diags = append(diags, store.RuleDiagnostic{
				RuleName: rr.Name,
				Code:     d.Code,
				Path:     d.Path,
				Message:  d.Message,
			})
		}
	}

	run := store.Run{
		ID:        store.NewRunID(),
		Game:      report.Game,
		Source:    report.Source,
		RuleCount: report.RuleCount,
	}
	if err := s.RecordRun(ctx, run, diags); err != nil {
		return "", err
	}
	slog.Debug("recorded lint run", "run_id", run.ID, "diagnostics", len(diags))
	return run.ID, nil
}

func firstDiagnosticCode(report ValidateReport) string {
	for _, rr := range report.Rules {
		if len(rr.Diagnostics) > 0 {
			return rr.Diagnostics[0].Code
		}
	}
	return ""
}

func renderValidateSuccess(report ValidateReport) string {
	var sb strings.Builder
	for _, rr := range report.Rules {
		fmt.Fprintf(&sb, "✓ %s\n", rr.Name)
	}
	fmt.Fprintf(&sb, "✓ All %d rule(s) valid for game %q\n", report.RuleCount, report.Game)
	return sb.String()
}

func renderValidateFailure(report ValidateReport) string {
	var sb strings.Builder
	for _, rr := range report.Rules {
		if len(rr.Diagnostics) == 0 {
			fmt.Fprintf(&sb, "✓ %s\n", rr.Name)
			continue
		}
		fmt.Fprintf(&sb, "✗ %s\n", rr.Name)
		for _, d := range rr.Diagnostics {
			fmt.Fprintf(&sb, "  %s\n", d)
		}
	}
	fmt.Fprintf(&sb, "✗ %d diagnostic(s) across %d rule(s)\n", report.DiagnosticCount, report.RuleCount)
	return sb.String()
}
