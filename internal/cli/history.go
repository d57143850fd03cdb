package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PeerInfinity/reachrules/internal/store"
)

// RunDetail is a recorded run together with its diagnostics.
type RunDetail struct {
	Run         store.Run              `json:"run"`
	Diagnostics []store.RuleDiagnostic `json:"diagnostics"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Browse recorded validation runs",
		Long: `List validation runs recorded with validate --db, newest first.
With a run id, show that run's diagnostics instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(rootOpts, dbPath, args[0], cmd)
			}
			return runHistoryList(rootOpts, dbPath, limit, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "reachrules.db", "lint-history database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	return cmd
}

func runHistoryList(opts *RootOptions, dbPath string, limit int, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	s, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening history database", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	var sb strings.Builder
	if len(runs) == 0 {
		sb.WriteString("no recorded runs\n")
	}
	for _, r := range runs {
		status := "✓"
		if r.DiagnosticCount > 0 {
			status = "✗"
		}
		fmt.Fprintf(&sb, "%s %s  %s  game=%s rules=%d diagnostics=%d  %s\n",
			status, r.ID, r.CreatedAt.Format(time.RFC3339), r.Game, r.RuleCount, r.DiagnosticCount, r.Source)
	}
	return formatter.Success(sb.String(), runs)
}

func runHistoryShow(opts *RootOptions, dbPath, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	s, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening history database", err)
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), runID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run %q not found", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "loading run", err)
	}

	diags, err := s.DiagnosticsForRun(cmd.Context(), runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading diagnostics", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s\n  game:        %s\n  source:      %s\n  created:     %s\n  rules:       %d\n  diagnostics: %d\n",
		run.ID, run.Game, run.Source, run.CreatedAt.Format(time.RFC3339), run.RuleCount, run.DiagnosticCount)
	for _, d := range diags {
		fmt.Fprintf(&sb, "  [%s] %s: %s (%s)\n", d.Code, d.Path, d.Message, d.RuleName)
	}
	return formatter.Success(sb.String(), RunDetail{Run: run, Diagnostics: diags})
}
