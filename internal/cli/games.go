package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PeerInfinity/reachrules/internal/game"
)

// GameInfo describes one registered adapter.
type GameInfo struct {
	Name        string            `json:"name"`
	HelperCount int               `json:"helper_count"`
	Helpers     map[string]string `json:"helpers"` // name -> signature
	StateParser bool              `json:"state_parser"`
}

// NewGamesCommand creates the games command.
func NewGamesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "games",
		Short:         "List registered game adapters",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGames(rootOpts, cmd)
		},
	}
	return cmd
}

func runGames(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	var infos []GameInfo
	var sb strings.Builder
	for _, name := range game.Names() {
		adapter, err := game.Lookup(name)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("constructing adapter %q", name), err)
		}
		reg := adapter.Registry()

		info := GameInfo{
			Name:        adapter.Name(),
			HelperCount: reg.Len(),
			Helpers:     make(map[string]string, reg.Len()),
			StateParser: adapter.CanParseState(),
		}
		fmt.Fprintf(&sb, "%s  (%d helpers", info.Name, info.HelperCount)
		if info.StateParser {
			sb.WriteString(", state parser")
		}
		sb.WriteString(")\n")
		for _, h := range reg.Names() {
			sig, _ := reg.Lookup(h)
			info.Helpers[h] = sig.String()
			fmt.Fprintf(&sb, "  %s%s\n", h, sig)
		}
		infos = append(infos, info)
	}
	if len(infos) == 0 {
		sb.WriteString("no games registered\n")
	}
	return formatter.Success(sb.String(), infos)
}
