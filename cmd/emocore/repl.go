package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/daemon"
)

const replHelp = `
emocore interactive shell. Any line that is not a command is classified
with the current session's recent messages as context.

  Analysis:
    <text>                            Classify text in the current session
    \log                              Log the last result as an interaction
    \label <emotion> [intensity]      Log the last text with a corrected label
    \trend [day|week|month]           Show the emotional trend
    \retrain                          Relearn the lexicon now

  Session:
    \session                          Show the session id
    \new                              Start a new session

  Shell:
    \stats                            Engine statistics
    \help                             Show this help
    \quit  (or exit, quit, Ctrl-D)    Exit
`

// replState tracks the current session and the last classified line.
type replState struct {
	session  string
	lastText string
	last     *core.AnalysisResult
}

func (a *app) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive shell with per-session memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			daemons := daemon.NewDaemonManager(a.engine, a.cfg, a.logger)
			daemons.Start()
			defer daemons.Stop()

			a.runREPL(cmd.Context())
			return nil
		},
	}
}

func (a *app) runREPL(ctx context.Context) {
	st := &replState{session: uuid.NewString()}
	fmt.Fprintf(a.out, "emocore (lexicon v%d), session %s\nType \\help for commands, \\quit to exit.\n\n",
		a.engine.Lexicon().Version(), st.session)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(a.out, "emocore> ")
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if done := a.dispatchREPL(ctx, st, line); done {
			fmt.Fprintln(a.out, "Bye.")
			break
		}
	}
	a.engine.EndSession(st.session)
}

// dispatchREPL parses and executes one REPL line.
// Returns true when the user wants to quit.
func (a *app) dispatchREPL(ctx context.Context, st *replState, line string) bool {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case `\quit`, `\q`, "exit", "quit":
		return true

	case `\help`, `\h`, "help":
		fmt.Fprint(a.out, replHelp)

	case `\session`:
		fmt.Fprintf(a.out, "session: %s\n", st.session)

	case `\new`:
		a.engine.EndSession(st.session)
		*st = replState{session: uuid.NewString()}
		fmt.Fprintf(a.out, "new session: %s\n", st.session)

	case `\log`:
		if st.last == nil {
			fmt.Fprintln(a.out, "nothing to log yet")
			return false
		}
		a.report(a.engine.LogAnalysis(ctx, st.session, st.lastText, *st.last))

	case `\label`:
		if st.lastText == "" || len(parts) < 2 {
			fmt.Fprintln(a.out, `usage: \label <emotion> [intensity] (after classifying a line)`)
			return false
		}
		req := core.InteractionRequest{
			SessionID: st.session,
			Text:      st.lastText,
			Emotion:   core.Emotion(parts[1]),
			Intensity: 0.7,
			Source:    "user",
		}
		if len(parts) > 2 {
			if _, err := fmt.Sscanf(parts[2], "%g", &req.Intensity); err != nil {
				fmt.Fprintf(a.out, "invalid intensity %q\n", parts[2])
				return false
			}
		}
		a.report(a.engine.LogInteraction(ctx, req))

	case `\trend`:
		window := core.WindowWeek
		if len(parts) > 1 {
			w, err := core.ParseTrendWindow(parts[1])
			if err != nil {
				fmt.Fprintf(a.out, "error: %v\n", err)
				return false
			}
			window = w
		}
		a.report(a.engine.GetTrend(window))

	case `\retrain`:
		res, err := a.engine.Retrain(ctx)
		if err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
		a.report(res)

	case `\stats`:
		a.report(a.engine.Stats())

	default:
		if strings.HasPrefix(cmd, `\`) {
			fmt.Fprintf(a.out, "unknown command %s (try \\help)\n", cmd)
			return false
		}
		res := a.engine.ClassifySession(ctx, st.session, line)
		st.lastText = line
		st.last = &res
		a.report(res)
	}
	return false
}

func (a *app) report(v any) {
	if err := a.printJSON(v); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
}
