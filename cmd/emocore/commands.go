package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/qubicDB/emocore/pkg/core"
)

// printJSON writes v as indented JSON, or single-line with --compact.
func (a *app) printJSON(v any) error {
	var (
		data []byte
		err  error
	)
	if a.compact {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

// ── classify ────────────────────────────────────────────

func (a *app) classifyCmd() *cobra.Command {
	var history []string
	var logResult bool
	var sessionID string

	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify text into an emotion distribution",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			res := a.engine.Classify(cmd.Context(), text, history)

			out := map[string]any{"result": res}
			if logResult {
				out["logged"] = a.engine.LogAnalysis(cmd.Context(), sessionID, text, res)
			}
			return a.printJSON(out)
		},
	}

	cmd.Flags().StringArrayVar(&history, "history", nil, "Prior message, oldest first (repeatable)")
	cmd.Flags().BoolVar(&logResult, "log", false, "Log the result as an interaction")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id recorded with --log")
	return cmd
}

// ── log ─────────────────────────────────────────────────

func (a *app) logCmd() *cobra.Command {
	var sessionID string
	var source string

	cmd := &cobra.Command{
		Use:   "log [emotion] [intensity] [text]",
		Short: "Log a labeled interaction",
		Long:  "Log a labeled interaction. The interaction counts toward today's trend and is kept for retraining.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			emotion, err := core.ParseEmotion(args[0])
			if err != nil {
				return err
			}
			intensity, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid intensity %q: %w", args[1], err)
			}

			ack := a.engine.LogInteraction(cmd.Context(), core.InteractionRequest{
				SessionID: sessionID,
				Text:      strings.Join(args[2:], " "),
				Emotion:   emotion,
				Intensity: intensity,
				Source:    source,
			})
			if !ack.Accepted {
				return fmt.Errorf("interaction rejected: %s", ack.Reason)
			}
			return a.printJSON(ack)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id")
	cmd.Flags().StringVar(&source, "source", core.SourceRuleBased, "Label source")
	return cmd
}

// ── trend ───────────────────────────────────────────────

func (a *app) trendCmd() *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Report the emotional trend over a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := core.ParseTrendWindow(window)
			if err != nil {
				return err
			}
			return a.printJSON(a.engine.GetTrend(w))
		},
	}

	cmd.Flags().StringVarP(&window, "window", "w", string(core.WindowWeek), "Window: day, week or month")
	return cmd
}

// ── retrain ─────────────────────────────────────────────

func (a *app) retrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Relearn lexicon weights from the interaction log",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.engine.Retrain(cmd.Context())
			if perr := a.printJSON(res); perr != nil {
				return perr
			}
			return err
		},
	}
}

// ── lexicon ─────────────────────────────────────────────

type lexiconSummary struct {
	Version  uint64                  `json:"version"`
	Emotions map[core.Emotion][2]int `json:"emotions"`
}

type keywordWeight struct {
	Keyword string  `json:"keyword"`
	Weight  float64 `json:"weight"`
}

type emotionLexicon struct {
	Version  uint64          `json:"version"`
	Emotion  core.Emotion    `json:"emotion"`
	Keywords []keywordWeight `json:"keywords"`
	Phrases  []core.Phrase   `json:"phrases"`
}

func (a *app) lexiconCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lexicon [emotion]",
		Short: "Show the current lexicon",
		Long:  "Without an argument, print keyword and phrase counts per emotion. With an emotion, print its keywords by weight.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.engine.Lexicon()
			if len(args) == 0 {
				sum := lexiconSummary{Version: snap.Version(), Emotions: make(map[core.Emotion][2]int, core.EmotionCount)}
				for _, e := range core.Emotions {
					sum.Emotions[e] = [2]int{snap.KeywordCount(e), snap.PhraseCount(e)}
				}
				return a.printJSON(sum)
			}

			e, err := core.ParseEmotion(args[0])
			if err != nil {
				return err
			}
			doc := snap.Document()
			out := emotionLexicon{Version: snap.Version(), Emotion: e, Phrases: doc.Phrases[e]}
			for k, w := range doc.Keywords[e] {
				out.Keywords = append(out.Keywords, keywordWeight{Keyword: k, Weight: w})
			}
			sort.Slice(out.Keywords, func(i, j int) bool {
				if out.Keywords[i].Weight != out.Keywords[j].Weight {
					return out.Keywords[i].Weight > out.Keywords[j].Weight
				}
				return out.Keywords[i].Keyword < out.Keywords[j].Keyword
			})
			return a.printJSON(out)
		},
	}
}

// ── stats ───────────────────────────────────────────────

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show engine statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printJSON(a.engine.Stats())
		},
	}
}
