package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/persistence"
)

func TestE2EDurability_StateSurvivesRestart(t *testing.T) {
	c := newClock()
	f := openEngine(t, "", c, true)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		f.engine.LogInteraction(ctx, core.InteractionRequest{
			Text:      "the marathon training plan",
			Emotion:   core.Excited,
			Intensity: 0.9,
		})
	}
	if res, err := f.engine.Retrain(ctx); err != nil || res.Status != core.RetrainSuccess {
		t.Fatalf("retrain: %v %+v", err, res)
	}
	before := f.engine.GetTrend(core.WindowWeek)
	f.close(t)

	for _, name := range []string{persistence.LexiconFile, persistence.TrendFile, persistence.InteractionsFile} {
		if _, err := os.Stat(filepath.Join(f.dir, name)); err != nil {
			t.Fatalf("expected %s on disk: %v", name, err)
		}
	}

	g := openEngine(t, f.dir, c, true)
	defer g.close(t)

	if v := g.engine.Lexicon().Version(); v != 1 {
		t.Fatalf("expected lexicon version 1 after restart, got %d", v)
	}
	if _, ok := g.engine.Lexicon().Weight(core.Excited, "marathon"); !ok {
		t.Fatal("learned keyword lost across restart")
	}
	after := g.engine.GetTrend(core.WindowWeek)
	if after.DaysAnalyzed != before.DaysAnalyzed || after.DominantEmotions[0] != before.DominantEmotions[0] {
		t.Fatalf("trend changed across restart:\nbefore %+v\nafter  %+v", before, after)
	}

	records, err := g.store.ReadInteractions()
	if err != nil {
		t.Fatalf("read interactions: %v", err)
	}
	if len(records) != 12 {
		t.Fatalf("expected 12 journaled interactions, got %d", len(records))
	}
}

func TestE2EDurability_CorruptSnapshotsFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{persistence.LexiconFile, persistence.TrendFile} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("definitely not a snapshot"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	f := openEngine(t, dir, nil, false)
	defer f.close(t)

	if v := f.engine.Lexicon().Version(); v != 0 {
		t.Fatalf("expected built-in lexicon, got version %d", v)
	}
	if got := f.engine.Classify(context.Background(), "That was infuriating to deal with", nil).PrimaryEmotion; got != core.Angry {
		t.Fatalf("defaults should still classify, got %s", got)
	}
	if rep := f.engine.GetTrend(core.WindowMonth); rep.DaysAnalyzed != 0 {
		t.Fatalf("expected empty trend, got %d days", rep.DaysAnalyzed)
	}

	for _, name := range []string{persistence.LexiconFile, persistence.TrendFile} {
		if _, err := os.Stat(filepath.Join(dir, name+".corrupt")); err != nil {
			t.Fatalf("expected %s to be quarantined: %v", name, err)
		}
	}
}

func TestE2EDurability_TornInteractionLogTail(t *testing.T) {
	f := openEngine(t, "", nil, false)
	for i := 0; i < 3; i++ {
		f.engine.LogInteraction(context.Background(), core.InteractionRequest{Text: "ok", Emotion: core.Calm, Intensity: 0.3})
	}
	f.close(t)

	path := filepath.Join(f.dir, persistence.InteractionsFile)
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := fh.Write([]byte{0, 0, 0, 42, 1, 2}); err != nil {
		t.Fatalf("append garbage: %v", err)
	}
	fh.Close()

	g := openEngine(t, f.dir, nil, false)
	defer g.close(t)

	records, err := g.store.ReadInteractions()
	if err != nil {
		t.Fatalf("read interactions: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected the 3 complete records, got %d", len(records))
	}
}
