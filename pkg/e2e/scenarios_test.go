package e2e

import (
	"context"
	"fmt"
	"testing"

	"github.com/qubicDB/emocore/pkg/core"
)

// TestScenarioEmptyText: blank input never errors and yields the neutral
// fallback.
func TestScenarioEmptyText(t *testing.T) {
	f := openEngine(t, "", nil, false)
	defer f.close(t)

	res := f.engine.Classify(context.Background(), "", nil)
	if res.PrimaryEmotion != core.Neutral {
		t.Fatalf("expected neutral, got %s", res.PrimaryEmotion)
	}
	if res.Metadata.Source != core.SourceFallback {
		t.Fatalf("expected fallback source, got %s", res.Metadata.Source)
	}
	if res.Intensity != 0.1 || res.Metadata.Confidence != 0.3 {
		t.Fatalf("unexpected fallback intensity/confidence: %v/%v", res.Intensity, res.Metadata.Confidence)
	}
}

// TestScenarioNegation: a negated happy keyword lands on sad.
func TestScenarioNegation(t *testing.T) {
	f := openEngine(t, "", nil, false)
	defer f.close(t)

	res := f.engine.Classify(context.Background(), "I am not happy at all", nil)
	if res.PrimaryEmotion != core.Sad {
		t.Fatalf("expected sad, got %s (%v)", res.PrimaryEmotion, res.Emotions)
	}
	if s := res.Emotions[core.Happy]; s != 0 {
		t.Fatalf("negated happy must not score, got %v", s)
	}
}

// TestScenarioSynonym: "ecstatic" is not a lexicon keyword but expands from
// "happy".
func TestScenarioSynonym(t *testing.T) {
	f := openEngine(t, "", nil, false)
	defer f.close(t)

	if _, ok := f.engine.Lexicon().Weight(core.Happy, "ecstatic"); ok {
		t.Fatal("ecstatic should only match through synonym expansion")
	}
	res := f.engine.Classify(context.Background(), "absolutely ecstatic", nil)
	if res.PrimaryEmotion != core.Happy {
		t.Fatalf("expected happy, got %s (%v)", res.PrimaryEmotion, res.Emotions)
	}
}

// TestScenarioRetrainSkipped: five labeled rows are below the minimum.
func TestScenarioRetrainSkipped(t *testing.T) {
	f := openEngine(t, "", nil, false)
	defer f.close(t)

	for i := 0; i < 5; i++ {
		f.engine.LogInteraction(context.Background(), core.InteractionRequest{
			Text:      fmt.Sprintf("quarterly review number %d", i),
			Emotion:   core.Anxious,
			Intensity: 0.6,
		})
	}
	res, err := f.engine.Retrain(context.Background())
	if err != nil {
		t.Fatalf("retrain failed: %v", err)
	}
	if res.Status != core.RetrainSkipped {
		t.Fatalf("expected skipped, got %s (%s)", res.Status, res.Message)
	}
	if v := f.engine.Lexicon().Version(); v != 0 {
		t.Fatalf("lexicon must not change, version %d", v)
	}
}

// TestScenarioPhraseIntensity: a weighted phrase drives a strong angry
// reading.
func TestScenarioPhraseIntensity(t *testing.T) {
	f := openEngine(t, "", nil, false)
	defer f.close(t)

	res := f.engine.Classify(context.Background(), "That was infuriating to deal with", nil)
	if res.PrimaryEmotion != core.Angry {
		t.Fatalf("expected angry, got %s (%v)", res.PrimaryEmotion, res.Emotions)
	}
	if res.Intensity < 0.9 {
		t.Fatalf("expected high intensity, got %v", res.Intensity)
	}
}

// TestScenarioConversation walks a session through context, logging, a
// trend report and a retrain that teaches a new word.
func TestScenarioConversation(t *testing.T) {
	f := openEngine(t, "", nil, true)
	defer f.close(t)
	ctx := context.Background()

	turns := []string{
		"I feel so lonely since the move",
		"nobody calls anymore",
		"but today my sister visited and I was happy",
	}
	var last core.AnalysisResult
	for i, turn := range turns {
		last = f.engine.ClassifySession(ctx, "conv", turn)
		if last.Metadata.ContextLength != i {
			t.Fatalf("turn %d: expected context length %d, got %d", i, i, last.Metadata.ContextLength)
		}
		f.engine.LogAnalysis(ctx, "conv", turn, last)
	}
	if last.PrimaryEmotion != core.Happy {
		t.Fatalf("expected happy on the last turn, got %s", last.PrimaryEmotion)
	}
	if last.Emotions[core.Lonely] <= 0 {
		t.Fatalf("context should carry loneliness into the last turn: %v", last.Emotions)
	}

	rep := f.engine.GetTrend(core.WindowDay)
	if rep.DaysAnalyzed != 1 || len(rep.DominantEmotions) == 0 {
		t.Fatalf("unexpected trend report: %+v", rep)
	}

	for i := 0; i < 12; i++ {
		f.engine.LogInteraction(ctx, core.InteractionRequest{
			SessionID: "conv",
			Text:      "the relocation paperwork again",
			Emotion:   core.Tired,
			Intensity: 0.7,
		})
	}
	res, err := f.engine.Retrain(ctx)
	if err != nil || res.Status != core.RetrainSuccess {
		t.Fatalf("retrain: %v %+v", err, res)
	}
	if got := f.engine.Classify(ctx, "relocation", nil).PrimaryEmotion; got != core.Tired {
		t.Fatalf("expected learned keyword to classify as tired, got %s", got)
	}
}
