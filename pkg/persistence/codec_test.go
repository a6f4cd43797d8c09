package persistence

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/qubicDB/emocore/pkg/core"
)

func testLexiconDoc() *core.LexiconDocument {
	return &core.LexiconDocument{
		Version:   7,
		UpdatedAt: time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
		Keywords: map[core.Emotion]map[string]float64{
			core.Happy: {"joyful": 1.2, "glad": 0.8},
			core.Sad:   {"gloomy": 0.9},
		},
		Phrases: map[core.Emotion][]core.Phrase{
			core.Angry: {{Words: []string{"fed", "up"}, Weight: 1.1}},
		},
	}
}

func TestCodecEncodeDecodeWithCompression(t *testing.T) {
	codec := NewCodec(true)
	doc := testLexiconDoc()
	doc.Keywords[core.Calm] = make(map[string]float64)
	for i := 0; i < 200; i++ {
		doc.Keywords[core.Calm][strings.Repeat("calm", i%40+1)] = 0.5
	}

	data, err := codec.Encode(MagicLexicon, doc)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Encoded data should not be empty")
	}

	var decoded core.LexiconDocument
	if err := codec.Decode(MagicLexicon, data, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Version != doc.Version {
		t.Errorf("Version mismatch: expected %d, got %d", doc.Version, decoded.Version)
	}
	if !decoded.UpdatedAt.Equal(doc.UpdatedAt) {
		t.Errorf("UpdatedAt mismatch: expected %v, got %v", doc.UpdatedAt, decoded.UpdatedAt)
	}
	if decoded.Keywords[core.Happy]["joyful"] != 1.2 {
		t.Errorf("keyword weight lost: %v", decoded.Keywords[core.Happy])
	}
	if got := decoded.Phrases[core.Angry]; len(got) != 1 || got[0].Text() != "fed up" {
		t.Errorf("phrases lost: %v", got)
	}
}

func TestCodecEncodeDecodeWithoutCompression(t *testing.T) {
	codec := NewCodec(false)
	doc := core.TrendDocument{Days: map[string][]core.TrendEntry{
		"2026-02-01": {{
			Time:     time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
			Emotions: []core.EmotionScore{{Emotion: core.Calm, Score: 0.7}},
			Source:   core.SourceRuleBased,
		}},
	}}

	data, err := codec.Encode(MagicTrend, doc)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded core.TrendDocument
	if err := codec.Decode(MagicTrend, data, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	entries := decoded.Days["2026-02-01"]
	if len(entries) != 1 || entries[0].Emotions[0].Emotion != core.Calm {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestCodecDeterministic(t *testing.T) {
	codec := NewCodec(true)
	a, err := codec.Encode(MagicLexicon, testLexiconDoc())
	if err != nil {
		t.Fatal(err)
	}
	b, err := codec.Encode(MagicLexicon, testLexiconDoc())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("equal documents should encode to equal bytes")
	}
}

func TestCodecMagicBytes(t *testing.T) {
	codec := NewCodec(false)
	data, _ := codec.Encode(MagicTrend, core.TrendDocument{})

	if string(data[:4]) != MagicTrend {
		t.Errorf("Expected magic bytes '%s', got '%s'", MagicTrend, string(data[:4]))
	}

	var doc core.LexiconDocument
	if err := codec.Decode(MagicLexicon, data, &doc); !errors.Is(err, core.ErrSnapshotCorrupt) {
		t.Errorf("decoding a trend file as lexicon should fail as corrupt, got %v", err)
	}
}

func TestCodecInvalidData(t *testing.T) {
	codec := NewCodec(false)
	var doc core.LexiconDocument

	if err := codec.Decode(MagicLexicon, []byte{1, 2, 3}, &doc); !errors.Is(err, core.ErrSnapshotCorrupt) {
		t.Errorf("Should fail on too short data, got %v", err)
	}

	data, _ := codec.Encode(MagicLexicon, testLexiconDoc())
	data[len(data)-1] ^= 0xFF
	if err := codec.Decode(MagicLexicon, data, &doc); !errors.Is(err, core.ErrSnapshotCorrupt) {
		t.Errorf("Should fail on checksum mismatch, got %v", err)
	}

	truncated, _ := codec.Encode(MagicLexicon, testLexiconDoc())
	if err := codec.Decode(MagicLexicon, truncated[:len(truncated)-3], &doc); !errors.Is(err, core.ErrSnapshotCorrupt) {
		t.Errorf("Should fail on truncated data, got %v", err)
	}

	if _, err := codec.Encode("BAD", doc); err == nil {
		t.Error("Encode should reject a malformed magic")
	}
}
