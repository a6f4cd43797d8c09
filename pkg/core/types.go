package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Emotion is a label from the fixed emotion set.
type Emotion string

const (
	Happy       Emotion = "happy"
	Sad         Emotion = "sad"
	Angry       Emotion = "angry"
	Fearful     Emotion = "fearful"
	Disgusted   Emotion = "disgusted"
	Surprised   Emotion = "surprised"
	Confused    Emotion = "confused"
	Interested  Emotion = "interested"
	Excited     Emotion = "excited"
	Anxious     Emotion = "anxious"
	Calm        Emotion = "calm"
	Tired       Emotion = "tired"
	Bored       Emotion = "bored"
	Grateful    Emotion = "grateful"
	Hopeful     Emotion = "hopeful"
	Lonely      Emotion = "lonely"
	Proud       Emotion = "proud"
	Embarrassed Emotion = "embarrassed"
	Neutral     Emotion = "neutral"
)

// EmotionCount is the size of the label set.
const EmotionCount = 19

// Emotions lists every label in tie-break order. Callers must not modify it.
var Emotions = [EmotionCount]Emotion{
	Happy, Sad, Angry, Fearful, Disgusted, Surprised, Confused, Interested, Excited,
	Anxious, Calm, Tired, Bored, Grateful, Hopeful, Lonely, Proud, Embarrassed, Neutral,
}

var emotionIndex = func() map[Emotion]int {
	m := make(map[Emotion]int, EmotionCount)
	for i, e := range Emotions {
		m[e] = i
	}
	return m
}()

// Index returns the label's position in the fixed order, or -1.
func (e Emotion) Index() int {
	if i, ok := emotionIndex[e]; ok {
		return i
	}
	return -1
}

// Valid reports whether e belongs to the label set.
func (e Emotion) Valid() bool {
	_, ok := emotionIndex[e]
	return ok
}

// ParseEmotion validates and canonicalizes a label.
func ParseEmotion(s string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmotion, s)
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// ScoreVector
// ---------------------------------------------------------------------------

// ScoreVector holds exactly one score per label, indexed by label order.
// Raw scorer output may hold negative entries; normalized vectors never do.
type ScoreVector [EmotionCount]float64

// Get returns the score for e. Unknown labels read as zero.
func (v ScoreVector) Get(e Emotion) float64 {
	if i := e.Index(); i >= 0 {
		return v[i]
	}
	return 0
}

// Add adds delta to e's score.
func (v *ScoreVector) Add(e Emotion, delta float64) {
	if i := e.Index(); i >= 0 {
		v[i] += delta
	}
}

// Set overwrites e's score.
func (v *ScoreVector) Set(e Emotion, value float64) {
	if i := e.Index(); i >= 0 {
		v[i] = value
	}
}

// Sum returns the sum of all entries.
func (v ScoreVector) Sum() float64 {
	total := 0.0
	for _, s := range v {
		total += s
	}
	return total
}

// Clamp returns a copy with negative entries set to zero.
func (v ScoreVector) Clamp() ScoreVector {
	for i, s := range v {
		if s < 0 {
			v[i] = 0
		}
	}
	return v
}

// Normalized clamps v and scales it to sum 1. The zero vector stays zero.
func (v ScoreVector) Normalized() ScoreVector {
	v = v.Clamp()
	total := v.Sum()
	if total <= 0 {
		return ScoreVector{}
	}
	for i := range v {
		v[i] /= total
	}
	return v
}

// NonZero reports whether any entry is positive.
func (v ScoreVector) NonZero() bool {
	for _, s := range v {
		if s > 0 {
			return true
		}
	}
	return false
}

// Argmax returns the highest-scoring label. Ties resolve to the earlier label.
func (v ScoreVector) Argmax() (Emotion, float64) {
	best := 0
	for i := 1; i < EmotionCount; i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return Emotions[best], v[best]
}

// Map returns the positive entries keyed by label.
func (v ScoreVector) Map() map[Emotion]float64 {
	out := make(map[Emotion]float64)
	for i, s := range v {
		if s > 0 {
			out[Emotions[i]] = s
		}
	}
	return out
}

// Top returns up to n positive entries ordered by score, ties by label order.
func (v ScoreVector) Top(n int) []EmotionScore {
	out := make([]EmotionScore, 0, EmotionCount)
	for i, s := range v {
		if s > 0 {
			out = append(out, EmotionScore{Emotion: Emotions[i], Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// VectorFromMap builds a vector from a label map, ignoring unknown labels.
func VectorFromMap(m map[Emotion]float64) ScoreVector {
	var v ScoreVector
	for e, s := range m {
		v.Add(e, s)
	}
	return v
}

// EmotionScore pairs a label with a score.
type EmotionScore struct {
	Emotion Emotion `json:"emotion" msgpack:"emotion"`
	Score   float64 `json:"score" msgpack:"score"`
}

// ---------------------------------------------------------------------------
// Analysis
// ---------------------------------------------------------------------------

// Result sources.
const (
	SourceRuleBased = "rule_based"
	SourceFallback  = "fallback"
	SourceExternal  = "external"
)

// AnalysisMetadata describes how a result was produced.
type AnalysisMetadata struct {
	Source          string  `json:"source"`
	Confidence      float64 `json:"confidence"`
	ContextLength   int     `json:"context_length"`
	PatternStrength float64 `json:"pattern_strength"`
}

// AnalysisResult is the immutable outcome of classifying one text.
type AnalysisResult struct {
	PrimaryEmotion Emotion             `json:"primary_emotion"`
	Emotions       map[Emotion]float64 `json:"emotions"`
	Intensity      float64             `json:"intensity"`
	Metadata       AnalysisMetadata    `json:"metadata"`
}

// NeutralResult is returned when no emotional signal is found.
func NeutralResult(contextLength int) AnalysisResult {
	return AnalysisResult{
		PrimaryEmotion: Neutral,
		Emotions:       map[Emotion]float64{Neutral: 1.0},
		Intensity:      0.1,
		Metadata: AnalysisMetadata{
			Source:          SourceFallback,
			Confidence:      0.3,
			ContextLength:   contextLength,
			PatternStrength: 1.0,
		},
	}
}

// TopTwoMargin returns the gap between the two highest scores of r.
// Callers that want a "mixed" reading can threshold it.
func TopTwoMargin(r AnalysisResult) float64 {
	top := VectorFromMap(r.Emotions).Top(2)
	switch len(top) {
	case 0:
		return 0
	case 1:
		return top[0].Score
	default:
		return top[0].Score - top[1].Score
	}
}

// Phrase is an ordered word sequence matched as a unit.
type Phrase struct {
	Words  []string `json:"words" msgpack:"words"`
	Weight float64  `json:"weight" msgpack:"weight"`
}

// Text returns the phrase as space-joined words.
func (p Phrase) Text() string { return strings.Join(p.Words, " ") }

// ---------------------------------------------------------------------------
// Persisted documents
// ---------------------------------------------------------------------------

// LexiconDocument is the persisted form of a lexicon snapshot.
type LexiconDocument struct {
	Version   uint64                         `msgpack:"version"`
	UpdatedAt time.Time                      `msgpack:"updated_at"`
	Keywords  map[Emotion]map[string]float64 `msgpack:"keywords"`
	Phrases   map[Emotion][]Phrase           `msgpack:"phrases"`
}

// TrendEntry is one logged interaction as seen by the trend store.
type TrendEntry struct {
	Time     time.Time      `msgpack:"time"`
	Emotions []EmotionScore `msgpack:"emotions"`
	Source   string         `msgpack:"source,omitempty"`
}

// TrendDocument is the persisted form of the trend store.
type TrendDocument struct {
	Days map[string][]TrendEntry `msgpack:"days"`
}

// InteractionRecord is one row of the interaction log.
type InteractionRecord struct {
	ID        string    `msgpack:"id" json:"id"`
	SessionID string    `msgpack:"session_id" json:"session_id"`
	Text      string    `msgpack:"text" json:"text"`
	Emotion   Emotion   `msgpack:"emotion" json:"emotion"`
	Intensity float64   `msgpack:"intensity" json:"intensity"`
	Source    string    `msgpack:"source" json:"source"`
	Timestamp time.Time `msgpack:"timestamp" json:"timestamp"`
}

// NewInteractionID returns a fresh record identifier.
func NewInteractionID() string {
	return uuid.New().String()
}

// InteractionRequest is the input of LogInteraction. Distribution is
// optional; without it the trend entry carries only Emotion at Intensity.
type InteractionRequest struct {
	SessionID    string
	Text         string
	Emotion      Emotion
	Intensity    float64
	Source       string
	Distribution map[Emotion]float64
}

// LogAck acknowledges a logged interaction.
type LogAck struct {
	ID       string `json:"id,omitempty"`
	Accepted bool   `json:"accepted"`
	Day      string `json:"day,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ---------------------------------------------------------------------------
// Trend reporting
// ---------------------------------------------------------------------------

// TrendWindow selects how many days a trend report covers.
type TrendWindow string

const (
	WindowDay   TrendWindow = "day"
	WindowWeek  TrendWindow = "week"
	WindowMonth TrendWindow = "month"
)

// Days returns the number of calendar days in the window.
func (w TrendWindow) Days() int {
	switch w {
	case WindowDay:
		return 1
	case WindowWeek:
		return 7
	case WindowMonth:
		return 30
	default:
		return 0
	}
}

// ParseTrendWindow validates a window name.
func ParseTrendWindow(s string) (TrendWindow, error) {
	w := TrendWindow(strings.ToLower(strings.TrimSpace(s)))
	if w.Days() == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	return w, nil
}

// Pattern types.
const (
	PatternConsistent  = "consistent"
	PatternAlternating = "alternating"
	PatternTrending    = "trending"
	PatternVariable    = "variable"
)

// Pattern describes the shape of the daily primary emotions.
type Pattern struct {
	Type      string    `json:"type"`
	Emotion   Emotion   `json:"emotion,omitempty"`
	Emotions  []Emotion `json:"emotions,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Strength  float64   `json:"strength"`
}

// DailyPrimary is the dominant emotion of one day.
type DailyPrimary struct {
	Day     string  `json:"day"`
	Emotion Emotion `json:"emotion"`
	Share   float64 `json:"share"`
}

// TrendReport summarizes the trend store over a window.
type TrendReport struct {
	Window           TrendWindow         `json:"window"`
	DaysAnalyzed     int                 `json:"days_analyzed"`
	DominantEmotions []EmotionScore      `json:"dominant_emotions"`
	DailyPrimary     []DailyPrimary      `json:"daily_primary"`
	Pattern          Pattern             `json:"pattern"`
	WellbeingScore   float64             `json:"wellbeing_score"`
	Distribution     map[Emotion]float64 `json:"distribution"`
}

// ---------------------------------------------------------------------------
// Retraining
// ---------------------------------------------------------------------------

// Retrain statuses.
const (
	RetrainSuccess = "success"
	RetrainSkipped = "skipped"
	RetrainError   = "error"
)

// RetrainResult reports the outcome of one retraining run.
type RetrainResult struct {
	Status          string `json:"status"`
	SamplesUsed     int    `json:"samples_used"`
	KeywordsUpdated int    `json:"keywords_updated"`
	PhrasesUpdated  int    `json:"phrases_updated"`
	Message         string `json:"message,omitempty"`
}
