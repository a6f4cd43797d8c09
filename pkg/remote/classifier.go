// Package remote wraps an OpenAI-compatible chat model as an optional
// high-accuracy emotion classifier. Every call is a single attempt bounded
// by a timeout, a rate limiter and a circuit breaker; callers fall back to
// the rule-based path on any error.
package remote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/qubicDB/emocore/pkg/core"
)

// Reply is the JSON object the model must return.
type Reply struct {
	Emotion    string             `json:"emotion" jsonschema:"required,description=primary emotion label"`
	Confidence float64            `json:"confidence" jsonschema:"required,minimum=0,maximum=1"`
	Scores     map[string]float64 `json:"scores,omitempty" jsonschema:"description=optional score per label"`
}

// Classifier calls a chat completion endpoint.
type Classifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	prompt  string
	logger  zerolog.Logger
}

// New builds a classifier from cfg. It returns core.ErrExternalDisabled
// when the classifier is switched off.
func New(cfg core.ExternalConfig, logger zerolog.Logger) (*Classifier, error) {
	if !cfg.Enabled {
		return nil, core.ErrExternalDisabled
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	schema, err := replySchema()
	if err != nil {
		return nil, fmt.Errorf("build reply schema: %w", err)
	}

	logger = logger.With().Str("component", "remote").Logger()
	c := &Classifier{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
		prompt:  systemPrompt(schema),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "external-classifier",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	return c, nil
}

// Classify asks the model for a label. history is sent as prior user turns.
func (c *Classifier) Classify(ctx context.Context, text string, history []string) (core.AnalysisResult, error) {
	if !c.limiter.Allow() {
		return core.AnalysisResult{}, core.ErrExternalRateLimit
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, text, history)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return core.AnalysisResult{}, fmt.Errorf("%w: %v", core.ErrExternalDown, err)
		}
		return core.AnalysisResult{}, err
	}

	reply := out.(Reply)
	return toResult(reply, len(history))
}

// State reports the breaker state.
func (c *Classifier) State() string {
	return c.breaker.State().String()
}

func (c *Classifier) complete(ctx context.Context, text string, history []string) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.prompt})
	for _, h := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: h})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
		MaxTokens:   256,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Reply{}, err
	}
	if len(resp.Choices) == 0 {
		return Reply{}, fmt.Errorf("%w: no choices", core.ErrExternalBadReply)
	}

	return parseReply(resp.Choices[0].Message.Content)
}

func parseReply(content string) (Reply, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply Reply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", core.ErrExternalBadReply, err)
	}
	if _, err := core.ParseEmotion(reply.Emotion); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", core.ErrExternalBadReply, err)
	}
	return reply, nil
}

// toResult converts a validated reply. Scores naming unknown labels are
// ignored; scores that disagree with the reported label are discarded in
// favor of a one-hot distribution.
func toResult(reply Reply, contextLength int) (core.AnalysisResult, error) {
	primary, err := core.ParseEmotion(reply.Emotion)
	if err != nil {
		return core.AnalysisResult{}, fmt.Errorf("%w: %v", core.ErrExternalBadReply, err)
	}

	var v core.ScoreVector
	for label, s := range reply.Scores {
		if e, err := core.ParseEmotion(label); err == nil && s > 0 && !math.IsNaN(s) {
			v.Add(e, s)
		}
	}
	v = v.Normalized()
	if top, _ := v.Argmax(); !v.NonZero() || top != primary {
		v = core.ScoreVector{}
		v.Set(primary, 1)
	}

	_, topScore := v.Argmax()
	confidence := math.Max(0, math.Min(1, reply.Confidence))
	return core.AnalysisResult{
		PrimaryEmotion: primary,
		Emotions:       v.Map(),
		Intensity:      math.Min(1, topScore*1.5),
		Metadata: core.AnalysisMetadata{
			Source:          core.SourceExternal,
			Confidence:      confidence,
			ContextLength:   contextLength,
			PatternStrength: 1.0,
		},
	}, nil
}

func replySchema() (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&Reply{})

	if prop, ok := schema.Properties.Get("emotion"); ok {
		labels := make([]any, 0, core.EmotionCount)
		for _, e := range core.Emotions {
			labels = append(labels, string(e))
		}
		prop.Enum = labels
	}

	b, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func systemPrompt(schema string) string {
	labels := make([]string, 0, core.EmotionCount)
	for _, e := range core.Emotions {
		labels = append(labels, string(e))
	}
	return "You classify the emotion expressed in the user's last message, using earlier " +
		"messages only as context. Allowed labels: " + strings.Join(labels, ", ") + ". " +
		"Reply with a single JSON object matching this schema and nothing else: " + schema
}
