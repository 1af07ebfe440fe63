package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskmaster/app/models"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model asked when none is configured.
	DefaultModel = "gemini-3-flash-preview"
	// DefaultTimeout bounds a single suggestion call.
	DefaultTimeout = 20 * time.Second
)

var errEmptyResponse = errors.New("empty response")

// GeminiOptions configures a Gemini suggester.
type GeminiOptions struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// Endpoint overrides the API base URL.
	Endpoint string
	Logger   logrus.FieldLogger
}

// Gemini suggests through the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
}

// New returns a Gemini suggester, or Disabled when no API key is set or the
// client cannot be built.
func New(ctx context.Context, opts GeminiOptions) Suggester {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.APIKey == "" {
		opts.Logger.Info("no AI API key configured, suggestions disabled")
		return Disabled{}
	}
	g, err := NewGemini(ctx, opts)
	if err != nil {
		opts.Logger.WithError(err).Warn("AI client unavailable, suggestions disabled")
		return Disabled{}
	}
	return g
}

// NewGemini builds the API client.
func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: API key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	g := &Gemini{
		client:  client,
		model:   opts.Model,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.log == nil {
		g.log = logrus.StandardLogger()
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "gemini",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	})
	return g, nil
}

// Subtasks asks for three to five concise subtasks of title.
func (g *Gemini) Subtasks(ctx context.Context, title string) []string {
	prompt := fmt.Sprintf("Generate 3 to 5 actionable subtasks for a task titled: %q. Be concise.", title)
	text, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	})
	if err != nil {
		g.log.WithError(err).WithField("title", title).Warn("subtask suggestion failed")
		return nil
	}

	var raw []string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		g.log.WithError(err).WithField("title", title).Warn("malformed subtask suggestion")
		return nil
	}
	subtasks := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			subtasks = append(subtasks, s)
		}
	}
	if len(subtasks) == 0 {
		return nil
	}
	return subtasks
}

// Category asks which category fits the task best.
func (g *Gemini) Category(ctx context.Context, title, description string) models.Category {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, string(c))
	}
	prompt := fmt.Sprintf(
		"Based on the task title %q and description %q, pick the best category from: %s. Return only the category name.",
		title, description, strings.Join(names, ", "),
	)

	text, err := g.generate(ctx, prompt, nil)
	if err != nil {
		g.log.WithError(err).WithField("title", title).Warn("category suggestion failed")
		return models.CategoryPersonal
	}
	c, err := models.ParseCategory(strings.Trim(text, " \n\t.\"'"))
	if err != nil {
		g.log.WithField("answer", text).Warn("unknown category suggested")
		return models.CategoryPersonal
	}
	return c
}

func (g *Gemini) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.breaker.Execute(func() (interface{}, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
		if err != nil {
			return nil, err
		}
		return responseText(resp)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
