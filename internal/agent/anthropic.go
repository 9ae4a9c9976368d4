package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
	"github.com/salescope/salescope/internal/dataset"
	"github.com/salescope/salescope/internal/query"
	"github.com/salescope/salescope/internal/security"
)

// Interpreter is the external fallback: it sends the raw question plus
// a schema description to an Anthropic-compatible model and expects a
// JSON StructuredQuery back. The response is treated as untrusted and
// passes the allow-list validator before anything downstream sees it;
// nothing the model returns is ever executed.
type Interpreter struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
	validator *security.ResponseValidator

	schema     *dataset.Schema
	promptOnce sync.Once
	prompt     string
}

// New creates the fallback interpreter. baseURL overrides the API
// endpoint for compatible proxies; empty uses the default.
func New(apiKey, model, baseURL string, timeout time.Duration, sch *dataset.Schema) *Interpreter {
	if model == "" {
		model = "claude-sonnet-4-6"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Interpreter{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: 1024,
		timeout:   timeout,
		validator: security.NewResponseValidator(sch),
		schema:    sch,
	}
}

func (i *Interpreter) Name() string { return "anthropic" }

// Interpret sends one request, bounded by the configured timeout, and
// validates the reply. One attempt only: on any failure the error is
// wrapped as ErrExternalService and the caller decides what to surface.
func (i *Interpreter) Interpret(ctx context.Context, text string) (*query.StructuredQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	i.promptOnce.Do(func() { i.prompt = BuildSystemPrompt(i.schema) })

	start := time.Now()
	resp, err := i.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(i.model)),
		MaxTokens: anthropic.F(int64(i.maxTokens)),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(i.prompt),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", query.ErrExternalService, err)
	}

	var content string
	for _, block := range resp.Content {
		if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
			content += b.Text
		}
	}

	q, err := i.validator.Parse(content)
	if err != nil {
		log.Warn().Err(err).Str("model", i.model).Msg("fallback response rejected")
		return nil, fmt.Errorf("%w: %v", query.ErrExternalService, err)
	}

	log.Debug().
		Dur("duration", time.Since(start)).
		Str("model", i.model).
		Str("aggregation", string(q.Aggregation)).
		Str("group_by", q.GroupBy).
		Msg("fallback interpretation")
	return q, nil
}
