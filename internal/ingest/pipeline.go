// Package ingest turns free text, a photo or a voice note into a meal draft
// with one call to the inference service.
package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/ai"
	"github.com/fdg312/nutri-hub/internal/metrics"
	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/userctx"
)

// Instruction is appended after the user's inputs on every request.
const Instruction = `Analyze the meal. Strict JSON: { "name": string, "calories": number, "protein": number, "carbs": number, "fat": number }.`

const outcomeOK = "ok"

// MealSchema is the response shape requested from the inference service.
var MealSchema = &ai.Schema{
	Type: ai.TypeObject,
	Properties: map[string]*ai.Schema{
		"name":     {Type: ai.TypeString},
		"calories": {Type: ai.TypeNumber},
		"protein":  {Type: ai.TypeNumber},
		"carbs":    {Type: ai.TypeNumber},
		"fat":      {Type: ai.TypeNumber},
	},
	Required: mealFields,
}

type Pipeline struct {
	provider      ai.Provider
	logger        *zap.Logger
	metrics       *metrics.Metrics
	timeout       time.Duration
	maxMediaBytes int64
}

type Option func(*Pipeline)

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTimeout bounds the single inference call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithMaxMediaBytes limits each decoded image or audio payload.
func WithMaxMediaBytes(n int64) Option {
	return func(p *Pipeline) { p.maxMediaBytes = n }
}

func NewPipeline(provider ai.Provider, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		logger:   zap.NewNop(),
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// BuildParts assembles the request parts in the fixed order: description,
// image, audio, instruction.
func BuildParts(text string, image, audio []byte) []ai.Part {
	parts := make([]ai.Part, 0, 4)
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, ai.TextPart("Description: "+t))
	}
	if len(image) > 0 {
		parts = append(parts, ai.BlobPart(ImageMIMEType, image))
	}
	if len(audio) > 0 {
		parts = append(parts, ai.BlobPart(AudioMIMEType, audio))
	}
	return append(parts, ai.TextPart(Instruction))
}

// Ingest makes exactly one inference call. Every failure is returned as *Error.
func (p *Pipeline) Ingest(ctx context.Context, in Input) (nutrition.MealDraft, error) {
	start := time.Now()
	logger := userctx.Logger(ctx, p.logger)

	if in.IsEmpty() {
		return p.fail(logger, start, &Error{Reason: ReasonNoInput, Err: ErrNoInput})
	}

	image, err := decodeMedia("image", in.ImageBase64, p.maxMediaBytes)
	if err != nil {
		return p.fail(logger, start, &Error{Reason: ReasonInvalidMedia, Err: err})
	}
	audio, err := decodeMedia("audio", in.AudioBase64, p.maxMediaBytes)
	if err != nil {
		return p.fail(logger, start, &Error{Reason: ReasonInvalidMedia, Err: err})
	}
	if strings.TrimSpace(in.Text) == "" && len(image) == 0 && len(audio) == 0 {
		return p.fail(logger, start, &Error{Reason: ReasonNoInput, Err: ErrNoInput})
	}

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	text, err := p.provider.Generate(callCtx, ai.Request{
		Purpose: ai.PurposeMeal,
		Parts:   BuildParts(in.Text, image, audio),
		Schema:  MealSchema,
	})
	if err != nil {
		if errors.Is(err, ai.ErrEmptyResponse) {
			return p.fail(logger, start, &Error{Reason: ReasonEmptyResponse, Err: err})
		}
		return p.fail(logger, start, &Error{Reason: ReasonInferenceFailed, Err: err})
	}
	if strings.TrimSpace(text) == "" {
		return p.fail(logger, start, &Error{Reason: ReasonEmptyResponse, Err: ai.ErrEmptyResponse})
	}

	draft, err := ParseMealDraft(text)
	if err != nil {
		return p.fail(logger, start, &Error{Reason: ReasonInvalidResponse, Err: err})
	}

	took := time.Since(start)
	p.metrics.IngestionFinished(outcomeOK, took)
	logger.Info("meal ingested",
		zap.String("provider", p.provider.Name()),
		zap.String("name", draft.Name),
		zap.Float64("calories", draft.Calories),
		zap.Duration("took", took),
	)
	return draft, nil
}

func (p *Pipeline) fail(logger *zap.Logger, start time.Time, err *Error) (nutrition.MealDraft, error) {
	p.metrics.IngestionFinished(err.Reason, time.Since(start))
	if err.Reason == ReasonNoInput {
		logger.Debug("meal ingestion rejected", zap.String("reason", err.Reason))
	} else {
		logger.Warn("meal ingestion failed",
			zap.String("provider", p.provider.Name()),
			zap.String("reason", err.Reason),
			zap.Error(err.Err),
		)
	}
	return nutrition.MealDraft{}, err
}
