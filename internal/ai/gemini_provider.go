package ai

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/fdg312/nutri-hub/internal/config"
)

// GeminiProvider calls Gemini models through Vertex AI.
type GeminiProvider struct {
	client      *genai.Client
	modelName   string
	maxTokens   int32
	temperature float32
}

func NewGeminiProvider(ctx context.Context, cfg *config.Config) (*GeminiProvider, error) {
	opts := []option.ClientOption{}
	if cfg.Gemini.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Gemini.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.Gemini.ProjectID, cfg.Gemini.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}

	return &GeminiProvider{
		client:      client,
		modelName:   cfg.Gemini.Model,
		maxTokens:   int32(cfg.AIMaxOutputTokens),
		temperature: float32(cfg.AITemperature),
	}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini:" + p.modelName
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(p.temperature)
	if p.maxTokens > 0 {
		model.SetMaxOutputTokens(p.maxTokens)
	}
	model.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		model.ResponseSchema = toGenaiSchema(req.Schema)
	}

	parts := make([]genai.Part, 0, len(req.Parts))
	for _, part := range req.Parts {
		if part.IsBlob() {
			parts = append(parts, genai.Blob{MIMEType: part.MIMEType, Data: part.Data})
			continue
		}
		parts = append(parts, genai.Text(part.Text))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Close releases the underlying gRPC connection.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toGenaiSchema(v)
		}
	}
	return out
}

func genaiType(t SchemaType) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeString:
		return genai.TypeString
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	default:
		return genai.TypeUnspecified
	}
}
