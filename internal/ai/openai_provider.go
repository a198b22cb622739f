package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/nutri-hub/internal/config"
)

const openAIBaseURL = "https://api.openai.com/v1"

// arrayWrapperKey wraps array schemas: chat completions only return objects.
const arrayWrapperKey = "items"

type OpenAIProvider struct {
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}

	return &OpenAIProvider{
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.OpenAIModel,
		baseURL:     openAIBaseURL,
		maxTokens:   cfg.AIMaxOutputTokens,
		temperature: cfg.AITemperature,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// WithBaseURL points the provider at a compatible endpoint.
func (p *OpenAIProvider) WithBaseURL(u string) *OpenAIProvider {
	p.baseURL = strings.TrimRight(u, "/")
	return p
}

func (p *OpenAIProvider) Name() string {
	return "openai:" + p.model
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	content, err := buildContentParts(req.Parts)
	if err != nil {
		return "", err
	}

	wrapped := req.Schema != nil && req.Schema.Type == TypeArray
	requestPayload := chatCompletionsRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Messages: []chatMessageRequest{{
			Role:    "user",
			Content: content,
		}},
		ResponseFormat: responseFormat(req.Schema, wrapped),
	}

	body, err := json.Marshal(requestPayload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response does not contain choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	if wrapped {
		return unwrapArray(text), nil
	}
	return text, nil
}

func buildContentParts(parts []Part) ([]contentPart, error) {
	out := make([]contentPart, 0, len(parts))
	for _, part := range parts {
		if !part.IsBlob() {
			out = append(out, contentPart{Type: "text", Text: part.Text})
			continue
		}
		if !strings.HasPrefix(part.MIMEType, "image/") {
			return nil, fmt.Errorf("openai: %w: %s", ErrUnsupportedMedia, part.MIMEType)
		}
		url := "data:" + part.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(part.Data)
		out = append(out, contentPart{Type: "image_url", ImageURL: &imageURL{URL: url}})
	}
	return out, nil
}

func responseFormat(schema *Schema, wrapped bool) *responseFormatSpec {
	if schema == nil {
		return &responseFormatSpec{Type: "json_object"}
	}
	s := schema
	if wrapped {
		s = &Schema{
			Type:       TypeObject,
			Properties: map[string]*Schema{arrayWrapperKey: schema},
			Required:   []string{arrayWrapperKey},
		}
	}
	return &responseFormatSpec{
		Type: "json_schema",
		JSONSchema: &jsonSchemaSpec{
			Name:   "response",
			Schema: s.JSONSchema(),
		},
	}
}

// unwrapArray returns the wrapped array, or text unchanged when it does not
// have the wrapper shape so validation downstream reports the problem.
func unwrapArray(text string) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return text
	}
	if raw, ok := obj[arrayWrapperKey]; ok {
		return string(raw)
	}
	return text
}

type chatCompletionsRequest struct {
	Model          string               `json:"model"`
	Messages       []chatMessageRequest `json:"messages"`
	Temperature    float64              `json:"temperature"`
	MaxTokens      int                  `json:"max_tokens"`
	ResponseFormat *responseFormatSpec  `json:"response_format,omitempty"`
}

type chatMessageRequest struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormatSpec struct {
	Type       string          `json:"type"`
	JSONSchema *jsonSchemaSpec `json:"json_schema,omitempty"`
}

type jsonSchemaSpec struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
