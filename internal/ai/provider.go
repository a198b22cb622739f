// Package ai is the boundary to the external inference service. Callers
// describe a request as ordered parts plus an expected response schema and
// get back the raw response text; validating it is the caller's job.
package ai

import (
	"context"
	"errors"
	"strings"
)

// ErrUnsupportedMedia is returned when a provider cannot accept a part's MIME type.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// ErrEmptyResponse is returned when the service answered with no text.
var ErrEmptyResponse = errors.New("empty response from inference service")

type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Purpose tells providers (the mock in particular) what is being asked.
type Purpose string

const (
	PurposeMeal    Purpose = "meal"
	PurposeRecipes Purpose = "recipes"
)

// Part is either text or inline binary data.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

func TextPart(s string) Part {
	return Part{Text: s}
}

func BlobPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// IsBlob reports whether the part carries binary data.
func (p Part) IsBlob() bool {
	return p.MIMEType != ""
}

type Request struct {
	Purpose Purpose
	Parts   []Part
	// Schema of the expected JSON response. Providers that support
	// structured output enforce it; all of them ask for JSON.
	Schema *Schema
}

type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
)

// Schema is the subset of JSON Schema both providers understand.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
}

// JSONSchema renders s as a plain JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for k, v := range s.Properties {
			props[k] = v.JSONSchema()
		}
		out["properties"] = props
		out["additionalProperties"] = false
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	return out
}

// StripCodeFence removes a surrounding markdown code fence, if any. Some
// models wrap JSON in one even when asked not to.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
