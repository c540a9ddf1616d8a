package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIProvider generates structured output with Google's Gemini API.
type GenAIProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGenAIProvider creates a Gemini-backed provider.
func NewGenAIProvider(ctx context.Context, apiKey, model string, temperature float32) (*GenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIProvider{
		client:      client,
		model:       model,
		temperature: temperature,
	}, nil
}

// Generate sends the prompt with a JSON response schema and returns the raw answer.
func (p *GenAIProvider) Generate(ctx context.Context, req *Request) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(req.Output),
		Temperature:      genai.Ptr(p.temperature),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Flow: req.Flow, Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, &ProviderError{Provider: p.Name(), Flow: req.Flow, Err: errors.New("empty response")}
	}
	return []byte(text), nil
}

// Name returns the provider name.
func (p *GenAIProvider) Name() string {
	return "genai:" + p.model
}

func responseSchema(shape Shape) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(shape.Fields)),
	}
	for _, f := range shape.Fields {
		prop := &genai.Schema{Type: genai.TypeString, Description: f.Description}
		if f.Type == FieldStringList {
			prop = &genai.Schema{
				Type:        genai.TypeArray,
				Description: f.Description,
				Items:       &genai.Schema{Type: genai.TypeString},
			}
		}
		schema.Properties[f.Name] = prop
		schema.PropertyOrdering = append(schema.PropertyOrdering, f.Name)
		if f.Required {
			schema.Required = append(schema.Required, f.Name)
		}
	}
	return schema
}
