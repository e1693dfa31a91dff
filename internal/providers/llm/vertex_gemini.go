package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

// Generate builds a fresh model handle per call; GenerativeModel carries
// mutable generation config and is shared by concurrent agents otherwise.
func (v *VertexGemini) Generate(ctx context.Context, prompt string, schema *Schema) (string, error) {
	m := v.client.GenerativeModel(v.modelName)
	m.SetTemperature(0.4)
	if schema != nil {
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = toVertexSchema(schema)
	}

	resp, err := m.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break // first candidate only
	}
	if sb.Len() == 0 {
		return "", errors.New("vertex gemini returned no text")
	}
	return sb.String(), nil
}

func toVertexSchema(s *Schema) *vertexgenai.Schema {
	props := make(map[string]*vertexgenai.Schema, len(s.Fields))
	for _, f := range s.Fields {
		var p *vertexgenai.Schema
		switch f.Type {
		case TypeStringArray:
			p = &vertexgenai.Schema{
				Type:  vertexgenai.TypeArray,
				Items: &vertexgenai.Schema{Type: vertexgenai.TypeString},
			}
		case TypeInteger:
			p = &vertexgenai.Schema{Type: vertexgenai.TypeInteger}
		default:
			p = &vertexgenai.Schema{Type: vertexgenai.TypeString, Enum: f.Enum}
		}
		p.Description = f.Description
		props[f.Name] = p
	}
	return &vertexgenai.Schema{
		Type:       vertexgenai.TypeObject,
		Properties: props,
		Required:   s.required(),
	}
}
