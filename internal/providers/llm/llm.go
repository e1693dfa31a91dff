package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the language-model capability used by the agents. Generate
// returns raw model text; when schema is non-nil the model is asked for a
// single JSON object shaped like schema.
type Provider interface {
	Generate(ctx context.Context, prompt string, schema *Schema) (string, error)
	Close() error
}

type FieldType string

const (
	TypeString      FieldType = "string"
	TypeStringArray FieldType = "string_array"
	TypeInteger     FieldType = "integer"
)

type Field struct {
	Name        string
	Type        FieldType
	Description string
	Enum        []string
	Required    bool
}

// Schema describes the JSON object an agent expects back.
type Schema struct {
	Name   string
	Fields []Field
}

func (s *Schema) required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Instructions renders the schema as prompt text for backends that cannot
// enforce a response schema natively.
func (s *Schema) Instructions() string {
	var sb strings.Builder
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, f := range s.Fields {
		hint := `"string"`
		switch f.Type {
		case TypeStringArray:
			hint = `["string"]`
		case TypeInteger:
			hint = "integer"
		}
		if len(f.Enum) > 0 {
			hint = `"` + strings.Join(f.Enum, `" | "`) + `"`
		}
		req := ""
		if f.Required {
			req = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  %q: %s%s", f.Name, hint, req))
		if f.Description != "" {
			sb.WriteString(" // " + f.Description)
		}
		if i < len(s.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\nNo markdown, no explanation, no code blocks.\n")
	return sb.String()
}
