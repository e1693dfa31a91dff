package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON strips code fences and surrounding prose from model output.
func ExtractJSON(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "```") {
		rest := strings.TrimSpace(strings.TrimPrefix(raw, "```"))
		if i := strings.Index(rest, "\n"); i >= 0 {
			rest = rest[i+1:]
		}
		if j := strings.LastIndex(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		raw = strings.TrimSpace(rest)
	}
	if !strings.HasPrefix(raw, "{") {
		if i := strings.Index(raw, "{"); i >= 0 {
			if j := strings.LastIndex(raw, "}"); j > i {
				return strings.TrimSpace(raw[i : j+1])
			}
		}
	}
	return raw
}

// DecodeJSON extracts and unmarshals a JSON object from model output.
func DecodeJSON(text string, dst any) error {
	raw := ExtractJSON(text)
	if raw == "" {
		return fmt.Errorf("llm returned empty output")
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("llm returned invalid json: %w", err)
	}
	return nil
}
