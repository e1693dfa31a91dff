package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Provider string // vertex|openai

	VertexProject  string
	VertexLocation string
	VertexModel    string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	RequestTimeout time.Duration
	MaxAttempts    int
}

// New builds the configured provider wrapped in the retry decorator.
func New(ctx context.Context, cfg Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "vertex":
		if cfg.VertexProject == "" {
			return nil, fmt.Errorf("vertex provider requires a project id")
		}
		location := cfg.VertexLocation
		if location == "" {
			location = "us-central1"
		}
		p, err = NewVertexGemini(ctx, cfg.VertexProject, location, cfg.VertexModel)
	case "openai":
		p, err = NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.RequestTimeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithRetry(p, cfg.MaxAttempts, 250*time.Millisecond, 2*time.Second), nil
}
