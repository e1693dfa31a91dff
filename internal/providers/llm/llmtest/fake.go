// Package llmtest provides a scriptable llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/yoockh/yoointerview/internal/providers/llm"
)

// Provider implements llm.Provider with a replaceable GenerateFunc and
// records every prompt it receives.
type Provider struct {
	GenerateFunc func(ctx context.Context, prompt string, schema *llm.Schema) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (p *Provider) Generate(ctx context.Context, prompt string, schema *llm.Schema) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()

	if p.GenerateFunc != nil {
		return p.GenerateFunc(ctx, prompt, schema)
	}
	return "{}", nil
}

func (p *Provider) Close() error { return nil }

func (p *Provider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

// Returning returns a Provider that always answers with out.
func Returning(out string) *Provider {
	return &Provider{GenerateFunc: func(context.Context, string, *llm.Schema) (string, error) {
		return out, nil
	}}
}

// Failing returns a Provider that always fails with err.
func Failing(err error) *Provider {
	return &Provider{GenerateFunc: func(context.Context, string, *llm.Schema) (string, error) {
		return "", err
	}}
}

// Blocking returns a Provider that waits for ctx to end.
func Blocking() *Provider {
	return &Provider{GenerateFunc: func(ctx context.Context, _ string, _ *llm.Schema) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
}
