package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAI struct {
	client openaigo.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithMaxRetries(0), // retries are handled by WithRetry
	}
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	return &OpenAI{client: openaigo.NewClient(opts...), model: model}, nil
}

func (o *OpenAI) Close() error { return nil }

func (o *OpenAI) Generate(ctx context.Context, prompt string, schema *Schema) (string, error) {
	system := "You are a precise assistant."
	if schema != nil {
		system = "You are a precise assistant that answers with a single JSON object.\n" + schema.Instructions()
	}

	resp, err := o.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(o.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(system),
			openaigo.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("openai returned empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
