package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = openai.GPT4oMini

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`You are an AI assistant that suggests similar stalls based on a selected stall's category and segment.

Available stall categories: {{join .AvailableCategories ", "}}
Available stall segments: {{join .AvailableSegments ", "}}

Selected stall category: {{.Category}}
Selected stall segment: {{.Segment}}

Based on the selected stall's category and segment, recommend other stalls with the same category and segment. If no similar stalls are available, respond that no similar stalls are available.
`))

// Prompt renders the instruction sent to the model.
func Prompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig configures the OpenAI-compatible backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAI is a Recommender backed by a chat-completion endpoint.
type OpenAI struct {
	client chatClient
	model  string
}

// NewOpenAI creates a backend. BaseURL may point at any compatible server.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return newOpenAI(openai.NewClientWithConfig(oc), cfg.Model), nil
}

func newOpenAI(client chatClient, model string) *OpenAI {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAI{client: client, model: model}
}

func (o *OpenAI) Recommend(ctx context.Context, req Request) (Response, error) {
	prompt, err := Prompt(req)
	if err != nil {
		return Response{}, err
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("chat completion returned no choices")
	}
	return Response{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}
