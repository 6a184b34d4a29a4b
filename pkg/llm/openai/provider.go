// Package openai talks to OpenAI-compatible endpoints, Azure OpenAI deployments included.
package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"udla-mentor-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

// Config selects the endpoint and the model (or Azure deployment) per capability.
type Config struct {
	APIKey     string
	BaseURL    string // Azure resource endpoint, or an OpenAI-compatible base such as ".../v1"
	Azure      bool
	APIVersion string

	ChatModel          string
	VisionModel        string
	EmbeddingModel     string
	TranscriptionModel string

	HTTPClient *http.Client
}

type Provider struct {
	client *goopenai.Client
	cfg    Config
}

var _ llm.Provider = (*Provider)(nil)

func NewProvider(cfg Config) *Provider {
	var c goopenai.ClientConfig
	if cfg.Azure {
		c = goopenai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			c.APIVersion = cfg.APIVersion
		}
		// Deployment names are configured verbatim
		c.AzureModelMapperFunc = func(model string) string { return model }
	} else {
		c = goopenai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
	}
	if cfg.HTTPClient != nil {
		c.HTTPClient = cfg.HTTPClient
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.ChatModel
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = goopenai.Whisper1
	}
	return &Provider{client: goopenai.NewClientWithConfig(c), cfg: cfg}
}

func toMessages(history []llm.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, len(history))
	for i, m := range history {
		role := m.Role
		if role == "model" {
			role = goopenai.ChatMessageRoleAssistant
		}
		out[i] = goopenai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return out
}

func (p *Provider) complete(ctx context.Context, model string, msgs []goopenai.ChatCompletionMessage, opts []llm.Option) (string, error) {
	o := llm.Apply(llm.Options{Model: model}, opts...)

	req := goopenai.ChatCompletionRequest{
		Model:       o.Model,
		Messages:    msgs,
		Temperature: float32(o.Temperature),
	}
	if o.MaxTokens > 0 {
		req.MaxTokens = o.MaxTokens
	}
	if o.JSON {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.complete(ctx, p.cfg.ChatModel, toMessages(history), opts)
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: goopenai.ChatMessageRoleUser, Content: prompt}}, opts...)
}

func (p *Provider) Vision(ctx context.Context, prompt string, images []llm.Image, opts ...llm.Option) (string, error) {
	parts := []goopenai.ChatMessagePart{{Type: goopenai.ChatMessagePartTypeText, Text: prompt}}
	for _, img := range images {
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    img.DataURL(),
				Detail: goopenai.ImageURLDetailAuto,
			},
		})
	}
	msgs := []goopenai.ChatCompletionMessage{{Role: goopenai.ChatMessageRoleUser, MultiContent: parts}}
	return p.complete(ctx, p.cfg.VisionModel, msgs, opts)
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: []string{text},
		Model: goopenai.EmbeddingModel(p.cfg.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no embeddings")
	}
	return resp.Data[0].Embedding, nil
}

func (p *Provider) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := p.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    p.cfg.TranscriptionModel,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription failed: %w", err)
	}
	return resp.Text, nil
}
