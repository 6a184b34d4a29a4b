package factory

import (
	"fmt"
	"strings"

	"udla-mentor-be/pkg/llm"
	"udla-mentor-be/pkg/llm/ollama"
	"udla-mentor-be/pkg/llm/openai"
)

type Config struct {
	Provider   string // azure | openai | ollama
	APIKey     string
	Endpoint   string
	APIVersion string

	ChatModel          string
	VisionModel        string
	EmbeddingModel     string
	TranscriptionModel string
}

func NewLLMProvider(cfg Config) (llm.Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "azure":
		if cfg.Endpoint == "" || cfg.APIKey == "" {
			return nil, fmt.Errorf("azure provider requires endpoint and api key")
		}
		return openai.NewProvider(openai.Config{
			APIKey:             cfg.APIKey,
			BaseURL:            cfg.Endpoint,
			Azure:              true,
			APIVersion:         cfg.APIVersion,
			ChatModel:          cfg.ChatModel,
			VisionModel:        cfg.VisionModel,
			EmbeddingModel:     cfg.EmbeddingModel,
			TranscriptionModel: cfg.TranscriptionModel,
		}), nil
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return openai.NewProvider(openai.Config{
			APIKey:             cfg.APIKey,
			BaseURL:            cfg.Endpoint,
			ChatModel:          cfg.ChatModel,
			VisionModel:        cfg.VisionModel,
			EmbeddingModel:     cfg.EmbeddingModel,
			TranscriptionModel: cfg.TranscriptionModel,
		}), nil
	case "ollama":
		baseURL := cfg.Endpoint
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.ChatModel, cfg.VisionModel, cfg.EmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
