package factory

import (
	"testing"

	"udla-mentor-be/pkg/llm/ollama"
	"udla-mentor-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		check   func(t *testing.T, p any)
	}{
		{
			name: "azure",
			cfg:  Config{Provider: "AZURE", APIKey: "k", Endpoint: "https://x.openai.azure.com", ChatModel: "gpt-4o"},
			check: func(t *testing.T, p any) {
				_, ok := p.(*openai.Provider)
				assert.True(t, ok)
			},
		},
		{name: "azure without endpoint", cfg: Config{Provider: "azure", APIKey: "k"}, wantErr: true},
		{name: "openai without key", cfg: Config{Provider: "openai"}, wantErr: true},
		{
			name: "ollama default url",
			cfg:  Config{Provider: "ollama", ChatModel: "llama3"},
			check: func(t *testing.T, p any) {
				o, ok := p.(*ollama.OllamaProvider)
				require.True(t, ok)
				assert.Equal(t, "http://localhost:11434", o.BaseURL)
				assert.Equal(t, "llama3", o.VisionModel)
			},
		},
		{name: "unknown", cfg: Config{Provider: "bard"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLLMProvider(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}
