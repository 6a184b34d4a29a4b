package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("BANNER_INSECURE", "1")
	t.Setenv("LLM_TIMEOUT", "90")
	t.Setenv("RATE_LIMIT_WINDOW", "2m")

	cfg := Load()
	assert.Equal(t, "ollama", cfg.Ai.Provider)
	assert.True(t, cfg.Banner.Insecure)
	assert.Equal(t, 90*time.Second, cfg.Ai.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.App.RateLimitWindow)
	assert.Equal(t, 100, cfg.App.RateLimitMax)
	assert.Equal(t, "institutionalEmail", cfg.Banner.EmailKey)
	assert.Equal(t, "memory", cfg.Session.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ollama needs nothing", func(c *Config) { c.Ai.Provider = "ollama" }, ""},
		{"azure needs endpoint and key", func(c *Config) { c.Ai.Provider = "azure" }, "LLM_ENDPOINT, LLM_API_KEY"},
		{"openai needs key", func(c *Config) { c.Ai.Provider = "openai" }, "LLM_API_KEY"},
		{"unknown provider", func(c *Config) { c.Ai.Provider = "bard" }, `unknown LLM_PROVIDER "bard"`},
		{"production needs jwt secret", func(c *Config) {
			c.Ai.Provider = "ollama"
			c.App.Environment = "production"
		}, "JWT_SECRET"},
		{"unknown session backend", func(c *Config) {
			c.Ai.Provider = "ollama"
			c.Session.Backend = "etcd"
		}, "SESSION_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Session: SessionConfig{Backend: "memory"}}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	for value, want := range map[string]bool{"true": true, "1": true, "yes": true, "0": false, "off": false, "garbage": true} {
		t.Setenv("FLAG", value)
		assert.Equal(t, want, getEnvAsBool("FLAG", true), value)
	}
}
