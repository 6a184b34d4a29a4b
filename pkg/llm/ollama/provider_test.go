package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"udla-mentor-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatAndVision(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"model":"llama3","message":{"role":"assistant","content":"listo"},"done":true}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3", "llava", "nomic-embed-text")

	out, err := p.Generate(context.Background(), "hola", llm.WithJSON(), llm.WithMaxTokens(50))
	require.NoError(t, err)
	assert.Equal(t, "listo", out)
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, 50, got.Options.NumPredict)

	_, err = p.Vision(context.Background(), "lee", []llm.Image{{MIMEType: "image/png", Data: []byte{1, 2, 3}}})
	require.NoError(t, err)
	assert.Equal(t, "llava", got.Model)
	assert.Equal(t, []string{"AQID"}, got.Messages[0].Images)
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		_, _ = io.WriteString(w, `{"embeddings":[[0.1,0.2,0.3]]}`)
	}))
	defer srv.Close()

	v, err := NewOllamaProvider(srv.URL, "llama3", "", "nomic-embed-text").Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, v)
}

func TestErrorsSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "model not loaded")
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3", "", "")
	_, err := p.Generate(context.Background(), "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")

	_, err = p.Transcribe(context.Background(), "a.mp3", strings.NewReader(""))
	assert.ErrorIs(t, err, llm.ErrNotSupported)
}
