package openai

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

func newServer(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewProvider(Config{
		APIKey:         "test",
		BaseURL:        srv.URL + "/v1",
		ChatModel:      "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
	})
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"}},
	})
	return string(b)
}

func TestChatSendsModelAndOptions(t *testing.T) {
	var body map[string]any
	p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatResponse(`{"case":"enfermedad"}`))
	})

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "eres un mentor"},
		{Role: "model", Content: "hola"},
	}, llm.WithJSON(), llm.WithTemperature(0.2))
	require.NoError(t, err)
	assert.Equal(t, `{"case":"enfermedad"}`, out)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
	msgs := body["messages"].([]any)
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
}

func TestVisionSendsDataURL(t *testing.T) {
	var raw string
	p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatResponse("Certificado médico"))
	})

	out, err := p.Vision(context.Background(), "describe", []llm.Image{{MIMEType: "image/png", Data: []byte{1, 2, 3}}})
	require.NoError(t, err)
	assert.Equal(t, "Certificado médico", out)
	assert.Contains(t, raw, "data:image/png;base64,AQID")
	assert.Contains(t, raw, `"type":"image_url"`)
}

func TestEmbed(t *testing.T) {
	p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25]}],"model":"text-embedding-3-small"}`)
	})

	v, err := p.Embed(context.Background(), "horario de biblioteca")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, v)
}

func TestTranscribe(t *testing.T) {
	p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"necesito justificar una falta"}`)
	})

	text, err := p.Transcribe(context.Background(), "nota.mp3", strings.NewReader("ID3"))
	require.NoError(t, err)
	assert.Equal(t, "necesito justificar una falta", text)
}

func TestChatUpstreamError(t *testing.T) {
	p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	_, err := p.Generate(context.Background(), "hola")
	assert.Error(t, err)
}
