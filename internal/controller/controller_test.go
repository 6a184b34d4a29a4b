package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"udla-mentor-be/internal/dto"
	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/internal/service"
	"udla-mentor-be/pkg/document"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(logger.NewNop())})
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	body, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(body, &env)
	return resp.StatusCode, env
}

type stubChat struct{ got *dto.AgentRequest }

func (s *stubChat) Chat(ctx context.Context, req *dto.AgentRequest) (*dto.AgentResponse, error) {
	s.got = req
	return &dto.AgentResponse{
		SessionID: req.SessionID, Prompt: req.Prompt, Response: "Hola",
		Timestamp: "2025-03-01T00:00:00Z", Message: "Respuesta generada por el agente Manager",
	}, nil
}

func TestAgentEndpoint(t *testing.T) {
	chat := &stubChat{}
	app := newApp()
	NewAgentController(chat).RegisterRoutes(app.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/agent/",
		strings.NewReader(`{"prompt":"hola","session_id":"s1","nickname":"Ana","mentor_gender":"F"}`))
	req.Header.Set("Content-Type", "application/json")
	code, env := do(t, app, req)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "Respuesta generada por el agente Manager", env.Message)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Hola", data["response"])
	assert.Equal(t, false, data["escalated"])
	assert.NotContains(t, data, "Message")
	assert.Equal(t, "Ana", chat.got.Nickname)
}

func TestAgentValidation(t *testing.T) {
	app := newApp()
	NewAgentController(&stubChat{}).RegisterRoutes(app.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/agent/", strings.NewReader(`{"prompt":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	code, env := do(t, app, req)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Errors), "SessionID")
}

type stubAnalysis struct{ got document.Upload }

func (s *stubAnalysis) AnalyzeFile(ctx context.Context, up document.Upload) (*dto.AnalyzeFileResponse, error) {
	s.got = up
	return &dto.AnalyzeFileResponse{Certificate: document.CertMedicalRest, Escalated: document.EscalatedJustified}, nil
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, _ = part.Write(data)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestAnalyzeEndpoint(t *testing.T) {
	analysis := &stubAnalysis{}
	app := newApp()
	NewAnalyzeController(analysis).RegisterRoutes(app.Group("/api/v1"))

	body, ct := multipartBody(t, map[string]string{"session_id": "s1"}, "image_file", "cert.png", "image/png", []byte("\x89PNG"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analizeimages/analyze-file/", body)
	req.Header.Set("Content-Type", ct)
	code, env := do(t, app, req)

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), document.CertMedicalRest)
	assert.Equal(t, "s1", analysis.got.SessionID)
	assert.Equal(t, "cert.png", analysis.got.Filename)
	assert.Equal(t, "image/png", analysis.got.ContentType)
	assert.Equal(t, []byte("\x89PNG"), analysis.got.Data)
}

func TestAnalyzeRequiresFields(t *testing.T) {
	app := newApp()
	NewAnalyzeController(&stubAnalysis{}).RegisterRoutes(app.Group("/api/v1"))

	body, ct := multipartBody(t, map[string]string{"session_id": "s1"}, "", "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analizeimages/analyze-file/", body)
	req.Header.Set("Content-Type", ct)
	code, _ := do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, code)

	body, ct = multipartBody(t, nil, "image_file", "cert.png", "image/png", []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/analizeimages/analyze-file/", body)
	req.Header.Set("Content-Type", ct)
	code, env := do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "session_id es requerido", env.Message)
}

type stubSummary struct{}

func (stubSummary) Summarize(ctx context.Context, req *dto.SummaryRequest) (*dto.SummaryResponse, error) {
	if req.SessionID == "" && req.Conversation == "" {
		return nil, serverutils.BadRequest("Debes enviar 'session_id' o 'conversation'.", nil)
	}
	return &dto.SummaryResponse{Timestamp: "t", Message: "Resumen generado con éxito"}, nil
}

func TestSummaryEndpoint(t *testing.T) {
	app := newApp()
	NewSummaryController(stubSummary{}).RegisterRoutes(app.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/summary/summary/", strings.NewReader(`{"conversation":"Estudiante: hola"}`))
	req.Header.Set("Content-Type", "application/json")
	code, env := do(t, app, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Resumen generado con éxito", env.Message)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/summary/summary/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	code, env = do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Debes enviar 'session_id' o 'conversation'.", env.Message)
}

type stubTranscription struct{ got service.AudioUpload }

func (s *stubTranscription) Transcribe(ctx context.Context, up service.AudioUpload) (*dto.TranscriptionResponse, error) {
	s.got = up
	return &dto.TranscriptionResponse{Transcription: "hola", Timestamp: "t"}, nil
}

func TestAudioEndpoint(t *testing.T) {
	tr := &stubTranscription{}
	app := newApp()
	NewAudioController(tr).RegisterRoutes(app.Group("/api/v1"))

	body, ct := multipartBody(t, nil, "audio_file", "nota.mp3", "audio/mpeg", []byte("ID3"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/audiototext/audio-to-text/", body)
	req.Header.Set("Content-Type", ct)
	code, env := do(t, app, req)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Transcripción realizada con éxito", env.Message)
	assert.Equal(t, "audio/mpeg", tr.got.ContentType)
	assert.Equal(t, int64(3), tr.got.Size)
}

func TestHealth(t *testing.T) {
	app := newApp()
	NewHealthController("1.0.0", "test").RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"OK"}`, string(b))

	code, env := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"version":"1.0.0"`)
}
