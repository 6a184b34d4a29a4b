// Package summary produces the structured recap mentors read for a conversation.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/pkg/helpdesk/escalation"
	"udla-mentor-be/pkg/llm"
	"udla-mentor-be/pkg/store"
)

const module = "Summarizer"

// ErrNothingToSummarize is returned when neither a session nor a conversation is given.
var ErrNothingToSummarize = errors.New("summary: session_id or conversation is required")

// Themes
const (
	ThemeJustification = "justificación de falta"
	ThemeGeneral       = "consultas generales"
)

// Priorities
const (
	PriorityHigh   = "alta"
	PriorityMedium = "media"
	PriorityLow    = "baja"
)

// DefaultReason is used when an escalation was detected but the model gives no reason.
const DefaultReason = "sensitive reasons detected in the conversation"

const maxReasonRunes = 220

var justificationKeywords = []string{
	"justific", "falta", "inasist", "certificado", "reposo",
	"cita médica", "cita medica", "acta de defunción", "defunción",
	"deportiv", "torneo", "competenc", "representación", "representacion",
	"calamidad", "duelo", "fallec", "muerte", "permiso", "documento",
}

var processKeywords = []string{
	"certific", "reposo", "sube", "adjunto", "archivo", "enviar documento",
	"ocr", "acta de defunción", "defunción", "deportiv", "torneo", "competenc",
	"ruc", "ente deportivo", "fecha del evento", "validar documento",
	"cita médica", "cita medica", "diagnóstico", "síntoma", "historia clínica",
}

type Request struct {
	SessionID    string
	Conversation string
}

type Summary struct {
	Overview         string   `json:"overview"`
	KeyPoints        []string `json:"key_points"`
	Escalated        bool     `json:"escalated"`
	EscalationReason string   `json:"escalation_reason"`
	Theme            string   `json:"theme"`
	Priority         string   `json:"priority"`
}

type Result struct {
	Summary   Summary   `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
	// Empty reports that there was no content to summarize.
	Empty bool `json:"-"`
}

type Summarizer struct {
	model    llm.LLMProvider
	store    store.SessionStore
	detector *escalation.Detector
	log      logger.ILogger
	now      func() time.Time
}

type Option func(*Summarizer)

func WithDetector(d *escalation.Detector) Option { return func(s *Summarizer) { s.detector = d } }

func WithClock(now func() time.Time) Option { return func(s *Summarizer) { s.now = now } }

func NewSummarizer(model llm.LLMProvider, st store.SessionStore, log logger.ILogger, opts ...Option) *Summarizer {
	s := &Summarizer{
		model:    model,
		store:    st,
		detector: escalation.NewDetector(nil),
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render prints a history as Estudiante/Mentor lines.
func Render(messages []store.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case store.RoleUser:
			lines = append(lines, "Estudiante: "+m.Content)
		case store.RoleAssistant:
			lines = append(lines, "Mentor: "+m.Content)
		default:
			lines = append(lines, string(m.Role)+": "+m.Content)
		}
	}
	return strings.Join(lines, "\n")
}

func (s *Summarizer) Summarize(ctx context.Context, req Request) (*Result, error) {
	if req.SessionID == "" && req.Conversation == "" {
		return nil, ErrNothingToSummarize
	}

	var (
		messages []store.Message
		ocr      *store.OCRResult
		text     string
		err      error
	)
	if req.SessionID != "" {
		if messages, err = s.store.SessionMessages(ctx, req.SessionID); err != nil {
			return nil, fmt.Errorf("summary: load history: %w", err)
		}
		if ocr, err = s.store.OCRResult(ctx, req.SessionID); err != nil {
			return nil, fmt.Errorf("summary: load ocr result: %w", err)
		}
		text = Render(messages)
	} else {
		text = req.Conversation
	}

	res := &Result{SessionID: req.SessionID, Timestamp: s.now().UTC()}
	if strings.TrimSpace(text) == "" {
		res.Summary = Summary{KeyPoints: []string{}}
		res.Empty = true
		return res, nil
	}

	// 1. Model summary
	sum, err := s.summarize(ctx, text, ocr)
	if err != nil {
		return nil, err
	}

	// 2. Local escalation detection wins over the model
	if s.escalated(messages, req.Conversation) {
		sum.Escalated = true
		if strings.TrimSpace(sum.EscalationReason) == "" {
			sum.EscalationReason = s.reason(ctx, text)
		}
	}

	// 3. Theme and priority only for non-empty overviews
	if strings.TrimSpace(sum.Overview) != "" {
		sum.Theme = s.theme(ctx, text)
		sum.Priority = priority(messages, text, sum, ocr)
	}

	res.Summary = sum
	return res, nil
}

func (s *Summarizer) summarize(ctx context.Context, text string, ocr *store.OCRResult) (Summary, error) {
	extra := ""
	if ocr != nil {
		extra = "\n\n[Estado de documentos detectado por OCR en la sesión]\n" +
			"- Tipo: " + ocr.Certificate + "\n" +
			"- Resumen: " + ocr.Summary + "\n" +
			"- Estado: " + ocr.Escalated + "\n"
	}

	raw, err := s.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: summarySystem},
		{Role: "user", Content: "Conversación completa:\n" + text + extra + "\n\nGenera el JSON pedido."},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(600), llm.WithJSON())
	if err != nil {
		return Summary{}, fmt.Errorf("summary: model: %w", err)
	}
	raw = strings.TrimSpace(raw)

	var parsed struct {
		Overview         string   `json:"overview"`
		KeyPoints        []string `json:"key_points"`
		Escalated        bool     `json:"escalated"`
		EscalationReason string   `json:"escalation_reason"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.log.Warn(module, "Model did not return valid JSON, using raw overview", nil)
		return Summary{Overview: raw, KeyPoints: []string{}}, nil
	}
	if parsed.KeyPoints == nil {
		parsed.KeyPoints = []string{}
	}
	return Summary{
		Overview:         parsed.Overview,
		KeyPoints:        parsed.KeyPoints,
		Escalated:        parsed.Escalated,
		EscalationReason: parsed.EscalationReason,
	}, nil
}

func hasAssistantSentinel(messages []store.Message) bool {
	for _, m := range messages {
		if m.Role == store.RoleAssistant && strings.Contains(m.Content, escalation.Sentinel) {
			return true
		}
	}
	return false
}

func (s *Summarizer) escalated(messages []store.Message, conversation string) bool {
	if hasAssistantSentinel(messages) {
		return true
	}

	var said []string
	for _, m := range messages {
		if m.Role == store.RoleUser {
			said = append(said, m.Content)
		}
	}
	userText := strings.Join(said, " ")
	if strings.TrimSpace(userText) == "" && conversation != "" {
		userText = conversation
	}
	if userText != "" && s.detector.Detect(userText) {
		return true
	}

	return conversation != "" && strings.Contains(strings.ToLower(conversation), escalation.Sentinel)
}

func (s *Summarizer) reason(ctx context.Context, text string) string {
	raw, err := s.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: reasonSystem},
		{Role: "user", Content: "Conversación:\n" + text + "\n\nOración:"},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(80))
	if err != nil {
		s.log.Warn(module, "Escalation reason inference failed", map[string]interface{}{"error": err.Error()})
		return DefaultReason
	}
	if sentence := clipSentence(raw); sentence != "" {
		return sentence
	}
	return DefaultReason
}

// clipSentence keeps the first sentence, shortened to a word boundary within maxReasonRunes.
func clipSentence(raw string) string {
	sentence := strings.ReplaceAll(strings.TrimSpace(raw), "\n", " ")
	if i := strings.Index(sentence, "."); i >= 0 {
		sentence = strings.TrimSpace(sentence[:i]) + "."
	}
	runes := []rune(sentence)
	if len(runes) > maxReasonRunes {
		cut := string(runes[:maxReasonRunes])
		if i := strings.LastIndex(cut, " "); i >= 0 {
			cut = cut[:i]
		}
		sentence = strings.TrimRight(cut, " ") + "…"
	}
	return sentence
}

func (s *Summarizer) theme(ctx context.Context, text string) string {
	raw, err := s.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: themeSystem},
		{Role: "user", Content: text},
	}, llm.WithTemperature(0), llm.WithMaxTokens(3))
	if err != nil {
		s.log.Warn(module, "Theme classification failed", map[string]interface{}{"error": err.Error()})
	} else if raw = strings.TrimSpace(raw); raw == ThemeJustification || raw == ThemeGeneral {
		return raw
	}

	if containsAny(strings.ToLower(text), justificationKeywords) {
		return ThemeJustification
	}
	return ThemeGeneral
}

func priority(messages []store.Message, text string, sum Summary, ocr *store.OCRResult) string {
	if sum.Escalated || hasAssistantSentinel(messages) {
		return PriorityHigh
	}
	if ocr != nil || sum.Theme == ThemeJustification || containsAny(strings.ToLower(text), processKeywords) {
		return PriorityMedium
	}
	return PriorityLow
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
