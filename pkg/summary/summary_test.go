package summary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/internal/repository/memory"
	"udla-mentor-be/pkg/llm"
	"udla-mentor-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	mu      sync.Mutex
	answers map[string]string
	errs    map[string]error
	calls   map[string]int
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		answers: map[string]string{
			summarySystem: `{"overview":"Consulta de horario","key_points":["horario"],"escalated":false,"escalation_reason":""}`,
			reasonSystem:  "Debido a una situación familiar delicada que requiere acompañamiento. Segunda frase.",
			themeSystem:   ThemeGeneral,
		},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeModel) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	system := history[0].Content
	f.calls[system]++
	if err := f.errs[system]; err != nil {
		return "", err
	}
	return f.answers[system], nil
}

func (f *fakeModel) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

var fixedNow = time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)

func newSummarizer(m *fakeModel) (*Summarizer, *memory.SessionRepository) {
	st := memory.NewSessionRepository()
	return NewSummarizer(m, st, logger.NewNop(), WithClock(func() time.Time { return fixedNow })), st
}

func seed(t *testing.T, st store.SessionStore, id string, msgs ...store.Message) {
	t.Helper()
	for _, m := range msgs {
		require.NoError(t, st.AppendMessage(context.Background(), id, m.Role, m.Content))
	}
}

func TestSummarizeRequiresInput(t *testing.T) {
	s, _ := newSummarizer(newFakeModel())
	_, err := s.Summarize(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNothingToSummarize)
}

func TestSummarizeEmptySession(t *testing.T) {
	m := newFakeModel()
	s, _ := newSummarizer(m)

	res, err := s.Summarize(context.Background(), Request{SessionID: "nobody"})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, Summary{KeyPoints: []string{}}, res.Summary)
	assert.Equal(t, "nobody", res.SessionID)
	assert.Empty(t, m.calls)
}

func TestSummarizePriorities(t *testing.T) {
	tests := []struct {
		name         string
		msgs         []store.Message
		ocr          *store.OCRResult
		wantPriority string
		wantEscalate bool
	}{
		{
			name: "plain question is low",
			msgs: []store.Message{
				{Role: store.RoleUser, Content: "¿Cuál es el horario de la biblioteca?"},
				{Role: store.RoleAssistant, Content: "La biblioteca abre de 7 a 21."},
			},
			wantPriority: PriorityLow,
		},
		{
			name: "ocr result without escalation is medium",
			msgs: []store.Message{
				{Role: store.RoleUser, Content: "¿Cuál es el horario de la biblioteca?"},
			},
			ocr:          &store.OCRResult{Certificate: "CitaMedicaSinReposo", Summary: "Falta la firma"},
			wantPriority: PriorityMedium,
		},
		{
			name: "assistant sentinel is high",
			msgs: []store.Message{
				{Role: store.RoleUser, Content: "Necesito hablar con alguien"},
				{Role: store.RoleAssistant, Content: "--mentor--"},
			},
			wantPriority: PriorityHigh,
			wantEscalate: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, st := newSummarizer(newFakeModel())
			seed(t, st, "s1", tt.msgs...)
			if tt.ocr != nil {
				require.NoError(t, st.SetOCRResult(ctx, "s1", *tt.ocr))
			}

			res, err := s.Summarize(ctx, Request{SessionID: "s1"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPriority, res.Summary.Priority)
			assert.Equal(t, tt.wantEscalate, res.Summary.Escalated)
			assert.Equal(t, "Consulta de horario", res.Summary.Overview)
			assert.Equal(t, fixedNow, res.Timestamp)
		})
	}
}

func TestSummarizeLocalEscalationAsksForReason(t *testing.T) {
	m := newFakeModel()
	s, _ := newSummarizer(m)

	res, err := s.Summarize(context.Background(), Request{Conversation: "Estudiante: tengo un problema familiar muy grave"})
	require.NoError(t, err)
	assert.True(t, res.Summary.Escalated)
	assert.Equal(t, "Debido a una situación familiar delicada que requiere acompañamiento.", res.Summary.EscalationReason)
	assert.Equal(t, PriorityHigh, res.Summary.Priority)
	assert.Equal(t, 1, m.calls[reasonSystem])
}

func TestSummarizeReasonFallsBack(t *testing.T) {
	m := newFakeModel()
	m.errs[reasonSystem] = errors.New("timeout")
	s, _ := newSummarizer(m)

	res, err := s.Summarize(context.Background(), Request{Conversation: "Mentor: --MENTOR--"})
	require.NoError(t, err)
	assert.True(t, res.Summary.Escalated)
	assert.Equal(t, DefaultReason, res.Summary.EscalationReason)
}

func TestSummarizeInvalidJSONKeepsRawOverview(t *testing.T) {
	m := newFakeModel()
	m.answers[summarySystem] = "El estudiante preguntó por su certificado."
	m.answers[themeSystem] = "otro"
	s, _ := newSummarizer(m)

	res, err := s.Summarize(context.Background(), Request{Conversation: "Estudiante: quiero justificar una falta"})
	require.NoError(t, err)
	assert.Equal(t, "El estudiante preguntó por su certificado.", res.Summary.Overview)
	assert.Equal(t, []string{}, res.Summary.KeyPoints)
	assert.Equal(t, ThemeJustification, res.Summary.Theme, "keyword fallback")
	assert.Equal(t, PriorityMedium, res.Summary.Priority)
}

func TestSummarizeEmptyOverviewSkipsThemeAndPriority(t *testing.T) {
	m := newFakeModel()
	m.answers[summarySystem] = `{"overview":"","key_points":[]}`
	s, _ := newSummarizer(m)

	res, err := s.Summarize(context.Background(), Request{Conversation: "Estudiante: hola"})
	require.NoError(t, err)
	assert.Empty(t, res.Summary.Theme)
	assert.Empty(t, res.Summary.Priority)
	assert.Zero(t, m.calls[themeSystem])
}

func TestSummarizeModelFailure(t *testing.T) {
	m := newFakeModel()
	m.errs[summarySystem] = errors.New("boom")
	s, _ := newSummarizer(m)

	_, err := s.Summarize(context.Background(), Request{Conversation: "Estudiante: hola"})
	require.Error(t, err)
}

func TestClipSentence(t *testing.T) {
	long := strings.Repeat("palabra ", 40)
	got := clipSentence(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), maxReasonRunes+1)
	assert.Equal(t, "Una frase.", clipSentence("Una frase. Otra frase."))
}

func TestRender(t *testing.T) {
	out := Render([]store.Message{
		{Role: store.RoleUser, Content: "hola"},
		{Role: store.RoleAssistant, Content: "<p>hola</p>"},
		{Role: store.RoleSystem, Content: "[contexto reiniciado]"},
	})
	assert.Equal(t, "Estudiante: hola\nMentor: <p>hola</p>\nsystem: [contexto reiniciado]", out)
}
