package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/internal/repository/memory"
	"udla-mentor-be/pkg/events"
	"udla-mentor-be/pkg/helpdesk/closing"
	"udla-mentor-be/pkg/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu      sync.Mutex
	prompts []string
	answer  string
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

var profile = store.Profile{
	FullName:      "Ana Pérez",
	Nickname:      "Ana",
	IDCard:        "1712345678",
	Career:        "Medicina",
	Email:         "ana@udla.edu.ec",
	StudentGender: "femenino",
	MentorGender:  "masculino",
}

type fixture struct {
	orch   *Orchestrator
	store  *memory.SessionRepository
	runner *fakeRunner
	pub    *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewSessionRepository(),
		runner: &fakeRunner{answer: "<p>Hola, ¿en qué te ayudo?</p>"},
		pub:    &fakePublisher{},
	}
	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	f.orch = New(f.store, f.runner, logger.NewNop(),
		WithPublisher(f.pub),
		WithReplier(closing.NewReplier(func(int) int { return 0 })),
		WithClock(func() time.Time { return fixed }),
	)
	return f
}

func (f *fixture) handle(t *testing.T, prompt string) Reply {
	t.Helper()
	r, err := f.orch.Handle(context.Background(), Turn{SessionID: "s1", Prompt: prompt, Profile: profile})
	require.NoError(t, err)
	return r
}

func (f *fixture) uploaded(t *testing.T, summary string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.SetOCRResult(ctx, "s1", store.OCRResult{Certificate: "CitaMedicaConReposo", Summary: summary, Escalated: "justificado"}))
	require.NoError(t, f.store.AddUploadedDoc(ctx, "s1", "doc:CitaMedicaConReposo"))
	require.NoError(t, f.store.DiscardUploadedDoc(ctx, "s1", store.TagOCRNotified))
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.handle(t, "hola")
	f.uploaded(t, "ok")

	before := testutil.ToFloat64(turnsTotal.WithLabelValues("reset"))
	r := f.handle(t, "  --REINICIAR-- ")

	assert.Equal(t, BranchReset, r.Branch)
	assert.Equal(t, resetReply, r.Response)
	assert.Equal(t, 1.0, testutil.ToFloat64(turnsTotal.WithLabelValues("reset"))-before)

	h, _ := f.store.History(ctx, "s1")
	assert.Equal(t, []store.Message{{Role: store.RoleSystem, Content: "[contexto reiniciado]"}}, h)
	ocr, _ := f.store.OCRResult(ctx, "s1")
	assert.Nil(t, ocr)
	docs, _ := f.store.UploadedDocs(ctx, "s1")
	assert.Empty(t, docs)
	p, _ := f.store.Profile(ctx, "s1")
	assert.Nil(t, p)
}

func TestPreEscalationSkipsAgent(t *testing.T) {
	f := newFixture(t)
	r := f.handle(t, "me robaron el celular")

	assert.Equal(t, BranchPreEscalation, r.Branch)
	assert.Equal(t, "<p>--mentor--</p>", r.Response)
	assert.Equal(t, "--mentor--", r.Message)
	assert.True(t, r.Escalated)
	assert.Equal(t, 0, f.runner.calls())

	h, _ := f.store.History(context.Background(), "s1")
	assert.Equal(t, []store.Message{
		{Role: store.RoleUser, Content: "me robaron el celular"},
		{Role: store.RoleAssistant, Content: "--mentor--"},
	}, h)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, events.TypeCaseEscalated, f.pub.events[0].EventType())
	assert.Equal(t, events.SourceMessage, f.pub.events[0].Payload()["source"])
}

func TestOCRFastPathNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	f.uploaded(t, "Tu certificado fue validado.")

	first := f.handle(t, "hola")
	assert.Equal(t, BranchOCRFastPath, first.Branch)
	assert.Equal(t, "<p>Tu certificado fue validado.</p>", first.Response)
	assert.Equal(t, 0, f.runner.calls())

	ok, _ := f.store.HasUploadedDoc(context.Background(), "s1", store.TagOCRNotified)
	assert.True(t, ok)

	second := f.handle(t, "hola")
	assert.Equal(t, BranchAgent, second.Branch)
	assert.Equal(t, 1, f.runner.calls())

	// A new upload re-arms the fast path
	f.uploaded(t, "Segundo documento recibido.")
	third := f.handle(t, "hola")
	assert.Equal(t, BranchOCRFastPath, third.Branch)
}

func TestOCRFastPathSanitizesSummary(t *testing.T) {
	f := newFixture(t)
	f.uploaded(t, "Certificado recibido.<script>alert(1)</script> <a href=\"javascript:alert(1)\">ver</a>")

	r := f.handle(t, "hola")
	assert.Equal(t, BranchOCRFastPath, r.Branch)
	assert.NotContains(t, r.Response, "<script")
	assert.NotContains(t, r.Response, "javascript:")
	assert.Contains(t, r.Response, "Certificado recibido.")

	h, _ := f.store.History(context.Background(), "s1")
	require.NotEmpty(t, h)
	assert.Equal(t, r.Response, h[len(h)-1].Content)
}

func TestOCRFastPathNeedsDocumentTag(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetOCRResult(context.Background(), "s1", store.OCRResult{Summary: "x"}))

	r := f.handle(t, "hola")
	assert.Equal(t, BranchAgent, r.Branch)
}

func TestOCRFastPathSentinelSummary(t *testing.T) {
	f := newFixture(t)
	f.uploaded(t, "--mentor--")

	r := f.handle(t, "hola")
	assert.Equal(t, BranchOCRFastPath, r.Branch)
	assert.True(t, r.Escalated)
	assert.Empty(t, f.pub.events)
}

func TestClosingAfterProcessedCase(t *testing.T) {
	f := newFixture(t)
	f.uploaded(t, "Tu certificado fue validado.")
	f.handle(t, "hola")

	r := f.handle(t, "gracias")
	assert.Equal(t, BranchClosing, r.Branch)
	assert.Equal(t, closing.Variants("Ana")[0], r.Response)
	assert.Equal(t, 0, f.runner.calls())

	ok, _ := f.store.HasUploadedDoc(context.Background(), "s1", store.TagCaseClosed)
	assert.True(t, ok)
}

func TestClosingWithoutCaseGoesToAgent(t *testing.T) {
	f := newFixture(t)
	r := f.handle(t, "gracias")
	assert.Equal(t, BranchAgent, r.Branch)
	assert.Equal(t, 1, f.runner.calls())
}

func TestFullTurnPrompt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.AppendMessage(ctx, "s1", store.RoleUser, "hola"))
	require.NoError(t, f.store.AppendMessage(ctx, "s1", store.RoleAssistant, "<p>Hola</p>"))
	f.runner.answer = "Hola Ana\n\nSube tu certificado"

	r := f.handle(t, "tengo gripe")

	want := "Interaccion: 2\n" +
		"Estudiante: hola\n" +
		"Mentor: <p>Hola</p>\n" +
		"Estudiante: tengo gripe\n" +
		"DatosUsuario: nombre=Ana Pérez, apodo=Ana, cédula=1712345678, carrera=Medicina, correo=ana@udla.edu.ec, estudiante_genero=femenino, mentor_genero=masculino\n" +
		"Mentor:"
	require.Len(t, f.runner.prompts, 1)
	assert.Equal(t, want, f.runner.prompts[0])

	assert.Equal(t, BranchAgent, r.Branch)
	assert.Equal(t, "<p>Hola Ana</p><p>Sube tu certificado</p>", r.Response)
	assert.False(t, r.Escalated)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), r.Timestamp)

	h, _ := f.store.History(ctx, "s1")
	require.Len(t, h, 4)
	assert.Equal(t, store.Message{Role: store.RoleAssistant, Content: r.Response}, h[3])

	p, _ := f.store.Profile(ctx, "s1")
	require.NotNil(t, p)
	assert.Equal(t, profile, *p)
}

func TestSystemEntriesRenderAsMentor(t *testing.T) {
	got := BuildPrompt([]store.Message{
		{Role: store.RoleSystem, Content: "[contexto reiniciado]"},
		{Role: store.RoleUser, Content: "hola"},
	}, store.Profile{})
	assert.Equal(t, "Interaccion: 1\nMentor: [contexto reiniciado]\nEstudiante: hola\n"+
		"DatosUsuario: nombre=, apodo=, cédula=, carrera=, correo=, estudiante_genero=, mentor_genero=\nMentor:", got)
}

func TestAgentEscalation(t *testing.T) {
	f := newFixture(t)
	f.runner.answer = "--mentor--"

	r := f.handle(t, "necesito ayuda con algo")
	assert.Equal(t, "<p>--mentor--</p>", r.Response)
	assert.True(t, r.Escalated)
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, events.SourceAgent, f.pub.events[0].Payload()["source"])
}

func TestAgentFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.err = errors.New("upstream down")

	_, err := f.orch.Handle(context.Background(), Turn{SessionID: "s1", Prompt: "hola"})
	assert.Error(t, err)

	h, _ := f.store.History(context.Background(), "s1")
	assert.Equal(t, []store.Message{{Role: store.RoleUser, Content: "hola"}}, h)
}

func TestEmptySessionID(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Handle(context.Background(), Turn{Prompt: "hola"})
	assert.ErrorIs(t, err, store.ErrEmptySessionID)
}

func TestConcurrentTurnsNotifyOnce(t *testing.T) {
	f := newFixture(t)
	f.uploaded(t, "Tu certificado fue validado.")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		fastPath int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := f.orch.Handle(context.Background(), Turn{SessionID: "s1", Prompt: "hola", Profile: profile})
			assert.NoError(t, err)
			if r.Branch == BranchOCRFastPath {
				mu.Lock()
				fastPath++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fastPath)
	assert.Equal(t, 15, f.runner.calls())

	h, _ := f.store.History(context.Background(), "s1")
	assert.Len(t, h, 32)
}
