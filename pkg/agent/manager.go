// Package agent turns a conversation transcript into the mentor's next reply.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/pkg/faq"
	"udla-mentor-be/pkg/helpdesk/classifier"
	"udla-mentor-be/pkg/helpdesk/escalation"
	"udla-mentor-be/pkg/llm"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const module = "ManagerAgent"

var toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "helpdesk_agent_tool_calls_total",
	Help: "Tool lookups performed by the manager agent, by tool.",
}, []string{"tool"})

// StatusLookup renders the justification status for an institutional email.
type StatusLookup interface {
	Status(ctx context.Context, email string) string
}

type Manager struct {
	llm         llm.LLMProvider
	classifier  *classifier.Classifier
	faq         faq.Searcher
	status      StatusLookup
	log         logger.ILogger
	now         func() time.Time
	temperature float64
	timeout     time.Duration
}

type Option func(*Manager)

func WithFAQ(s faq.Searcher) Option { return func(m *Manager) { m.faq = s } }

func WithStatusLookup(s StatusLookup) Option { return func(m *Manager) { m.status = s } }

func WithClassifier(c *classifier.Classifier) Option { return func(m *Manager) { m.classifier = c } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithTimeout bounds each model call. Zero leaves the request context untouched.
func WithTimeout(d time.Duration) Option { return func(m *Manager) { m.timeout = d } }

func NewManager(provider llm.LLMProvider, log logger.ILogger, opts ...Option) *Manager {
	m := &Manager{
		llm:         provider,
		classifier:  classifier.New(nil, nil),
		faq:         faq.Unavailable{},
		log:         log,
		now:         time.Now,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Run(ctx context.Context, transcript string) (string, error) {
	question := LastStudentLine(transcript)
	result := m.classifier.Classify(question)
	toolCalls.WithLabelValues("classify_justification_case").Inc()

	m.log.Debug(module, "Classified student message", map[string]interface{}{
		"case": string(result.Case),
	})

	// 1. Cases routed to a mentor never reach the model
	if result.Escalates() {
		return escalation.Sentinel, nil
	}

	// 2. Tool context
	tools, err := m.toolContext(ctx, question, transcript, result)
	if err != nil {
		return "", err
	}

	// 3. One chat call
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	msgs := []llm.Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "system", Content: tools},
		{Role: "user", Content: transcript},
	}
	out, err := m.llm.Chat(ctx, msgs, llm.WithTemperature(m.temperature))
	if err != nil {
		return "", fmt.Errorf("agent: chat: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (m *Manager) toolContext(ctx context.Context, question, transcript string, result classifier.Result) (string, error) {
	classification, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("agent: encode classification: %w", err)
	}

	var b strings.Builder
	b.WriteString("Resultados de herramientas para el último mensaje del estudiante:\n")
	fmt.Fprintf(&b, "classify_justification_case: %s\n", classification)

	if result.Note == classifier.NoteUseFAQ || result.Case == classifier.CaseUnknown {
		toolCalls.WithLabelValues("search_faq").Inc()
		fmt.Fprintf(&b, "search_faq: %s\n", m.searchFAQ(ctx, question))
	}

	if m.status != nil && AsksStatus(question) {
		toolCalls.WithLabelValues("case_status_udla").Inc()
		fmt.Fprintf(&b, "case_status_udla: %s\n", m.status.Status(ctx, EmailFromTranscript(transcript)))
	}

	fmt.Fprintf(&b, "get_current_date: %s", m.now().UTC().Format("02-01-2006"))
	return b.String(), nil
}

func (m *Manager) searchFAQ(ctx context.Context, question string) string {
	snippets, err := m.faq.Search(ctx, question, faq.DefaultLimit)
	if err != nil {
		m.log.Error(module, "FAQ search failed", map[string]interface{}{"error": err})
		return faq.SearchFailed
	}
	return faq.Render(snippets)
}
