// Package orchestrator runs one student turn through the ordered pre-checks
// (reset, escalation, OCR fast path, closing) before falling back to the agent.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/pkg/events"
	"udla-mentor-be/pkg/helpdesk/closing"
	"udla-mentor-be/pkg/helpdesk/escalation"
	"udla-mentor-be/pkg/helpdesk/sanitizer"
	"udla-mentor-be/pkg/store"
)

const module = "Orchestrator"

// ResetCommand clears the session when sent as the whole prompt.
const ResetCommand = "--reiniciar--"

const (
	resetReply  = "<p>He reiniciado el contexto de la conversación. Empecemos de nuevo.</p>"
	resetMarker = "[contexto reiniciado]"
)

// Branch names the step that produced a reply.
type Branch string

const (
	BranchReset         Branch = "reset"
	BranchPreEscalation Branch = "pre_escalation"
	BranchOCRFastPath   Branch = "ocr_fast_path"
	BranchClosing       Branch = "closing"
	BranchAgent         Branch = "agent"
)

// Runner answers a full reconstructed transcript.
type Runner interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// Publisher receives escalation events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Turn is one incoming student message.
type Turn struct {
	SessionID string
	Prompt    string
	Profile   store.Profile
}

// Reply is what the client receives. Message is a short status for the response envelope.
type Reply struct {
	Branch    Branch
	Response  string
	Message   string
	Escalated bool
	Timestamp time.Time
}

// turnState is loaded once per turn and shared by the steps.
type turnState struct {
	turn Turn
	docs store.Tags
	ocr  *store.OCRResult
}

// step returns ok == true when it produced the reply.
type step func(ctx context.Context, st *turnState) (Reply, bool, error)

type Orchestrator struct {
	store     store.SessionStore
	locks     *store.Locker
	agent     Runner
	detector  *escalation.Detector
	sanitizer *sanitizer.Sanitizer
	replier   *closing.Replier
	publisher Publisher
	log       logger.ILogger
	now       func() time.Time

	steps []step
}

type Option func(*Orchestrator)

// WithLocker shares a session lock with other writers, such as the document pipeline.
func WithLocker(l *store.Locker) Option { return func(o *Orchestrator) { o.locks = l } }

func WithDetector(d *escalation.Detector) Option { return func(o *Orchestrator) { o.detector = d } }

func WithSanitizer(s *sanitizer.Sanitizer) Option { return func(o *Orchestrator) { o.sanitizer = s } }

func WithReplier(r *closing.Replier) Option { return func(o *Orchestrator) { o.replier = r } }

func WithPublisher(p Publisher) Option { return func(o *Orchestrator) { o.publisher = p } }

func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

func New(st store.SessionStore, agent Runner, log logger.ILogger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     st,
		agent:     agent,
		log:       log,
		locks:     store.NewLocker(),
		detector:  escalation.NewDetector(nil),
		sanitizer: sanitizer.New(nil),
		replier:   closing.NewReplier(nil),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.steps = []step{
		o.preEscalation,
		o.ocrFastPath,
		o.closingAfterCase,
		o.fullTurn,
	}
	return o
}

// Handle processes one turn. All state changes for a session happen under its lock.
func (o *Orchestrator) Handle(ctx context.Context, turn Turn) (Reply, error) {
	if turn.SessionID == "" {
		return Reply{}, store.ErrEmptySessionID
	}

	unlock := o.locks.Lock(turn.SessionID)
	defer unlock()

	// 1. Reset
	if strings.ToLower(strings.TrimSpace(turn.Prompt)) == ResetCommand {
		reply, err := o.reset(ctx, turn)
		return o.finish(reply, err)
	}

	if err := o.store.SetProfile(ctx, turn.SessionID, turn.Profile); err != nil {
		return Reply{}, fmt.Errorf("orchestrator: store profile: %w", err)
	}

	st := &turnState{turn: turn}
	for _, s := range o.steps {
		reply, ok, err := s(ctx, st)
		if err != nil {
			return Reply{}, err
		}
		if ok {
			return o.finish(reply, nil)
		}
	}
	// fullTurn always answers
	return Reply{}, fmt.Errorf("orchestrator: no step handled the turn")
}

func (o *Orchestrator) finish(r Reply, err error) (Reply, error) {
	if err != nil {
		return Reply{}, err
	}
	r.Timestamp = o.now().UTC()
	turnsTotal.WithLabelValues(string(r.Branch)).Inc()
	return r, nil
}

func (o *Orchestrator) reset(ctx context.Context, turn Turn) (Reply, error) {
	if err := o.store.ClearSession(ctx, turn.SessionID); err != nil {
		return Reply{}, fmt.Errorf("orchestrator: clear session: %w", err)
	}
	if err := o.store.AppendMessage(ctx, turn.SessionID, store.RoleSystem, resetMarker); err != nil {
		return Reply{}, err
	}
	o.log.Info(module, "Session reset", map[string]interface{}{"session_id": turn.SessionID})
	return Reply{Branch: BranchReset, Response: resetReply, Message: "Contexto reiniciado"}, nil
}

// 2. Escalation keywords in the raw prompt never reach the agent.
func (o *Orchestrator) preEscalation(ctx context.Context, st *turnState) (Reply, bool, error) {
	if !o.detector.Detect(st.turn.Prompt) {
		return Reply{}, false, nil
	}
	if err := o.appendPair(ctx, st.turn.SessionID, st.turn.Prompt, escalation.Sentinel); err != nil {
		return Reply{}, false, err
	}
	o.publishEscalation(ctx, st.turn, events.SourceMessage)
	return Reply{
		Branch:    BranchPreEscalation,
		Response:  "<p>" + escalation.Sentinel + "</p>",
		Message:   escalation.Message(),
		Escalated: true,
	}, true, nil
}

// 3. Surface a fresh OCR result exactly once.
func (o *Orchestrator) ocrFastPath(ctx context.Context, st *turnState) (Reply, bool, error) {
	if err := o.load(ctx, st); err != nil {
		return Reply{}, false, err
	}
	if st.ocr == nil || st.docs.Has(store.TagOCRNotified) || !hasRelevantDoc(st.docs) {
		return Reply{}, false, nil
	}

	response := o.sanitizer.Sanitize(st.ocr.Summary)
	if err := o.appendPair(ctx, st.turn.SessionID, st.turn.Prompt, response); err != nil {
		return Reply{}, false, err
	}
	if err := o.store.AddUploadedDoc(ctx, st.turn.SessionID, store.TagOCRNotified); err != nil {
		return Reply{}, false, err
	}
	return Reply{
		Branch:    BranchOCRFastPath,
		Response:  response,
		Message:   "Respuesta generada con estado de OCR de la sesión",
		Escalated: st.ocr.Summary == escalation.Sentinel,
	}, true, nil
}

// 4. A thank-you after the processed case closes it without another agent call.
func (o *Orchestrator) closingAfterCase(ctx context.Context, st *turnState) (Reply, bool, error) {
	if st.ocr == nil || !st.docs.Has(store.TagOCRNotified) || !closing.IsClosing(st.turn.Prompt) {
		return Reply{}, false, nil
	}

	response := o.replier.Reply(st.turn.Profile.Nickname, st.turn.Profile.MentorGender)
	if err := o.appendPair(ctx, st.turn.SessionID, st.turn.Prompt, response); err != nil {
		return Reply{}, false, err
	}
	if err := o.store.AddUploadedDoc(ctx, st.turn.SessionID, store.TagCaseClosed); err != nil {
		return Reply{}, false, err
	}
	return Reply{Branch: BranchClosing, Response: response, Message: "Respuesta de cierre de conversación"}, true, nil
}

// 5. Full agent turn over the reconstructed transcript.
func (o *Orchestrator) fullTurn(ctx context.Context, st *turnState) (Reply, bool, error) {
	sid := st.turn.SessionID

	history, err := o.store.History(ctx, sid)
	if err != nil {
		return Reply{}, false, err
	}
	if err := o.store.AppendMessage(ctx, sid, store.RoleUser, st.turn.Prompt); err != nil {
		return Reply{}, false, err
	}
	history = append(history, store.Message{Role: store.RoleUser, Content: st.turn.Prompt})

	raw, err := o.agent.Run(ctx, BuildPrompt(history, st.turn.Profile))
	if err != nil {
		return Reply{}, false, fmt.Errorf("orchestrator: agent: %w", err)
	}

	response := o.sanitizer.Sanitize(raw)
	if err := o.store.AppendMessage(ctx, sid, store.RoleAssistant, response); err != nil {
		return Reply{}, false, err
	}

	escalated := strings.Contains(response, escalation.Sentinel)
	if escalated {
		o.publishEscalation(ctx, st.turn, events.SourceAgent)
	}
	return Reply{
		Branch:    BranchAgent,
		Response:  response,
		Message:   "Respuesta generada por el agente Manager",
		Escalated: escalated,
	}, true, nil
}

func (o *Orchestrator) load(ctx context.Context, st *turnState) error {
	docs, err := o.store.UploadedDocs(ctx, st.turn.SessionID)
	if err != nil {
		return fmt.Errorf("orchestrator: load docs: %w", err)
	}
	ocr, err := o.store.OCRResult(ctx, st.turn.SessionID)
	if err != nil {
		return fmt.Errorf("orchestrator: load ocr: %w", err)
	}
	st.docs, st.ocr = docs, ocr
	return nil
}

func (o *Orchestrator) appendPair(ctx context.Context, sessionID, user, assistant string) error {
	if err := o.store.AppendMessage(ctx, sessionID, store.RoleUser, user); err != nil {
		return err
	}
	return o.store.AppendMessage(ctx, sessionID, store.RoleAssistant, assistant)
}

func (o *Orchestrator) publishEscalation(ctx context.Context, turn Turn, source string) {
	if o.publisher == nil {
		return
	}
	ev := events.CaseEscalated{
		SessionID: turn.SessionID,
		Source:    source,
		Nickname:  turn.Profile.Nickname,
		Career:    turn.Profile.Career,
		Email:     turn.Profile.Email,
		At:        o.now().UTC(),
	}.Event()
	if err := o.publisher.Publish(ctx, ev); err != nil {
		o.log.Error(module, "Failed to publish escalation", map[string]interface{}{
			"session_id": turn.SessionID,
			"error":      err,
		})
	}
}

func hasRelevantDoc(docs store.Tags) bool {
	return docs.Has(store.TagValidatedCertificate) ||
		docs.Has(store.TagMedicalCertificate) ||
		docs.HasPrefix(store.DocTagPrefix)
}

// BuildPrompt renders the transcript the agent reads: turn counter, role-prefixed lines
// and the student data trailer.
func BuildPrompt(history []store.Message, p store.Profile) string {
	assistants := 0
	for _, m := range history {
		if m.Role == store.RoleAssistant {
			assistants++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Interaccion: %d\n", assistants+1)
	for _, m := range history {
		prefix := "Mentor:"
		if m.Role == store.RoleUser {
			prefix = "Estudiante:"
		}
		fmt.Fprintf(&b, "%s %s\n", prefix, m.Content)
	}
	fmt.Fprintf(&b,
		"DatosUsuario: nombre=%s, apodo=%s, cédula=%s, carrera=%s, correo=%s, estudiante_genero=%s, mentor_genero=%s\nMentor:",
		p.FullName, p.Nickname, p.IDCard, p.Career, p.Email, p.StudentGender, p.MentorGender,
	)
	return b.String()
}
