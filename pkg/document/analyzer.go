// Package document validates uploaded justification certificates and records the
// outcome on the student's session.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/pkg/events"
	"udla-mentor-be/pkg/helpdesk/escalation"
	"udla-mentor-be/pkg/llm"
	"udla-mentor-be/pkg/store"

	"github.com/gabriel-vasile/mimetype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

const module = "DocumentAnalyzer"

// MaxUploadSize is the largest accepted file.
const MaxUploadSize = 10 << 20

var (
	ErrUnsupportedFormat = errors.New("document: unsupported format, use PNG, JPEG, GIF or PDF")
	ErrFileTooLarge      = errors.New("document: file exceeds 10 MB")
	ErrEmptyPDF          = errors.New("document: the PDF is empty or has no pages")
	ErrScannedPDF        = errors.New("document: the PDF has no extractable text")
	ErrUnreadablePDF     = errors.New("document: the PDF could not be read")
)

// Certificate labels
const (
	CertMedicalNoRest     = "CitaMedicaSinReposo"
	CertMedicalRest       = "CitaMedicaConReposo"
	CertMedicalChild      = "CitaMedicaHijosMenores"
	CertRepresentation    = "RepresentacionUniversitaria"
	CertDomesticCalamity  = "CalamidadDomestica"
	CertUnknown           = "Desconocido"
	notCertificateMarker  = "NO_ES_CERTIFICADO"
	tagNotCertificate     = "doc:no_certificado"
	tagUnknownCertificate = "doc:desconocido"
)

// Escalation outcomes stored in the OCR result
const (
	EscalatedMentor    = "mentor"
	EscalatedJustified = "justificado"
)

const (
	summaryNotCertificate = "El archivo que subiste no corresponde a ningún certificado válido para justificación de faltas, por favor sube un certificado oficial"
	summaryUnknown        = "El archivo que subiste no pertenece a ningún certificado que reconocemos."
)

var labels = map[string]bool{
	CertMedicalNoRest: true, CertMedicalRest: true, CertMedicalChild: true,
	CertRepresentation: true, CertDomesticCalamity: true, CertUnknown: true,
}

var medical = map[string]bool{CertMedicalNoRest: true, CertMedicalRest: true, CertMedicalChild: true}

var analyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "helpdesk_documents_analyzed_total",
	Help: "Uploaded documents analyzed, by resulting certificate label.",
}, []string{"certificate"})

// Model is the subset of a provider the pipeline calls.
type Model interface {
	llm.LLMProvider
	llm.VisionProvider
}

// Publisher receives escalation events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type Upload struct {
	SessionID   string
	Filename    string
	ContentType string // as declared by the client
	Data        []byte
}

type Result struct {
	Analysis       string `json:"analysis"`
	Summary        string `json:"summary"`
	Certificate    string `json:"certificate"`
	Escalated      string `json:"escalated"`
	FullName       string `json:"fullName"`
	DateInit       string `json:"dateInit"`
	DateEnd        string `json:"dateEnd"`
	Identification string `json:"identification"`
}

type Analyzer struct {
	model     Model
	store     store.SessionStore
	locks     *store.Locker
	publisher Publisher
	log       logger.ILogger
	now       func() time.Time
}

type Option func(*Analyzer)

// WithLocker must share the orchestrator's locker so OCR writes and turns serialize.
func WithLocker(l *store.Locker) Option { return func(a *Analyzer) { a.locks = l } }

func WithPublisher(p Publisher) Option { return func(a *Analyzer) { a.publisher = p } }

func WithClock(now func() time.Time) Option { return func(a *Analyzer) { a.now = now } }

func NewAnalyzer(model Model, st store.SessionStore, log logger.ILogger, opts ...Option) *Analyzer {
	a := &Analyzer{
		model: model,
		store: st,
		locks: store.NewLocker(),
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type kind int

const (
	kindImage kind = iota + 1
	kindPDF
)

var extensionMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

func classifyMIME(m string) kind {
	switch m {
	case "image/png", "image/jpeg", "image/jpg", "image/gif":
		return kindImage
	case "application/pdf", "application/x-pdf", "text/pdf":
		return kindPDF
	}
	return 0
}

// detect trusts the sniffed content type first, then the declared type, then the extension.
func detect(up Upload) (kind, string) {
	sniffed := mimetype.Detect(up.Data)
	for _, candidate := range []string{sniffed.String(), up.ContentType, extensionMIME[strings.ToLower(filepath.Ext(up.Filename))]} {
		candidate = strings.TrimSpace(strings.SplitN(candidate, ";", 2)[0])
		if k := classifyMIME(candidate); k != 0 {
			if candidate == "image/jpg" {
				candidate = "image/jpeg"
			}
			return k, candidate
		}
	}
	return 0, ""
}

// Analyze validates the upload, classifies the certificate and records the outcome on the session.
func (a *Analyzer) Analyze(ctx context.Context, up Upload) (*Result, error) {
	if up.SessionID == "" {
		return nil, store.ErrEmptySessionID
	}
	if len(up.Data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	// 1. Read the document
	analysis, err := a.analyze(ctx, up)
	if err != nil {
		return nil, err
	}
	res := &Result{Analysis: analysis}

	// 2. Not a certificate at all
	if strings.Contains(strings.ToUpper(analysis), notCertificateMarker) {
		res.Certificate, res.Summary = CertUnknown, summaryNotCertificate
		return res, a.persist(ctx, up.SessionID, res, tagNotCertificate)
	}

	// 3. Certificate type
	res.Certificate = a.label(ctx, analysis)

	switch res.Certificate {
	case CertDomesticCalamity:
		res.Summary, res.Escalated = escalation.Sentinel, EscalatedMentor
		if err := a.persist(ctx, up.SessionID, res, store.DocTag(res.Certificate)); err != nil {
			return nil, err
		}
		a.publishEscalation(ctx, up.SessionID, res.Certificate)
		return res, nil
	case CertUnknown:
		res.Summary = summaryUnknown
		return res, a.persist(ctx, up.SessionID, res, tagUnknownCertificate)
	}

	// 4. Summary and strict verification
	summary, err := a.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: summarySystem},
		{Role: "user", Content: "Análisis:\n" + analysis + "\n\nDame un mensaje rápido y amable del estado del certificado analizado. " +
			"Si hay elementos pendientes di: En el certificado nos hace falta más información para que nos puedan aceptar sin problema para la justificación, en este caso faltan: campo1, campo2..."},
	}, llm.WithTemperature(0), llm.WithMaxTokens(100))
	if err != nil {
		return nil, fmt.Errorf("document: summary: %w", err)
	}
	res.Summary = strings.TrimSpace(summary)
	res.Escalated = a.verify(ctx, res.Certificate, analysis)

	// 5. Field extraction; every failure degrades to ""
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.FullName = a.extractName(gctx, analysis)
		return nil
	})
	g.Go(func() error {
		res.DateInit, res.DateEnd = a.extractDates(gctx, analysis)
		return nil
	})
	g.Go(func() error {
		res.Identification = a.extractID(gctx, analysis)
		return nil
	})
	_ = g.Wait()

	return res, a.persist(ctx, up.SessionID, res, store.DocTag(res.Certificate))
}

func (a *Analyzer) analyze(ctx context.Context, up Upload) (string, error) {
	k, mime := detect(up)
	opts := []llm.Option{llm.WithTemperature(0.1), llm.WithMaxTokens(1000)}

	switch k {
	case kindImage:
		out, err := a.model.Vision(ctx, analysisSystem+"\n\n"+analysisInstructions,
			[]llm.Image{{MIMEType: mime, Data: up.Data}}, opts...)
		if err != nil {
			return "", fmt.Errorf("document: vision analysis: %w", err)
		}
		return out, nil
	case kindPDF:
		text, err := extractPDFText(up.Data)
		if err != nil {
			return "", err
		}
		out, err := a.model.Chat(ctx, []llm.Message{
			{Role: "system", Content: analysisSystem},
			{Role: "user", Content: analysisInstructions + "\n\nTexto extraído de PDF:\n\n" + text},
		}, opts...)
		if err != nil {
			return "", fmt.Errorf("document: pdf analysis: %w", err)
		}
		return out, nil
	}
	return "", ErrUnsupportedFormat
}

func (a *Analyzer) label(ctx context.Context, analysis string) string {
	raw, err := a.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: labelSystem},
		{Role: "user", Content: "ANÁLISIS:\n" + analysis + "\n\nDevuelve solo una etiqueta de la lista."},
	}, llm.WithTemperature(0), llm.WithMaxTokens(10))
	if err != nil {
		a.log.Warn(module, "Certificate classification failed", map[string]interface{}{"error": err.Error()})
		return CertUnknown
	}
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	if !labels[normalized] {
		return CertUnknown
	}
	return normalized
}

func (a *Analyzer) verify(ctx context.Context, certificate, analysis string) string {
	verdict, err := a.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: verifySystem},
		{Role: "user", Content: "Tipo detectado: " + certificate + "\n\n" + requirements +
			"\n\nANÁLISIS (texto del modelo con lo encontrado):\n" + analysis +
			"\n\nIndica solo 'OK' si TODAS las piezas requeridas están presentes. Si falta alguna o hay duda, responde 'MISSING: ...'."},
	}, llm.WithTemperature(0), llm.WithMaxTokens(20))
	if err != nil {
		a.log.Warn(module, "Requirement verification failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(verdict)), "OK") {
		return EscalatedJustified
	}
	return ""
}

func (a *Analyzer) extractName(ctx context.Context, analysis string) string {
	out, err := a.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: nameSystem},
		{Role: "user", Content: "Contenido para búsqueda de nombre:\n" + analysis + "\n\nRespuesta (solo nombre completo):"},
	}, llm.WithTemperature(0), llm.WithMaxTokens(30))
	if err != nil {
		a.log.Warn(module, "Name extraction failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return CleanName(out)
}

func (a *Analyzer) extractDates(ctx context.Context, analysis string) (string, string) {
	var init, end string
	out, err := a.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: datesSystem},
		{Role: "user", Content: "Contenido:\n" + analysis + "\n\nJSON:"},
	}, llm.WithTemperature(0), llm.WithMaxTokens(60), llm.WithJSON())
	if err != nil {
		a.log.Warn(module, "Date extraction failed", map[string]interface{}{"error": err.Error()})
	} else {
		var parsed struct {
			DateInit string `json:"dateInit"`
			DateEnd  string `json:"dateEnd"`
		}
		if json.Unmarshal([]byte(stripFence(out)), &parsed) == nil {
			init, end = NormalizeDate(parsed.DateInit), NormalizeDate(parsed.DateEnd)
		}
	}

	if init == "" {
		if found := FindDates(analysis); len(found) > 0 {
			init = found[0]
			if len(found) > 1 {
				end = found[len(found)-1]
			}
		}
	}
	return init, end
}

func (a *Analyzer) extractID(ctx context.Context, analysis string) string {
	out, err := a.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: idSystem},
		{Role: "user", Content: analysis},
	}, llm.WithTemperature(0), llm.WithMaxTokens(15))
	if err != nil {
		a.log.Warn(module, "Identification extraction failed", map[string]interface{}{"error": err.Error()})
	} else if id := CleanID(out); id != "" {
		return id
	}
	return FindID(analysis)
}

// persist records the outcome under the session lock and re-arms the OCR notification.
func (a *Analyzer) persist(ctx context.Context, sessionID string, res *Result, tag string) error {
	unlock := a.locks.Lock(sessionID)
	defer unlock()

	tags := []string{tag}
	if medical[res.Certificate] {
		tags = append(tags, store.TagMedicalCertificate)
	}
	if res.Escalated == EscalatedJustified {
		tags = append(tags, store.TagValidatedCertificate)
	}
	for _, t := range tags {
		if err := a.store.AddUploadedDoc(ctx, sessionID, t); err != nil {
			return fmt.Errorf("document: record tag: %w", err)
		}
	}
	if err := a.store.SetOCRResult(ctx, sessionID, store.OCRResult{
		Certificate: res.Certificate,
		Summary:     res.Summary,
		Escalated:   res.Escalated,
		Timestamp:   a.now().UTC(),
	}); err != nil {
		return fmt.Errorf("document: record ocr result: %w", err)
	}
	if err := a.store.DiscardUploadedDoc(ctx, sessionID, store.TagOCRNotified); err != nil {
		return fmt.Errorf("document: re-arm notification: %w", err)
	}

	analyzedTotal.WithLabelValues(res.Certificate).Inc()
	a.log.Info(module, "Document analyzed", map[string]interface{}{
		"session_id":  sessionID,
		"certificate": res.Certificate,
		"escalated":   res.Escalated,
	})
	return nil
}

func (a *Analyzer) publishEscalation(ctx context.Context, sessionID, certificate string) {
	if a.publisher == nil {
		return
	}
	ev := events.CaseEscalated{
		SessionID:   sessionID,
		Source:      events.SourceDocument,
		Certificate: certificate,
		At:          a.now().UTC(),
	}
	if p, err := a.store.Profile(ctx, sessionID); err == nil && p != nil {
		ev.Nickname, ev.Career, ev.Email = p.Nickname, p.Career, p.Email
	}
	if err := a.publisher.Publish(ctx, ev.Event()); err != nil {
		a.log.Error(module, "Failed to publish escalation", map[string]interface{}{
			"session_id": sessionID,
			"error":      err,
		})
	}
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
