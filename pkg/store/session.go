package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var ErrEmptySessionID = errors.New("store: empty session id")

// Role of a history entry
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one history entry of a session
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// OCRResult is the cached outcome of the last analyzed document.
// Escalated is "mentor", "justificado" or empty.
type OCRResult struct {
	Certificate string    `json:"certificate"`
	Summary     string    `json:"summary"`
	Escalated   string    `json:"escalated"`
	Timestamp   time.Time `json:"ts"`
}

// Profile is the student snapshot supplied by the caller with each turn
type Profile struct {
	FullName      string `json:"fullName"`
	Nickname      string `json:"nickname"`
	IDCard        string `json:"idCard"`
	Career        string `json:"career"`
	Email         string `json:"email"`
	StudentGender string `json:"student_gender"`
	MentorGender  string `json:"mentor_gender"`
}

// Document tags
const (
	TagOCRNotified          = "ocr_notified"
	TagCaseClosed           = "caso_cerrado"
	TagMedicalCertificate   = "certificado_medico"
	TagValidatedCertificate = "certificado_validado"
	DocTagPrefix            = "doc:"
)

// DocTag returns the tag recorded for an analyzed certificate type.
func DocTag(certificate string) string { return DocTagPrefix + certificate }

// Tags is a set of idempotent markers
type Tags map[string]struct{}

func NewTags(tags ...string) Tags {
	t := make(Tags, len(tags))
	for _, tag := range tags {
		t[tag] = struct{}{}
	}
	return t
}

func (t Tags) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

func (t Tags) HasPrefix(prefix string) bool {
	for tag := range t {
		if strings.HasPrefix(tag, prefix) {
			return true
		}
	}
	return false
}

// Sorted returns the tags in lexical order.
func (t Tags) Sorted() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// SessionStore holds per-session conversation state. A session exists from its first write
// until it is cleared; reading an unknown session yields empty state.
type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]Message, error)
	AppendMessage(ctx context.Context, sessionID string, role Role, content string) error
	// SessionMessages returns a snapshot for read-only consumers such as the summarizer.
	SessionMessages(ctx context.Context, sessionID string) ([]Message, error)

	UploadedDocs(ctx context.Context, sessionID string) (Tags, error)
	HasUploadedDoc(ctx context.Context, sessionID, tag string) (bool, error)
	AddUploadedDoc(ctx context.Context, sessionID, tag string) error
	DiscardUploadedDoc(ctx context.Context, sessionID, tag string) error

	OCRResult(ctx context.Context, sessionID string) (*OCRResult, error)
	SetOCRResult(ctx context.Context, sessionID string, result OCRResult) error

	Profile(ctx context.Context, sessionID string) (*Profile, error)
	SetProfile(ctx context.Context, sessionID string, profile Profile) error

	ClearHistory(ctx context.Context, sessionID string) error
	ClearUploadedDocs(ctx context.Context, sessionID string) error
	ClearOCRResult(ctx context.Context, sessionID string) error
	ClearProfile(ctx context.Context, sessionID string) error
	// ClearSession drops all four kinds of state in one step.
	ClearSession(ctx context.Context, sessionID string) error
	ClearAll(ctx context.Context) error
}
