package memory

import (
	"context"
	"sync"

	"udla-mentor-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type session struct {
	mu      sync.RWMutex
	history []store.Message
	docs    store.Tags
	ocr     *store.OCRResult
	profile *store.Profile
}

// SessionRepository keeps every session in process memory. Entries never expire.
type SessionRepository struct {
	cache *cache.Cache
}

var _ store.SessionStore = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	// No expiration and no janitor: sessions live until they are cleared
	c := cache.New(cache.NoExpiration, 0)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) get(sessionID string) (*session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*session), true
	}
	return nil, false
}

func (r *SessionRepository) getOrCreate(sessionID string) (*session, error) {
	if sessionID == "" {
		return nil, store.ErrEmptySessionID
	}
	for {
		if s, ok := r.get(sessionID); ok {
			return s, nil
		}
		s := &session{docs: store.NewTags()}
		if err := r.cache.Add(sessionID, s, cache.NoExpiration); err == nil {
			return s, nil
		}
		// Lost the race to a concurrent writer; the winner may already be cleared
	}
}

func (r *SessionRepository) History(ctx context.Context, sessionID string) ([]store.Message, error) {
	s, ok := r.get(sessionID)
	if !ok {
		return []store.Message{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.Message{}, s.history...), nil
}

func (r *SessionRepository) AppendMessage(ctx context.Context, sessionID string, role store.Role, content string) error {
	s, err := r.getOrCreate(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.history = append(s.history, store.Message{Role: role, Content: content})
	s.mu.Unlock()
	return nil
}

func (r *SessionRepository) SessionMessages(ctx context.Context, sessionID string) ([]store.Message, error) {
	return r.History(ctx, sessionID)
}

func (r *SessionRepository) UploadedDocs(ctx context.Context, sessionID string) (store.Tags, error) {
	s, ok := r.get(sessionID)
	if !ok {
		return store.NewTags(), nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(store.Tags, len(s.docs))
	for tag := range s.docs {
		out[tag] = struct{}{}
	}
	return out, nil
}

func (r *SessionRepository) HasUploadedDoc(ctx context.Context, sessionID, tag string) (bool, error) {
	s, ok := r.get(sessionID)
	if !ok {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.Has(tag), nil
}

func (r *SessionRepository) AddUploadedDoc(ctx context.Context, sessionID, tag string) error {
	s, err := r.getOrCreate(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[tag] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (r *SessionRepository) DiscardUploadedDoc(ctx context.Context, sessionID, tag string) error {
	s, ok := r.get(sessionID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	delete(s.docs, tag)
	s.mu.Unlock()
	return nil
}

func (r *SessionRepository) OCRResult(ctx context.Context, sessionID string) (*store.OCRResult, error) {
	s, ok := r.get(sessionID)
	if !ok {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ocr == nil {
		return nil, nil
	}
	res := *s.ocr
	return &res, nil
}

func (r *SessionRepository) SetOCRResult(ctx context.Context, sessionID string, result store.OCRResult) error {
	s, err := r.getOrCreate(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ocr = &result
	s.mu.Unlock()
	return nil
}

func (r *SessionRepository) Profile(ctx context.Context, sessionID string) (*store.Profile, error) {
	s, ok := r.get(sessionID)
	if !ok {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil, nil
	}
	p := *s.profile
	return &p, nil
}

func (r *SessionRepository) SetProfile(ctx context.Context, sessionID string, profile store.Profile) error {
	s, err := r.getOrCreate(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	return nil
}

func (r *SessionRepository) ClearHistory(ctx context.Context, sessionID string) error {
	return r.with(sessionID, func(s *session) { s.history = nil })
}

func (r *SessionRepository) ClearUploadedDocs(ctx context.Context, sessionID string) error {
	return r.with(sessionID, func(s *session) { s.docs = store.NewTags() })
}

func (r *SessionRepository) ClearOCRResult(ctx context.Context, sessionID string) error {
	return r.with(sessionID, func(s *session) { s.ocr = nil })
}

func (r *SessionRepository) ClearProfile(ctx context.Context, sessionID string) error {
	return r.with(sessionID, func(s *session) { s.profile = nil })
}

// ClearSession drops the whole entry, so no reader can observe a partial reset.
func (r *SessionRepository) ClearSession(ctx context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func (r *SessionRepository) ClearAll(ctx context.Context) error {
	r.cache.Flush()
	return nil
}

// Count returns the number of live sessions.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

func (r *SessionRepository) with(sessionID string, fn func(s *session)) error {
	s, ok := r.get(sessionID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	fn(s)
	s.mu.Unlock()
	return nil
}
