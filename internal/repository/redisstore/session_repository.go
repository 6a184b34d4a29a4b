// Package redisstore keeps session state in Redis so several API replicas can share it.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"udla-mentor-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "helpdesk"

// SessionRepository stores each state kind under its own key:
// {prefix}:{id}:history (list), :docs (set), :ocr and :profile (JSON strings).
type SessionRepository struct {
	rdb    *redis.Client
	prefix string
}

var _ store.SessionStore = (*SessionRepository)(nil)

func NewSessionRepository(rdb *redis.Client, prefix string) *SessionRepository {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SessionRepository{rdb: rdb, prefix: prefix}
}

func (r *SessionRepository) key(sessionID, kind string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, sessionID, kind)
}

func (r *SessionRepository) keys(sessionID string) []string {
	return []string{
		r.key(sessionID, "history"),
		r.key(sessionID, "docs"),
		r.key(sessionID, "ocr"),
		r.key(sessionID, "profile"),
	}
}

func (r *SessionRepository) History(ctx context.Context, sessionID string) ([]store.Message, error) {
	raw, err := r.rdb.LRange(ctx, r.key(sessionID, "history"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: history: %w", err)
	}
	out := make([]store.Message, 0, len(raw))
	for _, item := range raw {
		var m store.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("redisstore: decode message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *SessionRepository) AppendMessage(ctx context.Context, sessionID string, role store.Role, content string) error {
	if sessionID == "" {
		return store.ErrEmptySessionID
	}
	b, err := json.Marshal(store.Message{Role: role, Content: content})
	if err != nil {
		return err
	}
	if err := r.rdb.RPush(ctx, r.key(sessionID, "history"), b).Err(); err != nil {
		return fmt.Errorf("redisstore: append: %w", err)
	}
	return nil
}

func (r *SessionRepository) SessionMessages(ctx context.Context, sessionID string) ([]store.Message, error) {
	return r.History(ctx, sessionID)
}

func (r *SessionRepository) UploadedDocs(ctx context.Context, sessionID string) (store.Tags, error) {
	members, err := r.rdb.SMembers(ctx, r.key(sessionID, "docs")).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: docs: %w", err)
	}
	return store.NewTags(members...), nil
}

func (r *SessionRepository) HasUploadedDoc(ctx context.Context, sessionID, tag string) (bool, error) {
	ok, err := r.rdb.SIsMember(ctx, r.key(sessionID, "docs"), tag).Result()
	if err != nil {
		return false, fmt.Errorf("redisstore: docs: %w", err)
	}
	return ok, nil
}

func (r *SessionRepository) AddUploadedDoc(ctx context.Context, sessionID, tag string) error {
	if sessionID == "" {
		return store.ErrEmptySessionID
	}
	return r.rdb.SAdd(ctx, r.key(sessionID, "docs"), tag).Err()
}

func (r *SessionRepository) DiscardUploadedDoc(ctx context.Context, sessionID, tag string) error {
	return r.rdb.SRem(ctx, r.key(sessionID, "docs"), tag).Err()
}

func (r *SessionRepository) OCRResult(ctx context.Context, sessionID string) (*store.OCRResult, error) {
	var res store.OCRResult
	ok, err := r.getJSON(ctx, r.key(sessionID, "ocr"), &res)
	if err != nil || !ok {
		return nil, err
	}
	return &res, nil
}

func (r *SessionRepository) SetOCRResult(ctx context.Context, sessionID string, result store.OCRResult) error {
	if sessionID == "" {
		return store.ErrEmptySessionID
	}
	return r.setJSON(ctx, r.key(sessionID, "ocr"), result)
}

func (r *SessionRepository) Profile(ctx context.Context, sessionID string) (*store.Profile, error) {
	var p store.Profile
	ok, err := r.getJSON(ctx, r.key(sessionID, "profile"), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (r *SessionRepository) SetProfile(ctx context.Context, sessionID string, profile store.Profile) error {
	if sessionID == "" {
		return store.ErrEmptySessionID
	}
	return r.setJSON(ctx, r.key(sessionID, "profile"), profile)
}

func (r *SessionRepository) ClearHistory(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, r.key(sessionID, "history")).Err()
}

func (r *SessionRepository) ClearUploadedDocs(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, r.key(sessionID, "docs")).Err()
}

func (r *SessionRepository) ClearOCRResult(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, r.key(sessionID, "ocr")).Err()
}

func (r *SessionRepository) ClearProfile(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, r.key(sessionID, "profile")).Err()
}

// ClearSession deletes the four keys inside one MULTI/EXEC.
func (r *SessionRepository) ClearSession(ctx context.Context, sessionID string) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.keys(sessionID)...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisstore: clear session: %w", err)
	}
	return nil
}

// ClearAll removes every key under the repository prefix.
func (r *SessionRepository) ClearAll(ctx context.Context) error {
	iter := r.rdb.Scan(ctx, 0, r.prefix+":*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redisstore: scan: %w", err)
	}
	if len(batch) > 0 {
		return r.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

func (r *SessionRepository) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("redisstore: decode %s: %w", key, err)
	}
	return true, nil
}

func (r *SessionRepository) setJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, b, 0).Err()
}
