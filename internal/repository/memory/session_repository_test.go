package memory

import (
	"context"
	"sync"
	"testing"

	"udla-mentor-be/pkg/store"
	"udla-mentor-be/pkg/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.SessionStore {
		return NewSessionRepository()
	})
}

func TestEmptySessionID(t *testing.T) {
	r := NewSessionRepository()
	err := r.AppendMessage(context.Background(), "", store.RoleUser, "hola")
	assert.ErrorIs(t, err, store.ErrEmptySessionID)
}

func TestReadsDoNotCreateSessions(t *testing.T) {
	r := NewSessionRepository()
	ctx := context.Background()
	_, _ = r.History(ctx, "s1")
	_, _ = r.OCRResult(ctx, "s1")
	assert.Equal(t, 0, r.Count())

	_ = r.AddUploadedDoc(ctx, "s1", store.TagCaseClosed)
	assert.Equal(t, 1, r.Count())

	_ = r.ClearSession(ctx, "s1")
	assert.Equal(t, 0, r.Count())
}

func TestWritesRaceWithClear(t *testing.T) {
	r := NewSessionRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.AppendMessage(ctx, "s1", store.RoleUser, "hola"))
		}()
		go func() {
			defer wg.Done()
			_ = r.ClearSession(ctx, "s1")
		}()
	}
	wg.Wait()

	require.NoError(t, r.AppendMessage(ctx, "s1", store.RoleUser, "último"))
	h, err := r.History(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, h)
}
