// Package storetest holds the behaviour every store.SessionStore backend must satisfy.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"udla-mentor-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh backend returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) store.SessionStore) {
	ctx := context.Background()

	t.Run("unknown session is empty", func(t *testing.T) {
		s := newStore(t)
		h, err := s.History(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, h)

		docs, err := s.UploadedDocs(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, docs)

		ocr, err := s.OCRResult(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, ocr)

		p, err := s.Profile(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("history keeps insertion order", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AppendMessage(ctx, "s1", store.RoleUser, "hola"))
		require.NoError(t, s.AppendMessage(ctx, "s1", store.RoleAssistant, "<p>Hola</p>"))
		require.NoError(t, s.AppendMessage(ctx, "s1", store.RoleUser, "tengo gripe"))

		h, err := s.History(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, []store.Message{
			{Role: store.RoleUser, Content: "hola"},
			{Role: store.RoleAssistant, Content: "<p>Hola</p>"},
			{Role: store.RoleUser, Content: "tengo gripe"},
		}, h)
	})

	t.Run("session messages is a snapshot", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AppendMessage(ctx, "s1", store.RoleUser, "uno"))

		snap, err := s.SessionMessages(ctx, "s1")
		require.NoError(t, err)
		snap[0].Content = "cambiado"

		require.NoError(t, s.AppendMessage(ctx, "s1", store.RoleUser, "dos"))
		h, err := s.History(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "uno", h[0].Content)
		assert.Len(t, snap, 1)
	})

	t.Run("tags are idempotent and discardable", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddUploadedDoc(ctx, "s1", "doc:CitaMedicaConReposo"))
		require.NoError(t, s.AddUploadedDoc(ctx, "s1", store.TagOCRNotified))
		require.NoError(t, s.AddUploadedDoc(ctx, "s1", store.TagOCRNotified))

		docs, err := s.UploadedDocs(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		ok, err := s.HasUploadedDoc(ctx, "s1", store.TagOCRNotified)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, s.DiscardUploadedDoc(ctx, "s1", store.TagOCRNotified))
		require.NoError(t, s.DiscardUploadedDoc(ctx, "s1", "never-added"))
		ok, err = s.HasUploadedDoc(ctx, "s1", store.TagOCRNotified)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ocr result is last write wins", func(t *testing.T) {
		s := newStore(t)
		ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		require.NoError(t, s.SetOCRResult(ctx, "s1", store.OCRResult{Certificate: "Desconocido", Summary: "a", Timestamp: ts}))
		require.NoError(t, s.SetOCRResult(ctx, "s1", store.OCRResult{Certificate: "CitaMedicaConReposo", Summary: "b", Escalated: "justificado", Timestamp: ts}))

		got, err := s.OCRResult(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "CitaMedicaConReposo", got.Certificate)
		assert.Equal(t, "b", got.Summary)
		assert.Equal(t, "justificado", got.Escalated)
		assert.True(t, ts.Equal(got.Timestamp))
	})

	t.Run("profile snapshot", func(t *testing.T) {
		s := newStore(t)
		p := store.Profile{FullName: "Ana Pérez", Nickname: "Ana", Email: "ana@udla.edu.ec"}
		require.NoError(t, s.SetProfile(ctx, "s1", p))

		got, err := s.Profile(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, p, *got)

		require.NoError(t, s.ClearProfile(ctx, "s1"))
		got, err = s.Profile(ctx, "s1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("per kind clears", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "s1")

		require.NoError(t, s.ClearHistory(ctx, "s1"))
		h, _ := s.History(ctx, "s1")
		assert.Empty(t, h)
		docs, _ := s.UploadedDocs(ctx, "s1")
		assert.NotEmpty(t, docs)

		require.NoError(t, s.ClearUploadedDocs(ctx, "s1"))
		docs, _ = s.UploadedDocs(ctx, "s1")
		assert.Empty(t, docs)

		require.NoError(t, s.ClearOCRResult(ctx, "s1"))
		ocr, _ := s.OCRResult(ctx, "s1")
		assert.Nil(t, ocr)
	})

	t.Run("clear session removes everything", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "s1")
		seed(t, s, "s2")

		require.NoError(t, s.ClearSession(ctx, "s1"))

		h, err := s.History(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, h)
		ocr, err := s.OCRResult(ctx, "s1")
		require.NoError(t, err)
		assert.Nil(t, ocr)
		docs, err := s.UploadedDocs(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, docs)
		p, err := s.Profile(ctx, "s1")
		require.NoError(t, err)
		assert.Nil(t, p)

		h, _ = s.History(ctx, "s2")
		assert.Len(t, h, 1)
	})

	t.Run("clear all", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "s1")
		seed(t, s, "s2")
		require.NoError(t, s.ClearAll(ctx))

		for _, id := range []string{"s1", "s2"} {
			h, _ := s.History(ctx, id)
			assert.Empty(t, h)
			ocr, _ := s.OCRResult(ctx, id)
			assert.Nil(t, ocr)
		}
	})

	t.Run("concurrent appends are all kept", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.AppendMessage(ctx, "s1", store.RoleUser, fmt.Sprintf("m%d", i)))
			}(i)
		}
		wg.Wait()

		h, err := s.History(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, h, 50)
	})
}

func seed(t *testing.T, s store.SessionStore, id string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.AppendMessage(ctx, id, store.RoleUser, "hola"))
	require.NoError(t, s.AddUploadedDoc(ctx, id, "doc:Desconocido"))
	require.NoError(t, s.SetOCRResult(ctx, id, store.OCRResult{Certificate: "Desconocido", Summary: "x", Timestamp: time.Now()}))
	require.NoError(t, s.SetProfile(ctx, id, store.Profile{Nickname: "Ana"}))
}
