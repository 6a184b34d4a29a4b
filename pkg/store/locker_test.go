package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockerSerializesSameKey(t *testing.T) {
	l := NewLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("s1")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.Len())
}

func TestLockerIndependentKeys(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock("a")

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
	unlockA()
	unlockA()
	assert.Equal(t, 0, l.Len())
}

func TestTags(t *testing.T) {
	tags := NewTags("doc:CitaMedicaConReposo", TagOCRNotified)
	assert.True(t, tags.Has(TagOCRNotified))
	assert.True(t, tags.HasPrefix(DocTagPrefix))
	assert.False(t, tags.Has(TagCaseClosed))
	assert.Equal(t, []string{"doc:CitaMedicaConReposo", "ocr_notified"}, tags.Sorted())
	assert.Equal(t, "doc:Desconocido", DocTag("Desconocido"))
}
