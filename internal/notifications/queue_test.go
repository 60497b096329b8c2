package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasID(q *Queue, id string) bool {
	for _, n := range q.List() {
		if n.ID == id {
			return true
		}
	}
	return false
}

func TestQueue_ExpiresAfterTTL(t *testing.T) {
	q := NewQueue(DefaultTTL)
	id := q.Push(models.NotificationSuccess, "Search Complete!", "Found 3 matching posts", WithTTL(time.Second))

	time.Sleep(500 * time.Millisecond)
	assert.True(t, hasID(q, id), "present at 500ms")

	time.Sleep(600 * time.Millisecond)
	assert.False(t, hasID(q, id), "absent at 1100ms")
}

func TestQueue_DefaultsAndSticky(t *testing.T) {
	q := NewQueue(DefaultTTL)

	id := q.Push(models.NotificationInfo, "Hello", "")
	sticky := q.Push(models.NotificationError, "Pinned", "", WithTTL(0))
	negative := q.Push(models.NotificationWarning, "Also pinned", "", WithTTL(-time.Second))

	list := q.List()
	require.Len(t, list, 3)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, int64(5000), list[0].Duration)
	assert.Equal(t, int64(0), list[1].Duration)

	q.mu.Lock()
	_, timed := q.timers[id]
	_, stickyTimed := q.timers[sticky]
	_, negativeTimed := q.timers[negative]
	q.mu.Unlock()

	assert.True(t, timed)
	assert.False(t, stickyTimed)
	assert.False(t, negativeTimed)
	q.ClearAll()
}

func TestQueue_DismissCancelsTimer(t *testing.T) {
	q := NewQueue(DefaultTTL)
	first := q.Push(models.NotificationInfo, "first", "", WithTTL(50*time.Millisecond))
	second := q.Push(models.NotificationInfo, "second", "", WithTTL(0))

	assert.True(t, q.Dismiss(first))
	assert.False(t, q.Dismiss(first), "second dismissal is a no-op")

	time.Sleep(100 * time.Millisecond)

	list := q.List()
	require.Len(t, list, 1)
	assert.Equal(t, second, list[0].ID)

	q.mu.Lock()
	assert.Empty(t, q.timers)
	q.mu.Unlock()
}

func TestQueue_DismissUnknownID(t *testing.T) {
	q := NewQueue(DefaultTTL)
	assert.False(t, q.Dismiss("does-not-exist"))
}

func TestQueue_PreservesInsertionOrder(t *testing.T) {
	q := NewQueue(0)
	titles := []string{"info", "error", "success", "warning"}
	kinds := []models.NotificationType{
		models.NotificationInfo, models.NotificationError, models.NotificationSuccess, models.NotificationWarning,
	}
	for i, title := range titles {
		q.Push(kinds[i], title, "")
	}

	var got []string
	for _, n := range q.List() {
		got = append(got, n.Title)
	}
	assert.Equal(t, titles, got)
}

func TestQueue_ClearAll(t *testing.T) {
	q := NewQueue(DefaultTTL)
	for i := 0; i < 5; i++ {
		q.Push(models.NotificationInfo, "n", "", WithTTL(30*time.Millisecond))
	}
	q.ClearAll()
	assert.Equal(t, 0, q.Len())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, q.Len())

	id := q.Push(models.NotificationInfo, "after clear", "")
	assert.True(t, hasID(q, id))
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := NewQueue(0)

	const workers, perWorker = 16, 50
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- q.Push(models.NotificationInfo, "n", "")
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, workers*perWorker, q.Len())
}

type recordingRelay struct {
	mu   sync.Mutex
	seen []models.Notification
	done chan struct{}
}

func (r *recordingRelay) Forward(n models.Notification) error {
	r.mu.Lock()
	r.seen = append(r.seen, n)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func TestQueue_Relay(t *testing.T) {
	relay := &recordingRelay{done: make(chan struct{}, 1)}
	q := NewQueue(0)
	q.SetRelay(relay)

	id := q.Push(models.NotificationError, "Search Failed", "Server error. Please try again later.")

	select {
	case <-relay.done:
	case <-time.After(time.Second):
		t.Fatal("relay was not called")
	}

	relay.mu.Lock()
	defer relay.mu.Unlock()
	require.Len(t, relay.seen, 1)
	assert.Equal(t, id, relay.seen[0].ID)
}

func TestTeamsRelay_Forward(t *testing.T) {
	var received []TeamsMessage
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg TeamsMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	relay := NewTeamsRelay(server.URL)

	require.NoError(t, relay.Forward(models.Notification{Type: models.NotificationSuccess, Title: "ok"}))
	require.NoError(t, relay.Forward(models.Notification{
		Type:    models.NotificationError,
		Title:   "Analysis Failed",
		Message: "Rate limit exceeded. Please wait a moment before trying again.",
	}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1, "success notifications are not relayed")
	assert.Equal(t, "MessageCard", received[0].Type)
	assert.Equal(t, "Brand Pulse ERROR: Analysis Failed", received[0].Title)
	assert.Equal(t, "d13438", received[0].ThemeColor)
}

func TestTeamsRelay_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad card"))
	}))
	defer server.Close()

	err := NewTeamsRelay(server.URL).Forward(models.Notification{Type: models.NotificationWarning, Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
