package notifications

import (
	"sync"
	"time"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is how long a notification stays visible unless told otherwise
const DefaultTTL = 5 * time.Second

// Queue holds the visible notifications in insertion order. Each entry with
// a positive TTL removes itself when its timer fires; dismissing an entry
// stops its timer.
type Queue struct {
	mu         sync.Mutex
	defaultTTL time.Duration
	items      []models.Notification
	timers     map[string]*time.Timer
	relay      Relay
}

type pushOptions struct {
	ttl time.Duration
}

// PushOption customizes a single Push
type PushOption func(*pushOptions)

// WithTTL overrides the queue's default TTL. Zero or negative keeps the
// notification until it is dismissed.
func WithTTL(ttl time.Duration) PushOption {
	return func(o *pushOptions) {
		o.ttl = ttl
	}
}

// NewQueue creates an empty queue
func NewQueue(defaultTTL time.Duration) *Queue {
	return &Queue{
		defaultTTL: defaultTTL,
		timers:     make(map[string]*time.Timer),
	}
}

// SetRelay registers a relay that receives every pushed notification
func (q *Queue) SetRelay(relay Relay) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.relay = relay
}

// Push appends a notification and returns its identifier
func (q *Queue) Push(kind models.NotificationType, title, message string, opts ...PushOption) string {
	o := pushOptions{ttl: q.defaultTTL}
	for _, opt := range opts {
		opt(&o)
	}

	q.mu.Lock()
	notification := models.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Title:     title,
		Message:   message,
		Duration:  o.ttl.Milliseconds(),
		CreatedAt: time.Now(),
	}
	q.items = append(q.items, notification)

	if o.ttl > 0 {
		id := notification.ID
		q.timers[id] = time.AfterFunc(o.ttl, func() {
			q.expire(id)
		})
	}
	relay := q.relay
	q.mu.Unlock()

	logrus.Debugf("Notification %s pushed: [%s] %s", notification.ID, kind, title)

	if relay != nil {
		go func() {
			if err := relay.Forward(notification); err != nil {
				logrus.Errorf("Failed to relay notification %s: %v", notification.ID, err)
			}
		}()
	}

	return notification.ID
}

// Dismiss removes the notification and cancels its timer. It reports
// whether the notification was still visible.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	return q.remove(id)
}

// ClearAll removes every notification and cancels all pending timers
func (q *Queue) ClearAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.items = nil
}

// List returns the visible notifications in insertion order
func (q *Queue) List() []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]models.Notification{}, q.items...)
}

// Len returns the number of visible notifications
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

func (q *Queue) expire(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.timers, id)
	if q.remove(id) {
		logrus.Debugf("Notification %s expired", id)
	}
}

// remove drops id from the visible list. Callers hold mu.
func (q *Queue) remove(id string) bool {
	for i, item := range q.items {
		if item.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}
