package notify

import (
	"sync"
	"time"

	"bdb-wallet-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is applied when no explicit time-to-live is given.
const DefaultTTL = 5 * time.Second

// Queue holds transient user-facing notifications in append order. Every
// notification carries its own expiry timer; dismissing one cancels its
// timer and never affects the others.
type Queue struct {
	mu         sync.Mutex
	defaultTTL time.Duration
	items      []models.Notification
	timers     map[string]*time.Timer
}

func NewQueue(defaultTTL time.Duration) *Queue {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Queue{
		defaultTTL: defaultTTL,
		timers:     make(map[string]*time.Timer),
	}
}

// Push appends a notification with the queue's default TTL and returns its id.
func (q *Queue) Push(kind models.NotificationKind, title, message string) string {
	return q.PushTTL(kind, title, message, q.defaultTTL)
}

// PushTTL appends a notification with an explicit TTL, scheduling its
// removal once the TTL elapses. A non-positive TTL falls back to the default.
func (q *Queue) PushTTL(kind models.NotificationKind, title, message string, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = q.defaultTTL
	}

	n := models.Notification{
		Id:        uuid.New().String(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		TTL:       ttl,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	q.items = append(q.items, n)
	q.timers[n.Id] = time.AfterFunc(ttl, func() {
		q.Dismiss(n.Id)
	})
	q.mu.Unlock()

	zap.L().Debug("Notification pushed",
		zap.String("id", n.Id),
		zap.String("kind", string(kind)),
		zap.String("title", title))

	return n.Id
}

// Dismiss removes a notification immediately, regardless of its scheduled
// expiry, and cancels the pending timer. Unknown ids are ignored.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}

	for i, n := range q.items {
		if n.Id == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Active returns a snapshot of the live notifications in append order.
func (q *Queue) Active() []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]models.Notification, len(q.items))
	copy(snapshot, q.items)
	return snapshot
}

// Close cancels all pending expiry timers and drops the queued items.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.items = nil
}
