package ws

import (
	"sync"
	"time"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
)

// ActivityLog is a fixed-size circular buffer of recent lifecycle entries.
// Once full, each new entry overwrites the oldest one.
type ActivityLog struct {
	mu   sync.Mutex
	data []domain.Activity
	head int // next write position
	size int
	now  func() time.Time
}

// NewActivityLog creates a log holding at most capacity entries
func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = domain.ActivityLogSize
	}
	return &ActivityLog{
		data: make([]domain.Activity, capacity),
		now:  time.Now,
	}
}

// Add records an entry stamped with the current time
func (l *ActivityLog) Add(userID string, kind domain.ActivityKind, detail string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.data[l.head] = domain.Activity{At: l.now(), UserID: userID, Kind: kind, Detail: detail}
	l.head = (l.head + 1) % len(l.data)
	if l.size < len(l.data) {
		l.size++
	}
}

// Recent returns the entries newest first
func (l *ActivityLog) Recent() []domain.Activity {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Activity, 0, l.size)
	for i := 1; i <= l.size; i++ {
		idx := (l.head - i + len(l.data)) % len(l.data)
		out = append(out, l.data[idx])
	}
	return out
}

// Len returns the current number of entries
func (l *ActivityLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}
