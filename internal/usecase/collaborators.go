package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"message-store/internal/domain"
)

// IDGenerator returns a new globally unique message id on every call.
type IDGenerator interface {
	NewID() string
}

// Clock returns the current time.
type Clock interface {
	Now() domain.Timestamp
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// UUIDGenerator issues random (v4) UUIDs.
var UUIDGenerator IDGenerator = IDFunc(uuid.NewString)

// MonotonicClock reads the wall clock and never goes backwards: a reading
// earlier than the previous one is clamped to the previous one.
type MonotonicClock struct {
	mu   sync.Mutex
	last domain.Timestamp
	now  func() time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{now: time.Now}
}

func (c *MonotonicClock) Now() domain.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := domain.TimestampFrom(c.now())
	if ts < c.last {
		ts = c.last
	}
	c.last = ts
	return ts
}
