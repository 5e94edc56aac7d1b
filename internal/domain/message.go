package domain

import (
	"errors"
	"time"
)

// Timestamp is a point in time in nanoseconds since the Unix epoch.
type Timestamp uint64

// TimestampFrom converts a wall-clock time to a Timestamp.
func TimestampFrom(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

func (ts Timestamp) Time() time.Time {
	return time.Unix(0, int64(ts)).UTC()
}

// Message is the single record type held by the store.
type Message struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Body          string              `json:"body"`
	AttachmentURL string              `json:"attachmentURL"`
	CreatedAt     Timestamp           `json:"createdAt"`
	UpdatedAt     Optional[Timestamp] `json:"updatedAt"`
}

// Payload holds the caller-supplied fields of a Message.
type Payload struct {
	Title         string `json:"title" validate:"required"`
	Body          string `json:"body" validate:"required"`
	AttachmentURL string `json:"attachmentURL" validate:"required"`
}

// IsEmpty reports whether no field of the payload carries a value.
func (p Payload) IsEmpty() bool {
	return p.Title == "" && p.Body == "" && p.AttachmentURL == ""
}

var (
	// ErrMessageExists is returned by a store when an insert hits a live id.
	ErrMessageExists = errors.New("message already exists")
	// ErrMessageNotFound is returned by a store when a replace targets a missing id.
	ErrMessageNotFound = errors.New("message not found")
)
