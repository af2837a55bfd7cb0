package models

import (
	"time"
)

// SyncRequest is a coin mutation to be mirrored on the main site.
type SyncRequest struct {
	IdempotencyKey string `json:"idempotencyKey"`
	UserID         string `json:"userId"`
	Email          string `json:"email,omitempty"`
	CoinAmount     int64  `json:"coinAmount"`
	Reason         string `json:"reason"`
	Source         string `json:"source"`
}

// OutboxEntry is a SyncRequest awaiting delivery.
type OutboxEntry struct {
	Request       SyncRequest `json:"request"`
	Attempts      int         `json:"attempts"`
	NextAttemptAt time.Time   `json:"nextAttemptAt"`
	LastError     string      `json:"lastError,omitempty"`
	Parked        bool        `json:"parked"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// ID returns the idempotency key that identifies the entry.
func (e *OutboxEntry) ID() string {
	return e.Request.IdempotencyKey
}
