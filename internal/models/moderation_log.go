package models

import (
	"time"
)

// Moderation log actions
const (
	ActionViewNotes            = "VIEW_NOTES"
	ActionViewUsers            = "VIEW_USERS"
	ActionViewStats            = "VIEW_STATS"
	ActionViewCoinTransactions = "VIEW_COIN_TRANSACTIONS"
	ActionViewLogs             = "VIEW_LOGS"
	ActionNoteApproved         = "NOTE_APPROVED"
	ActionNoteRejected         = "NOTE_REJECTED"
)

// ModerationLogEntry is an append-only audit record of an administrative action.
type ModerationLogEntry struct {
	ID        string         `bson:"_id" json:"id"`
	Action    string         `bson:"action" json:"action"`
	Details   map[string]any `bson:"details" json:"details"`
	Actor     string         `bson:"actor" json:"actor"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
}
