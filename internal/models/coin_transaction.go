package models

import (
	"time"
)

// TransactionTypeReward marks coins credited for an approved note.
const TransactionTypeReward = "reward"

// ReasonNoteApproved is the reason recorded on approval rewards.
const ReasonNoteApproved = "Note Approved"

// CoinTransaction is an immutable ledger row. NewBalance-PreviousBalance always equals Amount.
type CoinTransaction struct {
	ID              string    `bson:"_id" json:"id"`
	UserID          string    `bson:"userId" json:"userId"`
	UserEmail       string    `bson:"userEmail" json:"userEmail"`
	Amount          int64     `bson:"amount" json:"amount"`
	Type            string    `bson:"type" json:"type"`
	Reason          string    `bson:"reason" json:"reason"`
	NoteID          string    `bson:"noteId,omitempty" json:"noteId,omitempty"`
	NoteTitle       string    `bson:"noteTitle,omitempty" json:"noteTitle,omitempty"`
	ApprovedBy      string    `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	PreviousBalance int64     `bson:"previousBalance" json:"previousBalance"`
	NewBalance      int64     `bson:"newBalance" json:"newBalance"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// RewardDetails describes why a reward is being paid.
type RewardDetails struct {
	Reason     string `json:"reason"`
	NoteID     string `json:"noteId,omitempty"`
	NoteTitle  string `json:"noteTitle,omitempty"`
	ApprovedBy string `json:"approvedBy,omitempty"`
}

// TransactionFilter narrows ledger listings. Zero values mean no restriction.
type TransactionFilter struct {
	UserID string
	Limit  int
}
