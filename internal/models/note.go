package models

import (
	"time"
)

// NoteStatus is the moderation state of a note.
type NoteStatus string

const (
	NoteStatusPending  NoteStatus = "pending"
	NoteStatusApproved NoteStatus = "approved"
	NoteStatusRejected NoteStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s NoteStatus) Valid() bool {
	switch s {
	case NoteStatusPending, NoteStatusApproved, NoteStatusRejected:
		return true
	}
	return false
}

// Note is a piece of study material submitted for moderation.
type Note struct {
	ID              string     `bson:"_id" json:"id"`
	UserID          string     `bson:"userId" json:"userId"`
	Title           string     `bson:"title" json:"title"`
	Subject         string     `bson:"subject" json:"subject"`
	Status          NoteStatus `bson:"status" json:"status"`
	Downloads       int64      `bson:"downloads" json:"downloads"`
	UploaderName    string     `bson:"uploaderName,omitempty" json:"uploader,omitempty"`
	UploaderEmail   string     `bson:"uploaderEmail,omitempty" json:"uploaderEmail,omitempty"`
	CoinReward      int64      `bson:"coinReward,omitempty" json:"coinReward,omitempty"`
	ApprovedBy      string     `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RejectedBy      string     `bson:"rejectedBy,omitempty" json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	RejectionReason string     `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// NoteReview carries the reviewer fields written alongside a status transition.
type NoteReview struct {
	ReviewerID string
	At         time.Time
	CoinReward int64
	Reason     string
}

// Apply stamps the review onto n for the target status. Moving back to pending clears the approval fields.
func (r NoteReview) Apply(n *Note, to NoteStatus) {
	at := r.At
	n.Status = to
	n.UpdatedAt = at
	switch to {
	case NoteStatusApproved:
		n.ApprovedBy = r.ReviewerID
		n.ApprovedAt = &at
		n.CoinReward = r.CoinReward
	case NoteStatusRejected:
		n.RejectedBy = r.ReviewerID
		n.RejectedAt = &at
		n.RejectionReason = r.Reason
	case NoteStatusPending:
		n.ApprovedBy = ""
		n.ApprovedAt = nil
		n.CoinReward = 0
	}
}

// NoteFilter narrows moderation listings. Zero values mean no restriction.
type NoteFilter struct {
	Status  NoteStatus `form:"status"`
	Subject string     `form:"subject"`
	Limit   int        `form:"limit"`
	Offset  int        `form:"offset"`
}

// Match reports whether n satisfies the status and subject parts of the filter.
func (f NoteFilter) Match(n *Note) bool {
	if f.Status != "" && n.Status != f.Status {
		return false
	}
	if f.Subject != "" && n.Subject != f.Subject {
		return false
	}
	return true
}
