package services

import (
	"github.com/ArowuTest/masterstudent-moderation/internal/models"
)

// DefaultApprovalReward is the number of coins paid per approved note.
const DefaultApprovalReward int64 = 20

// RewardPolicy computes the coins paid for approving a note.
type RewardPolicy func(note *models.Note) int64

// FixedReward pays the same amount for every note.
func FixedReward(amount int64) RewardPolicy {
	return func(*models.Note) int64 {
		return amount
	}
}

// CalculateCoinReward is the default policy.
var CalculateCoinReward = FixedReward(DefaultApprovalReward)

// Eligible reports whether approving note can pay a reward. Only pending notes can.
func Eligible(note *models.Note) bool {
	return note != nil && note.Status == models.NoteStatusPending
}
