package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/metrics"
	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"golang.org/x/exp/slog"
)

// DefaultApprover is recorded when a decision arrives without a known moderator.
const DefaultApprover = "admin@masterstudent.com"

// ErrRewardFailed wraps a ledger failure during approval. The note is back in pending when it is returned.
var ErrRewardFailed = errors.New("failed to reward submitter")

var _ ModerationService = (*ModerationServiceImpl)(nil)

// ModerationServiceImpl drives the note approval state machine
type ModerationServiceImpl struct {
	notes  repositories.NoteRepository
	ledger LedgerService
	audit  AuditService
	policy RewardPolicy
}

// NewModerationService creates a new ModerationServiceImpl. A nil policy selects CalculateCoinReward.
func NewModerationService(notes repositories.NoteRepository, ledger LedgerService, audit AuditService, policy RewardPolicy) *ModerationServiceImpl {
	if policy == nil {
		policy = CalculateCoinReward
	}
	return &ModerationServiceImpl{
		notes:  notes,
		ledger: ledger,
		audit:  audit,
		policy: policy,
	}
}

func (s *ModerationServiceImpl) load(ctx context.Context, noteID string) (*models.Note, error) {
	note, err := s.notes.FindNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, repositories.ErrUnavailable
	}
	if !Eligible(note) {
		return nil, repositories.ErrInvalidTransition
	}
	return note, nil
}

// Approve moves a pending note to approved and pays its submitter.
// If the reward cannot be written the note is returned to pending.
func (s *ModerationServiceImpl) Approve(ctx context.Context, noteID, actor string) (*ApprovalResult, error) {
	if actor == "" {
		actor = DefaultApprover
	}

	note, err := s.load(ctx, noteID)
	if err != nil {
		metrics.ModerationDecisions.WithLabelValues("approve", "refused").Inc()
		return nil, err
	}
	amount := s.policy(note)

	approved, err := s.notes.TransitionNote(ctx, noteID, models.NoteStatusPending, models.NoteStatusApproved, models.NoteReview{
		ReviewerID: actor,
		At:         time.Now().UTC(),
		CoinReward: amount,
	})
	if err != nil {
		metrics.ModerationDecisions.WithLabelValues("approve", "refused").Inc()
		return nil, err
	}

	tx, err := s.ledger.Reward(ctx, note.UserID, amount, models.RewardDetails{
		Reason:     models.ReasonNoteApproved,
		NoteID:     note.ID,
		NoteTitle:  note.Title,
		ApprovedBy: actor,
	})
	if err != nil {
		metrics.ModerationDecisions.WithLabelValues("approve", "failed").Inc()
		if _, revertErr := s.notes.TransitionNote(ctx, noteID, models.NoteStatusApproved, models.NoteStatusPending,
			models.NoteReview{ReviewerID: actor}); revertErr != nil {
			slog.Error("Failed to return note to pending after reward failure", "noteId", noteID, "error", revertErr)
		}
		return nil, fmt.Errorf("%w: note %s: %w", ErrRewardFailed, noteID, err)
	}

	metrics.ModerationDecisions.WithLabelValues("approve", "ok").Inc()
	s.audit.Record(ctx, models.ActionNoteApproved, map[string]any{
		"noteId":        note.ID,
		"noteTitle":     note.Title,
		"userId":        note.UserID,
		"coinReward":    amount,
		"transactionId": tx.ID,
	}, actor)
	slog.Info("Note approved", "noteId", noteID, "userId", note.UserID, "coinReward", amount, "approvedBy", actor)

	return &ApprovalResult{Note: approved, Transaction: tx, CoinReward: amount}, nil
}

// Reject moves a pending note to rejected. No coins move.
func (s *ModerationServiceImpl) Reject(ctx context.Context, noteID, reason, actor string) (*models.Note, error) {
	if actor == "" {
		actor = DefaultApprover
	}
	if reason == "" {
		reason = "No reason provided"
	}

	if _, err := s.load(ctx, noteID); err != nil {
		metrics.ModerationDecisions.WithLabelValues("reject", "refused").Inc()
		return nil, err
	}

	rejected, err := s.notes.TransitionNote(ctx, noteID, models.NoteStatusPending, models.NoteStatusRejected, models.NoteReview{
		ReviewerID: actor,
		At:         time.Now().UTC(),
		Reason:     reason,
	})
	if err != nil {
		result := "failed"
		if errors.Is(err, repositories.ErrInvalidTransition) {
			result = "refused"
		}
		metrics.ModerationDecisions.WithLabelValues("reject", result).Inc()
		return nil, err
	}

	metrics.ModerationDecisions.WithLabelValues("reject", "ok").Inc()
	s.audit.Record(ctx, models.ActionNoteRejected, map[string]any{
		"noteId":          noteID,
		"noteTitle":       rejected.Title,
		"rejectionReason": reason,
	}, actor)
	slog.Info("Note rejected", "noteId", noteID, "rejectedBy", actor, "reason", reason)
	return rejected, nil
}
