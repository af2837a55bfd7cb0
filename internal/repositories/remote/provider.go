package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
)

var _ repositories.Provider = (*Client)(nil)

func (c *Client) Kind() string { return repositories.KindRemote }

// --- users ---

func (c *Client) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := c.do(ctx, "users.get", http.MethodGet, "/users/"+url.PathEscape(id), nil, &user)
	if statusOf(err) == http.StatusNotFound {
		return nil, repositories.ErrUserNotFound
	}
	if err != nil {
		unavailable("users.get", err)
		return nil, nil
	}
	return &user, nil
}

func (c *Client) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []*models.User
	err := c.do(ctx, "users.list", http.MethodGet, "/users?email="+url.QueryEscape(email), nil, &users)
	if err != nil {
		unavailable("users.list", err)
		return nil, nil
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (c *Client) UpsertUser(ctx context.Context, user *models.User) (*models.User, error) {
	var saved models.User
	if err := c.do(ctx, "users.upsert", http.MethodPut, "/users", user, &saved); err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", user.Email, err)
	}
	return &saved, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := c.do(ctx, "users.list", http.MethodGet, "/users", nil, &users); err != nil {
		unavailable("users.list", err)
		return []*models.User{}, nil
	}
	for _, u := range users {
		if u.Name == "" {
			u.Name = "Unknown User"
		}
		if u.Role == "" {
			u.Role = models.RoleStudent
		}
	}
	return users, nil
}

// --- notes ---

type remoteNote struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	Status          string     `json:"status"`
	Downloads       int64      `json:"downloads"`
	CreatedAt       time.Time  `json:"createdAt"`
	Uploader        string     `json:"uploader"`
	UploaderEmail   string     `json:"uploaderEmail"`
	CoinReward      int64      `json:"coinReward"`
	ApprovedBy      string     `json:"approvedBy"`
	ApprovedAt      *time.Time `json:"approvedAt"`
	RejectedBy      string     `json:"rejectedBy"`
	RejectedAt      *time.Time `json:"rejectedAt"`
	RejectionReason string     `json:"rejectionReason"`
}

// remoteStatus maps the main site's publishing vocabulary onto moderation states.
func remoteStatus(s string) models.NoteStatus {
	switch s {
	case "published", "approved":
		return models.NoteStatusApproved
	case "rejected":
		return models.NoteStatusRejected
	default:
		return models.NoteStatusPending
	}
}

func (n *remoteNote) toModel() *models.Note {
	note := &models.Note{
		ID:              n.ID,
		UserID:          n.UserID,
		Title:           n.Title,
		Subject:         n.Subject,
		Status:          remoteStatus(n.Status),
		Downloads:       n.Downloads,
		UploaderName:    n.Uploader,
		UploaderEmail:   n.UploaderEmail,
		CoinReward:      n.CoinReward,
		ApprovedBy:      n.ApprovedBy,
		ApprovedAt:      n.ApprovedAt,
		RejectedBy:      n.RejectedBy,
		RejectedAt:      n.RejectedAt,
		RejectionReason: n.RejectionReason,
		CreatedAt:       n.CreatedAt,
	}
	if note.Title == "" {
		note.Title = "Untitled Note"
	}
	if note.Subject == "" {
		note.Subject = "Unknown Subject"
	}
	if note.UploaderName == "" {
		note.UploaderName = "Unknown User"
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	return note
}

func (c *Client) FindNote(ctx context.Context, id string) (*models.Note, error) {
	var n remoteNote
	err := c.do(ctx, "notes.get", http.MethodGet, "/notes/"+url.PathEscape(id), nil, &n)
	if statusOf(err) == http.StatusNotFound {
		return nil, repositories.ErrNoteNotFound
	}
	if err != nil {
		unavailable("notes.get", err)
		return nil, nil
	}
	return n.toModel(), nil
}

func (c *Client) ListNotesForModeration(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Subject != "" {
		q.Set("subject", filter.Subject)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	path := "/notes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var raw []*remoteNote
	if err := c.do(ctx, "notes.list", http.MethodGet, path, nil, &raw); err != nil {
		unavailable("notes.list", err)
		return []*models.Note{}, nil
	}
	notes := make([]*models.Note, 0, len(raw))
	for _, n := range raw {
		note := n.toModel()
		if filter.Match(note) {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

type transitionRequest struct {
	Status         models.NoteStatus `json:"status"`
	ExpectedStatus models.NoteStatus `json:"expectedStatus"`
	ReviewerID     string            `json:"reviewerId"`
	CoinReward     int64             `json:"coinReward,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	At             time.Time         `json:"at"`
}

func (c *Client) TransitionNote(ctx context.Context, id string, from, to models.NoteStatus, review models.NoteReview) (*models.Note, error) {
	if review.At.IsZero() {
		review.At = time.Now().UTC()
	}
	endpoint, path := "notes.status", "/notes/"+url.PathEscape(id)+"/status"
	switch to {
	case models.NoteStatusApproved:
		endpoint, path = "notes.publish", "/notes/"+url.PathEscape(id)+"/publish"
	case models.NoteStatusRejected:
		endpoint, path = "notes.reject", "/notes/"+url.PathEscape(id)+"/reject"
	}

	body := transitionRequest{
		Status:         to,
		ExpectedStatus: from,
		ReviewerID:     review.ReviewerID,
		CoinReward:     review.CoinReward,
		Reason:         review.Reason,
		At:             review.At,
	}
	var n remoteNote
	err := c.do(ctx, endpoint, http.MethodPut, path, body, &n)
	switch statusOf(err) {
	case 0:
	case http.StatusNotFound:
		return nil, repositories.ErrNoteNotFound
	case http.StatusConflict:
		return nil, repositories.ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("transition note %s to %s: %w", id, to, err)
	}

	if n.ID == "" {
		// acknowledgement without a body
		note := &models.Note{ID: id}
		review.Apply(note, to)
		return note, nil
	}
	return n.toModel(), nil
}

// --- ledger ---

type rewardRequest struct {
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
	NoteID     string `json:"noteId,omitempty"`
	NoteTitle  string `json:"noteTitle,omitempty"`
	ApprovedBy string `json:"approvedBy,omitempty"`
}

type rewardResponse struct {
	User        *models.User            `json:"user"`
	Transaction *models.CoinTransaction `json:"transaction"`
}

// ApplyReward asks the main site to credit the user and record the transaction in one call.
func (c *Client) ApplyReward(ctx context.Context, userID string, amount int64, details models.RewardDetails) (*models.User, *models.CoinTransaction, error) {
	body := rewardRequest{
		Amount:     amount,
		Reason:     details.Reason,
		NoteID:     details.NoteID,
		NoteTitle:  details.NoteTitle,
		ApprovedBy: details.ApprovedBy,
	}
	var resp rewardResponse
	err := c.do(ctx, "users.reward", http.MethodPost, "/users/"+url.PathEscape(userID)+"/rewards", body, &resp)
	switch statusOf(err) {
	case 0:
	case http.StatusNotFound:
		return nil, nil, repositories.ErrUserNotFound
	case http.StatusConflict:
		return nil, nil, repositories.ErrConcurrentUpdate
	}
	if err != nil {
		return nil, nil, fmt.Errorf("apply reward for user %s: %w", userID, err)
	}
	if resp.User == nil || resp.Transaction == nil {
		return nil, nil, errors.New("apply reward: incomplete response from remote ledger")
	}
	return resp.User, resp.Transaction, nil
}

func (c *Client) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.CoinTransaction, error) {
	q := url.Values{}
	if filter.UserID != "" {
		q.Set("userId", filter.UserID)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	path := "/transactions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var txs []*models.CoinTransaction
	if err := c.do(ctx, "transactions.list", http.MethodGet, path, nil, &txs); err != nil {
		unavailable("transactions.list", err)
		return []*models.CoinTransaction{}, nil
	}
	return txs, nil
}

// --- stats ---

type overviewStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalNotes     int64 `json:"totalNotes"`
	ActiveUsers    int64 `json:"activeUsers"`
	TotalDownloads int64 `json:"totalDownloads"`
}

type userStats struct {
	TotalUsers int64 `json:"totalUsers"`
}

type noteStats struct {
	TotalNotes     int64 `json:"totalNotes"`
	Pending        int64 `json:"pending"`
	TotalDownloads int64 `json:"totalDownloads"`
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// GetAggregateStats merges the overview, user and note counters. It returns nil when none of them answered.
func (c *Client) GetAggregateStats(ctx context.Context) (*models.AggregateStats, error) {
	var (
		overview overviewStats
		users    userStats
		notes    noteStats
	)
	overviewErr := c.do(ctx, "stats.overview", http.MethodGet, "/overview", nil, &overview)
	usersErr := c.do(ctx, "stats.users", http.MethodGet, "/user-stats", nil, &users)
	notesErr := c.do(ctx, "stats.notes", http.MethodGet, "/note-stats", nil, &notes)

	if overviewErr != nil && usersErr != nil && notesErr != nil {
		unavailable("stats", overviewErr)
		return nil, nil
	}

	return &models.AggregateStats{
		TotalUsers:          firstNonZero(overview.TotalUsers, users.TotalUsers),
		TotalNotes:          firstNonZero(overview.TotalNotes, notes.TotalNotes),
		ActiveSubscriptions: overview.ActiveUsers,
		PendingReviews:      notes.Pending,
		PendingNotes:        notes.Pending,
		TotalDownloads:      firstNonZero(overview.TotalDownloads, notes.TotalDownloads),
	}, nil
}

type remoteActivity struct {
	UserName  string    `json:"userName"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Client) GetRecentActivity(ctx context.Context, limit int) ([]*models.Activity, error) {
	var raw []remoteActivity
	if err := c.do(ctx, "activity", http.MethodGet, "/activity", nil, &raw); err != nil {
		unavailable("activity", err)
		return []*models.Activity{}, nil
	}

	activity := make([]*models.Activity, 0, len(raw))
	for _, a := range raw {
		item := &models.Activity{UserName: a.UserName, Action: a.Action, Timestamp: a.Timestamp}
		if item.UserName == "" {
			item.UserName = "Unknown User"
		}
		if item.Action == "" {
			item.Action = "unknown_action"
		}
		if item.Timestamp.IsZero() {
			item.Timestamp = time.Now().UTC()
		}
		activity = append(activity, item)
		if limit > 0 && len(activity) == limit {
			break
		}
	}
	return activity, nil
}

// --- moderation log ---

func (c *Client) AppendModerationLog(ctx context.Context, entry *models.ModerationLogEntry) error {
	if err := c.do(ctx, "logs.append", http.MethodPost, "/moderation-logs", entry, nil); err != nil {
		return fmt.Errorf("append moderation log %s: %w", entry.Action, err)
	}
	return nil
}

func (c *Client) ListModerationLogs(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error) {
	path := "/moderation-logs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var logs []*models.ModerationLogEntry
	if err := c.do(ctx, "logs.list", http.MethodGet, path, nil, &logs); err != nil {
		unavailable("logs.list", err)
		return []*models.ModerationLogEntry{}, nil
	}
	return logs, nil
}
