package models

import (
	"time"
)

// AggregateStats is the dashboard summary of the marketplace.
type AggregateStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	TotalNotes          int64 `json:"totalNotes"`
	ActiveSubscriptions int64 `json:"activeSubscriptions"`
	PendingReviews      int64 `json:"pendingReviews"`
	PendingNotes        int64 `json:"pendingNotes"`
	PendingPayments     int64 `json:"pendingPayments"`
	TotalRevenue        int64 `json:"totalRevenue"`
	TotalDownloads      int64 `json:"totalDownloads"`
}

// Activity is one entry of the recent user activity feed.
type Activity struct {
	UserName  string    `json:"userName"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}
