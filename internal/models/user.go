package models

import (
	"time"
)

// User is a marketplace member who can submit notes and earn coins.
type User struct {
	ID               string    `bson:"_id" json:"id"`
	Email            string    `bson:"email" json:"email"`
	Name             string    `bson:"name" json:"name"`
	Role             string    `bson:"role" json:"role"`
	IsActive         bool      `bson:"isActive" json:"isActive"`
	CoinBalance      int64     `bson:"coins" json:"coins"`
	TotalCoinsEarned int64     `bson:"totalCoinsEarned" json:"totalEarned"`
	LastCoinReward   time.Time `bson:"lastCoinReward,omitempty" json:"lastCoinReward,omitempty"`
	Version          int64     `bson:"version" json:"version"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

// User roles
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
	RoleTopper  = "topper"
)
