package models

import "time"

// Subscription enumerates the plan tiers a user can hold.
type Subscription string

const (
	SubscriptionFree    Subscription = "free"
	SubscriptionPro     Subscription = "pro"
	SubscriptionPremium Subscription = "premium"
)

// User is a registered farm operator. PasswordHash never leaves the server.
type User struct {
	ID           string       `db:"id" json:"id"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Name         string       `db:"name" json:"name"`
	FarmName     string       `db:"farm_name" json:"farm_name"`
	Location     string       `db:"location" json:"location"`
	Phone        string       `db:"phone" json:"phone"`
	Subscription Subscription `db:"subscription" json:"subscription"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Identity is the authenticated caller decoded from a session token.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
