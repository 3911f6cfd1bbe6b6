package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummary is the per-user overview shown on the home screen.
type DashboardSummary struct {
	ActiveFlocks  int             `json:"active_flocks"`
	TotalBirds    int             `json:"total_birds"`
	UnreadAlerts  int             `json:"unread_alerts"`
	MonthlyProfit decimal.Decimal `json:"monthly_profit"`
}

// DailySummary is the per-user roll-up pushed to report sinks once a day.
type DailySummary struct {
	UserID       string          `json:"user_id"`
	FarmName     string          `json:"farm_name"`
	Date         string          `json:"date"`
	ActiveFlocks int             `json:"active_flocks"`
	LiveBirds    int             `json:"live_birds"`
	Mortality    int             `json:"mortality"`
	FeedConsumed float64         `json:"feed_consumed"`
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	Profit       decimal.Decimal `json:"profit"`
	CreatedAt    time.Time       `json:"created_at"`
}
