package dto

import (
	"fmt"
	"time"
)

// DailyTaxRequest asks for one user's daily access tax. Day defaults to today (UTC).
type DailyTaxRequest struct {
	UserID string `json:"userID" binding:"required"`
	Day    string `json:"day" binding:"omitempty,datetime=2006-01-02"`
}

// DailyTaxAllRequest asks for the daily tax run over every user wallet.
type DailyTaxAllRequest struct {
	Day string `json:"day" binding:"omitempty,datetime=2006-01-02"`
}

// DailyTaxResponse reports whether the user was charged.
type DailyTaxResponse struct {
	UserID  string `json:"userID"`
	Day     string `json:"day"`
	Charged bool   `json:"charged"`
}

// DailyTaxStats summarizes a run over all users.
type DailyTaxStats struct {
	Charged             int `json:"charged"`
	SkippedInsufficient int `json:"skippedInsufficient"`
	Waived              int `json:"waived"`
	Failed              int `json:"failed"`
}

// ParseDay parses a YYYY-MM-DD day, falling back to the UTC day of now when empty.
func ParseDay(day string, now time.Time) (time.Time, error) {
	if day == "" {
		u := now.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	return t, nil
}
