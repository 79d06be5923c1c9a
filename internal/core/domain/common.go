package domain

import "time"

// AuditFields holds creation and last-update timestamps for mutable entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// DayKey renders a calendar day the way idempotency keys and anchors expect it.
func DayKey(day time.Time) string {
	return day.UTC().Format("2006-01-02")
}

// UTCDayBounds returns the [start, end) interval of the UTC day containing t.
func UTCDayBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
