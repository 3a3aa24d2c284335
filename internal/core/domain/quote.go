package domain

import "time"

// Quote is a price snapshot for one asset at one point in time.
type Quote struct {
	Price     float64   `json:"price"`
	Change24h float64   `json:"change_24h"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Age returns how long ago the quote was fetched.
func (q Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.FetchedAt)
}
