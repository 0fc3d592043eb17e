package models

// RateWindow is a fixed-window request counter for one (client, endpoint)
// pair. ResetAt is a unix timestamp in seconds; the backing entry carries a
// TTL slightly larger than the window so stale counters clean themselves up.
type RateWindow struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"resetAt"`
}
