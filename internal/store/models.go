package store

import "time"

// LocationRecord is one persisted telemetry sample. Rows are immutable after
// insert except for the Synced flag, which only ever moves 0 -> 1.
type LocationRecord struct {
	ID         int64     `json:"id"`
	GUID       string    `json:"guid"`
	SessionID  string    `json:"session_id,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AccuracyM  float64   `json:"accuracy_m"`
	SpeedKmh   float64   `json:"speed_kmh"`
	RecordedAt time.Time `json:"recorded_at"`
	Synced     int16     `json:"synced"`
}
