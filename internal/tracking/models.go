package tracking

// Fix is one raw position sample delivered by the position source.
// SpeedMps is nil when the device cannot report speed for that sample.
type Fix struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	AccuracyM float64  `json:"accuracy_m"`
	SpeedMps  *float64 `json:"speed_mps"`
	Timestamp int64    `json:"timestamp"`
}

// Snapshot is the live tracking state exposed to the UI surface.
type Snapshot struct {
	IsTracking            bool    `json:"is_tracking"`
	SessionID             string  `json:"session_id,omitempty"`
	CurrentSpeedKmh       float64 `json:"current_speed_kmh"`
	AverageSpeedKmh       float64 `json:"average_speed_kmh"`
	MaxSpeedKmh           float64 `json:"max_speed_kmh"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	AccuracyM             float64 `json:"accuracy_m"`
	HasFix                bool    `json:"has_fix"`
	IsPrecisionAcceptable bool    `json:"is_precision_acceptable"`
}
