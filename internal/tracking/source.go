package tracking

import "errors"

// ErrPermissionDenied is returned by a Source when location access is
// refused. It is fatal to Start and is never retried automatically.
var ErrPermissionDenied = errors.New("location permission denied")

type SubscribeOptions struct {
	HighAccuracy    bool
	TimeoutMillis   int
	MaxFixAgeMillis int
}

type Subscription interface {
	Unsubscribe()
}

// Source is the platform position adapter consumed by the controller. It is
// long-lived: the controller subscribes once and keeps the subscription open
// across sessions so current-location display works while idle.
type Source interface {
	Subscribe(opts SubscribeOptions, onFix func(Fix), onError func(error)) (Subscription, error)
}
