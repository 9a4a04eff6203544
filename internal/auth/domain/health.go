package domain

import "time"

// Health is a point-in-time snapshot of the service's stored state.
type Health struct {
	Timestamp     time.Time
	UsersCount    int
	SessionsCount int
}
