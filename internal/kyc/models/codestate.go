package models

import "time"

// CodeState tracks the one-time code issued for one channel of one session.
type CodeState struct {
	Purpose       Purpose
	MaskedContact string
	SentAt        time.Time
	ExpiresAt     time.Time
	// Attempts counts submissions, including the one currently being checked.
	Attempts int
}

// ResendAvailableAt is when a fresh code may be requested.
func (c CodeState) ResendAvailableAt(cooldown time.Duration) time.Time {
	return c.SentAt.Add(cooldown)
}

func (c CodeState) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
