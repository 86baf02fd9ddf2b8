package domain

import "time"

// User represents a bot user
type User struct {
	UserID     int64
	Authorized bool
	CreatedAt  time.Time
}

// UserState represents user's current text-input state
type UserState string

const (
	StateIdle       UserState = "idle"
	StateWaitingURL UserState = "waiting_url"
)

// StateData holds temporary data for user's current state
type StateData struct {
	State     UserState
	MessageID int // Prompt message to edit once input arrives
}
