package repository

// UserRepository keeps the bot's access list.
// Words and review progress live in the backend, never here.
type UserRepository interface {
	IsAuthorized(userID int64) (bool, error)
	AuthorizeUser(userID int64) error
	EnsureUserExists(userID int64) error
	RevokeUser(userID int64) error
}
