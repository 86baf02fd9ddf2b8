package service

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"wordloop/internal/repository"
)

// AuthService decides which Telegram users may run review sessions
type AuthService struct {
	userRepo    repository.UserRepository
	botPassword string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, botPassword string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		botPassword: botPassword,
	}
}

// CheckPassword verifies if provided password matches
func (s *AuthService) CheckPassword(password string) bool {
	given := strings.TrimSpace(password)
	if given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(s.botPassword)) == 1
}

// Allowed registers the user on first contact and reports whether they
// passed the password check before
func (s *AuthService) Allowed(userID int64) (bool, error) {
	if err := s.userRepo.EnsureUserExists(userID); err != nil {
		return false, fmt.Errorf("ensure user %d: %w", userID, err)
	}
	authorized, err := s.userRepo.IsAuthorized(userID)
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", userID, err)
	}
	return authorized, nil
}

// Login authorizes the user when the password matches
func (s *AuthService) Login(userID int64, password string) (bool, error) {
	if !s.CheckPassword(password) {
		return false, nil
	}
	if err := s.userRepo.AuthorizeUser(userID); err != nil {
		return false, fmt.Errorf("authorize user %d: %w", userID, err)
	}
	return true, nil
}

// Logout withdraws the user's access
func (s *AuthService) Logout(userID int64) error {
	if err := s.userRepo.RevokeUser(userID); err != nil {
		return fmt.Errorf("revoke user %d: %w", userID, err)
	}
	return nil
}
