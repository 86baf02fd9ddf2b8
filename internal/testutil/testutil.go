package testutil

import (
	"time"

	"wordloop/internal/backend"
	"wordloop/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(userID int64, authorized bool) *domain.User {
	return &domain.User{
		UserID:     userID,
		Authorized: authorized,
		CreatedAt:  time.Now(),
	}
}

// NewTestWord creates a test word with the given translations
func NewTestWord(id int64, name string, translations map[domain.Provider]string) *domain.Word {
	if translations == nil {
		translations = map[domain.Provider]string{}
	}
	return &domain.Word{
		ID:              id,
		Name:            name,
		Translations:    translations,
		DifficultyLevel: 1,
	}
}

// NextWordResult wraps a word into a /next_word answer
func NextWordResult(w *domain.Word) *backend.NextWord {
	return &backend.NextWord{Word: w}
}

// NothingDue builds a /next_word answer without a word
func NothingDue(message string) *backend.NextWord {
	return &backend.NextWord{Message: message}
}
