package testutil

import (
	"context"

	"wordloop/internal/backend"
	"wordloop/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) IsAuthorized(userID int64) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AuthorizeUser(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) EnsureUserExists(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) RevokeUser(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockBackend is a mock for the backend REST client
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) NextWord(ctx context.Context) (*backend.NextWord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.NextWord), args.Error(1)
}

func (m *MockBackend) ReviewWord(ctx context.Context, wordID int64, quality domain.Quality) (string, error) {
	args := m.Called(ctx, wordID, quality)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) ProcessURL(ctx context.Context, pageURL string) (string, error) {
	args := m.Called(ctx, pageURL)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) ListWords(ctx context.Context) ([]domain.Word, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Word), args.Error(1)
}

func (m *MockBackend) ClearWords(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Stats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}
