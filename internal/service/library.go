package service

import (
	"context"
	"errors"
	"strings"

	"wordloop/internal/domain"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrURLRequired = errors.New("url is required")
	ErrInvalidURL  = errors.New("url is malformed")
)

// LibraryBackend is the part of the REST contract behind the word base views
type LibraryBackend interface {
	ProcessURL(ctx context.Context, pageURL string) (string, error)
	ListWords(ctx context.Context) ([]domain.Word, error)
	ClearWords(ctx context.Context) (string, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

// LibraryService handles word ingestion, listing, deletion and statistics
type LibraryService struct {
	backend  LibraryBackend
	validate *validator.Validate
	logger   *zap.Logger
}

// NewLibraryService creates a new library service
func NewLibraryService(backend LibraryBackend, logger *zap.Logger) *LibraryService {
	return &LibraryService{
		backend:  backend,
		validate: validator.New(),
		logger:   logger,
	}
}

// ValidateURL checks a page address before anything is sent
func (s *LibraryService) ValidateURL(raw string) (string, error) {
	pageURL := strings.TrimSpace(raw)
	if pageURL == "" {
		return "", ErrURLRequired
	}
	if err := s.validate.Var(pageURL, "url"); err != nil {
		return "", ErrInvalidURL
	}
	return pageURL, nil
}

// AddFromURL asks the backend to extract words from a page
func (s *LibraryService) AddFromURL(ctx context.Context, userID int64, raw string) (string, error) {
	pageURL, err := s.ValidateURL(raw)
	if err != nil {
		return "", err
	}

	msg, err := s.backend.ProcessURL(ctx, pageURL)
	if err != nil {
		s.logger.Warn("Failed to process URL",
			zap.Int64("user_id", userID),
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return "", err
	}

	s.logger.Info("URL processed",
		zap.Int64("user_id", userID),
		zap.String("url", pageURL),
	)
	return msg, nil
}

// Words returns the whole word base
func (s *LibraryService) Words(ctx context.Context) ([]domain.Word, error) {
	words, err := s.backend.ListWords(ctx)
	if err != nil {
		s.logger.Warn("Failed to list words", zap.Error(err))
		return nil, err
	}
	return words, nil
}

// Clear deletes every word
func (s *LibraryService) Clear(ctx context.Context, userID int64) (string, error) {
	msg, err := s.backend.ClearWords(ctx)
	if err != nil {
		s.logger.Warn("Failed to clear words", zap.Int64("user_id", userID), zap.Error(err))
		return "", err
	}

	s.logger.Info("All words deleted", zap.Int64("user_id", userID))
	return msg, nil
}

// Stats returns the study statistics snapshot
func (s *LibraryService) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.backend.Stats(ctx)
	if err != nil {
		s.logger.Warn("Failed to load stats", zap.Error(err))
		return nil, err
	}
	return stats, nil
}
