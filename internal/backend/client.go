package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wordloop/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// NextWord is the answer of GET /next_word.
// Word is nil when nothing is due; Message then explains why.
type NextWord struct {
	Word    *domain.Word
	Message string
}

// Client talks to the vocabulary backend over its REST contract.
// It performs exactly one HTTP call per operation and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type wordPayload struct {
	ID                  *int64  `json:"id"`
	Name                string  `json:"name"`
	URL                 string  `json:"url"`
	TranslationGoogle   *string `json:"translation_google"`
	TranslationLingva   *string `json:"translation_lingva"`
	TranslationMyMemory *string `json:"translation_mymemory"`
	DifficultyLevel     int     `json:"difficulty_level"`
	NextReviewDate      *string `json:"next_review_date"`
	ReviewCount         int     `json:"review_count"`
	EaseFactor          float64 `json:"ease_factor"`
	IntervalDays        int     `json:"interval_days"`
	Message             string  `json:"message"`
}

func (p wordPayload) toDomain() domain.Word {
	w := domain.Word{
		Name:            p.Name,
		URL:             p.URL,
		Translations:    make(map[domain.Provider]string),
		DifficultyLevel: p.DifficultyLevel,
		ReviewCount:     p.ReviewCount,
		EaseFactor:      p.EaseFactor,
		IntervalDays:    p.IntervalDays,
	}
	if p.ID != nil {
		w.ID = *p.ID
	}
	if p.NextReviewDate != nil {
		w.NextReviewDate = domain.ParseReviewDate(*p.NextReviewDate)
	}

	fields := map[domain.Provider]*string{
		domain.ProviderGoogle:   p.TranslationGoogle,
		domain.ProviderLingva:   p.TranslationLingva,
		domain.ProviderMyMemory: p.TranslationMyMemory,
	}
	for provider, text := range fields {
		if text != nil && *text != "" {
			w.Translations[provider] = *text
		}
	}
	return w
}

type statsPayload struct {
	TotalWords     int     `json:"total_words"`
	DueWords       int     `json:"due_words"`
	LearnedWords   int     `json:"learned_words"`
	AverageReviews float64 `json:"average_reviews"`
}

// ProcessURL asks the backend to extract and store words from a page
func (c *Client) ProcessURL(ctx context.Context, pageURL string) (string, error) {
	var resp messageResponse
	body := map[string]string{"url": pageURL}
	if err := c.do(ctx, http.MethodPost, "/process_url", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// NextWord fetches the next due word
func (c *Client) NextWord(ctx context.Context) (*NextWord, error) {
	var p wordPayload
	if err := c.do(ctx, http.MethodGet, "/next_word", nil, &p); err != nil {
		return nil, err
	}

	// An id of zero is treated as absent, like a missing one
	if p.ID == nil || *p.ID == 0 {
		return &NextWord{Message: p.Message}, nil
	}

	w := p.toDomain()
	return &NextWord{Word: &w}, nil
}

// ReviewWord submits a quality rating for the word
func (c *Client) ReviewWord(ctx context.Context, wordID int64, quality domain.Quality) (string, error) {
	// The rating goes both in the body and in the query string,
	// the backend binds it from the latter.
	path := "/review_word/" + strconv.FormatInt(wordID, 10) +
		"?" + url.Values{"quality": {strconv.Itoa(int(quality))}}.Encode()
	body := map[string]int{"quality": int(quality)}

	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListWords returns every stored word in backend order
func (c *Client) ListWords(ctx context.Context) ([]domain.Word, error) {
	var payload []wordPayload
	if err := c.do(ctx, http.MethodGet, "/words", nil, &payload); err != nil {
		return nil, err
	}

	words := make([]domain.Word, 0, len(payload))
	for _, p := range payload {
		words = append(words, p.toDomain())
	}
	return words, nil
}

// ClearWords deletes all stored words
func (c *Client) ClearWords(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodDelete, "/words", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Stats returns aggregate study statistics
func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	var p statsPayload
	if err := c.do(ctx, http.MethodGet, "/study_stats", nil, &p); err != nil {
		return nil, err
	}
	return &domain.Stats{
		TotalWords:     p.TotalWords,
		DueWords:       p.DueWords,
		LearnedWords:   p.LearnedWords,
		AverageReviews: p.AverageReviews,
	}, nil
}

// do performs one JSON request and decodes a 2xx body into out
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	op := method + " " + path
	requestID := uuid.New().String()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("Backend request completed",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServiceError{Status: resp.StatusCode, Detail: parseDetail(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
