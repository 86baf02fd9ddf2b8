package handler

import (
	"errors"
	"strings"
	"testing"
	"time"

	"wordloop/internal/backend"
	"wordloop/internal/domain"
	"wordloop/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWords(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)

	words := []domain.Word{
		{
			ID:   1,
			Name: "casa",
			Translations: map[domain.Provider]string{
				domain.ProviderGoogle: "house",
			},
			DifficultyLevel: 2,
			ReviewCount:     3,
			NextReviewDate:  &tomorrow,
		},
		{
			ID:   2,
			Name: "perro",
		},
	}

	entries := formatWords(words, now)

	require.Len(t, entries, 3)
	assert.Equal(t, "📚 Все слова (2):", entries[0])
	assert.Equal(t,
		"📝 casa\nGoogle: house\nLingva: Нет перевода\nMyMemory: Нет перевода\n"+
			"Сложность: 2 · Повторений: 3 · Следующее повторение: Завтра",
		entries[1],
	)
	assert.Contains(t, entries[2], "Следующее повторение: Сегодня")
}

func TestChunkLines(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		limit    int
		expected []string
	}{
		{
			name:     "fits in one message",
			entries:  []string{"aa", "bb"},
			limit:    10,
			expected: []string{"aa\n\nbb"},
		},
		{
			name:     "splits between entries",
			entries:  []string{"aaaa", "bbbb", "cc"},
			limit:    10,
			expected: []string{"aaaa\n\nbbbb", "cc"},
		},
		{
			name:     "cuts an oversized entry",
			entries:  []string{"abcdefghijkl"},
			limit:    5,
			expected: []string{"abcde"},
		},
		{
			name:     "empty",
			entries:  nil,
			limit:    10,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, chunkLines(tt.entries, tt.limit))
		})
	}
}

func TestChunkLines_RespectsMessageLimit(t *testing.T) {
	entry := strings.Repeat("слово ", 100)
	entries := make([]string, 50)
	for i := range entries {
		entries[i] = entry
	}

	chunks := chunkLines(entries, maxMessageLength)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), maxMessageLength)
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	// Each Cyrillic letter takes two bytes
	assert.Equal(t, "сл", truncate("слово", 5))
	assert.Equal(t, "слово", truncate("слово", 10))
}

func TestFormatStats(t *testing.T) {
	text := formatStats(&domain.Stats{
		TotalWords:     10,
		DueWords:       4,
		LearnedWords:   3,
		AverageReviews: 2.5,
	})

	assert.Contains(t, text, "Всего слов: 10")
	assert.Contains(t, text, "К повторению: 4")
	assert.Contains(t, text, "Выучено: 3")
	assert.Contains(t, text, "Среднее число повторений: 2.5")
}

func TestURLInputMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "empty input",
			err:      service.ErrURLRequired,
			expected: "Пожалуйста, введите URL",
		},
		{
			name:     "malformed input",
			err:      service.ErrInvalidURL,
			expected: "Пожалуйста, введите корректный URL",
		},
		{
			name:     "service detail",
			err:      &backend.ServiceError{Status: 400, Detail: "Page has no words"},
			expected: "Page has no words",
		},
		{
			name:     "network failure",
			err:      &backend.TransportError{Op: "POST /process_url", Err: errors.New("connection refused")},
			expected: "Ошибка сети: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, urlInputMessage(tt.err))
		})
	}
}
