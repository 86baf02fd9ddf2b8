package domain

import "time"

// Provider identifies a machine-translation source
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderLingva   Provider = "lingva"
	ProviderMyMemory Provider = "mymemory"
)

// Providers lists translation sources in display order
var Providers = []Provider{ProviderGoogle, ProviderLingva, ProviderMyMemory}

// Title returns the human-readable provider name
func (p Provider) Title() string {
	switch p {
	case ProviderGoogle:
		return "Google"
	case ProviderLingva:
		return "Lingva"
	case ProviderMyMemory:
		return "MyMemory"
	}
	return string(p)
}

// Word represents a vocabulary item as served by the backend
type Word struct {
	ID              int64
	Name            string
	URL             string
	Translations    map[Provider]string
	DifficultyLevel int
	ReviewCount     int
	NextReviewDate  *time.Time // nil means due now
	EaseFactor      float64
	IntervalDays    int
}

// Translation returns the provider's text if it is present
func (w Word) Translation(p Provider) (string, bool) {
	text, ok := w.Translations[p]
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

// MissingTranslations reports whether any provider has no text yet
func (w Word) MissingTranslations() bool {
	for _, p := range Providers {
		if _, ok := w.Translation(p); !ok {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the translations map
func (w Word) Clone() Word {
	c := w
	c.Translations = make(map[Provider]string, len(w.Translations))
	for p, text := range w.Translations {
		c.Translations[p] = text
	}
	return c
}

// Stats is an aggregate snapshot of the learner's word base
type Stats struct {
	TotalWords     int
	DueWords       int
	LearnedWords   int
	AverageReviews float64
}
