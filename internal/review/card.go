package review

import "wordloop/internal/domain"

// State is a step of the review session
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateDisplaying State = "displaying"
	StateRevealed   State = "revealed"
	StateSubmitting State = "submitting"
	StateEmpty      State = "empty"
	StateFailed     State = "failed"
)

const (
	PlaceholderLoadingWord      = "Загружаю слово..."
	PlaceholderLoading          = "Загружается..."
	PlaceholderTranslating      = "Перевожу..."
	PlaceholderTranslationError = "Ошибка перевода"

	MessageNothingDue  = "Нет слов для изучения"
	MessageLoadFailed  = "Ошибка загрузки"
	MessageAnswerSaved = "Ответ сохранён"
	MessageStaleAnswer = "Это слово уже сменилось"
)

// TranslationLine is one provider's row on the card
type TranslationLine struct {
	Provider domain.Provider
	Text     string
}

// Card is everything a renderer needs to draw the session
type Card struct {
	State            State
	WordID           int64
	Headline         string // word name, or a status message when no word is loaded
	Translations     []TranslationLine
	ShowTranslations bool
	CanReveal        bool
	CanRate          bool
}

// Translation returns the text shown for a provider
func (c Card) Translation(p domain.Provider) string {
	for _, line := range c.Translations {
		if line.Provider == p {
			return line.Text
		}
	}
	return ""
}

func (c Card) clone() Card {
	out := c
	out.Translations = append([]TranslationLine(nil), c.Translations...)
	return out
}

func placeholderLines(text string) []TranslationLine {
	lines := make([]TranslationLine, 0, len(domain.Providers))
	for _, p := range domain.Providers {
		lines = append(lines, TranslationLine{Provider: p, Text: text})
	}
	return lines
}

func wordLines(w domain.Word, missing string) []TranslationLine {
	lines := make([]TranslationLine, 0, len(domain.Providers))
	for _, p := range domain.Providers {
		text, ok := w.Translation(p)
		if !ok {
			text = missing
		}
		lines = append(lines, TranslationLine{Provider: p, Text: text})
	}
	return lines
}
