package review

import "wordloop/internal/domain"

// Slot holds the word under review. It is either empty or holds exactly one
// identified word, replaced wholesale on every successful fetch.
type Slot struct {
	word     *domain.Word
	answered bool
}

// Load replaces the slot's content
func (s *Slot) Load(w domain.Word) {
	c := w.Clone()
	s.word = &c
	s.answered = false
}

// Clear empties the slot
func (s *Slot) Clear() {
	s.word = nil
	s.answered = false
}

// Loaded reports whether a word is present
func (s *Slot) Loaded() bool {
	return s.word != nil
}

// ID returns the current word id, or zero when empty
func (s *Slot) ID() int64 {
	if s.word == nil {
		return 0
	}
	return s.word.ID
}

// Word returns a copy of the current word
func (s *Slot) Word() (domain.Word, bool) {
	if s.word == nil {
		return domain.Word{}, false
	}
	return s.word.Clone(), true
}

// Answered reports whether a rating was already accepted for this word
func (s *Slot) Answered() bool {
	return s.answered
}

// MarkAnswered records an accepted rating
func (s *Slot) MarkAnswered() {
	if s.word != nil {
		s.answered = true
	}
}

// PatchTranslations merges late translations into the word with the given id.
// It returns false when the slot holds another word.
func (s *Slot) PatchTranslations(id int64, translations map[domain.Provider]string) bool {
	if s.word == nil || s.word.ID != id {
		return false
	}
	for p, text := range translations {
		if text != "" {
			s.word.Translations[p] = text
		}
	}
	return true
}
