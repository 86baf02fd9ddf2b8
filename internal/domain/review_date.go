package domain

import "time"

// ReviewDateLayout is the date format used by the backend
const ReviewDateLayout = "2006-01-02"

// ParseReviewDate parses the backend's next-review date
// Empty or unparsable values mean the word is due now
func ParseReviewDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(ReviewDateLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

// DisplayReviewDate returns user-friendly next-review date
func DisplayReviewDate(date *time.Time, now time.Time) string {
	// Overdue words are due today as well
	if date == nil || !date.After(endOfDay(now)) {
		return "Сегодня"
	}

	tomorrow := now.AddDate(0, 0, 1)
	if sameDay(*date, tomorrow) {
		return "Завтра"
	}

	months := []string{
		"", "янв", "фев", "мар", "апр", "мая", "июн",
		"июл", "авг", "сен", "окт", "ноя", "дек",
	}

	return date.Format("2 ") + months[date.Month()] + date.Format(" 2006")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
