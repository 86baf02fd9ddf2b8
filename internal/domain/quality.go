package domain

import (
	"fmt"
	"strconv"
)

// Quality is the learner's recall rating, forwarded to the scheduler as is
type Quality int

const (
	QualityAgain   Quality = 0
	QualityPerfect Quality = 5
)

// Qualities lists all ratings offered to the learner
var Qualities = []Quality{0, 1, 2, 3, 4, 5}

// Valid reports whether q is within the accepted range
func (q Quality) Valid() bool {
	return q >= QualityAgain && q <= QualityPerfect
}

// Label returns the button caption for the rating
func (q Quality) Label() string {
	labels := []string{
		"Забыл", "Очень трудно", "Трудно", "Вспомнил", "Легко", "Идеально",
	}
	if !q.Valid() {
		return fmt.Sprintf("%d", int(q))
	}
	return fmt.Sprintf("%d · %s", int(q), labels[q])
}

// ParseQuality converts callback data into a rating
func ParseQuality(s string) (Quality, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quality %q: %w", s, err)
	}
	q := Quality(v)
	if !q.Valid() {
		return 0, fmt.Errorf("quality %d out of range", v)
	}
	return q, nil
}
