package entity

import (
	"strings"
	"time"
)

// Word is a dictionary entry shared across vocabulary books.
type Word struct {
	ID         int64
	Text       string
	Phonetic   string
	AudioURL   string
	Definition string
	Example    string
	Difficulty float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Normalize applies defaults and trims user-supplied fields before persistence.
func (w *Word) Normalize(now time.Time) {
	w.Text = strings.TrimSpace(w.Text)
	w.Definition = strings.TrimSpace(w.Definition)
	if w.Difficulty == 0 {
		w.Difficulty = 1.0
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
}

// Validate checks the fields required for a new word.
func (w *Word) Validate() error {
	if strings.TrimSpace(w.Text) == "" {
		return ErrInvalidArgument
	}
	if strings.TrimSpace(w.Definition) == "" {
		return ErrInvalidArgument
	}
	return nil
}
