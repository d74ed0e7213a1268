package entity

import (
	"strings"
	"time"
)

// BookLevel classifies the rough difficulty of a vocabulary book.
type BookLevel string

const (
	LevelBeginner     BookLevel = "beginner"
	LevelIntermediate BookLevel = "intermediate"
	LevelAdvanced     BookLevel = "advanced"
)

// VocabularyBook groups words for a single user. Words are shared entities;
// membership and ordering live on WordRelation.
type VocabularyBook struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	Level       BookLevel
	Tags        []string
	TotalWords  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize applies defaults before persistence.
func (b *VocabularyBook) Normalize(now time.Time) {
	b.Name = strings.TrimSpace(b.Name)
	if b.Level == "" {
		b.Level = LevelBeginner
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Validate checks the fields required for a new book.
func (b *VocabularyBook) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrInvalidArgument
	}
	switch b.Level {
	case "", LevelBeginner, LevelIntermediate, LevelAdvanced:
		return nil
	default:
		return ErrInvalidArgument
	}
}

// WordRelation ties a word into a book at an explicit position. Positions are
// 1-based and drive listing order, pagination and reordering.
type WordRelation struct {
	ID        int64
	WordID    int64
	BookID    int64
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
