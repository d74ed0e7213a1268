package repository

import (
	"context"

	"github.com/lexloop/lexloop/internal/entity"
)

// ListBookQuery holds parameters for listing a user's vocabulary books.
type ListBookQuery struct {
	Pagination

	UserID int64
	Level  entity.BookLevel
}

// BookRepository abstracts persistence for vocabulary books and the word
// membership relation.
type BookRepository interface {
	Create(ctx context.Context, book *entity.VocabularyBook) (*entity.VocabularyBook, error)
	Update(ctx context.Context, book *entity.VocabularyBook) (*entity.VocabularyBook, error)
	GetByID(ctx context.Context, id int64) (*entity.VocabularyBook, error)
	List(ctx context.Context, query *ListBookQuery) ([]entity.VocabularyBook, int64, error)
	Delete(ctx context.Context, id int64) error

	// AddWords appends words after the current last position, skipping words
	// already in the book. It returns the number actually added.
	AddWords(ctx context.Context, bookID int64, wordIDs []int64) (int, error)
	RemoveWord(ctx context.Context, bookID, wordID int64) error
	// ReorderWord moves a word to a 1-based position, shifting neighbors.
	ReorderWord(ctx context.Context, bookID, wordID int64, position int) error
	ListWords(ctx context.Context, bookID int64, page Pagination) ([]entity.Word, int64, error)
	ListWordIDs(ctx context.Context, bookID int64) ([]int64, error)
	HasWord(ctx context.Context, bookID, wordID int64) (bool, error)
	CountWords(ctx context.Context, bookID int64) (int, error)
}
