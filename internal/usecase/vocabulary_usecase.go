package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

// VocabularyUsecase manages the word dictionary, vocabulary books and the
// membership of words in books.
type VocabularyUsecase interface {
	CreateWord(ctx context.Context, word *entity.Word) (*entity.Word, error)
	UpdateWord(ctx context.Context, word *entity.Word) (*entity.Word, error)
	GetWord(ctx context.Context, id int64) (*entity.Word, error)
	ListWords(ctx context.Context, query *repository.ListWordQuery) ([]entity.Word, int64, error)
	DeleteWord(ctx context.Context, id int64) error

	CreateBook(ctx context.Context, book *entity.VocabularyBook) (*entity.VocabularyBook, error)
	UpdateBook(ctx context.Context, userID int64, book *entity.VocabularyBook) (*entity.VocabularyBook, error)
	GetBook(ctx context.Context, userID, bookID int64) (*entity.VocabularyBook, error)
	ListBooks(ctx context.Context, query *repository.ListBookQuery) ([]entity.VocabularyBook, int64, error)
	DeleteBook(ctx context.Context, userID, bookID int64) error

	AddWordsToBook(ctx context.Context, userID, bookID int64, wordIDs []int64) (int, error)
	RemoveWordFromBook(ctx context.Context, userID, bookID, wordID int64) error
	ReorderWord(ctx context.Context, userID, bookID, wordID int64, position int) error
	ListBookWords(ctx context.Context, userID, bookID int64, page repository.Pagination) ([]entity.Word, int64, error)
}

// NewVocabularyUsecase wires the repositories with default behaviour.
func NewVocabularyUsecase(words repository.WordRepository, books repository.BookRepository) VocabularyUsecase {
	return &vocabularyUsecase{
		words:     words,
		books:     books,
		sanitizer: bluemonday.StrictPolicy(),
		clock:     time.Now,
	}
}

type vocabularyUsecase struct {
	words     repository.WordRepository
	books     repository.BookRepository
	sanitizer *bluemonday.Policy
	clock     func() time.Time
}

func (u *vocabularyUsecase) CreateWord(ctx context.Context, word *entity.Word) (*entity.Word, error) {
	if word == nil {
		return nil, entity.ErrInvalidArgument
	}
	u.sanitizeWord(word)
	word.Normalize(u.clock())
	if err := word.Validate(); err != nil {
		return nil, err
	}
	if existing, err := u.words.FindByText(ctx, word.Text); err == nil {
		// Duplicate texts resolve to the existing entry.
		return existing, nil
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}
	return u.words.Create(ctx, word)
}

func (u *vocabularyUsecase) UpdateWord(ctx context.Context, word *entity.Word) (*entity.Word, error) {
	if word == nil || word.ID <= 0 {
		return nil, entity.ErrWordNotFound
	}
	existing, err := u.words.GetByID(ctx, word.ID)
	if err != nil {
		return nil, err
	}
	u.sanitizeWord(word)
	if word.Text != "" {
		existing.Text = word.Text
	}
	if word.Phonetic != "" {
		existing.Phonetic = word.Phonetic
	}
	if word.AudioURL != "" {
		existing.AudioURL = word.AudioURL
	}
	if word.Definition != "" {
		existing.Definition = word.Definition
	}
	if word.Example != "" {
		existing.Example = word.Example
	}
	if word.Difficulty != 0 {
		existing.Difficulty = word.Difficulty
	}
	existing.Normalize(u.clock())
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	return u.words.Update(ctx, existing)
}

func (u *vocabularyUsecase) GetWord(ctx context.Context, id int64) (*entity.Word, error) {
	if id <= 0 {
		return nil, entity.ErrWordNotFound
	}
	return u.words.GetByID(ctx, id)
}

func (u *vocabularyUsecase) ListWords(ctx context.Context, query *repository.ListWordQuery) ([]entity.Word, int64, error) {
	query.Normalize()
	return u.words.List(ctx, query)
}

func (u *vocabularyUsecase) DeleteWord(ctx context.Context, id int64) error {
	if id <= 0 {
		return entity.ErrWordNotFound
	}
	return u.words.Delete(ctx, id)
}

func (u *vocabularyUsecase) CreateBook(ctx context.Context, book *entity.VocabularyBook) (*entity.VocabularyBook, error) {
	if book == nil {
		return nil, entity.ErrInvalidArgument
	}
	book.Normalize(u.clock())
	if err := book.Validate(); err != nil {
		return nil, err
	}
	return u.books.Create(ctx, book)
}

func (u *vocabularyUsecase) UpdateBook(ctx context.Context, userID int64, book *entity.VocabularyBook) (*entity.VocabularyBook, error) {
	existing, err := u.ownedBook(ctx, userID, book.ID)
	if err != nil {
		return nil, err
	}
	if book.Name != "" {
		existing.Name = book.Name
	}
	if book.Description != "" {
		existing.Description = book.Description
	}
	if book.Level != "" {
		existing.Level = book.Level
	}
	if book.Tags != nil {
		existing.Tags = book.Tags
	}
	existing.Normalize(u.clock())
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	return u.books.Update(ctx, existing)
}

func (u *vocabularyUsecase) GetBook(ctx context.Context, userID, bookID int64) (*entity.VocabularyBook, error) {
	return u.ownedBook(ctx, userID, bookID)
}

func (u *vocabularyUsecase) ListBooks(ctx context.Context, query *repository.ListBookQuery) ([]entity.VocabularyBook, int64, error) {
	query.Normalize()
	return u.books.List(ctx, query)
}

func (u *vocabularyUsecase) DeleteBook(ctx context.Context, userID, bookID int64) error {
	if _, err := u.ownedBook(ctx, userID, bookID); err != nil {
		return err
	}
	return u.books.Delete(ctx, bookID)
}

func (u *vocabularyUsecase) AddWordsToBook(ctx context.Context, userID, bookID int64, wordIDs []int64) (int, error) {
	if len(wordIDs) == 0 {
		return 0, entity.ErrInvalidArgument
	}
	if _, err := u.ownedBook(ctx, userID, bookID); err != nil {
		return 0, err
	}
	words, err := u.words.GetByIDs(ctx, wordIDs)
	if err != nil {
		return 0, err
	}
	if len(words) != len(wordIDs) {
		return 0, entity.ErrWordNotFound
	}
	return u.books.AddWords(ctx, bookID, wordIDs)
}

func (u *vocabularyUsecase) RemoveWordFromBook(ctx context.Context, userID, bookID, wordID int64) error {
	if _, err := u.ownedBook(ctx, userID, bookID); err != nil {
		return err
	}
	ok, err := u.books.HasWord(ctx, bookID, wordID)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrWordNotInBook
	}
	return u.books.RemoveWord(ctx, bookID, wordID)
}

func (u *vocabularyUsecase) ReorderWord(ctx context.Context, userID, bookID, wordID int64, position int) error {
	if position < 1 {
		return entity.ErrInvalidArgument
	}
	if _, err := u.ownedBook(ctx, userID, bookID); err != nil {
		return err
	}
	ok, err := u.books.HasWord(ctx, bookID, wordID)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrWordNotInBook
	}
	return u.books.ReorderWord(ctx, bookID, wordID, position)
}

func (u *vocabularyUsecase) ListBookWords(ctx context.Context, userID, bookID int64, page repository.Pagination) ([]entity.Word, int64, error) {
	if _, err := u.ownedBook(ctx, userID, bookID); err != nil {
		return nil, 0, err
	}
	page.Normalize()
	return u.books.ListWords(ctx, bookID, page)
}

// ownedBook loads a book and enforces ownership.
func (u *vocabularyUsecase) ownedBook(ctx context.Context, userID, bookID int64) (*entity.VocabularyBook, error) {
	if bookID <= 0 {
		return nil, entity.ErrBookNotFound
	}
	book, err := u.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, entity.ErrBookNotOwned
	}
	return book, nil
}

func (u *vocabularyUsecase) sanitizeWord(w *entity.Word) {
	w.Definition = u.sanitizer.Sanitize(w.Definition)
	w.Example = u.sanitizer.Sanitize(w.Example)
}
