package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

type bookRow struct {
	ID          int64        `db:"id"`
	UserID      int64        `db:"user_id"`
	Name        string       `db:"name"`
	Description string       `db:"description"`
	Level       string       `db:"level"`
	Tags        string       `db:"tags"`
	TotalWords  int          `db:"total_words"`
	CreatedAt   sql.NullTime `db:"created_at"`
	UpdatedAt   sql.NullTime `db:"updated_at"`
}

func (r bookRow) toEntity() entity.VocabularyBook {
	return entity.VocabularyBook{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		Level:       entity.BookLevel(r.Level),
		Tags:        splitTags(r.Tags),
		TotalWords:  r.TotalWords,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

type bookRepository struct {
	db *sqlx.DB
}

// NewBookRepository builds the sqlx-backed vocabulary book store.
func NewBookRepository(db *sqlx.DB) repository.BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *entity.VocabularyBook) (*entity.VocabularyBook, error) {
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO vocabulary_books (user_id, name, description, level, tags, total_words, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.UserID, book.Name, book.Description, string(book.Level), joinTags(book.Tags),
		book.TotalWords, book.CreatedAt, book.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *bookRepository) Update(ctx context.Context, book *entity.VocabularyBook) (*entity.VocabularyBook, error) {
	query := r.db.Rebind(`
		UPDATE vocabulary_books
		SET name = ?, description = ?, level = ?, tags = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		book.Name, book.Description, string(book.Level), joinTags(book.Tags),
		book.UpdatedAt, book.ID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, book.ID)
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*entity.VocabularyBook, error) {
	var row bookRow
	query := r.db.Rebind(`SELECT * FROM vocabulary_books WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrBookNotFound)
	}
	book := row.toEntity()
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, query *repository.ListBookQuery) ([]entity.VocabularyBook, int64, error) {
	conds := []string{"user_id = ?"}
	args := []any{query.UserID}
	if query.Level != "" {
		conds = append(conds, "level = ?")
		args = append(args, string(query.Level))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM vocabulary_books`+where), args...); err != nil {
		return nil, 0, err
	}

	var rows []bookRow
	listQuery := r.db.Rebind(`SELECT * FROM vocabulary_books` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, listQuery, append(args, query.PageSize, query.Offset())...); err != nil {
		return nil, 0, err
	}
	books := make([]entity.VocabularyBook, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.toEntity())
	}
	return books, total, nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM word_relations WHERE book_id = ?`), id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM vocabulary_books WHERE id = ?`), id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return entity.ErrBookNotFound
		}
		return nil
	})
}

func (r *bookRepository) AddWords(ctx context.Context, bookID int64, wordIDs []int64) (int, error) {
	added := 0
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var maxPos int
		if err := tx.GetContext(ctx, &maxPos,
			tx.Rebind(`SELECT COALESCE(MAX(position), 0) FROM word_relations WHERE book_id = ?`), bookID); err != nil {
			return err
		}

		existQuery, existArgs, err := sqlx.In(`SELECT word_id FROM word_relations WHERE book_id = ? AND word_id IN (?)`, bookID, wordIDs)
		if err != nil {
			return err
		}
		var present []int64
		if err := tx.SelectContext(ctx, &present, tx.Rebind(existQuery), existArgs...); err != nil {
			return err
		}
		skip := make(map[int64]bool, len(present))
		for _, id := range present {
			skip[id] = true
		}

		insert := tx.Rebind(`INSERT INTO word_relations (word_id, book_id, position, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
		for _, wordID := range wordIDs {
			if skip[wordID] {
				continue
			}
			maxPos++
			if _, err := tx.ExecContext(ctx, insert, wordID, bookID, maxPos); err != nil {
				return err
			}
			added++
		}
		return r.refreshTotal(ctx, tx, bookID)
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (r *bookRepository) RemoveWord(ctx context.Context, bookID, wordID int64) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			tx.Rebind(`DELETE FROM word_relations WHERE book_id = ? AND word_id = ?`), bookID, wordID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return entity.ErrWordNotInBook
		}
		if err := r.compactPositions(ctx, tx, bookID); err != nil {
			return err
		}
		return r.refreshTotal(ctx, tx, bookID)
	})
}

func (r *bookRepository) ReorderWord(ctx context.Context, bookID, wordID int64, position int) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var ids []int64
		if err := tx.SelectContext(ctx, &ids,
			tx.Rebind(`SELECT word_id FROM word_relations WHERE book_id = ? ORDER BY position`), bookID); err != nil {
			return err
		}
		idx := -1
		for i, id := range ids {
			if id == wordID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return entity.ErrWordNotInBook
		}
		ids = append(ids[:idx], ids[idx+1:]...)
		if position > len(ids)+1 {
			position = len(ids) + 1
		}
		ids = append(ids[:position-1], append([]int64{wordID}, ids[position-1:]...)...)

		update := tx.Rebind(`UPDATE word_relations SET position = ?, updated_at = CURRENT_TIMESTAMP
			WHERE book_id = ? AND word_id = ?`)
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, update, i+1, bookID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *bookRepository) ListWords(ctx context.Context, bookID int64, page repository.Pagination) ([]entity.Word, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total,
		r.db.Rebind(`SELECT COUNT(*) FROM word_relations WHERE book_id = ?`), bookID); err != nil {
		return nil, 0, err
	}

	var rows []wordRow
	query := r.db.Rebind(`
		SELECT w.* FROM words w
		JOIN word_relations r ON r.word_id = w.id
		WHERE r.book_id = ?
		ORDER BY r.position
		LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, query, bookID, page.PageSize, page.Offset()); err != nil {
		return nil, 0, err
	}
	words := make([]entity.Word, 0, len(rows))
	for _, row := range rows {
		words = append(words, row.toEntity())
	}
	return words, total, nil
}

func (r *bookRepository) ListWordIDs(ctx context.Context, bookID int64) ([]int64, error) {
	var ids []int64
	query := r.db.Rebind(`SELECT word_id FROM word_relations WHERE book_id = ? ORDER BY position`)
	if err := r.db.SelectContext(ctx, &ids, query, bookID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *bookRepository) HasWord(ctx context.Context, bookID, wordID int64) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM word_relations WHERE book_id = ? AND word_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, bookID, wordID); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *bookRepository) CountWords(ctx context.Context, bookID int64) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM word_relations WHERE book_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, bookID); err != nil {
		return 0, err
	}
	return count, nil
}

// compactPositions rewrites positions to a dense 1..n sequence.
func (r *bookRepository) compactPositions(ctx context.Context, tx *sqlx.Tx, bookID int64) error {
	var ids []int64
	if err := tx.SelectContext(ctx, &ids,
		tx.Rebind(`SELECT word_id FROM word_relations WHERE book_id = ? ORDER BY position`), bookID); err != nil {
		return err
	}
	update := tx.Rebind(`UPDATE word_relations SET position = ? WHERE book_id = ? AND word_id = ?`)
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, update, i+1, bookID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *bookRepository) refreshTotal(ctx context.Context, tx *sqlx.Tx, bookID int64) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE vocabulary_books
		SET total_words = (SELECT COUNT(*) FROM word_relations WHERE book_id = ?)
		WHERE id = ?`), bookID, bookID)
	return err
}
