package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
	"github.com/lexloop/lexloop/pkg/filterexpr"
)

type wordRow struct {
	ID         int64        `db:"id"`
	Text       string       `db:"text"`
	Phonetic   string       `db:"phonetic"`
	AudioURL   string       `db:"audio_url"`
	Definition string       `db:"definition"`
	Example    string       `db:"example"`
	Difficulty float64      `db:"difficulty"`
	CreatedAt  sql.NullTime `db:"created_at"`
	UpdatedAt  sql.NullTime `db:"updated_at"`
}

func (r wordRow) toEntity() entity.Word {
	return entity.Word{
		ID:         r.ID,
		Text:       r.Text,
		Phonetic:   r.Phonetic,
		AudioURL:   r.AudioURL,
		Definition: r.Definition,
		Example:    r.Example,
		Difficulty: r.Difficulty,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

// wordQueryParams is the filterexpr binding target for word searches.
type wordQueryParams struct {
	Keyword       string
	KeywordPrefix string
	MinDifficulty float64
	MaxDifficulty float64
	OrderKey      string
	OrderDesc     bool
}

var wordSchema = filterexpr.Schema{
	Filter: map[string]filterexpr.Field{
		"text": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpContains: "Keyword",
				filterexpr.OpSW:       "KeywordPrefix",
			},
		},
		"difficulty": {
			Kind: filterexpr.KindNumber,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "MinDifficulty",
				filterexpr.OpLTE: "MaxDifficulty",
			},
		},
	},
	Order: filterexpr.OrderSchema{
		Default:     "created_at",
		DefaultDesc: true,
		Keys:        []string{"created_at", "text", "difficulty"},
	},
}

var wordOrderColumns = map[string]string{
	"created_at": "created_at",
	"text":       "text",
	"difficulty": "difficulty",
}

type wordRepository struct {
	db *sqlx.DB
}

// NewWordRepository builds the sqlx-backed dictionary store.
func NewWordRepository(db *sqlx.DB) repository.WordRepository {
	return &wordRepository{db: db}
}

func (r *wordRepository) Create(ctx context.Context, word *entity.Word) (*entity.Word, error) {
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO words (text, phonetic, audio_url, definition, example, difficulty, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		word.Text, word.Phonetic, word.AudioURL, word.Definition, word.Example,
		word.Difficulty, word.CreatedAt, word.UpdatedAt)
	if err != nil {
		return nil, conflictOr(err, entity.ErrConflict)
	}
	return r.GetByID(ctx, id)
}

func (r *wordRepository) Update(ctx context.Context, word *entity.Word) (*entity.Word, error) {
	query := r.db.Rebind(`
		UPDATE words
		SET text = ?, phonetic = ?, audio_url = ?, definition = ?, example = ?, difficulty = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		word.Text, word.Phonetic, word.AudioURL, word.Definition, word.Example,
		word.Difficulty, word.UpdatedAt, word.ID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, word.ID)
}

func (r *wordRepository) GetByID(ctx context.Context, id int64) (*entity.Word, error) {
	var row wordRow
	query := r.db.Rebind(`SELECT * FROM words WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrWordNotFound)
	}
	word := row.toEntity()
	return &word, nil
}

func (r *wordRepository) GetByIDs(ctx context.Context, ids []int64) ([]entity.Word, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM words WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []wordRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	words := make([]entity.Word, 0, len(rows))
	for _, row := range rows {
		words = append(words, row.toEntity())
	}
	return words, nil
}

func (r *wordRepository) FindByText(ctx context.Context, text string) (*entity.Word, error) {
	var row wordRow
	query := r.db.Rebind(`SELECT * FROM words WHERE text = ?`)
	if err := r.db.GetContext(ctx, &row, query, text); err != nil {
		return nil, notFound(err, entity.ErrWordNotFound)
	}
	word := row.toEntity()
	return &word, nil
}

func (r *wordRepository) List(ctx context.Context, query *repository.ListWordQuery) ([]entity.Word, int64, error) {
	var params wordQueryParams
	if err := filterexpr.Bind(&query.FilterOrder, &params, wordSchema); err != nil {
		return nil, 0, fmt.Errorf("%w: %s", entity.ErrInvalidArgument, err)
	}

	var conds []string
	var args []any
	if params.Keyword != "" {
		conds = append(conds, "text LIKE ?")
		args = append(args, "%"+params.Keyword+"%")
	}
	if params.KeywordPrefix != "" {
		conds = append(conds, "text LIKE ?")
		args = append(args, params.KeywordPrefix+"%")
	}
	if params.MinDifficulty > 0 {
		conds = append(conds, "difficulty >= ?")
		args = append(args, params.MinDifficulty)
	}
	if params.MaxDifficulty > 0 {
		conds = append(conds, "difficulty <= ?")
		args = append(args, params.MaxDifficulty)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM words`+where), args...); err != nil {
		return nil, 0, err
	}

	direction := "ASC"
	if params.OrderDesc {
		direction = "DESC"
	}
	listQuery := fmt.Sprintf(`SELECT * FROM words%s ORDER BY %s %s, id ASC LIMIT ? OFFSET ?`,
		where, wordOrderColumns[params.OrderKey], direction)
	listArgs := append(args, query.PageSize, query.Offset())

	var rows []wordRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}
	words := make([]entity.Word, 0, len(rows))
	for _, row := range rows {
		words = append(words, row.toEntity())
	}
	return words, total, nil
}

func (r *wordRepository) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM word_relations WHERE word_id = ?`), id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM words WHERE id = ?`), id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return entity.ErrWordNotFound
		}
		return nil
	})
}
