package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

// encodeOptions stores answer options as a JSON array in a text column, which
// keeps the schema identical across Postgres and SQLite.
func encodeOptions(options []string) string {
	if len(options) == 0 {
		return "[]"
	}
	data, err := json.Marshal(options)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeOptions(raw string) []string {
	if raw == "" {
		return nil
	}
	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil
	}
	return options
}

type assessmentRow struct {
	ID          int64        `db:"id"`
	UserID      int64        `db:"user_id"`
	BookID      int64        `db:"book_id"`
	Status      string       `db:"status"`
	Score       float64      `db:"score"`
	CompletedAt sql.NullTime `db:"completed_at"`
	CreatedAt   sql.NullTime `db:"created_at"`
	UpdatedAt   sql.NullTime `db:"updated_at"`
}

func (r assessmentRow) toEntity() entity.Assessment {
	return entity.Assessment{
		ID:          r.ID,
		UserID:      r.UserID,
		BookID:      r.BookID,
		Status:      entity.AssessmentStatus(r.Status),
		Score:       r.Score,
		CompletedAt: timePtr(r.CompletedAt),
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

type assessmentQuestionRow struct {
	ID           int64          `db:"id"`
	AssessmentID int64          `db:"assessment_id"`
	WordID       int64          `db:"word_id"`
	WordText     string         `db:"word_text"`
	Options      string         `db:"options"`
	Correct      string         `db:"correct"`
	UserAnswer   sql.NullString `db:"user_answer"`
	IsCorrect    sql.NullBool   `db:"is_correct"`
	CreatedAt    sql.NullTime   `db:"created_at"`
}

func (r assessmentQuestionRow) toEntity() entity.AssessmentQuestion {
	q := entity.AssessmentQuestion{
		ID:           r.ID,
		AssessmentID: r.AssessmentID,
		WordID:       r.WordID,
		WordText:     r.WordText,
		Options:      decodeOptions(r.Options),
		Correct:      r.Correct,
		CreatedAt:    r.CreatedAt.Time,
	}
	if r.UserAnswer.Valid {
		answer := r.UserAnswer.String
		q.UserAnswer = &answer
	}
	if r.IsCorrect.Valid {
		correct := r.IsCorrect.Bool
		q.IsCorrect = &correct
	}
	return q
}

type assessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository builds the sqlx-backed assessment store.
func NewAssessmentRepository(db *sqlx.DB) repository.AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *entity.Assessment) (*entity.Assessment, error) {
	var id int64
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		id, err = insertReturningID(ctx, tx, `
			INSERT INTO assessments (user_id, book_id, status, score, completed_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			assessment.UserID, assessment.BookID, string(assessment.Status), assessment.Score,
			nullTime(assessment.CompletedAt), assessment.CreatedAt, assessment.UpdatedAt)
		if err != nil {
			return err
		}
		for _, q := range assessment.Questions {
			if _, err := insertReturningID(ctx, tx, `
				INSERT INTO assessment_questions
					(assessment_id, word_id, word_text, options, correct, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				id, q.WordID, q.WordText, encodeOptions(q.Options), q.Correct, assessment.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *entity.Assessment) (*entity.Assessment, error) {
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			UPDATE assessments
			SET status = ?, score = ?, completed_at = ?, updated_at = ?
			WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, query,
			string(assessment.Status), assessment.Score,
			nullTime(assessment.CompletedAt), assessment.UpdatedAt, assessment.ID); err != nil {
			return err
		}
		update := tx.Rebind(`UPDATE assessment_questions SET user_answer = ?, is_correct = ? WHERE id = ?`)
		for _, q := range assessment.Questions {
			var answer sql.NullString
			if q.UserAnswer != nil {
				answer = sql.NullString{String: *q.UserAnswer, Valid: true}
			}
			var correct sql.NullBool
			if q.IsCorrect != nil {
				correct = sql.NullBool{Bool: *q.IsCorrect, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, update, answer, correct, q.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, assessment.ID)
}

func (r *assessmentRepository) GetByID(ctx context.Context, id int64) (*entity.Assessment, error) {
	var row assessmentRow
	query := r.db.Rebind(`SELECT * FROM assessments WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrAssessmentNotFound)
	}
	assessment := row.toEntity()

	var qrows []assessmentQuestionRow
	qquery := r.db.Rebind(`SELECT * FROM assessment_questions WHERE assessment_id = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &qrows, qquery, id); err != nil {
		return nil, err
	}
	assessment.Questions = make([]entity.AssessmentQuestion, 0, len(qrows))
	for _, q := range qrows {
		assessment.Questions = append(assessment.Questions, q.toEntity())
	}
	return &assessment, nil
}

func (r *assessmentRepository) ListCompleted(ctx context.Context, userID int64, page repository.Pagination) ([]entity.Assessment, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total,
		r.db.Rebind(`SELECT COUNT(*) FROM assessments WHERE user_id = ? AND status = ?`),
		userID, string(entity.AssessmentCompleted)); err != nil {
		return nil, 0, err
	}

	var rows []assessmentRow
	query := r.db.Rebind(`
		SELECT * FROM assessments
		WHERE user_id = ? AND status = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, query,
		userID, string(entity.AssessmentCompleted), page.PageSize, page.Offset()); err != nil {
		return nil, 0, err
	}
	assessments := make([]entity.Assessment, 0, len(rows))
	for _, row := range rows {
		assessments = append(assessments, row.toEntity())
	}
	return assessments, total, nil
}
