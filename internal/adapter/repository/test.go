package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

type testRow struct {
	ID             int64        `db:"id"`
	UserID         int64        `db:"user_id"`
	BookID         int64        `db:"book_id"`
	Name           string       `db:"name"`
	Type           string       `db:"type"`
	Duration       int          `db:"duration"`
	TotalQuestions int          `db:"total_questions"`
	PassScore      float64      `db:"pass_score"`
	StartTime      sql.NullTime `db:"start_time"`
	CreatedAt      sql.NullTime `db:"created_at"`
	UpdatedAt      sql.NullTime `db:"updated_at"`
}

func (r testRow) toEntity() entity.Test {
	return entity.Test{
		ID:             r.ID,
		UserID:         r.UserID,
		BookID:         r.BookID,
		Name:           r.Name,
		Type:           entity.TestType(r.Type),
		Duration:       r.Duration,
		TotalQuestions: r.TotalQuestions,
		PassScore:      r.PassScore,
		StartTime:      timePtr(r.StartTime),
		CreatedAt:      r.CreatedAt.Time,
		UpdatedAt:      r.UpdatedAt.Time,
	}
}

type testQuestionRow struct {
	ID        int64        `db:"id"`
	TestID    int64        `db:"test_id"`
	WordID    int64        `db:"word_id"`
	Type      string       `db:"type"`
	Prompt    string       `db:"prompt"`
	Options   string       `db:"options"`
	Correct   string       `db:"correct"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (r testQuestionRow) toEntity() entity.TestQuestion {
	return entity.TestQuestion{
		ID:        r.ID,
		TestID:    r.TestID,
		WordID:    r.WordID,
		Type:      entity.TestType(r.Type),
		Prompt:    r.Prompt,
		Options:   decodeOptions(r.Options),
		Correct:   r.Correct,
		CreatedAt: r.CreatedAt.Time,
	}
}

type testRecordRow struct {
	ID           int64        `db:"id"`
	TestID       int64        `db:"test_id"`
	UserID       int64        `db:"user_id"`
	Score        float64      `db:"score"`
	CorrectCount int          `db:"correct_count"`
	TotalCount   int          `db:"total_count"`
	IsPassed     bool         `db:"is_passed"`
	TimeSpent    int          `db:"time_spent"`
	CompletedAt  sql.NullTime `db:"completed_at"`
	CreatedAt    sql.NullTime `db:"created_at"`
}

func (r testRecordRow) toEntity() entity.TestRecord {
	return entity.TestRecord{
		ID:           r.ID,
		TestID:       r.TestID,
		UserID:       r.UserID,
		Score:        r.Score,
		CorrectCount: r.CorrectCount,
		TotalCount:   r.TotalCount,
		IsPassed:     r.IsPassed,
		TimeSpent:    r.TimeSpent,
		CompletedAt:  r.CompletedAt.Time,
		CreatedAt:    r.CreatedAt.Time,
	}
}

type testAnswerRow struct {
	ID         int64  `db:"id"`
	RecordID   int64  `db:"record_id"`
	QuestionID int64  `db:"question_id"`
	Answer     string `db:"answer"`
	IsCorrect  bool   `db:"is_correct"`
}

type testRepository struct {
	db *sqlx.DB
}

// NewTestRepository builds the sqlx-backed test store.
func NewTestRepository(db *sqlx.DB) repository.TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(ctx context.Context, test *entity.Test) (*entity.Test, error) {
	var id int64
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		id, err = insertReturningID(ctx, tx, `
			INSERT INTO tests
				(user_id, book_id, name, type, duration, total_questions, pass_score, start_time, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			test.UserID, test.BookID, test.Name, string(test.Type), test.Duration,
			test.TotalQuestions, test.PassScore, nullTime(test.StartTime),
			test.CreatedAt, test.UpdatedAt)
		if err != nil {
			return err
		}
		for _, q := range test.Questions {
			if _, err := insertReturningID(ctx, tx, `
				INSERT INTO test_questions (test_id, word_id, type, prompt, options, correct, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, q.WordID, string(q.Type), q.Prompt, encodeOptions(q.Options),
				q.Correct, test.CreatedAt); err != nil {
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

func (r *testRepository) Update(ctx context.Context, test *entity.Test) (*entity.Test, error) {
	query := r.db.Rebind(`
		UPDATE tests
		SET name = ?, type = ?, duration = ?, total_questions = ?, pass_score = ?,
			start_time = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		test.Name, string(test.Type), test.Duration, test.TotalQuestions, test.PassScore,
		nullTime(test.StartTime), test.UpdatedAt, test.ID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, test.ID)
}

func (r *testRepository) GetByID(ctx context.Context, id int64) (*entity.Test, error) {
	var row testRow
	query := r.db.Rebind(`SELECT * FROM tests WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrTestNotFound)
	}
	test := row.toEntity()

	var qrows []testQuestionRow
	qquery := r.db.Rebind(`SELECT * FROM test_questions WHERE test_id = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &qrows, qquery, id); err != nil {
		return nil, err
	}
	test.Questions = make([]entity.TestQuestion, 0, len(qrows))
	for _, q := range qrows {
		test.Questions = append(test.Questions, q.toEntity())
	}
	return &test, nil
}

func (r *testRepository) List(ctx context.Context, query *repository.ListTestQuery) ([]entity.Test, int64, error) {
	where := ` WHERE user_id = ?`
	args := []any{query.UserID}
	if query.BookID != 0 {
		where += ` AND book_id = ?`
		args = append(args, query.BookID)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM tests`+where), args...); err != nil {
		return nil, 0, err
	}

	var rows []testRow
	listQuery := r.db.Rebind(`SELECT * FROM tests` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, listQuery, append(args, query.PageSize, query.Offset())...); err != nil {
		return nil, 0, err
	}
	tests := make([]entity.Test, 0, len(rows))
	for _, row := range rows {
		tests = append(tests, row.toEntity())
	}
	return tests, total, nil
}

func (r *testRepository) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			DELETE FROM test_answers WHERE record_id IN (SELECT id FROM test_records WHERE test_id = ?)`), id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM test_records WHERE test_id = ?`), id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM test_questions WHERE test_id = ?`), id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM tests WHERE id = ?`), id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return entity.ErrTestNotFound
		}
		return nil
	})
}

func (r *testRepository) AddQuestion(ctx context.Context, question *entity.TestQuestion) (*entity.TestQuestion, error) {
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO test_questions (test_id, word_id, type, prompt, options, correct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		question.TestID, question.WordID, string(question.Type), question.Prompt,
		encodeOptions(question.Options), question.Correct)
	if err != nil {
		return nil, err
	}
	return r.getQuestion(ctx, id)
}

func (r *testRepository) UpdateQuestion(ctx context.Context, question *entity.TestQuestion) (*entity.TestQuestion, error) {
	query := r.db.Rebind(`
		UPDATE test_questions
		SET word_id = ?, type = ?, prompt = ?, options = ?, correct = ?
		WHERE id = ? AND test_id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		question.WordID, string(question.Type), question.Prompt,
		encodeOptions(question.Options), question.Correct, question.ID, question.TestID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, entity.ErrQuestionMismatch
	}
	return r.getQuestion(ctx, question.ID)
}

func (r *testRepository) DeleteQuestion(ctx context.Context, testID, questionID int64) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM test_questions WHERE id = ? AND test_id = ?`), questionID, testID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrQuestionMismatch
	}
	return nil
}

func (r *testRepository) getQuestion(ctx context.Context, id int64) (*entity.TestQuestion, error) {
	var row testQuestionRow
	query := r.db.Rebind(`SELECT * FROM test_questions WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrQuestionMismatch)
	}
	question := row.toEntity()
	return &question, nil
}

func (r *testRepository) CreateRecord(ctx context.Context, record *entity.TestRecord) (*entity.TestRecord, error) {
	var id int64
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		id, err = insertReturningID(ctx, tx, `
			INSERT INTO test_records
				(test_id, user_id, score, correct_count, total_count, is_passed, time_spent, completed_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.TestID, record.UserID, record.Score, record.CorrectCount, record.TotalCount,
			record.IsPassed, record.TimeSpent, record.CompletedAt, record.CreatedAt)
		if err != nil {
			return err
		}
		for _, a := range record.Answers {
			if _, err := insertReturningID(ctx, tx, `
				INSERT INTO test_answers (record_id, question_id, answer, is_correct)
				VALUES (?, ?, ?, ?)`,
				id, a.QuestionID, a.Answer, a.IsCorrect); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.getRecord(ctx, id)
}

func (r *testRepository) getRecord(ctx context.Context, id int64) (*entity.TestRecord, error) {
	var row testRecordRow
	query := r.db.Rebind(`SELECT * FROM test_records WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrTestRecordNotFound)
	}
	record := row.toEntity()

	var arows []testAnswerRow
	aquery := r.db.Rebind(`SELECT * FROM test_answers WHERE record_id = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &arows, aquery, id); err != nil {
		return nil, err
	}
	record.Answers = make([]entity.TestAnswerResult, 0, len(arows))
	for _, a := range arows {
		record.Answers = append(record.Answers, entity.TestAnswerResult{
			ID:         a.ID,
			RecordID:   a.RecordID,
			QuestionID: a.QuestionID,
			Answer:     a.Answer,
			IsCorrect:  a.IsCorrect,
		})
	}
	return &record, nil
}

func (r *testRepository) ListRecords(ctx context.Context, userID, testID int64, page repository.Pagination) ([]entity.TestRecord, int64, error) {
	where := ` WHERE user_id = ?`
	args := []any{userID}
	if testID != 0 {
		where += ` AND test_id = ?`
		args = append(args, testID)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM test_records`+where), args...); err != nil {
		return nil, 0, err
	}

	var rows []testRecordRow
	query := r.db.Rebind(`SELECT * FROM test_records` + where + ` ORDER BY completed_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, query, append(args, page.PageSize, page.Offset())...); err != nil {
		return nil, 0, err
	}
	records := make([]entity.TestRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}
	return records, total, nil
}

func (r *testRepository) RecordAggregate(ctx context.Context, userID int64) (*repository.TestRecordAggregate, error) {
	var row struct {
		Attempts   int     `db:"attempts"`
		Passed     int     `db:"passed"`
		Correct    int     `db:"correct"`
		Answered   int     `db:"answered"`
		ScoreTotal float64 `db:"score_total"`
	}
	query := r.db.Rebind(`
		SELECT COUNT(*) AS attempts,
			COALESCE(SUM(CASE WHEN is_passed THEN 1 ELSE 0 END), 0) AS passed,
			COALESCE(SUM(correct_count), 0) AS correct,
			COALESCE(SUM(total_count), 0) AS answered,
			COALESCE(SUM(score), 0) AS score_total
		FROM test_records WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, err
	}
	return &repository.TestRecordAggregate{
		Attempts:   row.Attempts,
		Passed:     row.Passed,
		Correct:    row.Correct,
		Answered:   row.Answered,
		ScoreTotal: row.ScoreTotal,
	}, nil
}
