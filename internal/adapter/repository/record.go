package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

type recordRow struct {
	ID             int64        `db:"id"`
	UserID         int64        `db:"user_id"`
	BookID         int64        `db:"book_id"`
	WordID         int64        `db:"word_id"`
	Status         string       `db:"status"`
	ReviewCount    int          `db:"review_count"`
	MasteryLevel   float64      `db:"mastery_level"`
	StudyTime      float64      `db:"study_time"`
	SessionStart   sql.NullTime `db:"session_start"`
	LastReviewTime sql.NullTime `db:"last_review_time"`
	NextReviewTime sql.NullTime `db:"next_review_time"`
	CreatedAt      sql.NullTime `db:"created_at"`
	UpdatedAt      sql.NullTime `db:"updated_at"`
}

func (r recordRow) toEntity() entity.LearningRecord {
	return entity.LearningRecord{
		ID:             r.ID,
		UserID:         r.UserID,
		BookID:         r.BookID,
		WordID:         r.WordID,
		Status:         entity.RecordStatus(r.Status),
		ReviewCount:    r.ReviewCount,
		MasteryLevel:   r.MasteryLevel,
		StudyTime:      r.StudyTime,
		SessionStart:   timePtr(r.SessionStart),
		LastReviewTime: timePtr(r.LastReviewTime),
		NextReviewTime: timePtr(r.NextReviewTime),
		CreatedAt:      r.CreatedAt.Time,
		UpdatedAt:      r.UpdatedAt.Time,
	}
}

type recordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository builds the sqlx-backed learning record store.
func NewRecordRepository(db *sqlx.DB) repository.RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record *entity.LearningRecord) (*entity.LearningRecord, error) {
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO learning_records
			(user_id, book_id, word_id, status, review_count, mastery_level, study_time,
			 session_start, last_review_time, next_review_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.UserID, record.BookID, record.WordID, string(record.Status),
		record.ReviewCount, record.MasteryLevel, record.StudyTime,
		nullTime(record.SessionStart), nullTime(record.LastReviewTime), nullTime(record.NextReviewTime),
		record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return nil, conflictOr(err, entity.ErrConflict)
	}
	return r.GetByID(ctx, id)
}

func (r *recordRepository) Update(ctx context.Context, record *entity.LearningRecord) (*entity.LearningRecord, error) {
	query := r.db.Rebind(`
		UPDATE learning_records
		SET status = ?, review_count = ?, mastery_level = ?, study_time = ?,
			session_start = ?, last_review_time = ?, next_review_time = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		string(record.Status), record.ReviewCount, record.MasteryLevel, record.StudyTime,
		nullTime(record.SessionStart), nullTime(record.LastReviewTime), nullTime(record.NextReviewTime),
		record.UpdatedAt, record.ID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *recordRepository) GetByID(ctx context.Context, id int64) (*entity.LearningRecord, error) {
	var row recordRow
	query := r.db.Rebind(`SELECT * FROM learning_records WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrRecordNotFound)
	}
	record := row.toEntity()
	return &record, nil
}

func (r *recordRepository) Find(ctx context.Context, userID, bookID, wordID int64) (*entity.LearningRecord, error) {
	var row recordRow
	query := r.db.Rebind(`SELECT * FROM learning_records WHERE user_id = ? AND book_id = ? AND word_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID, bookID, wordID); err != nil {
		return nil, notFound(err, entity.ErrRecordNotFound)
	}
	record := row.toEntity()
	return &record, nil
}

func (r *recordRepository) List(ctx context.Context, query *repository.ListRecordQuery) ([]entity.LearningRecord, int64, error) {
	conds := []string{"user_id = ?"}
	args := []any{query.UserID}
	if query.BookID != 0 {
		conds = append(conds, "book_id = ?")
		args = append(args, query.BookID)
	}
	if query.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(query.Status))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM learning_records`+where), args...); err != nil {
		return nil, 0, err
	}

	var rows []recordRow
	listQuery := r.db.Rebind(`SELECT * FROM learning_records` + where + ` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, listQuery, append(args, query.PageSize, query.Offset())...); err != nil {
		return nil, 0, err
	}
	records := make([]entity.LearningRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}
	return records, total, nil
}

func (r *recordRepository) ListDue(ctx context.Context, userID int64, due time.Time, limit int) ([]entity.LearningRecord, error) {
	var rows []recordRow
	query := r.db.Rebind(`
		SELECT * FROM learning_records
		WHERE user_id = ? AND status = ? AND next_review_time IS NOT NULL AND next_review_time <= ?
		ORDER BY next_review_time
		LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, userID, string(entity.StatusLearning), due, limit); err != nil {
		return nil, err
	}
	records := make([]entity.LearningRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}
	return records, nil
}

func (r *recordRepository) LearnedWordIDs(ctx context.Context, userID, bookID int64) ([]int64, error) {
	var ids []int64
	query := r.db.Rebind(`SELECT word_id FROM learning_records WHERE user_id = ? AND book_id = ?`)
	if err := r.db.SelectContext(ctx, &ids, query, userID, bookID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *recordRepository) CountByStatus(ctx context.Context, userID, bookID int64) (map[entity.RecordStatus]int, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID}
	if bookID != 0 {
		conds = append(conds, "book_id = ?")
		args = append(args, bookID)
	}
	query := r.db.Rebind(`SELECT status, COUNT(*) AS n FROM learning_records WHERE ` +
		strings.Join(conds, " AND ") + ` GROUP BY status`)

	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	counts := make(map[entity.RecordStatus]int, len(rows))
	for _, row := range rows {
		counts[entity.RecordStatus(row.Status)] = row.N
	}
	return counts, nil
}

func (r *recordRepository) CountCreated(ctx context.Context, userID, bookID int64, from, to time.Time) (int, error) {
	conds := []string{"user_id = ?", "created_at >= ?", "created_at < ?"}
	args := []any{userID, from, to}
	if bookID != 0 {
		conds = append(conds, "book_id = ?")
		args = append(args, bookID)
	}
	query := r.db.Rebind(`SELECT COUNT(*) FROM learning_records WHERE ` +
		strings.Join(conds, " AND "))
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *recordRepository) SumStudyTime(ctx context.Context, userID, bookID int64) (float64, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID}
	if bookID != 0 {
		conds = append(conds, "book_id = ?")
		args = append(args, bookID)
	}
	query := r.db.Rebind(`SELECT COALESCE(SUM(study_time), 0) FROM learning_records WHERE ` +
		strings.Join(conds, " AND "))
	var total float64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *recordRepository) Statistics(ctx context.Context, userID int64) (*entity.RecordStatistics, error) {
	var row struct {
		Total     int             `db:"total"`
		Learning  int             `db:"learning"`
		Reviewing int             `db:"reviewing"`
		Mastered  int             `db:"mastered"`
		Mastery   sql.NullFloat64 `db:"mastery"`
	}
	query := r.db.Rebind(`
		SELECT COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'learning' THEN 1 ELSE 0 END), 0) AS learning,
			COALESCE(SUM(CASE WHEN status = 'reviewing' THEN 1 ELSE 0 END), 0) AS reviewing,
			COALESCE(SUM(CASE WHEN status = 'mastered' THEN 1 ELSE 0 END), 0) AS mastered,
			AVG(mastery_level) AS mastery
		FROM learning_records WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, err
	}
	return &entity.RecordStatistics{
		Total:          row.Total,
		Learning:       row.Learning,
		Reviewing:      row.Reviewing,
		Mastered:       row.Mastered,
		AverageMastery: row.Mastery.Float64,
	}, nil
}

func (r *recordRepository) StudyDays(ctx context.Context, userID int64, loc *time.Location) ([]time.Time, error) {
	var stamps []time.Time
	query := r.db.Rebind(`SELECT created_at FROM learning_records WHERE user_id = ?`)
	if err := r.db.SelectContext(ctx, &stamps, query, userID); err != nil {
		return nil, err
	}

	// Collapse to distinct local days in Go; day truncation syntax differs
	// too much between the supported drivers.
	seen := make(map[string]time.Time, len(stamps))
	for _, ts := range stamps {
		day := ts.In(loc)
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		seen[day.Format("2006-01-02")] = day
	}
	days := make([]time.Time, 0, len(seen))
	for _, day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days, nil
}
