package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

type planRow struct {
	ID            int64        `db:"id"`
	UserID        int64        `db:"user_id"`
	BookID        int64        `db:"book_id"`
	WordID        int64        `db:"word_id"`
	ScheduledTime sql.NullTime `db:"scheduled_time"`
	Status        string       `db:"status"`
	CompletedAt   sql.NullTime `db:"completed_at"`
	CreatedAt     sql.NullTime `db:"created_at"`
	UpdatedAt     sql.NullTime `db:"updated_at"`
}

func (r planRow) toEntity() entity.ReviewPlan {
	return entity.ReviewPlan{
		ID:            r.ID,
		UserID:        r.UserID,
		BookID:        r.BookID,
		WordID:        r.WordID,
		ScheduledTime: r.ScheduledTime.Time,
		Status:        entity.PlanStatus(r.Status),
		CompletedAt:   timePtr(r.CompletedAt),
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

type planRepository struct {
	db *sqlx.DB
}

// NewPlanRepository builds the sqlx-backed review plan store.
func NewPlanRepository(db *sqlx.DB) repository.PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) CreateBatch(ctx context.Context, plans []entity.ReviewPlan) ([]entity.ReviewPlan, error) {
	out := make([]entity.ReviewPlan, 0, len(plans))
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, plan := range plans {
			id, err := insertReturningID(ctx, tx, `
				INSERT INTO review_plans (user_id, book_id, word_id, scheduled_time, status, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				plan.UserID, plan.BookID, plan.WordID, plan.ScheduledTime,
				string(plan.Status), plan.CreatedAt, plan.UpdatedAt)
			if err != nil {
				return err
			}
			plan.ID = id
			out = append(out, plan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planRepository) Update(ctx context.Context, plan *entity.ReviewPlan) (*entity.ReviewPlan, error) {
	query := r.db.Rebind(`
		UPDATE review_plans
		SET scheduled_time = ?, status = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		plan.ScheduledTime, string(plan.Status), nullTime(plan.CompletedAt),
		plan.UpdatedAt, plan.ID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, plan.ID)
}

func (r *planRepository) GetByID(ctx context.Context, id int64) (*entity.ReviewPlan, error) {
	var row planRow
	query := r.db.Rebind(`SELECT * FROM review_plans WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrPlanNotFound)
	}
	plan := row.toEntity()
	return &plan, nil
}

func (r *planRepository) List(ctx context.Context, query *repository.ListPlanQuery) ([]entity.ReviewPlan, int64, error) {
	conds := []string{"user_id = ?"}
	args := []any{query.UserID}
	if query.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(query.Status))
	}
	if query.Date != nil {
		dayStart := time.Date(query.Date.Year(), query.Date.Month(), query.Date.Day(), 0, 0, 0, 0, query.Date.Location())
		conds = append(conds, "scheduled_time >= ?", "scheduled_time < ?")
		args = append(args, dayStart, dayStart.AddDate(0, 0, 1))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM review_plans`+where), args...); err != nil {
		return nil, 0, err
	}

	var rows []planRow
	listQuery := r.db.Rebind(`SELECT * FROM review_plans` + where + ` ORDER BY scheduled_time, id LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, listQuery, append(args, query.PageSize, query.Offset())...); err != nil {
		return nil, 0, err
	}
	plans := make([]entity.ReviewPlan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, row.toEntity())
	}
	return plans, total, nil
}

func (r *planRepository) ExistsPending(ctx context.Context, userID, wordID int64, day time.Time) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM review_plans WHERE user_id = ? AND word_id = ? AND status = ?`)
	if err := r.db.GetContext(ctx, &count, query, userID, wordID, string(entity.PlanPending)); err != nil {
		return false, err
	}
	return count > 0, nil
}

type goalRow struct {
	ID         int64        `db:"id"`
	UserID     int64        `db:"user_id"`
	BookID     int64        `db:"book_id"`
	DailyWords int          `db:"daily_words"`
	TargetDate sql.NullTime `db:"target_date"`
	Status     string       `db:"status"`
	CreatedAt  sql.NullTime `db:"created_at"`
	UpdatedAt  sql.NullTime `db:"updated_at"`
}

func (r goalRow) toEntity() entity.LearningGoal {
	return entity.LearningGoal{
		ID:         r.ID,
		UserID:     r.UserID,
		BookID:     r.BookID,
		DailyWords: r.DailyWords,
		TargetDate: r.TargetDate.Time,
		Status:     entity.GoalStatus(r.Status),
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

type goalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository builds the sqlx-backed learning goal store.
func NewGoalRepository(db *sqlx.DB) repository.GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *entity.LearningGoal) (*entity.LearningGoal, error) {
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO learning_goals (user_id, book_id, daily_words, target_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		goal.UserID, goal.BookID, goal.DailyWords, goal.TargetDate,
		string(goal.Status), goal.CreatedAt, goal.UpdatedAt)
	if err != nil {
		return nil, conflictOr(err, entity.ErrGoalExists)
	}
	return r.get(ctx, id)
}

func (r *goalRepository) Update(ctx context.Context, goal *entity.LearningGoal) (*entity.LearningGoal, error) {
	query := r.db.Rebind(`
		UPDATE learning_goals
		SET daily_words = ?, target_date = ?, status = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		goal.DailyWords, goal.TargetDate, string(goal.Status), goal.UpdatedAt, goal.ID); err != nil {
		return nil, err
	}
	return r.get(ctx, goal.ID)
}

func (r *goalRepository) get(ctx context.Context, id int64) (*entity.LearningGoal, error) {
	var row goalRow
	query := r.db.Rebind(`SELECT * FROM learning_goals WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrGoalNotFound)
	}
	goal := row.toEntity()
	return &goal, nil
}

func (r *goalRepository) FindActive(ctx context.Context, userID, bookID int64) (*entity.LearningGoal, error) {
	var row goalRow
	query := r.db.Rebind(`SELECT * FROM learning_goals WHERE user_id = ? AND book_id = ? AND status = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID, bookID, string(entity.GoalActive)); err != nil {
		return nil, notFound(err, entity.ErrGoalNotFound)
	}
	goal := row.toEntity()
	return &goal, nil
}

func (r *goalRepository) ListActive(ctx context.Context, userID int64) ([]entity.LearningGoal, error) {
	var rows []goalRow
	query := r.db.Rebind(`SELECT * FROM learning_goals WHERE user_id = ? AND status = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &rows, query, userID, string(entity.GoalActive)); err != nil {
		return nil, err
	}
	goals := make([]entity.LearningGoal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, row.toEntity())
	}
	return goals, nil
}

type learningPlanRow struct {
	ID         int64        `db:"id"`
	UserID     int64        `db:"user_id"`
	BookID     int64        `db:"book_id"`
	DailyWords int          `db:"daily_words"`
	StartDate  sql.NullTime `db:"start_date"`
	EndDate    sql.NullTime `db:"end_date"`
	Status     string       `db:"status"`
	CreatedAt  sql.NullTime `db:"created_at"`
	UpdatedAt  sql.NullTime `db:"updated_at"`
}

func (r learningPlanRow) toEntity() entity.LearningPlan {
	return entity.LearningPlan{
		ID:         r.ID,
		UserID:     r.UserID,
		BookID:     r.BookID,
		DailyWords: r.DailyWords,
		StartDate:  r.StartDate.Time,
		EndDate:    r.EndDate.Time,
		Status:     entity.GoalStatus(r.Status),
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

type learningPlanRepository struct {
	db *sqlx.DB
}

// NewLearningPlanRepository builds the sqlx-backed learning plan store.
func NewLearningPlanRepository(db *sqlx.DB) repository.LearningPlanRepository {
	return &learningPlanRepository{db: db}
}

func (r *learningPlanRepository) Create(ctx context.Context, plan *entity.LearningPlan) (*entity.LearningPlan, error) {
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO learning_plans (user_id, book_id, daily_words, start_date, end_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.UserID, plan.BookID, plan.DailyWords, plan.StartDate, plan.EndDate,
		string(plan.Status), plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		return nil, conflictOr(err, entity.ErrLearningPlanExists)
	}
	return r.get(ctx, id)
}

func (r *learningPlanRepository) Update(ctx context.Context, plan *entity.LearningPlan) (*entity.LearningPlan, error) {
	query := r.db.Rebind(`
		UPDATE learning_plans
		SET daily_words = ?, start_date = ?, end_date = ?, status = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		plan.DailyWords, plan.StartDate, plan.EndDate, string(plan.Status),
		plan.UpdatedAt, plan.ID); err != nil {
		return nil, err
	}
	return r.get(ctx, plan.ID)
}

func (r *learningPlanRepository) get(ctx context.Context, id int64) (*entity.LearningPlan, error) {
	var row learningPlanRow
	query := r.db.Rebind(`SELECT * FROM learning_plans WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrLearningPlanMissing)
	}
	plan := row.toEntity()
	return &plan, nil
}

func (r *learningPlanRepository) FindActive(ctx context.Context, userID, bookID int64) (*entity.LearningPlan, error) {
	var row learningPlanRow
	query := r.db.Rebind(`SELECT * FROM learning_plans WHERE user_id = ? AND book_id = ? AND status = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID, bookID, string(entity.GoalActive)); err != nil {
		return nil, notFound(err, entity.ErrLearningPlanMissing)
	}
	plan := row.toEntity()
	return &plan, nil
}
