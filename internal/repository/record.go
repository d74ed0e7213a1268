package repository

import (
	"context"
	"time"

	"github.com/lexloop/lexloop/internal/entity"
)

// ListRecordQuery holds parameters for listing learning records.
type ListRecordQuery struct {
	Pagination

	UserID int64
	BookID int64 // 0 means all books
	Status entity.RecordStatus
}

// RecordRepository abstracts persistence for learning records.
type RecordRepository interface {
	Create(ctx context.Context, record *entity.LearningRecord) (*entity.LearningRecord, error)
	Update(ctx context.Context, record *entity.LearningRecord) (*entity.LearningRecord, error)
	GetByID(ctx context.Context, id int64) (*entity.LearningRecord, error)
	// Find returns the unique record for a (user, book, word) triple, or
	// entity.ErrRecordNotFound.
	Find(ctx context.Context, userID, bookID, wordID int64) (*entity.LearningRecord, error)
	List(ctx context.Context, query *ListRecordQuery) ([]entity.LearningRecord, int64, error)
	// ListDue returns learning records whose next review is at or before due.
	ListDue(ctx context.Context, userID int64, due time.Time, limit int) ([]entity.LearningRecord, error)
	// LearnedWordIDs returns the word IDs the user has any record for in the
	// book, regardless of status.
	LearnedWordIDs(ctx context.Context, userID, bookID int64) ([]int64, error)
	CountByStatus(ctx context.Context, userID, bookID int64) (map[entity.RecordStatus]int, error)
	// CountCreated counts records created in the [from, to) window. bookID 0
	// means all books.
	CountCreated(ctx context.Context, userID, bookID int64, from, to time.Time) (int, error)
	// SumStudyTime totals the accumulated study seconds. bookID 0 means all
	// books.
	SumStudyTime(ctx context.Context, userID, bookID int64) (float64, error)
	Statistics(ctx context.Context, userID int64) (*entity.RecordStatistics, error)
	// StudyDays returns the distinct calendar days, newest first, on which
	// the user created learning records.
	StudyDays(ctx context.Context, userID int64, loc *time.Location) ([]time.Time, error)
}
