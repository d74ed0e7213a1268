package repository

import (
	"context"

	"github.com/lexloop/lexloop/internal/entity"
)

// TestRecordAggregate summarizes every attempt a user has made across all
// tests.
type TestRecordAggregate struct {
	Attempts   int
	Passed     int
	Correct    int
	Answered   int
	ScoreTotal float64
}

// ListTestQuery holds parameters for listing a user's tests.
type ListTestQuery struct {
	Pagination

	UserID int64
	BookID int64 // 0 means all books
}

// TestRepository abstracts persistence for tests and their attempts.
// Questions are stored with the test and come back fully loaded from GetByID.
type TestRepository interface {
	Create(ctx context.Context, test *entity.Test) (*entity.Test, error)
	Update(ctx context.Context, test *entity.Test) (*entity.Test, error)
	GetByID(ctx context.Context, id int64) (*entity.Test, error)
	List(ctx context.Context, query *ListTestQuery) ([]entity.Test, int64, error)
	Delete(ctx context.Context, id int64) error

	AddQuestion(ctx context.Context, question *entity.TestQuestion) (*entity.TestQuestion, error)
	UpdateQuestion(ctx context.Context, question *entity.TestQuestion) (*entity.TestQuestion, error)
	DeleteQuestion(ctx context.Context, testID, questionID int64) error

	CreateRecord(ctx context.Context, record *entity.TestRecord) (*entity.TestRecord, error)
	// ListRecords returns a user's attempts, newest first. testID 0 means all
	// tests.
	ListRecords(ctx context.Context, userID, testID int64, page Pagination) ([]entity.TestRecord, int64, error)
	// RecordAggregate rolls up all of a user's attempts without paging.
	RecordAggregate(ctx context.Context, userID int64) (*TestRecordAggregate, error)
}
