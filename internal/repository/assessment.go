package repository

import (
	"context"

	"github.com/lexloop/lexloop/internal/entity"
)

// AssessmentRepository abstracts persistence for placement assessments.
// Implementations store questions alongside the assessment and return them
// fully loaded from GetByID.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *entity.Assessment) (*entity.Assessment, error)
	Update(ctx context.Context, assessment *entity.Assessment) (*entity.Assessment, error)
	GetByID(ctx context.Context, id int64) (*entity.Assessment, error)
	// ListCompleted returns the user's completed assessments, newest first.
	ListCompleted(ctx context.Context, userID int64, page Pagination) ([]entity.Assessment, int64, error)
}
