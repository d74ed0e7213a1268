package repository

import (
	"context"

	"github.com/lexloop/lexloop/internal/entity"
)

// ListWordQuery holds parameters for listing dictionary words.
type ListWordQuery struct {
	Pagination
	FilterOrder
}

// WordRepository abstracts persistence for the shared dictionary.
type WordRepository interface {
	Create(ctx context.Context, word *entity.Word) (*entity.Word, error)
	Update(ctx context.Context, word *entity.Word) (*entity.Word, error)
	GetByID(ctx context.Context, id int64) (*entity.Word, error)
	GetByIDs(ctx context.Context, ids []int64) ([]entity.Word, error)
	FindByText(ctx context.Context, text string) (*entity.Word, error)
	List(ctx context.Context, query *ListWordQuery) ([]entity.Word, int64, error)
	Delete(ctx context.Context, id int64) error
}
