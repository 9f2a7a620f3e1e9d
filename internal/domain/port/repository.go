package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/zaigie/record2screenshot/internal/domain/entity"
)

type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	Update(ctx context.Context, task *entity.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	List(ctx context.Context, page, pageSize int) ([]*entity.Task, int, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
