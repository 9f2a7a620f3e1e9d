package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zaigie/record2screenshot/internal/domain/entity"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `
	id, status, file_name, file_size_bytes, video_key, result_key,
	page_count, frame_count, canvas_height, attempt, max_attempts,
	error_message, created_at, updated_at, completed_at`

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO tasks (
			id, status, file_name, file_size_bytes, video_key, result_key,
			page_count, frame_count, canvas_height, attempt, max_attempts,
			error_message, created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	_, err := r.pool.Exec(ctx, query,
		task.ID, string(task.Status), task.FileName, task.FileSizeBytes,
		task.VideoKey, task.ResultKey, task.PageCount, task.FrameCount,
		task.CanvasHeight, task.Attempt, task.MaxAttempts,
		task.ErrorMessage, task.CreatedAt, task.UpdatedAt, task.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	query := `
		UPDATE tasks SET
			status=$2, result_key=$3, page_count=$4, frame_count=$5,
			canvas_height=$6, attempt=$7, error_message=$8,
			updated_at=$9, completed_at=$10
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		task.ID, string(task.Status), task.ResultKey, task.PageCount,
		task.FrameCount, task.CanvasHeight, task.Attempt,
		task.ErrorMessage, task.UpdatedAt, task.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	query := `SELECT` + taskColumns + ` FROM tasks WHERE id=$1`

	task := &entity.Task{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID, &status, &task.FileName, &task.FileSizeBytes,
		&task.VideoKey, &task.ResultKey, &task.PageCount, &task.FrameCount,
		&task.CanvasHeight, &task.Attempt, &task.MaxAttempts,
		&task.ErrorMessage, &task.CreatedAt, &task.UpdatedAt, &task.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find task by id: %w", err)
	}
	task.Status = entity.TaskStatus(status)
	return task, nil
}

func (r *TaskRepository) List(ctx context.Context, page, pageSize int) ([]*entity.Task, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT` + taskColumns + `
		FROM tasks
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*entity.Task
	for rows.Next() {
		task := &entity.Task{}
		var status string
		err := rows.Scan(
			&task.ID, &status, &task.FileName, &task.FileSizeBytes,
			&task.VideoKey, &task.ResultKey, &task.PageCount, &task.FrameCount,
			&task.CanvasHeight, &task.Attempt, &task.MaxAttempts,
			&task.ErrorMessage, &task.CreatedAt, &task.UpdatedAt, &task.CompletedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		task.Status = entity.TaskStatus(status)
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
