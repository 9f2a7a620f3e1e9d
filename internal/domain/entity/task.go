package entity

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task is one screen-recording-to-screenshot conversion tracked in the
// record store.
type Task struct {
	ID            uuid.UUID
	Status        TaskStatus
	FileName      string
	FileSizeBytes int64
	VideoKey      string
	ResultKey     string
	PageCount     int
	FrameCount    int
	CanvasHeight  int
	Attempt       int
	MaxAttempts   int
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

func NewTask(fileName, videoKey string, fileSize int64, maxAttempts int) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:            uuid.New(),
		Status:        TaskStatusPending,
		FileName:      fileName,
		FileSizeBytes: fileSize,
		VideoKey:      videoKey,
		Attempt:       0,
		MaxAttempts:   maxAttempts,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (t *Task) MarkProcessing() {
	t.Status = TaskStatusProcessing
	t.Attempt++
	t.UpdatedAt = time.Now().UTC()
}

func (t *Task) MarkCompleted(resultKey string, pageCount, frameCount, canvasHeight int) {
	now := time.Now().UTC()
	t.Status = TaskStatusCompleted
	t.ResultKey = resultKey
	t.PageCount = pageCount
	t.FrameCount = frameCount
	t.CanvasHeight = canvasHeight
	t.ErrorMessage = ""
	t.UpdatedAt = now
	t.CompletedAt = &now
}

func (t *Task) MarkFailed(errMsg string) {
	t.Status = TaskStatusFailed
	t.ErrorMessage = errMsg
	t.UpdatedAt = time.Now().UTC()
}

func (t *Task) CanRetry() bool {
	return t.Attempt < t.MaxAttempts
}
