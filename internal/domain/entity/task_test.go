package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskLifecycle(t *testing.T) {
	task := NewTask("capture.mp4", "uploads/abc.mp4", 1024, 3)
	require.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, 0, task.Attempt)
	assert.True(t, task.CanRetry())
	assert.NotEqual(t, "", task.ID.String())

	task.MarkProcessing()
	assert.Equal(t, TaskStatusProcessing, task.Status)
	assert.Equal(t, 1, task.Attempt)

	task.MarkCompleted("results/abc.jpg", 1, 42, 3200)
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.Equal(t, "results/abc.jpg", task.ResultKey)
	assert.Equal(t, 42, task.FrameCount)
	assert.Equal(t, 3200, task.CanvasHeight)
	require.NotNil(t, task.CompletedAt)
}

func TestTaskRetryExhaustion(t *testing.T) {
	task := NewTask("capture.mp4", "uploads/abc.mp4", 1024, 2)

	task.MarkProcessing()
	task.MarkFailed("decode failed")
	assert.Equal(t, TaskStatusFailed, task.Status)
	assert.True(t, task.CanRetry())

	task.MarkProcessing()
	task.MarkFailed("decode failed")
	assert.False(t, task.CanRetry())
	assert.Equal(t, "decode failed", task.ErrorMessage)
}

func TestCompletedClearsError(t *testing.T) {
	task := NewTask("capture.mp4", "uploads/abc.mp4", 1024, 3)
	task.MarkProcessing()
	task.MarkFailed("transient")
	task.MarkProcessing()
	task.MarkCompleted("results/abc.jpg", 2, 10, 900)
	assert.Empty(t, task.ErrorMessage)
}
