package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zaigie/record2screenshot/internal/domain/entity"
	"github.com/zaigie/record2screenshot/internal/domain/port"
	"github.com/zaigie/record2screenshot/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ConvertTaskUseCase consumes conversion requests from the queue and drives
// a task through download, conversion, upload and status reporting.
type ConvertTaskUseCase struct {
	repo      port.TaskRepository
	storage   port.ObjectStorage
	converter *Converter
	zipper    port.Zipper
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	tempDir   string
	maxRetry  int
	notifyTo  string
}

type ConvertTaskConfig struct {
	TempDir        string
	MaxRetries     int
	NotificationTo string
}

func NewConvertTaskUseCase(
	repo port.TaskRepository,
	storage port.ObjectStorage,
	converter *Converter,
	zipper port.Zipper,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ConvertTaskConfig,
) *ConvertTaskUseCase {
	return &ConvertTaskUseCase{
		repo:      repo,
		storage:   storage,
		converter: converter,
		zipper:    zipper,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		tempDir:   cfg.TempDir,
		maxRetry:  cfg.MaxRetries,
		notifyTo:  cfg.NotificationTo,
	}
}

func (uc *ConvertTaskUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ConvertTaskUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.ConversionRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("task.id", msg.TaskID.String()),
		attribute.String("task.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("task_id", msg.TaskID.String()), zap.String("video_key", msg.VideoKey))

	task, err := uc.repo.FindByID(ctx, msg.TaskID)
	if err != nil {
		task = entity.NewTask(msg.FileName, msg.VideoKey, msg.FileSize, uc.maxRetry)
		task.ID = msg.TaskID
		if err := uc.repo.Create(ctx, task); err != nil {
			log.Error("failed to create task record", zap.Error(err))
			return fmt.Errorf("create task: %w", err)
		}
	}

	if !task.CanRetry() {
		log.Warn("task exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, task, rawMsg, "max retries exceeded")
		return nil
	}

	task.MarkProcessing()
	if err := uc.repo.Update(ctx, task); err != nil {
		log.Error("failed to update task to processing", zap.Error(err))
		return fmt.Errorf("update task: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runPipeline(ctx, task, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.TasksProcessedTotal.WithLabelValues("completed").Inc()
	metrics.TaskDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *ConvertTaskUseCase) runPipeline(
	ctx context.Context,
	task *entity.Task,
	msg entity.ConversionRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, task.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download video
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(ctx2, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, task, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.TaskDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Align and splice into a screenshot
	cvStart := time.Now()
	ctx3, spanCv := tracer.Start(ctx, "convert")
	outputPath := filepath.Join(workDir, outputName(msg.FileName))
	result, err := uc.converter.Convert(ctx3, videoPath, outputPath, msg.Params)
	if err != nil {
		spanCv.End()
		log.Error("conversion failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, task, rawMsg, "convert: "+err.Error(), log)
	}
	spanCv.End()
	metrics.TaskDuration.WithLabelValues("convert").Observe(time.Since(cvStart).Seconds())
	metrics.FramesAlignedTotal.Add(float64(result.FrameCount))
	metrics.CanvasHeightPixels.Observe(float64(result.CanvasHeight))

	// Upload the result. Multi-band canvases ship as a single zip.
	upStart := time.Now()
	ctx4, spanUp := tracer.Start(ctx, "upload_result")
	resultKey, contentType, uploadPath, err := uc.prepareUpload(ctx4, task, workDir, result)
	if err != nil {
		spanUp.End()
		log.Error("result bundling failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, task, rawMsg, "bundle_result: "+err.Error(), log)
	}
	if err := uc.storage.UploadResult(ctx4, resultKey, uploadPath, contentType); err != nil {
		spanUp.End()
		log.Error("result upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, task, rawMsg, "upload_result: "+err.Error(), log)
	}
	spanUp.End()
	metrics.TaskDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	// Mark completed
	task.MarkCompleted(resultKey, len(result.OutputPaths), result.FrameCount, result.CanvasHeight)
	if err := uc.repo.Update(ctx, task); err != nil {
		log.Error("failed to update task to completed", zap.Error(err))
		return fmt.Errorf("update task completed: %w", err)
	}

	uc.publishStatus(ctx, task, log)

	log.Info("task completed successfully",
		zap.Int("frame_count", result.FrameCount),
		zap.Int("page_count", len(result.OutputPaths)),
		zap.Int("canvas_height", result.CanvasHeight),
		zap.String("result_key", resultKey),
	)

	return nil
}

// prepareUpload decides what file goes to storage: the single image for
// one-band results, a zip of all bands otherwise.
func (uc *ConvertTaskUseCase) prepareUpload(
	ctx context.Context,
	task *entity.Task,
	workDir string,
	result *ConvertResult,
) (resultKey, contentType, uploadPath string, err error) {
	if len(result.OutputPaths) == 1 {
		uploadPath = result.OutputPaths[0]
		resultKey = fmt.Sprintf("%s/%s", task.ID.String(), filepath.Base(uploadPath))
		return resultKey, "image/jpeg", uploadPath, nil
	}

	uploadPath = filepath.Join(workDir, "screenshot.zip")
	if err := uc.zipper.CreateZip(ctx, result.OutputPaths, uploadPath); err != nil {
		return "", "", "", err
	}
	resultKey = fmt.Sprintf("%s/screenshot.zip", task.ID.String())
	return resultKey, "application/zip", uploadPath, nil
}

func (uc *ConvertTaskUseCase) handleRetryableFailure(
	ctx context.Context,
	task *entity.Task,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	task.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, task)

	if !task.CanRetry() {
		return uc.handlePermanentFailure(ctx, task, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(task.Attempt)).Inc()
	uc.publishStatus(ctx, task, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", task.Attempt, task.MaxAttempts, errMsg)
}

func (uc *ConvertTaskUseCase) handlePermanentFailure(
	ctx context.Context,
	task *entity.Task,
	rawMsg []byte,
	errMsg string,
) error {
	task.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, task)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, task, uc.logger)

	metrics.TasksProcessedTotal.WithLabelValues("dlq").Inc()

	if uc.notifyTo != "" {
		_ = uc.notifier.NotifyFailure(ctx, uc.notifyTo, task.ID.String(), task.FileName, errMsg)
	}

	return nil
}

func (uc *ConvertTaskUseCase) publishStatus(ctx context.Context, task *entity.Task, log *zap.Logger) {
	statusMsg := entity.ConversionStatusMessage{
		TaskID:       task.ID,
		Status:       task.Status,
		VideoKey:     task.VideoKey,
		ResultKey:    task.ResultKey,
		PageCount:    task.PageCount,
		FrameCount:   task.FrameCount,
		CanvasHeight: task.CanvasHeight,
		ErrorMessage: task.ErrorMessage,
		Attempt:      task.Attempt,
		MaxAttempts:  task.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}

func outputName(fileName string) string {
	base := filepath.Base(fileName)
	ext := filepath.Ext(base)
	if name := strings.TrimSuffix(base, ext); name != "" {
		return name + ".jpg"
	}
	return "screenshot.jpg"
}
