package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/zaigie/record2screenshot/internal/domain/entity"
	"github.com/zaigie/record2screenshot/internal/domain/port"
	"go.uber.org/zap"
)

var allowedVideoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

type Handler struct {
	repo          port.TaskRepository
	storage       port.ObjectStorage
	publisher     port.ConversionPublisher
	logger        *zap.Logger
	maxUploadSize int64
	maxRetries    int
}

type HandlerConfig struct {
	MaxUploadSizeMB int
	MaxRetries      int
}

func NewHandler(
	repo port.TaskRepository,
	storage port.ObjectStorage,
	publisher port.ConversionPublisher,
	logger *zap.Logger,
	cfg HandlerConfig,
) *Handler {
	return &Handler{
		repo:          repo,
		storage:       storage,
		publisher:     publisher,
		logger:        logger,
		maxUploadSize: int64(cfg.MaxUploadSizeMB) << 20,
		maxRetries:    cfg.MaxRetries,
	}
}

type uploadResponse struct {
	TaskID   uuid.UUID         `json:"task_id"`
	Status   entity.TaskStatus `json:"status"`
	VideoKey string            `json:"video_key"`
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed multipart body")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing video file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedVideoExts[ext] {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported video extension %q", ext))
		return
	}

	params, err := parseConvertParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task := entity.NewTask(header.Filename, "", header.Size, h.maxRetries)
	task.VideoKey = fmt.Sprintf("%s/%s", task.ID.String(), filepath.Base(header.Filename))

	ctx := r.Context()
	contentType := header.Header.Get("Content-Type")
	if err := h.storage.UploadVideo(ctx, task.VideoKey, file, header.Size, contentType); err != nil {
		h.logger.Error("video upload to storage failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to store video")
		return
	}

	if err := h.repo.Create(ctx, task); err != nil {
		h.logger.Error("task insert failed", zap.Error(err))
		h.discardUpload(ctx, task.VideoKey)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	msg := entity.ConversionRequestMessage{
		TaskID:   task.ID,
		VideoKey: task.VideoKey,
		FileName: task.FileName,
		FileSize: task.FileSizeBytes,
		Params:   params,
	}
	body, _ := json.Marshal(msg)
	if err := h.publisher.PublishConversion(ctx, body); err != nil {
		h.logger.Error("conversion publish failed", zap.Error(err), zap.String("task_id", task.ID.String()))
		h.discardUpload(ctx, task.VideoKey)
		if _, err := h.repo.Delete(ctx, task.ID); err != nil {
			h.logger.Warn("orphaned task cleanup failed", zap.Error(err), zap.String("task_id", task.ID.String()))
		}
		writeError(w, http.StatusBadGateway, "failed to enqueue conversion")
		return
	}

	h.logger.Info("task accepted",
		zap.String("task_id", task.ID.String()),
		zap.String("file_name", task.FileName),
		zap.Int64("size_bytes", task.FileSizeBytes),
	)

	writeJSON(w, http.StatusAccepted, uploadResponse{
		TaskID:   task.ID,
		Status:   task.Status,
		VideoKey: task.VideoKey,
	})
}

type taskResponse struct {
	TaskID       uuid.UUID         `json:"task_id"`
	Status       entity.TaskStatus `json:"status"`
	FileName     string            `json:"file_name"`
	ResultKey    string            `json:"result_key,omitempty"`
	PageCount    int               `json:"page_count,omitempty"`
	FrameCount   int               `json:"frame_count,omitempty"`
	CanvasHeight int               `json:"canvas_height,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Attempt      int               `json:"attempt"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

func toTaskResponse(t *entity.Task) taskResponse {
	return taskResponse{
		TaskID:       t.ID,
		Status:       t.Status,
		FileName:     t.FileName,
		ResultKey:    t.ResultKey,
		PageCount:    t.PageCount,
		FrameCount:   t.FrameCount,
		CanvasHeight: t.CanvasHeight,
		ErrorMessage: t.ErrorMessage,
		Attempt:      t.Attempt,
		CreatedAt:    t.CreatedAt,
		CompletedAt:  t.CompletedAt,
	}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if task.Status != entity.TaskStatusCompleted {
		writeError(w, http.StatusConflict, fmt.Sprintf("task is %s, result not available", task.Status))
		return
	}

	reader, size, err := h.storage.OpenResult(r.Context(), task.ResultKey)
	if err != nil {
		h.logger.Error("result open failed", zap.Error(err), zap.String("result_key", task.ResultKey))
		writeError(w, http.StatusBadGateway, "failed to open result")
		return
	}
	defer reader.Close()

	name := filepath.Base(task.ResultKey)
	contentType := "image/jpeg"
	if strings.HasSuffix(name, ".zip") {
		contentType = "application/zip"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("result stream interrupted", zap.Error(err), zap.String("task_id", id.String()))
	}
}

type listResponse struct {
	Tasks    []taskResponse `json:"tasks"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	tasks, total, err := h.repo.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("task list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	resp := listResponse{
		Tasks:    make([]taskResponse, 0, len(tasks)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	task, err := h.repo.FindByID(ctx, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if task.VideoKey != "" {
		if err := h.storage.RemoveVideo(ctx, task.VideoKey); err != nil {
			h.logger.Warn("video removal failed", zap.Error(err), zap.String("video_key", task.VideoKey))
		}
	}
	if task.ResultKey != "" {
		if err := h.storage.RemoveResult(ctx, task.ResultKey); err != nil {
			h.logger.Warn("result removal failed", zap.Error(err), zap.String("result_key", task.ResultKey))
		}
	}

	deleted, err := h.repo.Delete(ctx, id)
	if err != nil {
		h.logger.Error("task delete failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// discardUpload removes a stored video whose task never made it into the
// pipeline, so a failed accept leaves nothing behind in the bucket.
func (h *Handler) discardUpload(ctx context.Context, videoKey string) {
	if err := h.storage.RemoveVideo(ctx, videoKey); err != nil {
		h.logger.Warn("orphaned video cleanup failed", zap.Error(err), zap.String("video_key", videoKey))
	}
}

func taskIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return uuid.Nil, false
	}
	return id, true
}

// parseConvertParams reads the tuning knobs off the multipart form, keeping
// the defaults for fields that are absent.
func parseConvertParams(r *http.Request) (entity.ConvertParams, error) {
	params := entity.DefaultConvertParams()

	fields := map[string]*float64{
		"crop_top":      &params.CropTop,
		"crop_bottom":   &params.CropBottom,
		"expect_offset": &params.ExpectOffset,
		"min_overlap":   &params.MinOverlap,
		"approx_diff":   &params.ApproxDiff,
	}
	for name, dst := range fields {
		raw := r.FormValue(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return params, fmt.Errorf("invalid %s value %q", name, raw)
		}
		*dst = v
	}

	if raw := r.FormValue("transpose"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return params, fmt.Errorf("invalid transpose value %q", raw)
		}
		params.Transpose = v
	}
	if raw := r.FormValue("seam_width"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return params, fmt.Errorf("invalid seam_width value %q", raw)
		}
		params.SeamWidth = v
	}
	return params, nil
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
