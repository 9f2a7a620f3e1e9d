package port

import (
	"context"
	"io"
)

// ObjectStorage holds uploaded videos and finished screenshots.
type ObjectStorage interface {
	UploadVideo(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DownloadVideo(ctx context.Context, objectKey string, destPath string) error
	RemoveVideo(ctx context.Context, objectKey string) error

	UploadResult(ctx context.Context, objectKey string, filePath string, contentType string) error
	OpenResult(ctx context.Context, objectKey string) (io.ReadCloser, int64, error)
	RemoveResult(ctx context.Context, objectKey string) error
}
