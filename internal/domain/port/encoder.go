package port

import (
	"context"

	"github.com/zaigie/record2screenshot/internal/stitch"
)

// ImageEncoder persists a composed canvas as one or more image files,
// splitting canvases taller than the encoder's per-file limit into
// sequentially numbered bands. When transpose is set the canvas is
// transposed back to the capture orientation before writing.
type ImageEncoder interface {
	Encode(ctx context.Context, canvas *stitch.Canvas, outputPath string, transpose bool) ([]string, error)
}
