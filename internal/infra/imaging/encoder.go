package imaging

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	imglib "github.com/disintegration/imaging"
	"github.com/zaigie/record2screenshot/internal/stitch"
	"go.uber.org/zap"
)

// Encoder writes composed canvases to disk as JPEG files. Canvases taller
// than maxHeight are split into contiguous horizontal bands named
// name.jpg, name_1.jpg, ... so each stays within the format's row limit.
type Encoder struct {
	maxHeight int
	quality   int
	logger    *zap.Logger
}

// defaultMaxHeight is the JPEG row limit used when no positive band limit
// is configured.
const defaultMaxHeight = 65000

func NewEncoder(maxHeight, quality int, logger *zap.Logger) *Encoder {
	if maxHeight < 1 {
		maxHeight = defaultMaxHeight
	}
	return &Encoder{maxHeight: maxHeight, quality: quality, logger: logger}
}

func (e *Encoder) Encode(ctx context.Context, canvas *stitch.Canvas, outputPath string, transpose bool) ([]string, error) {
	var img image.Image = canvasImage(canvas)
	if transpose {
		// Back to the capture orientation for horizontal scrolls.
		img = imglib.Transpose(img)
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	ext := filepath.Ext(outputPath)
	if ext == "" {
		ext = ".jpg"
	}
	base := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))

	bounds := img.Bounds()
	height := bounds.Dy()
	chunkCount := height/e.maxHeight + 1

	var paths []string
	for i := 0; i < chunkCount; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		y0 := i * e.maxHeight
		y1 := y0 + e.maxHeight
		if y1 > height {
			y1 = height
		}
		if y0 >= y1 {
			continue
		}

		chunk := img.(interface {
			SubImage(image.Rectangle) image.Image
		}).SubImage(image.Rect(bounds.Min.X, bounds.Min.Y+y0, bounds.Max.X, bounds.Min.Y+y1))

		name := base + ext
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path := filepath.Join(dir, name)
		if err := imglib.Save(chunk, path, imglib.JPEGQuality(e.quality)); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	e.logger.Debug("canvas encoded",
		zap.Int("height", height),
		zap.Int("pages", len(paths)),
		zap.Bool("transpose", transpose),
	)
	return paths, nil
}

// canvasImage wraps the interleaved canvas samples in a 4:4:4 YCbCr image,
// matching the decoder's yuv444p plane order.
func canvasImage(c *stitch.Canvas) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, c.Width, c.Height), image.YCbCrSubsampleRatio444)
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			i := (y*c.Width + x) * 3
			img.Y[y*img.YStride+x] = c.Pix[i]
			img.Cb[y*img.CStride+x] = c.Pix[i+1]
			img.Cr[y*img.CStride+x] = c.Pix[i+2]
		}
	}
	return img
}
