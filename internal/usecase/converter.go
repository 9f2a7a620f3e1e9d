package usecase

import (
	"context"
	"fmt"

	"github.com/zaigie/record2screenshot/internal/domain/entity"
	"github.com/zaigie/record2screenshot/internal/domain/port"
	"github.com/zaigie/record2screenshot/internal/stitch"
	"go.uber.org/zap"
)

// Converter runs the full video-to-screenshot pipeline on local files:
// probe, decode, align, splice, encode.
type Converter struct {
	decoder port.VideoDecoder
	encoder port.ImageEncoder
	logger  *zap.Logger
}

func NewConverter(decoder port.VideoDecoder, encoder port.ImageEncoder, logger *zap.Logger) *Converter {
	return &Converter{decoder: decoder, encoder: encoder, logger: logger}
}

type ConvertResult struct {
	OutputPaths  []string
	FrameCount   int
	CanvasWidth  int
	CanvasHeight int
}

func (c *Converter) Convert(ctx context.Context, videoPath, outputPath string, params entity.ConvertParams) (*ConvertResult, error) {
	dims, err := c.decoder.Probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}

	width, height := dims.Width, dims.Height
	if params.Transpose {
		// Horizontal scroll: the engine aligns along rows, so the frame
		// buffer is transposed on the way in and the canvas on the way out.
		width, height = height, width
	}

	c.logger.Info("decoding video",
		zap.String("path", videoPath),
		zap.Int("width", dims.Width),
		zap.Int("height", dims.Height),
		zap.Bool("transpose", params.Transpose),
	)

	data, err := c.decoder.Decode(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("decode video: %w", err)
	}

	if params.Transpose {
		data = transposePlanes(data, dims.Width, dims.Height)
	}

	frames, err := stitch.NewFrameSequence(data, width, height)
	if err != nil {
		return nil, fmt.Errorf("build frame sequence: %w", err)
	}

	opts := stitchParams(params).Resolve(height)

	canvas, err := stitch.Convert(frames, opts, c.logger)
	if err != nil {
		return nil, fmt.Errorf("stitch frames: %w", err)
	}

	c.logger.Info("canvas composed",
		zap.Int("frames", frames.Len()),
		zap.Int("canvas_width", canvas.Width),
		zap.Int("canvas_height", canvas.Height),
	)

	paths, err := c.encoder.Encode(ctx, canvas, outputPath, params.Transpose)
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}

	return &ConvertResult{
		OutputPaths:  paths,
		FrameCount:   frames.Len(),
		CanvasWidth:  canvas.Width,
		CanvasHeight: canvas.Height,
	}, nil
}

func stitchParams(p entity.ConvertParams) stitch.Params {
	return stitch.Params{
		CropTop:      p.CropTop,
		CropBottom:   p.CropBottom,
		ExpectOffset: p.ExpectOffset,
		MinOverlap:   p.MinOverlap,
		ApproxDiff:   p.ApproxDiff,
		Transpose:    p.Transpose,
		SeamWidth:    p.SeamWidth,
		Verbose:      p.Verbose,
	}
}

// transposePlanes swaps rows and columns of every plane of every frame,
// in place of dimension: the returned buffer holds frames of height x width.
func transposePlanes(data []byte, width, height int) []byte {
	planeSize := width * height
	out := make([]byte, len(data))
	planes := len(data) / planeSize

	for p := 0; p < planes; p++ {
		src := data[p*planeSize : (p+1)*planeSize]
		dst := out[p*planeSize : (p+1)*planeSize]
		for y := 0; y < height; y++ {
			row := src[y*width : (y+1)*width]
			for x, v := range row {
				dst[x*height+y] = v
			}
		}
	}
	return out
}
