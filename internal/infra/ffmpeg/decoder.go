package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/zaigie/record2screenshot/internal/domain/port"
	"go.uber.org/zap"
)

// Decoder reads a video file into the raw plane buffer the stitching
// engine consumes, using ffprobe/ffmpeg subprocesses.
type Decoder struct {
	logger *zap.Logger
}

func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{logger: logger}
}

func (d *Decoder) Probe(ctx context.Context, videoPath string) (port.VideoDimensions, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return port.VideoDimensions{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseDimensions(string(output))
}

// Decode streams the whole video as rawvideo yuv444p: every frame becomes
// three full-resolution planes of 8-bit samples, plane-major.
func (d *Decoder) Decode(ctx context.Context, videoPath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-f", "rawvideo",
		"-pix_fmt", "yuv444p",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w, output: %s", err, stderr.String())
	}

	buf := stdout.Bytes()
	if len(buf) == 0 {
		return nil, fmt.Errorf("ffmpeg decode: no frame data produced")
	}

	d.logger.Debug("video decoded",
		zap.String("path", videoPath),
		zap.Int("bytes", len(buf)),
	)
	return buf, nil
}

func parseDimensions(output string) (port.VideoDimensions, error) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 2 {
		return port.VideoDimensions{}, fmt.Errorf("ffprobe: unexpected output %q", output)
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return port.VideoDimensions{}, fmt.Errorf("parse width: %w", err)
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return port.VideoDimensions{}, fmt.Errorf("parse height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return port.VideoDimensions{}, fmt.Errorf("ffprobe: invalid dimensions %dx%d", width, height)
	}
	return port.VideoDimensions{Width: width, Height: height}, nil
}
