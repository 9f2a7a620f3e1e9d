package port

import "context"

type VideoDimensions struct {
	Width  int
	Height int
}

// VideoDecoder turns a video file into the flat plane buffer the stitching
// engine consumes: N frames x 3 planes x height x width uint8 samples,
// plane-major within each frame.
type VideoDecoder interface {
	Probe(ctx context.Context, videoPath string) (VideoDimensions, error)
	Decode(ctx context.Context, videoPath string) ([]byte, error)
}
