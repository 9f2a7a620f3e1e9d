package port

import "context"

// Zipper bundles multi-band results into a single downloadable archive.
type Zipper interface {
	CreateZip(ctx context.Context, filePaths []string, outputPath string) error
}
