package port

import "context"

// Zipper packages extracted frames into a single archive.
type Zipper interface {
	// CreateZip writes the listed files into an archive at outputPath and
	// returns its size in bytes.
	CreateZip(ctx context.Context, filePaths []string, outputPath string) (int64, error)
}
