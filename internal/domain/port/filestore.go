package port

import (
	"context"
	"io"
)

// FileStore is where raw uploads live before processing.
type FileStore interface {
	// Save writes the upload under the owner's directory and returns the
	// stored filename.
	Save(ctx context.Context, r io.Reader, userID, filename string) (string, error)
	Path(userID, filename string) string
	Exists(userID, filename string) (bool, error)
	Delete(userID, filename string) error
	URL(userID, filename string) string
}
