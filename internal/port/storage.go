package port

import (
	"context"
	"io"
)

// ArchiveInput encapsulates the parameters needed to archive a trade document.
type ArchiveInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// ArchiveOutput contains the result of a successful archive upload.
type ArchiveOutput struct {
	Location string
	ETag     string
}

// DocumentArchive stores uploaded trade documents alongside the draft.
type DocumentArchive interface {
	Archive(ctx context.Context, input ArchiveInput) (*ArchiveOutput, error)
	Delete(ctx context.Context, key string) error
}
