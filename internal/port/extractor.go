package port

import (
	"context"

	"shipdesk/internal/payload"
)

// UploadFile is one trade document submitted for extraction.
type UploadFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// Extractor abstracts the external document extraction service.
//
// Implementations return domain.ErrNoDataExtracted (possibly wrapped) when the
// service answered but produced nothing usable, and a hard error for
// transport, status or decoding failures.
type Extractor interface {
	Extract(ctx context.Context, files []UploadFile) (payload.Payload, error)
}
