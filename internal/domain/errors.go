package domain

import "errors"

var (
	ErrNotFound                  = errors.New("resource not found")
	ErrUnsupportedFileType       = errors.New("unsupported file type")
	ErrFileTooLarge              = errors.New("file exceeds maximum allowed size")
	ErrNoFiles                   = errors.New("at least one file is required")
	ErrTooManyFiles              = errors.New("too many files in one upload")
	ErrUploadFailed              = errors.New("file upload to storage failed")
	ErrInvalidMode               = errors.New("invalid entry mode")
	ErrInvalidPatch              = errors.New("draft patch is not a JSON object")
	ErrExtractionFailed          = errors.New("extraction service request failed")
	ErrInvalidExtractionResponse = errors.New("extraction service returned an invalid response")
	ErrNoDataExtracted           = errors.New("no data extracted")
	ErrExtractionInProgress      = errors.New("an extraction is already in progress")
	ErrStaleExtraction           = errors.New("extraction result superseded by a newer change")
)
