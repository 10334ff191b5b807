package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrExtractionFailed    = errors.New("invoice extraction failed")
	ErrNotAnObject         = errors.New("request body is not a JSON object")
)
