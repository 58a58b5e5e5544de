package pdfio

import "errors"

// Processing error types
var (
	ErrFileNotFound   = errors.New("input file not found")
	ErrInvalidPDF     = errors.New("not a valid PDF file")
	ErrPageOutOfRange = errors.New("page index out of range")
	ErrEncode         = errors.New("failed to encode page image")
	ErrCancelled      = errors.New("cancelled by user")
)
