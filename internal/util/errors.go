package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in PDF")
	ErrInvalidChunking   = errors.New("invalid chunking configuration")
	ErrNoProvider        = errors.New("no provider configured")
	ErrLengthMismatch    = errors.New("documents and vectors length mismatch")
)
