package dsc

import "errors"

var (
	ErrOpen     = errors.New("open input")
	ErrRead     = errors.New("read input")
	ErrEncoding = errors.New("unsupported input encoding")
)
