package output

import "errors"

var (
	ErrUnknownEncoding     = errors.New("unknown character encoding")
	ErrUnsupportedEncoding = errors.New("unsupported character encoding")
	ErrTargetIsDirectory   = errors.New("target path is a directory")
	ErrProducerNil         = errors.New("content producer is nil")
)
