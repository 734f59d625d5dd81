package source

import "errors"

var ErrIsDirectory = errors.New("source path is a directory")
