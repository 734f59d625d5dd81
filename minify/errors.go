package minify

import "errors"

var (
	ErrUnknownLevel  = errors.New("unknown minification level")
	ErrExternsEmpty  = errors.New("extern declarations are empty")
	ErrInvalidExtern = errors.New("invalid extern declaration")
)
