package loader

import "errors"

var (
	ErrSchemeUnsupported  = errors.New("unsupported scheme")
	ErrScriptNotAvailable = errors.New("script not available")
)
