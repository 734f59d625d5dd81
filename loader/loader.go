// Package loader locates the embedded compiler script. A Loader hides where the script
// comes from (a file, an HTTP server, bytes compiled into the binary) behind a reader.
package loader

import (
	"io"
	"net/url"
	"path"
)

// Loader returns the content of a script resource.
type Loader interface {
	// GetReader returns a fresh reader over the script. The caller closes it.
	GetReader() (io.ReadCloser, error)
	// GetSourceURL identifies the resource.
	GetSourceURL() *url.URL
}

// SourceName returns a short display name for the resource behind l, suitable as a
// diagnostic file name: the last element of the URL path, or the fallback when the
// loader has no usable URL.
func SourceName(l Loader, fallback string) string {
	if l == nil {
		return fallback
	}
	u := l.GetSourceURL()
	if u == nil {
		return fallback
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}
