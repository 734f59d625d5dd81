package loader

import (
	"bytes"
	"fmt"
	"io"
	"net/url"

	"github.com/robbyt/go-coffeescript/internal/helpers"
)

// FromBytes serves a script from a byte slice, typically one compiled into the binary
// with go:embed.
type FromBytes struct {
	content   []byte
	sourceURL *url.URL
}

// NewFromBytes creates a loader over content. The name becomes the last element of the
// source URL so diagnostics can refer to the script by file name; when empty, a content
// hash is used instead.
func NewFromBytes(content []byte, name string) (*FromBytes, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%w: content is empty or contains only whitespace", ErrScriptNotAvailable)
	}

	if name == "" {
		name = helpers.SHA256Bytes(content)[:8]
	}

	u := &url.URL{Scheme: "bytes", Host: "embedded", Path: "/" + name}

	return &FromBytes{
		content:   content,
		sourceURL: u,
	}, nil
}

func (l *FromBytes) String() string {
	return fmt.Sprintf("loader.FromBytes{Bytes: %d, Source: %s}", len(l.content), l.sourceURL)
}

// GetReader returns a new reader for the stored content.
func (l *FromBytes) GetReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(l.content)), nil
}

// GetSourceURL returns the source URL of the script.
func (l *FromBytes) GetSourceURL() *url.URL {
	return l.sourceURL
}
