package loader

import (
	"bytes"
	"fmt"
	"io"
	"net/url"

	"github.com/robbyt/go-coffeescript/internal/helpers"
)

// FromIoReader buffers the whole content of an io.Reader so it can be served repeatedly.
type FromIoReader struct {
	content   []byte
	sourceURL *url.URL
}

// NewFromIoReader reads r to the end.
func NewFromIoReader(r io.Reader, sourceName string) (*FromIoReader, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: reader is nil", ErrScriptNotAvailable)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf(
			"%w: content is empty or contains only whitespace",
			ErrScriptNotAvailable,
		)
	}

	if sourceName == "" {
		sourceName = "unnamed"
	}
	u := &url.URL{
		Scheme: "reader",
		Host:   helpers.SHA256Bytes(content)[:8],
		Path:   "/" + sourceName,
	}

	return &FromIoReader{
		content:   content,
		sourceURL: u,
	}, nil
}

func (l *FromIoReader) String() string {
	return fmt.Sprintf(
		"loader.FromIoReader{Bytes: %d, Source: %s}",
		len(l.content),
		l.sourceURL.String(),
	)
}

// GetReader returns a new reader for the stored content.
func (l *FromIoReader) GetReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(l.content)), nil
}

// GetSourceURL returns the source URL of the script.
func (l *FromIoReader) GetSourceURL() *url.URL {
	return l.sourceURL
}
