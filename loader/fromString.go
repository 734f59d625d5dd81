package loader

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/robbyt/go-coffeescript/internal/helpers"
)

// FromString serves a script held in memory as a string.
type FromString struct {
	content   string
	sourceURL *url.URL
}

func NewFromString(content string) (*FromString, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is empty", ErrScriptNotAvailable)
	}

	u, err := url.Parse("string://inline/" + helpers.SHA256(content)[:8])
	if err != nil {
		return nil, fmt.Errorf("failed to create source URL: %w", err)
	}

	return &FromString{
		content:   content,
		sourceURL: u,
	}, nil
}

func (l *FromString) String() string {
	return fmt.Sprintf("loader.FromString{Chars: %d}", len(l.content))
}

func (l *FromString) GetReader() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(l.content)), nil
}

// GetSourceURL returns the source URL of the script.
func (l *FromString) GetSourceURL() *url.URL {
	return l.sourceURL
}
