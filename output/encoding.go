package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is the character encoding used when none is configured.
const DefaultEncoding = "UTF-8"

// ResolveEncoding looks up an IANA character set name. An empty name resolves to UTF-8.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	if strings.TrimSpace(name) == "" {
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownEncoding, name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
	return enc, nil
}

// encode converts UTF-8 text into enc. Characters the target encoding cannot represent
// are replaced with its substitution character.
func encode(enc encoding.Encoding, content string) ([]byte, error) {
	if enc == unicode.UTF8 {
		return []byte(content), nil
	}
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	return out, nil
}
