// Package source provides the CoffeeScript inputs the compiler reads: files on an
// afero.Fs and named in-memory text.
package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/robbyt/go-coffeescript/errz"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Source is a unit of CoffeeScript text with a display name and a modification time.
type Source interface {
	// Name is the display name used in diagnostics.
	Name() string
	// NormalizedContent is the text with a leading byte order mark removed and line
	// endings normalized to "\n".
	NormalizedContent() string
	// LastModified is compared against the target's modification time to decide whether
	// the target is stale.
	LastModified() time.Time
}

// File is a source read from a file system.
type File struct {
	path    string
	content string
	modTime time.Time
}

// NewFile reads path from fs. Read failures are returned as *errz.IOError.
func NewFile(fs afero.Fs, path string) (*File, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, errz.NewIOError("stat", path, err)
	}
	if info.IsDir() {
		return nil, errz.NewIOError("read", path, ErrIsDirectory)
	}

	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errz.NewIOError("read", path, err)
	}

	return &File{
		path:    path,
		content: Normalize(b),
		modTime: info.ModTime(),
	}, nil
}

func (f *File) Name() string { return filepath.Base(f.path) }

// Path is the path the file was read from.
func (f *File) Path() string { return f.path }

func (f *File) NormalizedContent() string { return f.content }

func (f *File) LastModified() time.Time { return f.modTime }

func (f *File) String() string {
	return fmt.Sprintf("source.File{Path: %s, Chars: %d}", f.path, len(f.content))
}

// String is a named in-memory source.
type String struct {
	name    string
	content string
	modTime time.Time
}

// NewString creates a String source. The content is normalized like a file's.
func NewString(name, content string, modTime time.Time) *String {
	return &String{
		name:    name,
		content: Normalize([]byte(content)),
		modTime: modTime,
	}
}

func (s *String) Name() string { return s.name }

func (s *String) NormalizedContent() string { return s.content }

func (s *String) LastModified() time.Time { return s.modTime }

func (s *String) String() string {
	return fmt.Sprintf("source.String{Name: %s, Chars: %d}", s.name, len(s.content))
}

// Normalize strips a leading UTF-8 byte order mark and converts CRLF and lone CR line
// endings to LF.
func Normalize(b []byte) string {
	b = bytes.TrimPrefix(b, utf8BOM)
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
