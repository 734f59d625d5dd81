package minify

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
)

//go:embed externs/default.externs
var externsFS embed.FS

const defaultExternsFile = "externs/default.externs"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Externs is the set of names that minification must preserve.
type Externs struct {
	names []string
}

// ParseExterns reads extern declarations: one identifier per line, blank lines and lines
// starting with '#' ignored. Duplicates are dropped.
func ParseExterns(r io.Reader) (*Externs, error) {
	seen := make(map[string]struct{})
	var names []string

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !identifierPattern.MatchString(line) {
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidExtern, lineNo, line)
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read extern declarations: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrExternsEmpty
	}

	slices.Sort(names)
	return &Externs{names: names}, nil
}

// DefaultExterns returns the extern declarations compiled into the package.
func DefaultExterns() (*Externs, error) {
	f, err := externsFS.Open(defaultExternsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open default externs: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseExterns(f)
}

// With returns a copy of x extended with names.
func (x *Externs) With(names ...string) (*Externs, error) {
	var b strings.Builder
	for _, n := range x.names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	return ParseExterns(strings.NewReader(b.String()))
}

// Names returns the sorted extern names.
func (x *Externs) Names() []string {
	return slices.Clone(x.names)
}

// Contains reports whether name is declared.
func (x *Externs) Contains(name string) bool {
	_, found := slices.BinarySearch(x.names, name)
	return found
}

func (x *Externs) Len() int {
	return len(x.names)
}

func (x *Externs) String() string {
	return fmt.Sprintf("minify.Externs{Names: %d}", len(x.names))
}

// reservedPattern is a regular expression matching exactly the declared names, in the
// form esbuild expects for reserved properties.
func (x *Externs) reservedPattern() string {
	quoted := make([]string, len(x.names))
	for i, n := range x.names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return "^(?:" + strings.Join(quoted, "|") + ")$"
}
