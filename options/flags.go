package options

import "strings"

// Flag is a named boolean compiler option.
type Flag int

const (
	// Bare compiles without the top-level function safety wrapper.
	Bare Flag = iota + 1
	// Header prepends the "Generated by CoffeeScript" comment.
	Header
	// Literate treats the input as Literate CoffeeScript.
	Literate
	// Compress runs the minifier over the generated JavaScript. It is a host-side
	// flag and is never passed to the embedded compiler.
	Compress
)

// flagOrder is the enumeration order, which is also the serialization order.
var flagOrder = []Flag{Bare, Header, Literate, Compress}

// String returns the lower-case flag name.
func (f Flag) String() string {
	switch f {
	case Bare:
		return "bare"
	case Header:
		return "header"
	case Literate:
		return "literate"
	case Compress:
		return "compress"
	default:
		return "unknown"
	}
}

// compilerKey is the key understood by the embedded compiler's options argument.
// An empty key means the flag is not forwarded.
func (f Flag) compilerKey() string {
	switch f {
	case Bare:
		return "bare"
	case Header:
		return "header"
	case Literate:
		return "literate"
	default:
		return ""
	}
}

// Valid reports whether f is one of the known flags.
func (f Flag) Valid() bool {
	return f >= Bare && f <= Compress
}

// ParseFlag maps a flag name ("bare", "--bare", "COMPRESS", ...) to a Flag.
func ParseFlag(name string) (Flag, bool) {
	name = strings.ToLower(strings.TrimLeft(strings.TrimSpace(name), "-"))
	for _, f := range flagOrder {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}
