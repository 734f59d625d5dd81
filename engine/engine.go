// Package engine defines the narrow boundary between the compiler orchestration and the
// runtime that hosts the embedded CoffeeScript compiler script. Any embeddable JavaScript
// runtime can implement Engine without the compiler package changing.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-coffeescript/options"
)

// InlineName is the display name used when source text has no named origin.
const InlineName = "<inline>"

// Engine runs the embedded compiler.
//
// Invoke returns the generated JavaScript. Failures reported by the embedded script
// (invalid CoffeeScript) are returned as *errz.CompileError; failures of the host
// environment are returned as *errz.EnvironmentError. Implementations must be safe for
// concurrent use.
type Engine interface {
	Invoke(req *Request) (string, error)
}

// Initializer is implemented by engines whose setup can be forced ahead of the first
// Invoke, e.g. to surface a broken deployment at startup.
type Initializer interface {
	Initialize() error
}

// Request is a single compilation. It is built per call and not retained by the engine.
type Request struct {
	// Source is the CoffeeScript text.
	Source string
	// Name is the display name used in diagnostics.
	Name string
	// Options are the resolved compiler flags.
	Options *options.OptionSet
	// LogHandler, when set, receives the engine's logs for this call in place of the
	// engine's own handler.
	LogHandler slog.Handler
}

// NewRequest creates a Request, substituting InlineName for an empty name and an empty
// OptionSet for nil options.
func NewRequest(source, name string, opts *options.OptionSet) *Request {
	if name == "" {
		name = InlineName
	}
	if opts == nil {
		opts = options.New()
	}
	return &Request{Source: source, Name: name, Options: opts}
}

func (r *Request) String() string {
	return fmt.Sprintf("Request{Name: %s, Chars: %d, Options: %s}", r.Name, len(r.Source), r.Options.Serialize())
}
