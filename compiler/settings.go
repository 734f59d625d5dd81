package compiler

import (
	"fmt"

	"github.com/robbyt/go-coffeescript/loader"
	"github.com/robbyt/go-coffeescript/minify"
	"github.com/robbyt/go-coffeescript/options"
	"github.com/robbyt/go-coffeescript/output"
)

// settings is the mutable configuration of a Compiler. Every compile call works on a copy
// taken when the call starts.
type settings struct {
	encoding string
	// compress is unset (nil), true or false.
	compress  *bool
	optionSet *options.OptionSet
	loader    loader.Loader
	// loaderGen changes whenever loader is replaced.
	loaderGen uint64
	level     minify.Level
}

// isCompress reports whether output is minified: the explicit flag, when set and true, or
// Compress membership in the option set.
func (s settings) isCompress() bool {
	return (s.compress != nil && *s.compress) || s.optionSet.Contains(options.Compress)
}

func (c *Compiler) snapshot() settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// IsCompress reports whether files written by the compiler are minified.
func (c *Compiler) IsCompress() bool {
	return c.snapshot().isCompress()
}

// SetCompress sets the explicit compress flag. Compress in the option set still enables
// minification when the flag is false.
func (c *Compiler) SetCompress(compress bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.compress = &compress
}

// Encoding returns the IANA name of the output character encoding.
func (c *Compiler) Encoding() string {
	return c.snapshot().encoding
}

// SetEncoding sets the character encoding of written files. An empty name selects UTF-8.
func (c *Compiler) SetEncoding(name string) error {
	if _, err := output.ResolveEncoding(name); err != nil {
		return err
	}
	if name == "" {
		name = output.DefaultEncoding
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.encoding = name
	return nil
}

// OptionSet returns the flags passed to the embedded compiler.
func (c *Compiler) OptionSet() *options.OptionSet {
	return c.snapshot().optionSet
}

// SetOptionSet replaces the compiler flags. nil clears them.
func (c *Compiler) SetOptionSet(set *options.OptionSet) {
	if set == nil {
		set = options.New()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.optionSet = set
}

// SetOptionArgs replaces the compiler flags with those parsed from command-line style
// arguments, see options.ParseArgs.
func (c *Compiler) SetOptionArgs(args ...string) {
	c.SetOptionSet(options.ParseArgs(args...))
}

// ScriptLoader returns the configured compiler-script location, or nil when the bundled
// script is used.
func (c *Compiler) ScriptLoader() loader.Loader {
	return c.snapshot().loader
}

// SetScriptLoader changes where the compiler script is read from. Calls issued afterwards
// use an engine evaluating the new script. It has no effect when an engine was supplied
// with WithEngine.
func (c *Compiler) SetScriptLoader(l loader.Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.loader = l
	c.settings.loaderGen++
}

// MinifyLevel returns the minification level used for compressed output.
func (c *Compiler) MinifyLevel() minify.Level {
	return c.snapshot().level
}

// SetMinifyLevel sets the minification level used for compressed output.
func (c *Compiler) SetMinifyLevel(level minify.Level) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %d", minify.ErrUnknownLevel, int(level))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.level = level
	return nil
}
