// Package config reads the TOML build file used by `coffeec build` and `coffeec watch`.
//
//	[compiler]
//	bare = true
//	compress = true
//	level = "simple"
//	encoding = "UTF-8"
//	script = "vendor/coffee-script.js"
//	concurrency = 4
//
//	[[jobs]]
//	input = "src/app.coffee"
//	output = "dist/app.js"
//
// Relative paths are resolved against the directory of the build file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/robbyt/go-coffeescript/compiler"
	"github.com/robbyt/go-coffeescript/loader"
	"github.com/robbyt/go-coffeescript/minify"
	"github.com/robbyt/go-coffeescript/options"
	"github.com/robbyt/go-coffeescript/output"
)

// DefaultFileName is the build file looked up when none is given.
const DefaultFileName = "coffee.toml"

// Config is a parsed build file.
type Config struct {
	Compiler Compiler `toml:"compiler"`
	Jobs     []Job    `toml:"jobs"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Compiler holds the settings applied to every job.
type Compiler struct {
	Bare     bool         `toml:"bare"`
	Header   bool         `toml:"header"`
	Literate bool         `toml:"literate"`
	Compress bool         `toml:"compress"`
	Level    minify.Level `toml:"level"`
	Encoding string       `toml:"encoding"`
	// Script is a file path or http(s) URL of the compiler script. Empty selects the
	// bundled script.
	Script string `toml:"script"`
	// Concurrency limits how many jobs run at once; zero means no limit.
	Concurrency int `toml:"concurrency"`
}

// Job is one input file and its target.
type Job struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
	Force  bool   `toml:"force"`
}

// Load reads and validates the build file at path.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}
	return Parse(data, filepath.Dir(abs))
}

// Parse decodes and validates build file content. Relative paths are resolved against
// dir. Unknown keys are rejected.
func Parse(data []byte, dir string) (*Config, error) {
	cfg := &Config{dir: dir}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrFailedToLoadConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Compiler.Level == 0 {
		c.Compiler.Level = minify.DefaultLevel
	}
	if c.Compiler.Encoding == "" {
		c.Compiler.Encoding = output.DefaultEncoding
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if !c.Compiler.Level.Valid() {
		errs = append(errs, fmt.Errorf("%w: %d", minify.ErrUnknownLevel, int(c.Compiler.Level)))
	}
	if _, err := output.ResolveEncoding(c.Compiler.Encoding); err != nil {
		errs = append(errs, err)
	}
	if c.Compiler.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative: %d", c.Compiler.Concurrency))
	}

	if len(c.Jobs) == 0 {
		errs = append(errs, errors.New("no jobs defined"))
	}
	outputs := make(map[string]int, len(c.Jobs))
	for i, job := range c.Jobs {
		if job.Input == "" {
			errs = append(errs, fmt.Errorf("job %d has an empty input", i))
		}
		if job.Output == "" {
			errs = append(errs, fmt.Errorf("job %d has an empty output", i))
			continue
		}
		out := c.resolve(job.Output)
		if job.Input != "" && c.resolve(job.Input) == out {
			errs = append(errs, fmt.Errorf("job %d writes its output over its input: %s", i, job.Output))
		}
		if prev, ok := outputs[out]; ok {
			errs = append(errs, fmt.Errorf("jobs %d and %d write the same output: %s", prev, i, job.Output))
			continue
		}
		outputs[out] = i
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrFailedToValidateConfig, errors.Join(errs...))
	}
	return nil
}

// Dir returns the directory relative paths are resolved against.
func (c *Config) Dir() string {
	return c.dir
}

// OptionSet returns the compiler flags enabled in the [compiler] table.
func (c *Config) OptionSet() *options.OptionSet {
	var flags []options.Flag
	if c.Compiler.Bare {
		flags = append(flags, options.Bare)
	}
	if c.Compiler.Header {
		flags = append(flags, options.Header)
	}
	if c.Compiler.Literate {
		flags = append(flags, options.Literate)
	}
	return options.New(flags...)
}

// CompilerOptions translates the [compiler] table into compiler options.
func (c *Config) CompilerOptions() ([]compiler.FunctionalOption, error) {
	opts := []compiler.FunctionalOption{
		compiler.WithOptionSet(c.OptionSet()),
		compiler.WithCompress(c.Compiler.Compress),
		compiler.WithMinifyLevel(c.Compiler.Level),
		compiler.WithEncoding(c.Compiler.Encoding),
	}

	if c.Compiler.Script != "" {
		l, err := ScriptLoader(c.Compiler.Script, c.dir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, compiler.WithScriptLoader(l))
	}
	return opts, nil
}

// CompileJobs returns the jobs with their paths resolved.
func (c *Config) CompileJobs() []compiler.Job {
	jobs := make([]compiler.Job, 0, len(c.Jobs))
	for _, job := range c.Jobs {
		jobs = append(jobs, compiler.Job{
			Input:  c.resolve(job.Input),
			Output: c.resolve(job.Output),
			Force:  job.Force,
		})
	}
	return jobs
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.dir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(c.dir, path)
}

// ScriptLoader returns a loader for a compiler script given as an http(s) URL or a file
// path. Relative paths are resolved against dir.
func ScriptLoader(location, dir string) (loader.Loader, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return loader.NewFromHTTP(location)
	}

	path := strings.TrimPrefix(location, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve script path: %w", err)
	}
	return loader.NewFromDisk(abs)
}

func (c *Config) String() string {
	return fmt.Sprintf("config.Config{Dir: %s, Jobs: %d, Options: %s, Compress: %t, Level: %s}",
		c.dir, len(c.Jobs), c.OptionSet().Serialize(), c.Compiler.Compress, c.Compiler.Level)
}
