package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robbyt/go-coffeescript/compiler"
	"github.com/robbyt/go-coffeescript/errz"
	"github.com/robbyt/go-coffeescript/internal/config"
	"github.com/robbyt/go-coffeescript/minify"
	"github.com/robbyt/go-coffeescript/options"
	"github.com/robbyt/go-coffeescript/output"
	"github.com/robbyt/go-coffeescript/source"
)

const (
	// stdinArg is rejected as an input: the argument parser stops collecting inputs at a
	// bare "-", so anything after it would be dropped silently.
	stdinArg = "-"
	// stdinDisplayName is the display name of standard input in diagnostics.
	stdinDisplayName = "<stdin>"
)

func newCompileCmd() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "Compile CoffeeScript files",
		ArgsUsage: "FILE...",
		Description: "With a single input and no --output the JavaScript is printed to standard output. " +
			"Otherwise every input.coffee is written to input.js, to --output for a single input, " +
			"or into the --output directory for several inputs.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "stdin", Usage: "Read CoffeeScript from standard input instead of files"},
			&cli.BoolFlag{Name: "bare", Aliases: []string{"b"}, Usage: "Compile without the top-level function wrapper"},
			&cli.BoolFlag{Name: "header", Usage: "Add the \"Generated by CoffeeScript\" header"},
			&cli.BoolFlag{Name: "literate", Usage: "Treat the input as Literate CoffeeScript"},
			&cli.BoolFlag{Name: "compress", Aliases: []string{"c"}, Usage: "Minify the generated JavaScript"},
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "Minification level (whitespace, simple, advanced)",
				Value:   minify.DefaultLevel.String(),
				Validator: func(s string) error {
					_, err := minify.ParseLevel(s)
					return err
				},
			},
			&cli.StringFlag{
				Name:    "encoding",
				Aliases: []string{"e"},
				Usage:   "Character encoding of written files",
				Value:   output.DefaultEncoding,
				Validator: func(s string) error {
					_, err := output.ResolveEncoding(s)
					return err
				},
			},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Rewrite targets even when they are up to date"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file, or output directory for several inputs"},
			&cli.StringFlag{Name: "script", Aliases: []string{"s"}, Usage: "Compiler script path or http(s) URL instead of the bundled one"},
		},
		Action: compileAction,
	}
}

func compileAction(ctx context.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	fromStdin := cmd.Bool("stdin")
	switch {
	case slices.Contains(inputs, stdinArg):
		return cli.Exit("use --stdin to read standard input", exitCompile)
	case fromStdin && len(inputs) > 0:
		return cli.Exit("--stdin cannot be combined with input files", exitCompile)
	case !fromStdin && len(inputs) == 0:
		return cli.Exit("at least one input file or --stdin is required", exitCompile)
	}

	c, err := newCompilerFromFlags(cmd)
	if err != nil {
		return exitError(err)
	}

	outPath := cmd.String("output")
	force := cmd.Bool("force")

	if fromStdin {
		return compileStdin(cmd, c, outPath)
	}
	if len(inputs) == 1 && outPath == "" {
		return compileToStdout(cmd, c, inputs[0])
	}

	jobs := make([]compiler.Job, 0, len(inputs))
	for _, in := range inputs {
		jobs = append(jobs, compiler.Job{Input: in, Output: targetFor(in, outPath, len(inputs)), Force: force})
	}

	result, err := c.CompileAll(ctx, jobs, 0)
	printSummary(cmd, result)
	return exitError(err)
}

func compileStdin(cmd *cli.Command, c *compiler.Compiler, outPath string) error {
	if outPath == "" {
		js, err := c.CompileReader(cmd.Root().Reader, stdinDisplayName)
		if err != nil {
			return exitError(err)
		}
		return printJS(cmd, c, js, stdinDisplayName)
	}

	b, err := io.ReadAll(cmd.Root().Reader)
	if err != nil {
		return exitError(errz.NewIOError("read", stdinDisplayName, err))
	}
	src := source.NewString(stdinDisplayName, source.Normalize(b), time.Now())
	_, err = c.CompileSourceTo(src, outPath, true)
	return exitError(err)
}

func compileToStdout(cmd *cli.Command, c *compiler.Compiler, in string) error {
	js, err := c.CompileFile(in)
	if err != nil {
		return exitError(err)
	}
	return printJS(cmd, c, js, filepath.Base(in))
}

// printJS writes js to standard output, minified when compression is enabled.
func printJS(cmd *cli.Command, c *compiler.Compiler, js, name string) error {
	if c.IsCompress() {
		m, err := minify.New(minify.WithLogHandler(logHandler(cmd)))
		if err != nil {
			return exitError(err)
		}
		js, err = m.MinifyOrError(js, name, c.MinifyLevel())
		if err != nil {
			return exitError(err)
		}
	}
	_, err := fmt.Fprint(cmd.Root().Writer, js)
	return err
}

// targetFor returns the output path of in: next to it with a .js extension, out itself
// for a single input, or inside the out directory for several inputs.
func targetFor(in, out string, inputs int) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".js"
	switch {
	case out == "":
		return filepath.Join(filepath.Dir(in), base)
	case inputs == 1:
		return out
	default:
		return filepath.Join(out, base)
	}
}

func newCompilerFromFlags(cmd *cli.Command) (*compiler.Compiler, error) {
	var flags []options.Flag
	if cmd.Bool("bare") {
		flags = append(flags, options.Bare)
	}
	if cmd.Bool("header") {
		flags = append(flags, options.Header)
	}
	if cmd.Bool("literate") {
		flags = append(flags, options.Literate)
	}

	level, err := minify.ParseLevel(cmd.String("level"))
	if err != nil {
		return nil, err
	}

	opts := []compiler.FunctionalOption{
		compiler.WithOptions(flags...),
		compiler.WithCompress(cmd.Bool("compress")),
		compiler.WithMinifyLevel(level),
		compiler.WithEncoding(cmd.String("encoding")),
		compiler.WithLogHandler(logHandler(cmd)),
	}

	if script := cmd.String("script"); script != "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		l, err := config.ScriptLoader(script, wd)
		if err != nil {
			return nil, err
		}
		opts = append(opts, compiler.WithScriptLoader(l))
	}

	return compiler.New(opts...)
}

func printSummary(cmd *cli.Command, result compiler.BatchResult) {
	fmt.Fprintf(cmd.Root().Writer, "%d written, %d up to date, %d failed\n",
		result.Written, result.Skipped, result.Failed)
}
