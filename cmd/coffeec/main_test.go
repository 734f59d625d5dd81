package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gojaSDK "github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const (
	bareX    = "var x;\n\nx = 1;\n"
	wrappedX = "(function() {\n  var x;\n\n  x = 1;\n\n}).call(this);\n"
)

func fixtureScript(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("..", "..", "engines", "goja", "testdata", "mini-coffee.js"))
	require.NoError(t, err)
	return abs
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, ctx context.Context, stdin string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(ctx, append([]string{"coffeec"}, args...))
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr), "expected cli.ExitCoder, got %T: %v", err, err)
	assert.Equal(t, code, exitErr.ExitCode())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestCompileCommand(t *testing.T) {
	t.Parallel()
	script := fixtureScript(t)

	t.Run("stdin to stdout", func(t *testing.T) {
		res := run(t, context.Background(), "x = 1\r\n", "compile", "--bare", "--script", script, "--stdin")
		require.NoError(t, res.err)
		assert.Equal(t, bareX, res.stdout)
	})

	t.Run("stdin to file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "js", "x.js")
		res := run(t, context.Background(), "x = 1", "compile", "--script", script, "--output", out, "--stdin")
		require.NoError(t, res.err)
		assert.Equal(t, wrappedX, readFile(t, out))
	})

	t.Run("compressed stdout", func(t *testing.T) {
		res := run(t, context.Background(), "x = 1", "compile", "--compress", "--script", script, "--stdin")
		require.NoError(t, res.err)
		assert.NotEqual(t, wrappedX, res.stdout)
		_, err := gojaSDK.Compile("x.js", res.stdout, false)
		require.NoError(t, err, res.stdout)
	})

	t.Run("single file to stdout", func(t *testing.T) {
		in := filepath.Join(t.TempDir(), "x.coffee")
		writeFile(t, in, "x = 1")
		res := run(t, context.Background(), "", "compile", "--bare", "--script", script, in)
		require.NoError(t, res.err)
		assert.Equal(t, bareX, res.stdout)
	})

	t.Run("files next to inputs", func(t *testing.T) {
		dir := t.TempDir()
		a := filepath.Join(dir, "a.coffee")
		b := filepath.Join(dir, "lib", "b.coffee")
		writeFile(t, a, "a = 1")
		writeFile(t, b, "b = 2")

		res := run(t, context.Background(), "", "compile", "--bare", "--script", script, a, b)
		require.NoError(t, res.err)
		assert.Equal(t, "2 written, 0 up to date, 0 failed\n", res.stdout)
		assert.Equal(t, "var a;\n\na = 1;\n", readFile(t, filepath.Join(dir, "a.js")))
		assert.Equal(t, "var b;\n\nb = 2;\n", readFile(t, filepath.Join(dir, "lib", "b.js")))

		res = run(t, context.Background(), "", "compile", "--bare", "--script", script, a, b)
		require.NoError(t, res.err)
		assert.Equal(t, "0 written, 2 up to date, 0 failed\n", res.stdout)

		res = run(t, context.Background(), "", "compile", "--force", "--bare", "--script", script, a, b)
		require.NoError(t, res.err)
		assert.Equal(t, "2 written, 0 up to date, 0 failed\n", res.stdout)
	})

	t.Run("single file with output", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "x.coffee")
		out := filepath.Join(dir, "build", "bundle.js")
		writeFile(t, in, "x = 1")

		res := run(t, context.Background(), "", "compile", "--script", script, "-o", out, in)
		require.NoError(t, res.err)
		assert.Equal(t, wrappedX, readFile(t, out))
	})

	t.Run("several files into output directory", func(t *testing.T) {
		dir := t.TempDir()
		a := filepath.Join(dir, "a.coffee")
		b := filepath.Join(dir, "b.coffee")
		writeFile(t, a, "a = 1")
		writeFile(t, b, "b = 2")
		outDir := filepath.Join(dir, "dist")

		res := run(t, context.Background(), "", "compile", "--bare", "--script", script, "-o", outDir, a, b)
		require.NoError(t, res.err)
		assert.FileExists(t, filepath.Join(outDir, "a.js"))
		assert.FileExists(t, filepath.Join(outDir, "b.js"))
	})
}

func TestCompileCommandErrors(t *testing.T) {
	t.Parallel()
	script := fixtureScript(t)

	t.Run("no inputs", func(t *testing.T) {
		res := run(t, context.Background(), "", "compile", "--script", script)
		requireExitCode(t, res.err, exitCompile)
	})

	t.Run("compile error", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "bad.coffee")
		writeFile(t, in, "f = ->")

		res := run(t, context.Background(), "", "compile", "--script", script, "-o", filepath.Join(dir, "bad.js"), in)
		requireExitCode(t, res.err, exitCompile)
		assert.NoFileExists(t, filepath.Join(dir, "bad.js"))
		assert.Contains(t, res.stdout, "1 failed")
	})

	t.Run("missing input", func(t *testing.T) {
		dir := t.TempDir()
		res := run(t, context.Background(), "", "compile", "--script", script, "-o", filepath.Join(dir, "x.js"),
			filepath.Join(dir, "missing.coffee"))
		requireExitCode(t, res.err, exitIO)
	})

	t.Run("missing compiler script", func(t *testing.T) {
		res := run(t, context.Background(), "x = 1", "compile", "--script", filepath.Join(t.TempDir(), "none.js"), "--stdin")
		requireExitCode(t, res.err, exitEnvironment)
	})

	t.Run("stdin mixed with files", func(t *testing.T) {
		res := run(t, context.Background(), "x = 1", "compile", "--script", script, "--stdin", "a.coffee")
		requireExitCode(t, res.err, exitCompile)
		assert.Contains(t, res.err.Error(), "--stdin cannot be combined")
		assert.Empty(t, res.stdout)
	})

	t.Run("dash argument", func(t *testing.T) {
		res := run(t, context.Background(), "x = 1", "compile", "--script", script, "-", "a.coffee")
		requireExitCode(t, res.err, exitCompile)
		assert.Contains(t, res.err.Error(), "use --stdin")
		assert.Empty(t, res.stdout)
	})

	t.Run("invalid level", func(t *testing.T) {
		res := run(t, context.Background(), "x = 1", "compile", "--level", "extreme", "--script", script, "--stdin")
		require.Error(t, res.err)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		res := run(t, context.Background(), "x = 1", "compile", "--encoding", "no-such-charset", "--script", script, "--stdin")
		require.Error(t, res.err)
	})

	t.Run("invalid log level", func(t *testing.T) {
		res := run(t, context.Background(), "x = 1", "--log-level", "chatty", "compile", "--script", script, "--stdin")
		require.Error(t, res.err)
	})
}

func writeBuildFile(t *testing.T, dir, script, extra string) string {
	t.Helper()
	writeFile(t, filepath.Join(dir, "src", "a.coffee"), "a = 1")
	writeFile(t, filepath.Join(dir, "src", "b.coffee"), "b = 2")

	path := filepath.Join(dir, "coffee.toml")
	writeFile(t, path, fmt.Sprintf(`
[compiler]
bare = true
script = %q
concurrency = 2
%s
[[jobs]]
input = "src/a.coffee"
output = "dist/a.js"

[[jobs]]
input = "src/b.coffee"
output = "dist/b.js"
`, script, extra))
	return path
}

func TestBuildCommand(t *testing.T) {
	t.Parallel()
	script := fixtureScript(t)

	t.Run("builds all jobs", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := writeBuildFile(t, dir, script, "")

		res := run(t, context.Background(), "", "build", "--config", cfgPath)
		require.NoError(t, res.err)
		assert.Equal(t, "2 written, 0 up to date, 0 failed\n", res.stdout)
		assert.Equal(t, "var a;\n\na = 1;\n", readFile(t, filepath.Join(dir, "dist", "a.js")))

		res = run(t, context.Background(), "", "build", "-c", cfgPath)
		require.NoError(t, res.err)
		assert.Equal(t, "0 written, 2 up to date, 0 failed\n", res.stdout)

		res = run(t, context.Background(), "", "build", "-c", cfgPath, "--force")
		require.NoError(t, res.err)
		assert.Equal(t, "2 written, 0 up to date, 0 failed\n", res.stdout)
	})

	t.Run("compressed", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := writeBuildFile(t, dir, script, "compress = true\nlevel = \"whitespace\"")

		res := run(t, context.Background(), "", "build", "--config", cfgPath)
		require.NoError(t, res.err)
		minified := readFile(t, filepath.Join(dir, "dist", "a.js"))
		assert.NotContains(t, minified, "\n\n")
	})

	t.Run("missing build file", func(t *testing.T) {
		res := run(t, context.Background(), "", "build", "--config", filepath.Join(t.TempDir(), "coffee.toml"))
		requireExitCode(t, res.err, exitCompile)
	})

	t.Run("job failure", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := writeBuildFile(t, dir, script, "")
		writeFile(t, filepath.Join(dir, "src", "b.coffee"), "b = (x ->")

		res := run(t, context.Background(), "", "build", "--config", cfgPath)
		requireExitCode(t, res.err, exitCompile)
		assert.Equal(t, "1 written, 0 up to date, 1 failed\n", res.stdout)
		assert.Contains(t, res.err.Error(), "missing )")
	})
}

func TestWatchCommand(t *testing.T) {
	t.Parallel()
	script := fixtureScript(t)

	t.Run("stops with the context", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := writeBuildFile(t, dir, script, "")

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan runResult, 1)
		go func() { done <- run(t, ctx, "", "watch", "--config", cfgPath, "--debounce", "10ms") }()

		require.Eventually(t, func() bool {
			_, err := os.Stat(filepath.Join(dir, "dist", "b.js"))
			return err == nil
		}, 5*time.Second, 10*time.Millisecond)

		cancel()
		select {
		case res := <-done:
			require.NoError(t, res.err)
		case <-time.After(5 * time.Second):
			require.FailNow(t, "watch did not stop")
		}
	})

	t.Run("missing build file", func(t *testing.T) {
		res := run(t, context.Background(), "", "watch", "--config", filepath.Join(t.TempDir(), "coffee.toml"))
		requireExitCode(t, res.err, exitCompile)
	})
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	res := run(t, context.Background(), "", "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "coffeec version dev\n"), res.stdout)
	assert.Contains(t, res.stdout, "compiler script:")
}

func TestTargetFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		out    string
		inputs int
		want   string
	}{
		{name: "next to input", in: "src/app.coffee", inputs: 1, want: filepath.Join("src", "app.js")},
		{name: "literate", in: "doc.litcoffee", inputs: 2, want: "doc.js"},
		{name: "single output file", in: "src/app.coffee", out: "bundle.js", inputs: 1, want: "bundle.js"},
		{name: "output directory", in: "src/app.coffee", out: "dist", inputs: 3, want: filepath.Join("dist", "app.js")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetFor(tt.in, tt.out, tt.inputs))
		})
	}
}
