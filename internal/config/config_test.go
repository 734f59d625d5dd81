package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-coffeescript/compiler"
	"github.com/robbyt/go-coffeescript/loader"
	"github.com/robbyt/go-coffeescript/minify"
	"github.com/robbyt/go-coffeescript/options"
)

const fullConfig = `
[compiler]
bare = true
header = true
compress = true
level = "advanced"
encoding = "ISO-8859-1"
concurrency = 4

[[jobs]]
input = "src/app.coffee"
output = "dist/app.js"

[[jobs]]
input = "/abs/lib.coffee"
output = "/abs/lib.js"
force = true
`

func TestLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/coffee.toml", []byte(fullConfig), 0o644))

	cfg, err := Load(fs, "/project/coffee.toml")
	require.NoError(t, err)

	assert.Equal(t, "/project", cfg.Dir())
	assert.Equal(t, minify.Advanced, cfg.Compiler.Level)
	assert.Equal(t, "ISO-8859-1", cfg.Compiler.Encoding)
	assert.Equal(t, 4, cfg.Compiler.Concurrency)
	assert.Equal(t, "{bare: true, header: true}", cfg.OptionSet().Serialize())
	assert.Equal(t, []compiler.Job{
		{Input: filepath.Join("/project", "src", "app.coffee"), Output: filepath.Join("/project", "dist", "app.js")},
		{Input: "/abs/lib.coffee", Output: "/abs/lib.js", Force: true},
	}, cfg.CompileJobs())
	assert.Contains(t, cfg.String(), "Jobs: 2")

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(fs, "/project/missing.toml")
		require.ErrorIs(t, err, ErrFailedToLoadConfig)
	})
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
[[jobs]]
input = "a.coffee"
output = "a.js"
`), "/work")
	require.NoError(t, err)
	assert.Equal(t, minify.DefaultLevel, cfg.Compiler.Level)
	assert.Equal(t, "UTF-8", cfg.Compiler.Encoding)
	assert.False(t, cfg.Compiler.Compress)
	assert.Equal(t, 0, cfg.OptionSet().Len())
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "invalid toml",
			data:    "[compiler\nbare = true",
			wantErr: ErrFailedToLoadConfig,
		},
		{
			name:    "unknown key",
			data:    "[compiler]\nminify = true\n[[jobs]]\ninput = \"a.coffee\"\noutput = \"a.js\"",
			wantErr: ErrFailedToLoadConfig,
		},
		{
			name:    "unknown level",
			data:    "[compiler]\nlevel = \"extreme\"\n[[jobs]]\ninput = \"a.coffee\"\noutput = \"a.js\"",
			wantErr: ErrFailedToLoadConfig,
		},
		{
			name:    "unknown encoding",
			data:    "[compiler]\nencoding = \"EBCDIC-XYZ\"\n[[jobs]]\ninput = \"a.coffee\"\noutput = \"a.js\"",
			wantErr: ErrFailedToValidateConfig,
		},
		{
			name:    "negative concurrency",
			data:    "[compiler]\nconcurrency = -1\n[[jobs]]\ninput = \"a.coffee\"\noutput = \"a.js\"",
			wantErr: ErrFailedToValidateConfig,
			wantMsg: "concurrency",
		},
		{
			name:    "no jobs",
			data:    "[compiler]\nbare = true",
			wantErr: ErrFailedToValidateConfig,
			wantMsg: "no jobs",
		},
		{
			name:    "empty input and output",
			data:    "[[jobs]]\nforce = true",
			wantErr: ErrFailedToValidateConfig,
			wantMsg: "empty output",
		},
		{
			name:    "output over input",
			data:    "[[jobs]]\ninput = \"a.coffee\"\noutput = \"./a.coffee\"",
			wantErr: ErrFailedToValidateConfig,
			wantMsg: "over its input",
		},
		{
			name:    "duplicate output",
			data:    "[[jobs]]\ninput = \"a.coffee\"\noutput = \"out.js\"\n[[jobs]]\ninput = \"b.coffee\"\noutput = \"out.js\"",
			wantErr: ErrFailedToValidateConfig,
			wantMsg: "same output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), "/work")
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, cfg)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCompilerOptions(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(fullConfig), "/project")
	require.NoError(t, err)
	opts, err := cfg.CompilerOptions()
	require.NoError(t, err)

	c, err := compiler.New(opts...)
	require.NoError(t, err)
	assert.True(t, c.IsCompress())
	assert.Equal(t, minify.Advanced, c.MinifyLevel())
	assert.Equal(t, "ISO-8859-1", c.Encoding())
	assert.True(t, c.OptionSet().Contains(options.Header))
	assert.Nil(t, c.ScriptLoader())

	t.Run("script path", func(t *testing.T) {
		cfg, err := Parse([]byte("[compiler]\nscript = \"vendor/coffee-script.js\"\n[[jobs]]\ninput = \"a.coffee\"\noutput = \"a.js\""), "/project")
		require.NoError(t, err)
		opts, err := cfg.CompilerOptions()
		require.NoError(t, err)

		c, err := compiler.New(opts...)
		require.NoError(t, err)
		require.NotNil(t, c.ScriptLoader())
		assert.Equal(t, "/project/vendor/coffee-script.js", c.ScriptLoader().GetSourceURL().Path)
	})
}

func TestScriptLoader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		location string
		wantType loader.Loader
		wantPath string
	}{
		{name: "https", location: "https://cdn.example.com/coffee-script.js", wantType: &loader.FromHTTP{}, wantPath: "/coffee-script.js"},
		{name: "relative", location: "vendor/coffee-script.js", wantType: &loader.FromDisk{}, wantPath: "/project/vendor/coffee-script.js"},
		{name: "absolute", location: "/opt/coffee-script.js", wantType: &loader.FromDisk{}, wantPath: "/opt/coffee-script.js"},
		{name: "file url", location: "file:///opt/coffee-script.js", wantType: &loader.FromDisk{}, wantPath: "/opt/coffee-script.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ScriptLoader(tt.location, "/project")
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, l)
			assert.Equal(t, tt.wantPath, l.GetSourceURL().Path)
		})
	}
}
