package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags []Flag
		want  string
	}{
		{name: "empty", flags: nil, want: "{}"},
		{name: "bare", flags: []Flag{Bare}, want: "{bare: true}"},
		{name: "compress is host side only", flags: []Flag{Compress}, want: "{}"},
		{name: "bare and compress", flags: []Flag{Compress, Bare}, want: "{bare: true}"},
		{name: "order is stable", flags: []Flag{Literate, Header, Bare}, want: "{bare: true, header: true, literate: true}"},
		{name: "duplicates dropped", flags: []Flag{Bare, Bare, Header}, want: "{bare: true, header: true}"},
		{name: "unknown dropped", flags: []Flag{Flag(99), Bare}, want: "{bare: true}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := New(tt.flags...)
			assert.Equal(t, tt.want, set.Serialize())
			assert.Equal(t, set.Serialize(), New(tt.flags...).Serialize())
		})
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	set := New(Bare, Compress)
	assert.True(t, set.Contains(Bare))
	assert.True(t, set.Contains(Compress))
	assert.False(t, set.Contains(Header))
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []Flag{Bare, Compress}, set.Flags())

	var nilSet *OptionSet
	assert.False(t, nilSet.Contains(Bare))
	assert.Equal(t, 0, nilSet.Len())
	assert.Equal(t, "{}", nilSet.Serialize())
}

func TestWithDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := New(Bare)
	extended := base.With(Compress)

	assert.False(t, base.Contains(Compress))
	assert.True(t, extended.Contains(Compress))
	assert.True(t, extended.Contains(Bare))

	flags := base.Flags()
	flags[0] = Header
	assert.True(t, base.Contains(Bare), "Flags must return a copy")
}

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		bare bool
	}{
		{name: "bare", args: []string{"--bare"}, bare: true},
		{name: "nil", args: nil},
		{name: "empty string", args: []string{""}},
		{name: "other flag", args: []string{"--compress"}},
		{name: "bare plus extra", args: []string{"--bare", "--compress"}},
		{name: "single dash", args: []string{"-bare"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := ParseArgs(tt.args...)
			require.NotNil(t, set)
			assert.Equal(t, tt.bare, set.Contains(Bare))
			if !tt.bare {
				assert.Equal(t, 0, set.Len())
			}
		})
	}
}

func TestParseFlag(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"bare", "--bare", "BARE", " bare "} {
		f, ok := ParseFlag(name)
		require.True(t, ok, name)
		assert.Equal(t, Bare, f)
	}

	f, ok := ParseFlag("compress")
	require.True(t, ok)
	assert.Equal(t, Compress, f)

	_, ok = ParseFlag("minify")
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OptionSet{bare, compress}", New(Compress, Bare).String())
	assert.Equal(t, "unknown", Flag(0).String())
	assert.False(t, Flag(0).Valid())
	assert.True(t, Literate.Valid())
}
