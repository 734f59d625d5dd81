package coffeejs

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScript(t *testing.T) {
	t.Parallel()

	b, err := Script()
	if errors.Is(err, ErrNotBundled) {
		_, loaderErr := NewLoader()
		require.ErrorIs(t, loaderErr, ErrNotBundled)
		t.Skip(err.Error())
	}
	require.NoError(t, err)
	require.Contains(t, string(b), "CoffeeScript")

	l, err := NewLoader()
	require.NoError(t, err)
	r, err := l.GetReader()
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, b, got)
	require.Equal(t, "/"+ScriptName, l.GetSourceURL().Path)
}
