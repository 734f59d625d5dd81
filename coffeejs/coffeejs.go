// Package coffeejs bundles the CoffeeScript compiler script that the default engine
// evaluates.
//
// The script is not checked in. Until `go generate ./coffeejs` has downloaded it into
// dist/, every compilation through the default engine fails with an environment error
// wrapping ErrNotBundled. Builds without it still succeed. Compilers configured with their
// own script (compiler.WithScriptLoader, coffeescript.FromScriptFile and friends, or
// `coffeec --script`) do not need it.
package coffeejs

//go:generate go run ./gen -version 1.12.7 -out dist/coffee-script.js

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/robbyt/go-coffeescript/loader"
)

// ScriptName is the file name of the bundled compiler script.
const ScriptName = "coffee-script.js"

// EntryPoint is the function the bundled script exposes once evaluated.
const EntryPoint = "CoffeeScript.compile"

// ErrNotBundled is returned when the binary was built without the compiler script.
var ErrNotBundled = errors.New("bundled coffee-script.js not present; run go generate ./coffeejs")

//go:embed dist
var dist embed.FS

// Script returns the bundled compiler script.
func Script() ([]byte, error) {
	b, err := fs.ReadFile(dist, "dist/"+ScriptName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotBundled
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled script: %w", err)
	}
	return b, nil
}

// NewLoader returns a loader serving the bundled compiler script.
func NewLoader() (loader.Loader, error) {
	b, err := Script()
	if err != nil {
		return nil, err
	}
	return loader.NewFromBytes(b, ScriptName)
}
