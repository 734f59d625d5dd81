// Command gen downloads the CoffeeScript browser compiler into the coffeejs package.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robbyt/go-coffeescript/loader"
)

const urlTemplate = "https://cdn.jsdelivr.net/npm/coffee-script@%s/extras/coffee-script.js"

func main() {
	version := flag.String("version", "1.12.7", "CoffeeScript release to download")
	out := flag.String("out", "dist/coffee-script.js", "output file")
	flag.Parse()

	opts := loader.DefaultHTTPOptions()
	opts.Timeout = 2 * time.Minute

	l, err := loader.NewFromHTTPWithOptions(fmt.Sprintf(urlTemplate, *version), opts)
	if err != nil {
		log.Fatalf("Failed to create loader: %v", err)
	}

	body, err := fetch(l)
	if err != nil {
		log.Fatalf("Failed to download compiler script: %v", err)
	}

	if !bytes.Contains(body, []byte("CoffeeScript")) {
		log.Fatalf("Downloaded file does not look like the CoffeeScript compiler (%d bytes)", len(body))
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := os.WriteFile(*out, body, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("Wrote CoffeeScript %s to %s (%d bytes)", *version, *out, len(body))
}

func fetch(l loader.Loader) ([]byte, error) {
	r, err := l.GetReader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
