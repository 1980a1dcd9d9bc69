// Package meshcache writes derived mesh/GLTF scratch artifacts to the
// per-agent scratch directory, snappy-compressed the way the teacher's
// entryWriter wraps its wire stream (github.com/golang/snappy). Mesh JSON
// compresses well (long runs of repeated float formatting and index
// tuples), so this meaningfully shrinks what accumulates per session.
package meshcache

import (
	"os"
	"path/filepath"

	"github.com/golang/snappy"
)

// Put compresses data and writes it to <dir>/<name>.snappy.
func Put(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	enc := snappy.Encode(nil, data)
	return os.WriteFile(filepath.Join(dir, name+".snappy"), enc, 0600)
}

// Get reads back and decompresses a blob written by Put.
func Get(dir, name string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name+".snappy"))
	if err != nil {
		return nil, err
	}
	return snappy.Decode(nil, raw)
}
