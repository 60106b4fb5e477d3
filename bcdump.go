// Package bcdump ties the bytecode codec to the filesystem: dumping a
// compiled function to a file and loading one back, the operation shape
// cmd/bcdump exposes as a CLI.
package bcdump

import (
	"os"

	"github.com/pkg/errors"

	"github.com/thebagchi/bcdump-go/lib/funcbc"
	"github.com/thebagchi/bcdump-go/lib/runtime"
)

// DumpToFile serializes fn and writes the result to filename, replacing
// any existing file.
func DumpToFile(fn *runtime.CompiledFunction, filename string) error {
	blob, err := funcbc.Dump(fn)
	if err != nil {
		return errors.Wrap(err, "bcdump: dump")
	}
	if err := os.WriteFile(filename, blob, 0o644); err != nil {
		return errors.Wrapf(err, "bcdump: write %s", filename)
	}
	return nil
}

// LoadFromFile reads filename and decodes it into a compiled function,
// rooting every intermediate allocation on a freshly created heap.
func LoadFromFile(filename string) (*runtime.CompiledFunction, error) {
	blob, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "bcdump: read %s", filename)
	}
	fn, err := funcbc.Load(blob, runtime.NewHeap())
	if err != nil {
		return nil, errors.Wrap(err, "bcdump: load")
	}
	return fn, nil
}
