// Package loader materializes tabular files into datasets. The profiling
// engine never calls it; it only consumes the resulting dataset.Table.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
)

// Options controls how files are read.
type Options struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// XLSX sheet selection; SheetName wins over the 1-based SheetIndex.
	SheetName  string
	SheetIndex int
	// Parse controls null tokens, number locale and kind pinning.
	Parse dataset.ParseOptions
}

// Loader reads one file format.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*dataset.Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// Load selects a loader based on filename and returns the parsed dataset.
func Load(path string, opt Options) (*dataset.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
