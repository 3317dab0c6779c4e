// Package tiffio reads and writes the multi-page grayscale TIFF hyperstacks
// produced by microscopy acquisition software.
//
// golang.org/x/image/tiff only exposes the first directory of a file, so the
// hyperstack reader walks the IFD chain itself. Single-plane images (masks,
// previews) still decode through x/image/tiff.
package tiffio

import (
	"os"
	"sort"

	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/schema"
)

// ErrNotHyperstack aliases the pipeline-level sentinel so callers of this
// package can match it without importing contract.
var ErrNotHyperstack = contract.ErrNotHyperstack

// Store is the file-system implementation of contract.VolumeStore.
type Store struct{}

var _ contract.VolumeStore = Store{} // Compile-time check

// NewStore creates a Store.
func NewStore() Store {
	return Store{}
}

// ListStacks returns the TIFF file names in dir, sorted lexically.
func (Store) ListStacks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !contract.IsStackFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ReadVolume loads a hyperstack file as a (T, Z, Y, X) volume.
func (Store) ReadVolume(path string, frames, slices int) (*schema.Volume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeVolume(data, frames, slices)
}

// WriteStack writes projected timepoint planes as a multi-page TIFF.
func (Store) WriteStack(path string, planes [][]uint16, h, w int) error {
	data, err := encodeStack(planes, h, w)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMask loads a single-plane label image.
func (Store) ReadMask(path string) ([]uint32, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer func() { _ = f.Close() }()
	return decodeMask(f)
}
