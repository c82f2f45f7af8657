// Package positions loads the per-image coordinate datasets produced by the
// offline feature pipeline (dominant color or embedding coordinates).
package positions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Record is one entry per source image. Its index in the loaded array
// corresponds to the same index across the concatenated montage tile order.
type Record struct {
	// Image is the source filename; present in the color-derived variant,
	// absent in the plain coordinate variant.
	Image string  `json:"image,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	// Z is meaningful only in the 3D mode.
	Z float64 `json:"z,omitempty"`
}

// LoadError means the dataset file was missing or unparsable. It is fatal for
// the current load cycle: the caller must abort and leave the scene in its
// prior valid state.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load position dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Dataset resolves a visualization mode to its fixed dataset file and parses
// the records. Dataset files ending in .zst are transparently decompressed.
type Dataset struct {
	dir     string
	files   map[string]string // mode name -> filename
	decoder *zstd.Decoder
}

// NewDataset creates a dataset with a fixed mode-to-filename mapping.
func NewDataset(dir string, files map[string]string) (*Dataset, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Dataset{
		dir:     dir,
		files:   files,
		decoder: decoder,
	}, nil
}

// Load reads and parses the dataset for the given mode name.
func (d *Dataset) Load(mode string) ([]Record, error) {
	name, ok := d.files[mode]
	if !ok {
		return nil, &LoadError{
			Path: d.dir,
			Err:  fmt.Errorf("no dataset configured for mode %q", mode),
		}
	}

	path := filepath.Join(d.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	if strings.HasSuffix(name, ".zst") {
		data, err = d.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("zstd decompress failed: %w", err)}
		}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return records, nil
}

// Close releases the decompressor.
func (d *Dataset) Close() {
	d.decoder.Close()
}
