// Package montage provides discovery, loading and slicing of montage
// spritesheets produced by the offline image pipeline.
package montage

import (
	"fmt"
	"image"
	"os"

	// Montage files are PNG by default but the pipeline can also emit JPEG
	// atlases, so both decoders are registered.
	_ "image/jpeg"
	_ "image/png"
)

// File is one discovered montage spritesheet.
type File struct {
	Index int
	Path  string
}

// Grid describes how tiles are packed into each montage file. All files of a
// run share the same grid; only the final file may be partially filled.
type Grid struct {
	TilesPerRow    int
	TileRows       int
	TileResolution int
}

// TilesPerFile returns the tile capacity of one full montage file.
func (g Grid) TilesPerFile() int {
	return g.TilesPerRow * g.TileRows
}

// Loader abstracts montage image access so discovery can run against stub
// backends in tests.
type Loader interface {
	// Probe cheaply validates that a montage file exists and is decodable.
	Probe(path string) error
	// Load fully decodes a montage image.
	Load(path string) (image.Image, error)
}

// FSLoader loads montage images from the local filesystem.
type FSLoader struct{}

// Probe validates the file by decoding only its header.
func (FSLoader) Probe(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("decode montage header %s: %w", path, err)
	}
	return nil
}

// Load decodes the full montage image.
func (FSLoader) Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode montage %s: %w", path, err)
	}
	return img, nil
}
