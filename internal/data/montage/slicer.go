package montage

import (
	"image"
	"image/draw"
)

// Slice extracts the tileIndex-th tile of a montage image as a standalone
// square texture. Tiles are packed left-to-right, top-to-bottom. The function
// is pure: it copies the source rectangle into a fresh buffer and touches no
// shared state. The caller guarantees tileIndex is within the file's declared
// capacity.
func Slice(img image.Image, tileIndex, tilesPerRow, tileResolution int) *image.RGBA {
	row := tileIndex / tilesPerRow
	col := tileIndex % tilesPerRow

	src := image.Pt(
		img.Bounds().Min.X+col*tileResolution,
		img.Bounds().Min.Y+row*tileResolution,
	)

	dst := image.NewRGBA(image.Rect(0, 0, tileResolution, tileResolution))
	draw.Draw(dst, dst.Bounds(), img, src, draw.Src)
	return dst
}
