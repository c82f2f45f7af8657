package render

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/atlasview/engine/internal/scene"
)

func newTestRenderer() *PreviewRenderer {
	return NewPreviewRenderer(Config{PreviewSize: 64, DefaultColormap: "viridis"})
}

func testTiles(n int) []*scene.Tile {
	tiles := make([]*scene.Tile, n)
	for i := range tiles {
		tex := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for p := range tex.Pix {
			tex.Pix[p] = 0xFF
		}
		tiles[i] = &scene.Tile{
			DatasetIndex: i,
			Texture:      tex,
			Position:     scene.Vec3{X: float64(i), Y: float64(i % 3), Z: float64(-i)},
		}
	}
	return tiles
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("preview is not valid PNG: %v", err)
	}
	return img
}

func TestRenderPreview_ImageStyle(t *testing.T) {
	r := newTestRenderer()

	data, err := r.RenderPreview(testTiles(5), scene.Mode3D, Options{Style: "image", AxisVisible: true})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	img := decodePNG(t, data)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Errorf("unexpected preview size: %v", img.Bounds())
	}
}

func TestRenderPreview_PointsStyle(t *testing.T) {
	r := newTestRenderer()

	data, err := r.RenderPreview(testTiles(5), scene.Mode2D, Options{Style: "points"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	decodePNG(t, data)
}

func TestRenderPreview_EmptyScene(t *testing.T) {
	r := newTestRenderer()

	data, err := r.RenderPreview(nil, scene.Mode2D, Options{AxisVisible: true})
	if err != nil {
		t.Fatalf("render of empty scene failed: %v", err)
	}
	decodePNG(t, data)
}

func TestEncodeTexture(t *testing.T) {
	r := newTestRenderer()
	tex := image.NewRGBA(image.Rect(0, 0, 8, 8))

	data, err := r.EncodeTexture(tex)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	img := decodePNG(t, data)
	if img.Bounds().Dx() != 8 {
		t.Errorf("unexpected texture size: %v", img.Bounds())
	}
}
