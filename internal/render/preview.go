// Package render rasterizes top-down previews of the current scene using
// fogleman/gg.
package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sort"
	"sync"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/atlasview/engine/internal/scene"
	"github.com/atlasview/engine/pkg/colormap"
)

// Config contains renderer configuration.
type Config struct {
	PreviewSize     int
	DefaultColormap string
}

// Options selects how a preview is drawn.
type Options struct {
	// Style is "image" (scaled thumbnails) or "points" (depth-colored dots).
	Style       string
	AxisVisible bool
}

// PreviewRenderer renders scene previews and encodes tile textures.
type PreviewRenderer struct {
	config      Config
	ramp        colormap.Ramp
	contextPool sync.Pool
	bufferPool  sync.Pool
}

// NewPreviewRenderer creates a new preview renderer.
func NewPreviewRenderer(cfg Config) *PreviewRenderer {
	ramp, ok := colormap.ByName(cfg.DefaultColormap)
	if !ok {
		ramp = colormap.Viridis
	}

	return &PreviewRenderer{
		config: cfg,
		ramp:   ramp,
		contextPool: sync.Pool{
			New: func() interface{} {
				return gg.NewContext(cfg.PreviewSize, cfg.PreviewSize)
			},
		},
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 32*1024))
			},
		},
	}
}

// RenderPreview draws the tile set as a top-down orthographic projection.
// In 3D mode tiles are painted back-to-front so nearer tiles cover farther
// ones.
func (r *PreviewRenderer) RenderPreview(tiles []*scene.Tile, mode scene.Mode, opts Options) ([]byte, error) {
	dc := r.contextPool.Get().(*gg.Context)
	defer r.contextPool.Put(dc)

	dc.SetColor(color.White)
	dc.Clear()

	size := float64(r.config.PreviewSize)

	if len(tiles) == 0 {
		if opts.AxisVisible {
			r.drawAxis(dc, size/2, size/2)
		}
		return r.encodeContext(dc)
	}

	minX, maxX := tiles[0].Position.X, tiles[0].Position.X
	minY, maxY := tiles[0].Position.Y, tiles[0].Position.Y
	for _, t := range tiles {
		if t.Position.X < minX {
			minX = t.Position.X
		}
		if t.Position.X > maxX {
			maxX = t.Position.X
		}
		if t.Position.Y < minY {
			minY = t.Position.Y
		}
		if t.Position.Y > maxY {
			maxY = t.Position.Y
		}
	}

	// Pad by half a tile so edge tiles are not clipped.
	minX -= scene.GridCellSize / 2
	maxX += scene.GridCellSize / 2
	minY -= scene.GridCellSize / 2
	maxY += scene.GridCellSize / 2

	extent := maxX - minX
	if maxY-minY > extent {
		extent = maxY - minY
	}
	if extent <= 0 {
		extent = 1
	}
	px := size / extent
	// Center the world extent on the canvas; world y points up, canvas y
	// points down.
	centerX := (minX + maxX) / 2
	centerY := (minY + maxY) / 2
	toCanvas := func(p scene.Vec3) (float64, float64) {
		return size/2 + (p.X-centerX)*px, size/2 - (p.Y-centerY)*px
	}

	ordered := tiles
	if mode.Is3D() {
		ordered = make([]*scene.Tile, len(tiles))
		copy(ordered, tiles)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Position.Z < ordered[j].Position.Z
		})
	}

	minZ, maxZ := zRange(ordered)

	tileEdge := scene.GridCellSize * px
	if tileEdge < 1 {
		tileEdge = 1
	}

	for _, t := range ordered {
		cx, cy := toCanvas(t.Position)
		if opts.Style == "points" || t.Texture == nil {
			norm := 0.5
			if maxZ > minZ {
				norm = (t.Position.Z - minZ) / (maxZ - minZ)
			}
			dc.SetColor(r.ramp.At(norm))
			radius := tileEdge / 3
			if radius < 2 {
				radius = 2
			}
			dc.DrawCircle(cx, cy, radius)
			dc.Fill()
			continue
		}

		dst, ok := dc.Image().(*image.RGBA)
		if !ok {
			// gg contexts are RGBA-backed; fall back to a dot if not.
			dc.SetColor(r.ramp.At(0.5))
			dc.DrawCircle(cx, cy, 2)
			dc.Fill()
			continue
		}
		rect := image.Rect(
			int(cx-tileEdge/2), int(cy-tileEdge/2),
			int(cx+tileEdge/2), int(cy+tileEdge/2),
		)
		xdraw.ApproxBiLinear.Scale(dst, rect, t.Texture, t.Texture.Bounds(), xdraw.Over, nil)
	}

	if opts.AxisVisible {
		ox, oy := toCanvas(scene.Vec3{})
		r.drawAxis(dc, ox, oy)
	}

	return r.encodeContext(dc)
}

// drawAxis paints the reference cross through the world origin.
func (r *PreviewRenderer) drawAxis(dc *gg.Context, ox, oy float64) {
	size := float64(r.config.PreviewSize)
	dc.SetLineWidth(1)

	dc.SetColor(color.RGBA{214, 39, 40, 160})
	dc.DrawLine(0, oy, size, oy)
	dc.Stroke()

	dc.SetColor(color.RGBA{44, 160, 44, 160})
	dc.DrawLine(ox, 0, ox, size)
	dc.Stroke()
}

// EncodeTexture PNG-encodes one sliced tile texture.
func (r *PreviewRenderer) EncodeTexture(tex *image.RGBA) ([]byte, error) {
	buf := r.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		r.bufferPool.Put(buf)
	}()

	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, tex); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func (r *PreviewRenderer) encodeContext(dc *gg.Context) ([]byte, error) {
	buf := r.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		r.bufferPool.Put(buf)
	}()

	// Use fast PNG encoder
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, dc.Image()); err != nil {
		return nil, err
	}

	// Copy buffer contents (buffer will be reused)
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

func zRange(tiles []*scene.Tile) (float64, float64) {
	if len(tiles) == 0 {
		return 0, 0
	}
	minZ, maxZ := tiles[0].Position.Z, tiles[0].Position.Z
	for _, t := range tiles {
		if t.Position.Z < minZ {
			minZ = t.Position.Z
		}
		if t.Position.Z > maxZ {
			maxZ = t.Position.Z
		}
	}
	return minZ, maxZ
}
