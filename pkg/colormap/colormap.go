// Package colormap provides color ramps for scene previews.
package colormap

import "image/color"

// Ramp linearly interpolates between a fixed set of color stops over [0, 1].
type Ramp struct {
	stops []color.RGBA
}

// NewRamp builds a ramp from ordered color stops.
func NewRamp(stops ...color.RGBA) Ramp {
	return Ramp{stops: stops}
}

// At returns the interpolated color at position t, clamped to [0, 1].
func (r Ramp) At(t float64) color.RGBA {
	if len(r.stops) == 0 {
		return color.RGBA{A: 255}
	}
	if t <= 0 {
		return r.stops[0]
	}
	if t >= 1 {
		return r.stops[len(r.stops)-1]
	}

	pos := t * float64(len(r.stops)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(r.stops) {
		hi = len(r.stops) - 1
	}
	return lerp(r.stops[lo], r.stops[hi], pos-float64(lo))
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B))),
		A: 255,
	}
}

// Viridis colormap (matplotlib viridis).
var Viridis = NewRamp(
	color.RGBA{68, 1, 84, 255},
	color.RGBA{72, 35, 116, 255},
	color.RGBA{64, 67, 135, 255},
	color.RGBA{52, 94, 141, 255},
	color.RGBA{41, 120, 142, 255},
	color.RGBA{32, 144, 140, 255},
	color.RGBA{34, 167, 132, 255},
	color.RGBA{68, 190, 112, 255},
	color.RGBA{121, 209, 81, 255},
	color.RGBA{189, 222, 38, 255},
	color.RGBA{253, 231, 37, 255},
)

// Plasma colormap.
var Plasma = NewRamp(
	color.RGBA{13, 8, 135, 255},
	color.RGBA{75, 3, 161, 255},
	color.RGBA{125, 3, 168, 255},
	color.RGBA{168, 34, 150, 255},
	color.RGBA{203, 70, 121, 255},
	color.RGBA{229, 107, 93, 255},
	color.RGBA{248, 148, 65, 255},
	color.RGBA{253, 195, 40, 255},
	color.RGBA{240, 249, 33, 255},
)

// Magma colormap.
var Magma = NewRamp(
	color.RGBA{0, 0, 4, 255},
	color.RGBA{28, 16, 68, 255},
	color.RGBA{79, 18, 123, 255},
	color.RGBA{129, 37, 129, 255},
	color.RGBA{181, 54, 122, 255},
	color.RGBA{229, 80, 100, 255},
	color.RGBA{251, 135, 97, 255},
	color.RGBA{254, 194, 135, 255},
	color.RGBA{252, 253, 191, 255},
)

var ramps = map[string]Ramp{
	"viridis": Viridis,
	"plasma":  Plasma,
	"magma":   Magma,
}

// ByName looks up a ramp by its configured name.
func ByName(name string) (Ramp, bool) {
	r, ok := ramps[name]
	return r, ok
}
