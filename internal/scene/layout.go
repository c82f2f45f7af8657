package scene

// Vec3 is a world-space position.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Coord is the raw feature coordinate of one dataset record. Tiles retain
// their Coord so they can be repositioned in place when spacing changes.
type Coord struct {
	X float64
	Y float64
	Z float64
}

// GridCellSize is the rendered tile's edge length. Grid mode multiplies raw
// coordinates by this constant instead of the live spacing value: the grid is
// defined as gap-free, so the spacing slider must not perturb it.
const GridCellSize = 2.0

// PositionFor maps a raw coordinate into world space for the given mode.
// Spacing scales the scatter modes; grid mode ignores it, and z is dropped
// outside of 3D.
func PositionFor(c Coord, mode Mode, spacing float64) Vec3 {
	switch mode {
	case Mode3D:
		return Vec3{X: c.X * spacing, Y: c.Y * spacing, Z: c.Z * spacing}
	case ModeGrid2D:
		return Vec3{X: c.X * GridCellSize, Y: c.Y * GridCellSize}
	default:
		return Vec3{X: c.X * spacing, Y: c.Y * spacing}
	}
}
