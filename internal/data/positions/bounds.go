package positions

import "gonum.org/v1/gonum/floats"

// Bounds is the coordinate envelope of a dataset, used to frame previews.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
	MinZ float64 `json:"min_z"`
	MaxZ float64 `json:"max_z"`
}

// ComputeBounds returns the envelope of all record coordinates. The zero
// Bounds is returned for an empty dataset.
func ComputeBounds(records []Record) Bounds {
	if len(records) == 0 {
		return Bounds{}
	}

	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	zs := make([]float64, len(records))
	for i, r := range records {
		xs[i] = r.X
		ys[i] = r.Y
		zs[i] = r.Z
	}

	return Bounds{
		MinX: floats.Min(xs),
		MaxX: floats.Max(xs),
		MinY: floats.Min(ys),
		MaxY: floats.Max(ys),
		MinZ: floats.Min(zs),
		MaxZ: floats.Max(zs),
	}
}
