// Package scene owns the visualization modes, the tile layout rules, and the
// set of tile objects currently placed in the scene.
package scene

import "fmt"

// Mode is one of the supported visualization layouts.
type Mode string

const (
	// Mode3D scatters tiles by all three feature coordinates.
	Mode3D Mode = "3d"
	// Mode2D scatters tiles by x/y only.
	Mode2D Mode = "2d"
	// ModeGrid2D lays tiles out as a seamless uniform grid.
	ModeGrid2D Mode = "2d_grid"
)

// ParseMode validates a mode name coming from the UI layer.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Mode3D, Mode2D, ModeGrid2D:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown visualization mode: %q", s)
}

// Is3D reports whether the mode uses the z coordinate.
func (m Mode) Is3D() bool {
	return m == Mode3D
}

func (m Mode) String() string {
	return string(m)
}
