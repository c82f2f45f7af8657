package colormap

import (
	"image/color"
	"testing"
)

func TestViridisEndpoints(t *testing.T) {
	t.Parallel()

	if got := Viridis.At(0); got != (color.RGBA{R: 68, G: 1, B: 84, A: 255}) {
		t.Fatalf("unexpected Viridis.At(0): %#v", got)
	}
	if got := Viridis.At(1); got != (color.RGBA{R: 253, G: 231, B: 37, A: 255}) {
		t.Fatalf("unexpected Viridis.At(1): %#v", got)
	}
}

func TestRampClampsOutOfRange(t *testing.T) {
	t.Parallel()

	if Plasma.At(-0.5) != Plasma.At(0) {
		t.Error("values below 0 should clamp to the first stop")
	}
	if Plasma.At(1.5) != Plasma.At(1) {
		t.Error("values above 1 should clamp to the last stop")
	}
}

func TestByName(t *testing.T) {
	t.Parallel()

	if _, ok := ByName("viridis"); !ok {
		t.Error("expected viridis ramp to be registered")
	}
	if _, ok := ByName("sepia"); ok {
		t.Error("unexpected ramp 'sepia'")
	}
}
