package scene

import (
	"image"
	"testing"
)

func texture() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 2, 2))
}

func TestManager_ClearTilesPreservesFixtures(t *testing.T) {
	m := NewManager()
	m.Instantiate(texture(), Coord{X: 1}, 0, 0, Vec3{X: 1})
	m.Instantiate(texture(), Coord{X: 2}, 1, 0, Vec3{X: 2})

	m.ClearTiles()

	if m.Count() != 0 {
		t.Errorf("expected 0 tiles after clear, got %d", m.Count())
	}
	fixtures := m.Fixtures()
	if len(fixtures) != 1 || fixtures[0].Name != "axis" {
		t.Errorf("axis fixture did not survive the purge: %v", fixtures)
	}
}

func TestManager_RepositionKeepsSetIntact(t *testing.T) {
	m := NewManager()
	tex1, tex2 := texture(), texture()
	m.Instantiate(tex1, Coord{X: 1, Y: 2, Z: 3}, 0, 0, PositionFor(Coord{X: 1, Y: 2, Z: 3}, Mode3D, 1))
	m.Instantiate(tex2, Coord{X: -1, Y: 0, Z: 5}, 1, 0, PositionFor(Coord{X: -1, Y: 0, Z: 5}, Mode3D, 1))

	m.Reposition(Mode3D, 4)

	tiles := m.Tiles()
	if len(tiles) != 2 {
		t.Fatalf("reposition changed tile count: %d", len(tiles))
	}
	if tiles[0].Texture != tex1 || tiles[1].Texture != tex2 {
		t.Error("reposition replaced tile textures")
	}
	if tiles[0].DatasetIndex != 0 || tiles[1].DatasetIndex != 1 {
		t.Error("reposition changed dataset associations")
	}
	if tiles[0].Position != (Vec3{X: 4, Y: 8, Z: 12}) {
		t.Errorf("unexpected position after reposition: %v", tiles[0].Position)
	}
}

func TestManager_RepositionUsesCurrentMode(t *testing.T) {
	m := NewManager()
	m.Instantiate(texture(), Coord{X: 2, Y: 3, Z: 4}, 0, 0, Vec3{})

	m.Reposition(Mode2D, 10)

	got := m.Tiles()[0].Position
	if got != (Vec3{X: 20, Y: 30, Z: 0}) {
		t.Errorf("expected z dropped in 2D, got %v", got)
	}
}

func TestManager_CommitReplacesAtomically(t *testing.T) {
	m := NewManager()
	m.Instantiate(texture(), Coord{X: 1}, 0, 0, Vec3{})

	staged := []*Tile{
		{DatasetIndex: 0, Coord: Coord{X: 5}, Texture: texture(), Position: Vec3{X: 5}},
		{DatasetIndex: 1, Coord: Coord{X: 6}, Texture: texture(), Position: Vec3{X: 6}},
		{DatasetIndex: 2, Coord: Coord{X: 7}, Texture: texture(), Position: Vec3{X: 7}},
	}
	m.Commit(staged)

	tiles := m.Tiles()
	if len(tiles) != 3 {
		t.Fatalf("expected 3 tiles after commit, got %d", len(tiles))
	}
	if tiles[0].ID == tiles[1].ID {
		t.Error("commit did not assign distinct tile IDs")
	}
	if len(m.Fixtures()) != 1 {
		t.Error("commit dropped fixtures")
	}
}

func TestManager_DirtyFlag(t *testing.T) {
	m := NewManager()
	if m.Dirty() {
		t.Error("fresh scene should not be dirty")
	}

	m.Instantiate(texture(), Coord{}, 0, 0, Vec3{})
	if !m.Dirty() {
		t.Error("instantiate should mark the scene dirty")
	}

	m.ClearDirty()
	m.Reposition(Mode2D, 2)
	if !m.Dirty() {
		t.Error("reposition should mark the scene dirty")
	}

	m.ClearDirty()
	m.ClearTiles()
	if !m.Dirty() {
		t.Error("clearTiles should mark the scene dirty")
	}
}

func TestManager_AxisVisibility(t *testing.T) {
	m := NewManager()
	if !m.FixtureVisible("axis") {
		t.Error("axis should start visible")
	}

	if ok := m.SetFixtureVisible("axis", false); !ok {
		t.Fatal("axis fixture not found")
	}
	if m.FixtureVisible("axis") {
		t.Error("axis should be hidden")
	}
	if ok := m.SetFixtureVisible("bounding_box", true); ok {
		t.Error("unknown fixture should report not found")
	}
}

func TestCamera_FramingRoundTrip(t *testing.T) {
	c := NewCamera()
	orbited := Vec3{X: 12, Y: -7, Z: 25}
	c.SetPosition(orbited)

	// Switching to 2D snaps top-down and clamps the polar range.
	c.ApplyFraming(Mode3D, Mode2D)
	if c.Position() == orbited {
		t.Error("2D framing should snap the camera away from the orbit pose")
	}
	if c.MaxPolarAngle() >= fullPolarRange {
		t.Error("2D framing should clamp polar rotation to a hemisphere")
	}

	// Returning to 3D resumes the pre-switch pose.
	c.ApplyFraming(Mode2D, Mode3D)
	if c.Position() != orbited {
		t.Errorf("3D framing should resume saved pose %v, got %v", orbited, c.Position())
	}
	if c.MaxPolarAngle() != fullPolarRange {
		t.Error("3D framing should allow full polar rotation")
	}
}
