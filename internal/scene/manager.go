package scene

import (
	"image"
	"sync"
)

// Tile is one renderable unit: one texture at one world position, tied to the
// dataset record it was built from.
type Tile struct {
	ID           int
	DatasetIndex int
	MontageFile  int
	Coord        Coord
	Texture      *image.RGBA
	Position     Vec3
}

// Fixture is a non-tile scene member (axis indicator, reference geometry)
// that survives tile purges.
type Fixture struct {
	Name    string
	Visible bool
}

// Manager owns the set of tile objects currently in the scene. All structural
// changes mark the scene dirty so the renderer knows a redraw is owed.
type Manager struct {
	mu       sync.RWMutex
	tiles    []*Tile
	fixtures []*Fixture
	nextID   int
	dirty    bool
}

// NewManager creates an empty scene with an axis fixture.
func NewManager() *Manager {
	return &Manager{
		fixtures: []*Fixture{{Name: "axis", Visible: true}},
	}
}

// Instantiate creates one tile and adds it to the managed set.
func (m *Manager) Instantiate(texture *image.RGBA, coord Coord, datasetIndex, montageFile int, pos Vec3) *Tile {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &Tile{
		ID:           m.nextID,
		DatasetIndex: datasetIndex,
		MontageFile:  montageFile,
		Coord:        coord,
		Texture:      texture,
		Position:     pos,
	}
	m.nextID++
	m.tiles = append(m.tiles, t)
	m.dirty = true
	return t
}

// ClearTiles removes every managed tile while preserving all non-tile scene
// members.
func (m *Manager) ClearTiles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles = nil
	m.dirty = true
}

// Commit atomically replaces the whole tile set with a staged replacement.
// Used by the mode controller so a half-built load never becomes visible.
func (m *Manager) Commit(tiles []*Tile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tiles = make([]*Tile, 0, len(tiles))
	for _, t := range tiles {
		t.ID = m.nextID
		m.nextID++
		m.tiles = append(m.tiles, t)
	}
	m.dirty = true
}

// Reposition recomputes every tile's world position from its retained raw
// coordinate and moves it in place. No tile is destroyed or re-sliced.
func (m *Manager) Reposition(mode Mode, spacing float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tiles {
		t.Position = PositionFor(t.Coord, mode, spacing)
	}
	m.dirty = true
}

// Tiles returns a snapshot of the managed tile set.
func (m *Manager) Tiles() []*Tile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Tile, len(m.tiles))
	copy(out, m.tiles)
	return out
}

// Count returns the number of managed tiles.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tiles)
}

// SetFixtureVisible toggles a fixture and reports whether it exists.
func (m *Manager) SetFixtureVisible(name string, visible bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.fixtures {
		if f.Name == name {
			if f.Visible != visible {
				f.Visible = visible
				m.dirty = true
			}
			return true
		}
	}
	return false
}

// FixtureVisible reports a fixture's visibility.
func (m *Manager) FixtureVisible(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.fixtures {
		if f.Name == name {
			return f.Visible
		}
	}
	return false
}

// Fixtures returns a snapshot of the non-tile scene members.
func (m *Manager) Fixtures() []Fixture {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Fixture, len(m.fixtures))
	for i, f := range m.fixtures {
		out[i] = *f
	}
	return out
}

// Dirty reports whether a redraw is owed.
func (m *Manager) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

// ClearDirty is called by the renderer once a frame has been emitted.
func (m *Manager) ClearDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = false
}
