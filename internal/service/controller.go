// Package service provides the visualization-mode state machine that drives
// montage discovery, dataset loading, atlas slicing and tile placement.
package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/atlasview/engine/internal/data/montage"
	"github.com/atlasview/engine/internal/data/positions"
	"github.com/atlasview/engine/internal/progress"
	"github.com/atlasview/engine/internal/scene"
)

// State is the controller's position in the load cycle.
type State string

const (
	StateIdle                   State = "idle"
	StateDiscovering            State = "discovering"
	StateLoadingDataset         State = "loading_dataset"
	StateLoadingAndPlacingTiles State = "loading_and_placing_tiles"
	StateReady                  State = "ready"
	StateFailed                 State = "failed"
)

// ErrSuperseded means a newer mode-switch started while this cycle was in
// flight; the cycle's results were discarded and no notification was sent.
var ErrSuperseded = errors.New("load cycle superseded by a newer switch")

// Notifier receives outbound notifications for the UI layer.
type Notifier interface {
	Progress(percent int)
	Ready()
	Failed(err error)
}

type nopNotifier struct{}

func (nopNotifier) Progress(int) {}
func (nopNotifier) Ready()       {}
func (nopNotifier) Failed(error) {}

// CycleRecord summarizes one completed load cycle for the history store.
type CycleRecord struct {
	Collection   string
	Mode         string
	MontageFiles int
	TilesPlaced  int
	Duration     time.Duration
	Status       string // "ready" or "failed"
	Error        string
}

// ControllerConfig contains controller configuration.
type ControllerConfig struct {
	Collection     string
	Grid           montage.Grid
	Probe          *montage.Probe
	Dataset        *positions.Dataset
	Loader         montage.Loader
	Scene          *scene.Manager
	Camera         *scene.Camera
	Tracker        *progress.Tracker
	Notifier       Notifier
	DefaultMode    scene.Mode
	DefaultSpacing float64
	// SettleDelay is how long the loading indicator lingers after the final
	// percentage paints, so it never flashes away mid-paint.
	SettleDelay time.Duration
}

// Controller owns one visualization session: the current mode, the spacing
// scalar, the loaded dataset, and the scene built from them.
type Controller struct {
	collection  string
	grid        montage.Grid
	probe       *montage.Probe
	dataset     *positions.Dataset
	loader      montage.Loader
	scene       *scene.Manager
	camera      *scene.Camera
	tracker     *progress.Tracker
	notifier    Notifier
	settleDelay time.Duration

	// OnCycleComplete, when set, is invoked after every finished cycle.
	OnCycleComplete func(CycleRecord)

	mu         sync.Mutex
	state      State
	mode       scene.Mode
	spacing    float64
	bounds     positions.Bounds
	generation uint64
	lastErr    error
}

// NewController creates a controller in the Idle state.
func NewController(cfg ControllerConfig) *Controller {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	loader := cfg.Loader
	if loader == nil {
		loader = montage.FSLoader{}
	}
	mode := cfg.DefaultMode
	if mode == "" {
		mode = scene.Mode3D
	}
	spacing := cfg.DefaultSpacing
	if spacing == 0 {
		spacing = 4.0
	}

	return &Controller{
		collection:  cfg.Collection,
		grid:        cfg.Grid,
		probe:       cfg.Probe,
		dataset:     cfg.Dataset,
		loader:      loader,
		scene:       cfg.Scene,
		camera:      cfg.Camera,
		tracker:     cfg.Tracker,
		notifier:    notifier,
		settleDelay: cfg.SettleDelay,
		state:       StateIdle,
		mode:        mode,
		spacing:     spacing,
	}
}

// Start runs the initial load cycle for the configured default mode.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()
	return c.Switch(ctx, mode)
}

// Switch runs a full load cycle into the target mode. The switch is atomic
// from the caller's perspective: either it completes and the new tile set
// replaces the old one in a single commit, or the prior visualization stays
// authoritative. Concurrent switches are single-flighted by a generation
// counter; the later request wins and the earlier one's results are dropped.
func (c *Controller) Switch(ctx context.Context, target scene.Mode) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	prevMode := c.mode
	spacing := c.spacing
	c.state = StateDiscovering
	c.mu.Unlock()

	start := time.Now()
	files, placed, err := c.runCycle(ctx, gen, prevMode, target, spacing)

	if errors.Is(err, ErrSuperseded) {
		return err
	}

	if err != nil {
		c.mu.Lock()
		superseded := gen != c.generation
		if !superseded {
			// The prior visualization stays authoritative: mode, tiles and
			// camera are all untouched.
			c.state = StateFailed
			c.lastErr = err
		}
		c.mu.Unlock()
		if superseded {
			return ErrSuperseded
		}

		log.Printf("viz[%s]: switch to %s failed: %v", c.collection, target, err)
		c.notifier.Failed(err)
		c.recordCycle(target, files, placed, time.Since(start), err)
		return err
	}

	if c.settleDelay > 0 {
		time.Sleep(c.settleDelay)
	}
	c.notifier.Ready()
	c.recordCycle(target, files, placed, time.Since(start), nil)
	return nil
}

// runCycle executes discovery, dataset load and tile staging, then commits
// the staged tile set if this cycle is still the current generation.
func (c *Controller) runCycle(ctx context.Context, gen uint64, prevMode, target scene.Mode, spacing float64) (int, int, error) {
	// Discovery. An empty result is valid: the cycle commits an empty scene.
	files := c.probe.Discover(ctx)
	c.resetTracker(gen, 1+len(files))

	// Dataset load. Progress advances exactly once whether or not the file
	// parsed, so the UI never stalls on a broken dataset.
	c.setState(gen, StateLoadingDataset)
	records, err := c.dataset.Load(target.String())
	c.tick(gen)
	if err != nil {
		return len(files), 0, err
	}

	// Stage the full replacement tile set before touching the scene. A late
	// montage failure therefore never leaves a partially populated scene:
	// the commit below is all-or-nothing.
	c.setState(gen, StateLoadingAndPlacingTiles)
	perFile := c.grid.TilesPerFile()
	staged := make([]*scene.Tile, 0, len(records))
	offset := 0
	for _, f := range files {
		img, err := c.loader.Load(f.Path)
		if err != nil {
			// Non-fatal: this file contributes zero tiles. The offset still
			// advances by the file's capacity so later files keep their
			// dataset alignment.
			log.Printf("viz[%s]: skipping unloadable montage %s: %v", c.collection, f.Path, err)
			c.tick(gen)
			offset += perFile
			continue
		}

		for slot := 0; slot < perFile; slot++ {
			idx := offset + slot
			if idx >= len(records) {
				// Remaining slots of the final file are unoccupied.
				log.Printf("viz[%s]: montage %s: dataset exhausted, %d unoccupied slots skipped",
					c.collection, f.Path, perFile-slot)
				break
			}
			rec := records[idx]
			coord := scene.Coord{X: rec.X, Y: rec.Y, Z: rec.Z}
			staged = append(staged, &scene.Tile{
				DatasetIndex: idx,
				MontageFile:  f.Index,
				Coord:        coord,
				Texture:      montage.Slice(img, slot, c.grid.TilesPerRow, c.grid.TileResolution),
				Position:     scene.PositionFor(coord, target, spacing),
			})
		}
		c.tick(gen)
		offset += perFile
	}

	// Commit, unless a newer switch has started in the meantime.
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return len(files), 0, ErrSuperseded
	}
	c.scene.Commit(staged)
	c.camera.ApplyFraming(prevMode, target)
	c.mode = target
	c.bounds = positions.ComputeBounds(records)
	c.state = StateReady
	c.lastErr = nil
	c.mu.Unlock()

	return len(files), len(staged), nil
}

// setState updates the controller state if the cycle is still current.
func (c *Controller) setState(gen uint64, s State) {
	c.mu.Lock()
	if gen == c.generation {
		c.state = s
	}
	c.mu.Unlock()
}

// resetTracker starts a fresh progress count for the cycle if it is still
// current.
func (c *Controller) resetTracker(gen uint64, total int) {
	c.mu.Lock()
	if gen == c.generation {
		c.tracker.Reset(total)
	}
	c.mu.Unlock()
}

// tick advances the shared progress tracker and forwards the percentage to
// the UI. Stale cycles skip the tracker entirely so their leftover ticks
// cannot inflate the count a newer cycle has already reset.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	pct := c.tracker.Tick()
	c.mu.Unlock()
	c.notifier.Progress(pct)
}

func (c *Controller) recordCycle(target scene.Mode, files, placed int, d time.Duration, err error) {
	if c.OnCycleComplete == nil {
		return
	}
	rec := CycleRecord{
		Collection:   c.collection,
		Mode:         target.String(),
		MontageFiles: files,
		TilesPlaced:  placed,
		Duration:     d,
		Status:       "ready",
	}
	if err != nil {
		rec.Status = "failed"
		rec.Error = err.Error()
	}
	c.OnCycleComplete(rec)
}

// SetSpacing updates the live spacing scalar and repositions every tile in
// place. Tiles keep their textures and dataset associations; grid mode is
// unaffected by design.
func (c *Controller) SetSpacing(v float64) {
	c.mu.Lock()
	c.spacing = v
	mode := c.mode
	c.mu.Unlock()
	c.scene.Reposition(mode, v)
}

// SetAxisVisible toggles the axis fixture.
func (c *Controller) SetAxisVisible(visible bool) {
	c.scene.SetFixtureVisible("axis", visible)
}

// Mode returns the current (last committed) visualization mode.
func (c *Controller) Mode() scene.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Spacing returns the live spacing scalar.
func (c *Controller) Spacing() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spacing
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation returns the current load-cycle generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Bounds returns the coordinate envelope of the committed dataset.
func (c *Controller) Bounds() positions.Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

// Err returns the error of the last failed cycle, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Scene returns the managed scene.
func (c *Controller) Scene() *scene.Manager {
	return c.scene
}

// Camera returns the session camera.
func (c *Controller) Camera() *scene.Camera {
	return c.camera
}

// Grid returns the montage packing geometry.
func (c *Controller) Grid() montage.Grid {
	return c.grid
}

// Snapshot is the externally visible session state.
type Snapshot struct {
	Collection    string           `json:"collection"`
	State         State            `json:"state"`
	Mode          scene.Mode       `json:"mode"`
	Is3D          bool             `json:"is_3d"`
	Spacing       float64          `json:"spacing"`
	AxisVisible   bool             `json:"axis_visible"`
	TileCount     int              `json:"tile_count"`
	Generation    uint64           `json:"generation"`
	Percent       int              `json:"percent"`
	Camera        scene.Vec3       `json:"camera"`
	MaxPolarAngle float64          `json:"max_polar_angle"`
	Bounds        positions.Bounds `json:"bounds"`
	Error         string           `json:"error,omitempty"`
}

// Snapshot captures the session state for the API layer.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		Collection: c.collection,
		State:      c.state,
		Mode:       c.mode,
		Is3D:       c.mode.Is3D(),
		Spacing:    c.spacing,
		Generation: c.generation,
		Bounds:     c.bounds,
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}
	c.mu.Unlock()

	s.AxisVisible = c.scene.FixtureVisible("axis")
	s.TileCount = c.scene.Count()
	s.Percent = c.tracker.Percent()
	s.Camera = c.camera.Position()
	s.MaxPolarAngle = c.camera.MaxPolarAngle()
	return s
}
