package world

import (
	"fmt"
	"log"
	"math/rand"
)

// Config carries the world parameters that are fixed for the lifetime
// of one epoch. Changing any of them requires a full Reset.
type Config struct {
	Width         int
	Height        int
	ViewWidth     int
	ViewHeight    int
	IntervalMin   int
	IntervalMax   int
	EmbeddingSize int
	Seed          int64
}

func DefaultConfig() Config {
	return Config{
		Width:         100,
		Height:        100,
		ViewWidth:     7,
		ViewHeight:    7,
		IntervalMin:   10,
		IntervalMax:   20,
		EmbeddingSize: 16,
		Seed:          0,
	}
}

// MoveRule is the pluggable tick-advance rule: movement, collision
// resolution, reward and terminal flagging. The engine ships no default
// rule; with a nil rule AdvanceTick only advances the light clocks.
type MoveRule interface {
	Apply(w *World)
}

// lightDef is the persisted layout of one light, replayed on Reset.
// The cycle interval is resampled at creation, so it is not stored.
type lightDef struct {
	pos Position
	w   int
	h   int
}

// World is the composition root: it owns the grid, the light bank, the
// agent directory and the seeded random stream. A single control thread
// drives all mutation; only observation extraction fans out.
type World struct {
	cfg Config
	rng *rand.Rand

	grid   *Grid
	lights *LightBank
	dir    *Directory

	// Static layout, captured at add time and replayed on Reset.
	walls     []Position
	lightDefs []lightDef
	parks     []Park
	buildings []Building

	rule        MoveRule
	renderer    FrameRenderer
	renderDir   string
	firstRender bool

	tick uint64

	logger *log.Logger
	// fatalf is the unrecoverable-error hook. Configuration and
	// invariant violations are caller bugs and terminate the process.
	fatalf func(format string, args ...any)
}

func New(logger *log.Logger) *World {
	if logger == nil {
		logger = log.Default()
	}
	w := &World{
		cfg:         DefaultConfig(),
		logger:      logger,
		firstRender: true,
	}
	w.fatalf = logger.Fatalf
	w.rng = rand.New(rand.NewSource(w.cfg.Seed))
	w.rebuild()
	return w
}

func (w *World) Config() Config       { return w.cfg }
func (w *World) Grid() *Grid          { return w.grid }
func (w *World) Lights() *LightBank   { return w.lights }
func (w *World) Tick() uint64         { return w.tick }
func (w *World) NumAgents() int       { return w.dir.Len() }
func (w *World) AgentAt(i int) *Agent { return w.dir.At(i) }
func (w *World) Agents() []*Agent     { return w.dir.All() }

func (w *World) SetMoveRule(r MoveRule) { w.rule = r }

// rebuild constructs grid, lights and directory from the current config
// and replays the persisted static layout. Light intervals are sampled
// fresh from the world random stream.
func (w *World) rebuild() {
	w.grid = NewGrid(w.cfg.Width, w.cfg.Height)
	w.lights = &LightBank{}
	w.dir = &Directory{}
	w.tick = 0

	for _, p := range w.walls {
		if err := w.grid.AddWall(p); err != nil {
			w.fatalf("world: replay walls: %v", err)
			return
		}
	}
	for _, b := range w.buildings {
		if err := w.grid.AddBuilding(b.Pos, b.Width, b.Height); err != nil {
			w.fatalf("world: replay buildings: %v", err)
			return
		}
	}
	for _, p := range w.parks {
		if err := w.grid.AddPark(p.Pos, p.Width, p.Height); err != nil {
			w.fatalf("world: replay parks: %v", err)
			return
		}
	}
	for _, d := range w.lightDefs {
		idx := w.lights.Add(d.pos, d.w, d.h, w.sampleInterval())
		if err := w.grid.AddLight(d.pos, d.w, d.h, idx); err != nil {
			w.fatalf("world: replay lights: %v", err)
			return
		}
	}
}

// Reset starts a new epoch: the id sequence restarts at zero, the grid
// is rebuilt from the persisted layout, and all agents are discarded.
// Agent pointers held across Reset are invalid.
func (w *World) Reset() {
	w.rebuild()
	w.firstRender = true
}

func (w *World) sampleInterval() int {
	span := w.cfg.IntervalMax - w.cfg.IntervalMin
	if span <= 0 {
		return w.cfg.IntervalMin
	}
	return w.cfg.IntervalMin + w.rng.Intn(span)
}

// AddWalls places walls at explicit coordinates and records them for
// Reset replay.
func (w *World) AddWalls(positions []Position) error {
	for _, p := range positions {
		if err := w.grid.AddWall(p); err != nil {
			return err
		}
		w.walls = append(w.walls, p)
	}
	return nil
}

// AddLightAt creates a timed light with a cycle interval sampled from
// [interval_min, interval_max) off the world random stream.
func (w *World) AddLightAt(pos Position, spanW, spanH int) error {
	idx := w.lights.Add(pos, spanW, spanH, w.sampleInterval())
	if err := w.grid.AddLight(pos, spanW, spanH, idx); err != nil {
		return err
	}
	w.lightDefs = append(w.lightDefs, lightDef{pos: pos, w: spanW, h: spanH})
	return nil
}

func (w *World) AddParkAt(pos Position, pw, ph int) error {
	if err := w.grid.AddPark(pos, pw, ph); err != nil {
		return err
	}
	w.parks = append(w.parks, Park{Pos: pos, Width: pw, Height: ph})
	return nil
}

func (w *World) AddBuildingAt(pos Position, bw, bh int) error {
	if err := w.grid.AddBuilding(pos, bw, bh); err != nil {
		return err
	}
	w.buildings = append(w.buildings, Building{Pos: pos, Width: bw, Height: bh})
	return nil
}

// AddVehicle creates one agent at an explicit position. The goal
// defaults to the spawn cell.
func (w *World) AddVehicle(pos Position) error {
	return w.addVehicle(pos, pos)
}

func (w *World) addVehicle(pos, goal Position) error {
	a := w.dir.Create(pos, goal, w.cfg.EmbeddingSize)
	if err := w.grid.AddAgent(a); err != nil {
		// Roll back the directory entry; the id stays consumed.
		w.dir.agents = w.dir.agents[:len(w.dir.agents)-1]
		return err
	}
	return nil
}

// AddVehiclesRandom places n agents on uniformly sampled free cells.
// Placement is strictly sequential so no two agents can race on the
// same cell; each agent also draws a random free goal cell.
func (w *World) AddVehiclesRandom(n int) error {
	for i := 0; i < n; i++ {
		pos, err := w.grid.RandomBlank(w.rng)
		if err != nil {
			return err
		}
		goal, err := w.grid.RandomBlank(w.rng)
		if err != nil {
			return err
		}
		if err := w.addVehicle(pos, goal); err != nil {
			return err
		}
	}
	return nil
}

// MoveAgent relocates an agent if the target cell is free.
func (w *World) MoveAgent(a *Agent, to Position) bool {
	return w.grid.MoveAgent(a, to)
}

// SetActions assigns one action code per live agent, index-aligned with
// the current ordering.
func (w *World) SetActions(acts []Action) error {
	if len(acts) < w.dir.Len() {
		return fmt.Errorf("set_action: %d actions for %d agents", len(acts), w.dir.Len())
	}
	parallelFor(w.dir.Len(), func(i int) {
		w.dir.At(i).Act = acts[i]
	})
	return nil
}

// Rewards writes one scalar per live agent into out.
func (w *World) Rewards(out []float32) error {
	if len(out) < w.dir.Len() {
		return fmt.Errorf("get_reward: buffer %d for %d agents", len(out), w.dir.Len())
	}
	parallelFor(w.dir.Len(), func(i int) {
		out[i] = w.dir.At(i).Reward
	})
	return nil
}

// AdvanceTick runs one simulation step: light clocks first, then the
// pluggable movement rule.
func (w *World) AdvanceTick() {
	w.lights.Advance()
	if w.rule != nil {
		w.rule.Apply(w)
	}
	w.tick++
}

// ClearDead batches removal of dead agents via stable compaction and
// rolls every survivor's reward accumulator before the next tick.
func (w *World) ClearDead() {
	w.dir.Compact(w.grid)
}
