package world

import (
	"fmt"
	"math/rand"
)

const (
	noAgent = -1
	noLight = -1
)

type cellFlags uint8

const (
	flagWall cellFlags = 1 << iota
	flagPark
	flagBuilding
	flagLight
)

// cell is one grid cell: static feature flags plus at most one occupying
// agent. The agent field is a slot index into the directory, not an owning
// reference; compaction rewrites it.
type cell struct {
	flags cellFlags
	light int16 // index into the light bank, noLight when none
	axis  uint8 // which of the light's two runs crosses this cell
	agent int32 // directory slot of the occupant, noAgent when free
}

// Grid is the shared occupancy map. It is mutated only by the control
// thread between ticks; ExtractView is read-only and safe to call from
// many goroutines at once.
type Grid struct {
	width  int
	height int
	cells  []cell
}

func NewGrid(width, height int) *Grid {
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]cell, width*height),
	}
	for i := range g.cells {
		g.cells[i].agent = noAgent
		g.cells[i].light = noLight
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

func (g *Grid) at(p Position) *cell {
	return &g.cells[p.Y*g.width+p.X]
}

func (g *Grid) AddWall(p Position) error {
	if !g.InBounds(p) {
		return fmt.Errorf("add_wall: position (%d,%d) out of bounds %dx%d", p.X, p.Y, g.width, g.height)
	}
	c := g.at(p)
	if c.agent != noAgent {
		return fmt.Errorf("add_wall: cell (%d,%d) occupied by agent", p.X, p.Y)
	}
	c.flags |= flagWall
	return nil
}

func (g *Grid) AddPark(p Position, w, h int) error {
	if !g.InBounds(p) {
		return fmt.Errorf("add_park: position (%d,%d) out of bounds %dx%d", p.X, p.Y, g.width, g.height)
	}
	for x := p.X; x < p.X+w; x++ {
		for y := p.Y; y < p.Y+h; y++ {
			q := Position{X: x, Y: y}
			if !g.InBounds(q) {
				continue
			}
			g.at(q).flags |= flagPark
		}
	}
	return nil
}

// AddBuilding marks every covered cell as both building and wall.
// One-time rasterization; immutable afterward.
func (g *Grid) AddBuilding(p Position, w, h int) error {
	if !g.InBounds(p) {
		return fmt.Errorf("add_building: position (%d,%d) out of bounds %dx%d", p.X, p.Y, g.width, g.height)
	}
	for x := p.X; x < p.X+w; x++ {
		for y := p.Y; y < p.Y+h; y++ {
			q := Position{X: x, Y: y}
			if !g.InBounds(q) {
				continue
			}
			if err := g.AddWall(q); err != nil {
				return err
			}
			g.at(q).flags |= flagBuilding
		}
	}
	return nil
}

// AddLight marks the two runs gated by a light at p: the horizontal run
// y=p.Y, x in [p.X, p.X+w] (axis 0) and the vertical run x=p.X,
// y in [p.Y, p.Y+h] (axis 1). idx is the light's index in the bank.
func (g *Grid) AddLight(p Position, w, h, idx int) error {
	if !g.InBounds(p) {
		return fmt.Errorf("add_light: position (%d,%d) out of bounds %dx%d", p.X, p.Y, g.width, g.height)
	}
	for x := p.X; x <= p.X+w; x++ {
		q := Position{X: x, Y: p.Y}
		if !g.InBounds(q) {
			continue
		}
		c := g.at(q)
		c.flags |= flagLight
		c.light = int16(idx)
		c.axis = 0
	}
	for y := p.Y; y <= p.Y+h; y++ {
		q := Position{X: p.X, Y: y}
		if !g.InBounds(q) {
			continue
		}
		c := g.at(q)
		c.flags |= flagLight
		c.light = int16(idx)
		c.axis = 1
	}
	return nil
}

// AddAgent registers occupancy at the agent's current position.
func (g *Grid) AddAgent(a *Agent) error {
	if !g.InBounds(a.Pos) {
		return fmt.Errorf("add_agent: position (%d,%d) out of bounds %dx%d", a.Pos.X, a.Pos.Y, g.width, g.height)
	}
	c := g.at(a.Pos)
	if c.flags&flagWall != 0 {
		return fmt.Errorf("add_agent: cell (%d,%d) is a wall", a.Pos.X, a.Pos.Y)
	}
	if c.agent != noAgent {
		return fmt.Errorf("add_agent: cell (%d,%d) already occupied", a.Pos.X, a.Pos.Y)
	}
	c.agent = a.slot
	return nil
}

// MoveAgent relocates an agent's occupancy. Returns false without
// mutating anything if the target is out of bounds, a wall, or occupied.
func (g *Grid) MoveAgent(a *Agent, to Position) bool {
	if !g.InBounds(to) {
		return false
	}
	c := g.at(to)
	if c.flags&flagWall != 0 || c.agent != noAgent {
		return false
	}
	g.at(a.Pos).agent = noAgent
	c.agent = a.slot
	a.Pos = to
	return true
}

func (g *Grid) removeAgent(p Position) {
	if g.InBounds(p) {
		g.at(p).agent = noAgent
	}
}

func (g *Grid) setAgentSlot(p Position, slot int32) {
	if g.InBounds(p) {
		g.at(p).agent = slot
	}
}

// randomBlankTriesPerCell bounds rejection sampling in RandomBlank so a
// near-full map fails loudly instead of spinning.
const randomBlankTriesPerCell = 10

// RandomBlank returns a uniformly sampled free cell: no wall and no
// agent. Park and light cells are allowed.
func (g *Grid) RandomBlank(rng *rand.Rand) (Position, error) {
	tries := randomBlankTriesPerCell * g.width * g.height
	if tries < 1000 {
		tries = 1000
	}
	for i := 0; i < tries; i++ {
		p := Position{X: rng.Intn(g.width), Y: rng.Intn(g.height)}
		c := g.at(p)
		if c.flags&flagWall == 0 && c.agent == noAgent {
			return p, nil
		}
	}
	return Position{}, fmt.Errorf("get_random_blank: no free cell after %d tries", tries)
}

// ExtractView writes a viewH x viewW x nChannel tensor centered on the
// agent into out, which the caller must have zeroed. Window cells that
// fall outside the map keep all channels at zero. Read-only.
func (g *Grid) ExtractView(a *Agent, lights *LightBank, out []float32, viewH, viewW, nChannel int) {
	x0 := a.Pos.X - viewW/2
	y0 := a.Pos.Y - viewH/2
	for dy := 0; dy < viewH; dy++ {
		y := y0 + dy
		if y < 0 || y >= g.height {
			continue
		}
		for dx := 0; dx < viewW; dx++ {
			x := x0 + dx
			if x < 0 || x >= g.width {
				continue
			}
			c := &g.cells[y*g.width+x]
			base := (dy*viewW + dx) * nChannel
			if c.flags&flagWall != 0 {
				out[base+ChannelWall] = 1
			}
			if c.flags&flagPark != 0 {
				out[base+ChannelPark] = 1
			}
			if c.flags&flagBuilding != 0 {
				out[base+ChannelBuilding] = 1
			}
			if c.flags&flagLight != 0 && c.light != noLight {
				if lights.IsGreen(int(c.light), c.axis) {
					out[base+ChannelLightGreen] = 1
				} else {
					out[base+ChannelLightRed] = 1
				}
			}
			if c.agent != noAgent {
				if c.agent == a.slot {
					out[base+ChannelSelf] = 1
				} else {
					out[base+ChannelOther] = 1
				}
			}
		}
	}
}
