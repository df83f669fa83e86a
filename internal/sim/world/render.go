package world

// AgentSnapshot is a read-only copy of one agent for rendering.
type AgentSnapshot struct {
	ID   int32    `json:"id"`
	Pos  Position `json:"pos"`
	Goal Position `json:"goal"`
	Dead bool     `json:"dead,omitempty"`
}

// LightSnapshot is a read-only copy of one light for rendering.
type LightSnapshot struct {
	Pos      Position `json:"pos"`
	SpanW    int      `json:"span_w"`
	SpanH    int      `json:"span_h"`
	Interval int      `json:"interval"`
	Phase    int      `json:"phase"`
}

// RenderLayout is the static map description emitted once per epoch.
type RenderLayout struct {
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Walls     []Position      `json:"walls"`
	Parks     []Park          `json:"parks"`
	Buildings []Building      `json:"buildings"`
	Lights    []LightSnapshot `json:"lights"`
}

// Frame is one rendered tick.
type Frame struct {
	Tick   uint64          `json:"tick"`
	Agents []AgentSnapshot `json:"agents"`
	Phases []int           `json:"phases"`
}

// FrameRenderer is the external render collaborator. It consumes
// read-only snapshots and never touches world state.
type FrameRenderer interface {
	SetDir(dir string)
	GenConfig(layout RenderLayout) error
	RenderFrame(f Frame) error
	NextFile() error
}

func (w *World) SetRenderer(r FrameRenderer) {
	w.renderer = r
	if r != nil && w.renderDir != "" {
		r.SetDir(w.renderDir)
	}
}

// Render emits one frame. The first call of an epoch emits the map
// layout config first.
func (w *World) Render() {
	if w.renderer == nil {
		return
	}
	if w.firstRender {
		w.firstRender = false
		if err := w.renderer.GenConfig(w.renderLayout()); err != nil {
			w.logger.Printf("render: gen config: %v", err)
			return
		}
	}
	if err := w.renderer.RenderFrame(w.frame()); err != nil {
		w.logger.Printf("render: frame: %v", err)
	}
}

// RenderNextFile rotates the renderer's output file.
func (w *World) RenderNextFile() {
	if w.renderer == nil {
		return
	}
	if err := w.renderer.NextFile(); err != nil {
		w.logger.Printf("render: next file: %v", err)
	}
}

func (w *World) renderLayout() RenderLayout {
	layout := RenderLayout{
		Width:     w.cfg.Width,
		Height:    w.cfg.Height,
		Walls:     append([]Position(nil), w.walls...),
		Parks:     append([]Park(nil), w.parks...),
		Buildings: append([]Building(nil), w.buildings...),
	}
	for _, l := range w.lights.All() {
		layout.Lights = append(layout.Lights, LightSnapshot{
			Pos:      l.Pos,
			SpanW:    l.SpanW,
			SpanH:    l.SpanH,
			Interval: l.Interval,
			Phase:    l.Phase,
		})
	}
	return layout
}

func (w *World) frame() Frame {
	f := Frame{
		Tick:   w.tick,
		Agents: make([]AgentSnapshot, 0, w.dir.Len()),
		Phases: make([]int, 0, w.lights.Len()),
	}
	for _, a := range w.dir.All() {
		f.Agents = append(f.Agents, AgentSnapshot{ID: a.ID, Pos: a.Pos, Goal: a.Goal, Dead: a.Dead})
	}
	for _, l := range w.lights.All() {
		f.Phases = append(f.Phases, l.Phase)
	}
	return f
}
