package world

// TrafficLight is a timed intersection light. It gates two road runs
// crossing at Pos: the horizontal run of length SpanW (axis 0) and the
// vertical run of length SpanH (axis 1). The phase clock advances once
// per tick and wraps at Interval; agents cannot influence it.
type TrafficLight struct {
	Pos      Position
	SpanW    int
	SpanH    int
	Interval int
	Phase    int
}

// greenAxis derives which axis currently has green from the phase clock.
func (l *TrafficLight) greenAxis() uint8 {
	half := l.Interval / 2
	if half <= 0 {
		return 0
	}
	return uint8((l.Phase / half) % 2)
}

// LightBank owns every traffic light in the world.
type LightBank struct {
	lights []TrafficLight
}

func (b *LightBank) Len() int               { return len(b.lights) }
func (b *LightBank) At(i int) *TrafficLight { return &b.lights[i] }
func (b *LightBank) All() []TrafficLight    { return b.lights }

// Add creates a light with phase 0 and returns its index.
func (b *LightBank) Add(pos Position, w, h, interval int) int {
	b.lights = append(b.lights, TrafficLight{
		Pos:      pos,
		SpanW:    w,
		SpanH:    h,
		Interval: interval,
	})
	return len(b.lights) - 1
}

// Advance steps every phase clock by one tick.
func (b *LightBank) Advance() {
	for i := range b.lights {
		l := &b.lights[i]
		l.Phase = (l.Phase + 1) % l.Interval
	}
}

// IsGreen reports whether axis (0 horizontal, 1 vertical) has green at
// light i. Read-only; safe under concurrent view extraction.
func (b *LightBank) IsGreen(i int, axis uint8) bool {
	if i < 0 || i >= len(b.lights) {
		return false
	}
	return b.lights[i].greenAxis() == axis
}
