package world

// Agent is one vehicle. The directory exclusively owns agent records;
// the grid keeps only the slot index for occupancy lookup.
type Agent struct {
	ID         int32
	Pos        Position
	Goal       Position
	Act        Action
	Reward     float32 // accumulator for the current tick
	LastReward float32
	Dead       bool
	Embedding  []float32

	// slot is the agent's current index in the directory. Invalidated
	// by Compact and Reset; never exposed to callers.
	slot int32
}

// AddReward accumulates into the per-tick reward.
func (a *Agent) AddReward(r float32) { a.Reward += r }

// initReward rolls the tick accumulator into LastReward and clears it.
func (a *Agent) initReward() {
	a.LastReward = a.Reward
	a.Reward = 0
}

// Directory owns the live agent set. Ids are strictly increasing within
// one epoch and are never reused, even after death.
type Directory struct {
	nextID int32
	agents []*Agent
}

func (d *Directory) Len() int        { return len(d.agents) }
func (d *Directory) At(i int) *Agent { return d.agents[i] }
func (d *Directory) All() []*Agent   { return d.agents }

// Create allocates an agent with the next sequential id. The embedding
// is zero-initialized; reward and action are cleared.
func (d *Directory) Create(pos, goal Position, embeddingSize int) *Agent {
	a := &Agent{
		ID:        d.nextID,
		Pos:       pos,
		Goal:      goal,
		Embedding: make([]float32, embeddingSize),
		slot:      int32(len(d.agents)),
	}
	d.nextID++
	d.agents = append(d.agents, a)
	return a
}

// MarkDead flags the agent with the given id. Removal is batched in
// Compact.
func (d *Directory) MarkDead(id int32) bool {
	for _, a := range d.agents {
		if a.ID == id {
			a.Dead = true
			return true
		}
	}
	return false
}

// Compact partitions the live set into a dense prefix in one stable
// pass. Dead records are destroyed, survivor reward accumulators are
// rolled over, and grid occupancy is rewritten for the shifted slots.
// Indices held by callers are invalid afterward.
func (d *Directory) Compact(g *Grid) {
	pt := 0
	for _, a := range d.agents {
		if a.Dead {
			if g != nil {
				g.removeAgent(a.Pos)
			}
			continue
		}
		a.initReward()
		a.slot = int32(pt)
		d.agents[pt] = a
		if g != nil {
			g.setAgentSlot(a.Pos, a.slot)
		}
		pt++
	}
	for i := pt; i < len(d.agents); i++ {
		d.agents[i] = nil
	}
	d.agents = d.agents[:pt]
}

// Reset discards every agent and restarts the id sequence at zero.
func (d *Directory) Reset() {
	d.nextID = 0
	d.agents = nil
}
