package world

import "testing"

func TestDirectory_IDMonotonicity(t *testing.T) {
	d := &Directory{}
	last := int32(-1)
	for i := 0; i < 10; i++ {
		a := d.Create(Position{X: i, Y: 0}, Position{}, 2)
		if a.ID <= last {
			t.Fatalf("id %d not greater than previous %d", a.ID, last)
		}
		last = a.ID
	}
	if d.At(0).ID != 0 {
		t.Fatalf("first id = %d, want 0", d.At(0).ID)
	}

	// Ids are never reused, even after death.
	d.MarkDead(3)
	d.MarkDead(7)
	d.Compact(nil)
	a := d.Create(Position{}, Position{}, 2)
	if a.ID != 10 {
		t.Fatalf("id after compaction = %d, want 10", a.ID)
	}

	d.Reset()
	if a := d.Create(Position{}, Position{}, 2); a.ID != 0 {
		t.Fatalf("id after reset = %d, want 0", a.ID)
	}
}

func TestDirectory_CompactionStability(t *testing.T) {
	d := &Directory{}
	for i := 0; i < 5; i++ {
		a := d.Create(Position{X: i, Y: 0}, Position{}, 2)
		a.Reward = float32(i) + 1
	}
	// alive = [true, false, true, false, true]
	d.MarkDead(1)
	d.MarkDead(3)

	d.Compact(nil)

	if d.Len() != 3 {
		t.Fatalf("survivors = %d, want 3", d.Len())
	}
	wantIDs := []int32{0, 2, 4}
	for i, want := range wantIDs {
		a := d.At(i)
		if a.ID != want {
			t.Fatalf("survivor %d id = %d, want %d (order not stable)", i, a.ID, want)
		}
		if a.Reward != 0 {
			t.Fatalf("survivor %d reward = %v, want 0 after compaction", i, a.Reward)
		}
		if a.LastReward != float32(want)+1 {
			t.Fatalf("survivor %d last reward = %v, want %v", i, a.LastReward, float32(want)+1)
		}
		if a.slot != int32(i) {
			t.Fatalf("survivor %d slot = %d, want %d", i, a.slot, i)
		}
	}
}

func TestDirectory_CompactRewritesGridOccupancy(t *testing.T) {
	g := NewGrid(8, 8)
	d := &Directory{}
	for i := 0; i < 4; i++ {
		a := d.Create(Position{X: i, Y: 0}, Position{}, 0)
		if err := g.AddAgent(a); err != nil {
			t.Fatalf("add agent %d: %v", i, err)
		}
	}
	d.MarkDead(0)
	d.MarkDead(2)
	d.Compact(g)

	if g.at(Position{X: 0, Y: 0}).agent != noAgent {
		t.Fatalf("dead agent cell still occupied")
	}
	if g.at(Position{X: 2, Y: 0}).agent != noAgent {
		t.Fatalf("dead agent cell still occupied")
	}
	for i := 0; i < d.Len(); i++ {
		a := d.At(i)
		if g.at(a.Pos).agent != a.slot {
			t.Fatalf("survivor %d occupancy slot %d != %d", i, g.at(a.Pos).agent, a.slot)
		}
	}
}

func TestAgent_EmbeddingZeroInitialized(t *testing.T) {
	d := &Directory{}
	a := d.Create(Position{}, Position{}, 8)
	if len(a.Embedding) != 8 {
		t.Fatalf("embedding length = %d, want 8", len(a.Embedding))
	}
	for i, v := range a.Embedding {
		if v != 0 {
			t.Fatalf("embedding[%d] = %v, want 0", i, v)
		}
	}
	if a.Act != ActStay || a.Reward != 0 {
		t.Fatalf("action/reward not cleared at creation")
	}
}
