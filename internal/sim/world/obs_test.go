package world

import "testing"

func TestObservation_OtherAgentChannel(t *testing.T) {
	w, fatal := testWorld(t)
	w.SetConfig("map_width", 10)
	w.SetConfig("map_height", 10)
	w.SetConfig("view_width", 5)
	w.SetConfig("view_height", 5)
	w.Reset()
	w.AddObject(KindVehicle, 2, MethodCustom, []int32{4, 4, 5, 4})
	if *fatal != "" {
		t.Fatalf("placement: %s", *fatal)
	}

	const viewH, viewW = 5, 5
	stride := viewH * viewW * ChannelNum
	view := make([]float32, 2*stride)
	feature := make([]float32, 2*w.FeatureSize())
	w.GetObservation(0, view, feature)

	// Agent 0 at (4,4) sees agent 1 one cell to the right of center.
	base := ((viewH/2)*viewW + viewW/2 + 1) * ChannelNum
	if view[base+ChannelOther] != 1 {
		t.Fatalf("other-agent channel not set")
	}
	if view[base+ChannelSelf] != 0 {
		t.Fatalf("self channel set on another agent's cell")
	}

	// Agent 1 at (5,4) sees agent 0 one cell to the left of center.
	slice := view[stride:]
	base = ((viewH/2)*viewW + viewW/2 - 1) * ChannelNum
	if slice[base+ChannelOther] != 1 {
		t.Fatalf("other-agent channel not set for second agent")
	}
}

func TestObservation_WallAndParkChannels(t *testing.T) {
	w, fatal := testWorld(t)
	w.SetConfig("map_width", 10)
	w.SetConfig("map_height", 10)
	w.SetConfig("view_width", 3)
	w.SetConfig("view_height", 3)
	w.Reset()
	w.AddObject(KindWall, 1, MethodCustom, []int32{4, 3})
	w.AddObject(KindPark, 1, MethodCustom, []int32{3, 4, 1, 1})
	w.AddObject(KindVehicle, 1, MethodCustom, []int32{4, 4})
	if *fatal != "" {
		t.Fatalf("setup: %s", *fatal)
	}

	view := make([]float32, 3*3*ChannelNum)
	feature := make([]float32, w.FeatureSize())
	w.GetObservation(0, view, feature)

	// Wall at (4,3) is directly above center; park at (3,4) directly left.
	above := (0*3 + 1) * ChannelNum
	left := (1*3 + 0) * ChannelNum
	if view[above+ChannelWall] != 1 {
		t.Fatalf("wall channel not set above agent")
	}
	if view[left+ChannelPark] != 1 {
		t.Fatalf("park channel not set left of agent")
	}
	if view[above+ChannelPark] != 0 || view[left+ChannelWall] != 0 {
		t.Fatalf("channel bleed between wall and park")
	}
}

func TestObservation_EncoderOnlyWritesNonZero(t *testing.T) {
	w, fatal := testWorld(t)
	w.SetConfig("map_width", 10)
	w.SetConfig("map_height", 10)
	w.SetConfig("view_width", 3)
	w.SetConfig("view_height", 3)
	w.Reset()
	w.AddObject(KindVehicle, 1, MethodCustom, []int32{5, 5})
	if *fatal != "" {
		t.Fatalf("placement: %s", *fatal)
	}

	// Poison the buffers: GetObservation must clear stale data before
	// the encoder runs.
	view := make([]float32, 3*3*ChannelNum)
	feature := make([]float32, w.FeatureSize())
	for i := range view {
		view[i] = 9
	}
	for i := range feature {
		feature[i] = 9
	}
	w.GetObservation(0, view, feature)

	for i, v := range view {
		if v != 0 && v != 1 {
			t.Fatalf("stale value %v at view[%d]", v, i)
		}
	}
	center := ((3/2)*3 + 3/2) * ChannelNum
	if view[center+ChannelSelf] != 1 {
		t.Fatalf("self channel missing")
	}
}
