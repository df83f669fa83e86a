package render

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"transcity.ai/internal/sim/world"
)

func readFrames(t *testing.T, path string) []world.Frame {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var out []world.Frame
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var fr world.Frame
		if err := json.Unmarshal(sc.Bytes(), &fr); err != nil {
			t.Fatalf("frame json: %v", err)
		}
		out = append(out, fr)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestGenerator_ConfigAndFrames(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	layout := world.RenderLayout{
		Width:  10,
		Height: 10,
		Walls:  []world.Position{{X: 1, Y: 1}},
	}
	if err := g.GenConfig(layout); err != nil {
		t.Fatalf("gen config: %v", err)
	}

	for tick := uint64(0); tick < 3; tick++ {
		f := world.Frame{
			Tick:   tick,
			Agents: []world.AgentSnapshot{{ID: 0, Pos: world.Position{X: int(tick), Y: 2}}},
			Phases: []int{int(tick % 10)},
		}
		if err := g.RenderFrame(f); err != nil {
			t.Fatalf("render frame: %v", err)
		}
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	var got world.RenderLayout
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("config json: %v", err)
	}
	if got.Width != 10 || len(got.Walls) != 1 {
		t.Fatalf("config = %+v", got)
	}

	frames := readFrames(t, filepath.Join(dir, "frames-000.jsonl.zst"))
	if len(frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(frames))
	}
	if frames[2].Tick != 2 || frames[2].Agents[0].Pos.X != 2 {
		t.Fatalf("last frame = %+v", frames[2])
	}
}

func TestGenerator_NextFileRotates(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	if err := g.RenderFrame(world.Frame{Tick: 1}); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if err := g.NextFile(); err != nil {
		t.Fatalf("next file: %v", err)
	}
	if err := g.RenderFrame(world.Frame{Tick: 2}); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if fr := readFrames(t, filepath.Join(dir, "frames-000.jsonl.zst")); len(fr) != 1 || fr[0].Tick != 1 {
		t.Fatalf("segment 0 = %+v", fr)
	}
	if fr := readFrames(t, filepath.Join(dir, "frames-001.jsonl.zst")); len(fr) != 1 || fr[0].Tick != 2 {
		t.Fatalf("segment 1 = %+v", fr)
	}
}

func TestGenerator_BroadcastMirrorsFrames(t *testing.T) {
	g := NewGenerator(t.TempDir())
	var got [][]byte
	g.Broadcast = func(b []byte) { got = append(got, b) }

	if err := g.RenderFrame(world.Frame{Tick: 7}); err != nil {
		t.Fatalf("frame: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("broadcast count = %d", len(got))
	}
	var f world.Frame
	if err := json.Unmarshal(got[0], &f); err != nil || f.Tick != 7 {
		t.Fatalf("broadcast frame = %+v err=%v", f, err)
	}
}
