// Package render is the external render collaborator: it persists one
// map config per epoch plus per-tick frame files under the configured
// render directory, and can mirror frames to an in-process broadcast
// hook for live viewers.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"transcity.ai/internal/sim/world"
)

// Generator implements world.FrameRenderer. Frames are JSONL+zstd, one
// file per segment; NextFile starts a new segment.
type Generator struct {
	mu        sync.Mutex
	dir       string
	fileIndex int
	open      bool
	w         jsonlZstdWriter

	// Broadcast, when set, receives every frame as marshaled JSON.
	Broadcast func([]byte)
}

func NewGenerator(dir string) *Generator {
	return &Generator{dir: dir}
}

func (g *Generator) SetDir(dir string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dir = dir
}

// GenConfig writes the static map layout once per epoch.
func (g *Generator) GenConfig(layout world.RenderLayout) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dir == "" {
		return fmt.Errorf("render: no directory configured")
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(g.dir, "config.json"), b, 0o644)
}

// RenderFrame appends one frame to the current segment file.
func (g *Generator) RenderFrame(f world.Frame) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		if err := g.openSegmentLocked(); err != nil {
			return err
		}
	}
	if err := g.w.Write(f); err != nil {
		return err
	}
	if g.Broadcast != nil {
		if b, err := json.Marshal(f); err == nil {
			g.Broadcast(b)
		}
	}
	return nil
}

// NextFile closes the current segment and numbers the next one.
func (g *Generator) NextFile() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		g.fileIndex++
		return nil
	}
	g.open = false
	g.fileIndex++
	return g.w.Close()
}

func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return nil
	}
	g.open = false
	return g.w.Close()
}

func (g *Generator) openSegmentLocked() error {
	if g.dir == "" {
		return fmt.Errorf("render: no directory configured")
	}
	path := filepath.Join(g.dir, fmt.Sprintf("frames-%03d.jsonl.zst", g.fileIndex))
	if err := g.w.Open(path); err != nil {
		return err
	}
	g.open = true
	return nil
}
