package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	doc := `
map_width: 40
map_height: 30
view_width: 5
view_height: 5
interval_min: 8
interval_max: 16
embedding_size: 12
seed: 99
render_dir: /tmp/frames
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.MapWidth != 40 || tn.MapHeight != 30 {
		t.Fatalf("map size = %dx%d", tn.MapWidth, tn.MapHeight)
	}
	if tn.IntervalMin != 8 || tn.IntervalMax != 16 {
		t.Fatalf("interval = [%d,%d)", tn.IntervalMin, tn.IntervalMax)
	}
	if tn.Seed != 99 || tn.RenderDir != "/tmp/frames" {
		t.Fatalf("seed/render_dir = %d/%q", tn.Seed, tn.RenderDir)
	}
}

func TestLoad_RejectsBadRanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	doc := `
map_width: 10
map_height: 10
view_width: 5
view_height: 5
interval_min: 20
interval_max: 10
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("inverted interval range accepted")
	}
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	tn, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if tn.MapWidth != 100 || tn.IntervalMax != 20 {
		t.Fatalf("defaults not preserved on error")
	}
}
