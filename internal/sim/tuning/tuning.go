package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning carries the engine defaults normally fed through set_config.
type Tuning struct {
	MapWidth  int `yaml:"map_width"`
	MapHeight int `yaml:"map_height"`

	ViewWidth  int `yaml:"view_width"`
	ViewHeight int `yaml:"view_height"`

	IntervalMin int `yaml:"interval_min"`
	IntervalMax int `yaml:"interval_max"`

	EmbeddingSize int `yaml:"embedding_size"`

	Seed      int64  `yaml:"seed"`
	RenderDir string `yaml:"render_dir"`
}

func Defaults() Tuning {
	return Tuning{
		MapWidth:      100,
		MapHeight:     100,
		ViewWidth:     7,
		ViewHeight:    7,
		IntervalMin:   10,
		IntervalMax:   20,
		EmbeddingSize: 16,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t Tuning) validate() error {
	if t.MapWidth <= 0 || t.MapHeight <= 0 {
		return fmt.Errorf("tuning: map size %dx%d invalid", t.MapWidth, t.MapHeight)
	}
	if t.ViewWidth <= 0 || t.ViewHeight <= 0 {
		return fmt.Errorf("tuning: view size %dx%d invalid", t.ViewWidth, t.ViewHeight)
	}
	if t.IntervalMin <= 0 || t.IntervalMax < t.IntervalMin {
		return fmt.Errorf("tuning: interval range [%d,%d) invalid", t.IntervalMin, t.IntervalMax)
	}
	if t.EmbeddingSize < 0 {
		return fmt.Errorf("tuning: embedding size %d invalid", t.EmbeddingSize)
	}
	return nil
}
