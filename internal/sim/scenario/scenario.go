// Package scenario loads city layout files: walls, lights, parks,
// buildings and vehicle spawns as JSON, validated against a schema
// before anything touches the world.
package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"transcity.ai/internal/sim/world"
)

//go:embed scenario.schema.json
var schemaDoc string

var schema = jsonschema.MustCompileString("scenario.schema.json", schemaDoc)

// Vehicles describes vehicle placement: n random spawns plus explicit
// coordinates.
type Vehicles struct {
	Random int      `json:"random,omitempty"`
	Custom [][2]int `json:"custom,omitempty"`
}

// Scenario is one validated layout document. Rows are packed the way
// the AddObject boundary expects them: [x, y] or [x, y, w, h].
type Scenario struct {
	Name      string   `json:"name,omitempty"`
	Walls     [][2]int `json:"walls,omitempty"`
	Lights    [][4]int `json:"lights,omitempty"`
	Parks     [][4]int `json:"parks,omitempty"`
	Buildings [][4]int `json:"buildings,omitempty"`
	Vehicles  Vehicles `json:"vehicles,omitempty"`
}

func Load(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (Scenario, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Scenario{}, fmt.Errorf("scenario: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Scenario{}, fmt.Errorf("scenario: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(raw, &s); err != nil {
		return Scenario{}, fmt.Errorf("scenario: %w", err)
	}
	return s, nil
}

// Apply replays the layout into the world through the same boundary
// calls an external controller would make. Statics first, vehicles
// last, so explicit walls can never evict an agent.
func (s Scenario) Apply(w *world.World) {
	if len(s.Walls) > 0 {
		w.AddObject(world.KindWall, len(s.Walls), world.MethodCustom, flatten2(s.Walls))
	}
	if len(s.Buildings) > 0 {
		w.AddObject(world.KindBuilding, len(s.Buildings), world.MethodCustom, flatten4(s.Buildings))
	}
	if len(s.Parks) > 0 {
		w.AddObject(world.KindPark, len(s.Parks), world.MethodCustom, flatten4(s.Parks))
	}
	if len(s.Lights) > 0 {
		w.AddObject(world.KindLight, len(s.Lights), world.MethodCustom, flatten4(s.Lights))
	}
	if len(s.Vehicles.Custom) > 0 {
		w.AddObject(world.KindVehicle, len(s.Vehicles.Custom), world.MethodCustom, flatten2(s.Vehicles.Custom))
	}
	if s.Vehicles.Random > 0 {
		w.AddObject(world.KindVehicle, s.Vehicles.Random, world.MethodRandom, nil)
	}
}

func flatten2(rows [][2]int) []int32 {
	out := make([]int32, 0, len(rows)*2)
	for _, r := range rows {
		out = append(out, int32(r[0]), int32(r[1]))
	}
	return out
}

func flatten4(rows [][4]int) []int32 {
	out := make([]int32, 0, len(rows)*4)
	for _, r := range rows {
		out = append(out, int32(r[0]), int32(r[1]), int32(r[2]), int32(r[3]))
	}
	return out
}
