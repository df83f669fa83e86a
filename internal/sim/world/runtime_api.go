package world

import "math/rand"

// The flat-buffer boundary. External controllers drive the world
// through these entry points; tags and shapes are validated here and
// converted into the typed core calls, so the core never sees raw
// buffers. Invalid keys, names, kinds and shapes are caller bugs and
// terminate the process through the fatal hook.

// Info names accepted by GetInfo.
const (
	InfoID           = "id"
	InfoNum          = "num"
	InfoAlive        = "alive"
	InfoActionSpace  = "action_space"
	InfoViewSpace    = "view_space"
	InfoFeatureSpace = "feature_space"
)

// fieldsPerKind is the row width of the AddObject coordinate buffer.
func fieldsPerKind(kind int) int {
	switch kind {
	case KindWall, KindVehicle:
		return 2
	case KindLight, KindPark, KindBuilding:
		return 4
	}
	return 0
}

// SetConfig applies one configuration key. Geometry keys take effect at
// the next Reset; seed reseeds the random stream immediately.
func (w *World) SetConfig(key string, value any) {
	switch key {
	case "map_width":
		w.cfg.Width = w.configInt(key, value)
	case "map_height":
		w.cfg.Height = w.configInt(key, value)
	case "view_width":
		w.cfg.ViewWidth = w.configInt(key, value)
	case "view_height":
		w.cfg.ViewHeight = w.configInt(key, value)
	case "interval_min":
		w.cfg.IntervalMin = w.configInt(key, value)
	case "interval_max":
		w.cfg.IntervalMax = w.configInt(key, value)
	case "embedding_size":
		w.cfg.EmbeddingSize = w.configInt(key, value)
	case "render_dir":
		s, ok := value.(string)
		if !ok {
			w.fatalf("set_config: render_dir wants string, got %T", value)
			return
		}
		w.renderDir = s
		if w.renderer != nil {
			w.renderer.SetDir(s)
		}
	case "seed":
		w.cfg.Seed = int64(w.configInt(key, value))
		w.reseed()
	default:
		w.fatalf("set_config: invalid argument: %s", key)
	}
}

func (w *World) configInt(key string, value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	w.fatalf("set_config: %s wants int, got %T", key, value)
	return 0
}

func (w *World) reseed() {
	w.rng = rand.New(rand.NewSource(w.cfg.Seed))
}

// AddObject dispatches over the kind tag and placement method. buf is a
// flat row-major [n, fields_per_kind] coordinate array for the custom
// method; the random method (vehicles only) ignores it.
func (w *World) AddObject(kind, n int, method string, buf []int32) {
	if kind == KindVehicle && method == MethodRandom {
		if err := w.AddVehiclesRandom(n); err != nil {
			w.fatalf("add_object: %v", err)
		}
		return
	}
	if method != MethodCustom {
		w.fatalf("add_object: unsupported method %q for kind %d", method, kind)
		return
	}
	fields := fieldsPerKind(kind)
	if fields == 0 {
		w.fatalf("add_object: unsupported kind %d", kind)
		return
	}
	if len(buf) < n*fields {
		w.fatalf("add_object: buffer %d for %d rows of %d fields", len(buf), n, fields)
		return
	}
	var err error
	for i := 0; i < n && err == nil; i++ {
		row := buf[i*fields:]
		pos := Position{X: int(row[0]), Y: int(row[1])}
		switch kind {
		case KindWall:
			err = w.AddWalls([]Position{pos})
		case KindLight:
			err = w.AddLightAt(pos, int(row[2]), int(row[3]))
		case KindPark:
			err = w.AddParkAt(pos, int(row[2]), int(row[3]))
		case KindBuilding:
			err = w.AddBuildingAt(pos, int(row[2]), int(row[3]))
		case KindVehicle:
			err = w.AddVehicle(pos)
		}
	}
	if err != nil {
		w.fatalf("add_object: %v", err)
	}
}

// GetObservation fills the view and feature buffers for every live
// agent. view is [num, view_height, view_width, channels] flattened;
// feature is [num, feature_size] flattened. Both are zeroed here before
// the encoder writes its non-zero entries.
func (w *World) GetObservation(group int, view, feature []float32) {
	n := w.dir.Len()
	viewLen := n * w.cfg.ViewHeight * w.cfg.ViewWidth * ChannelNum
	featLen := n * w.FeatureSize()
	if len(view) < viewLen || len(feature) < featLen {
		w.fatalf("get_observation: buffers %d/%d, want %d/%d", len(view), len(feature), viewLen, featLen)
		return
	}
	zero(view[:viewLen])
	zero(feature[:featLen])
	w.buildObservation(view, feature)
}

// SetAction assigns one action code per live agent.
func (w *World) SetAction(group int, acts []int32) {
	if len(acts) < w.dir.Len() {
		w.fatalf("set_action: %d actions for %d agents", len(acts), w.dir.Len())
		return
	}
	parallelFor(w.dir.Len(), func(i int) {
		w.dir.At(i).Act = Action(acts[i])
	})
}

// GetReward writes one scalar per live agent.
func (w *World) GetReward(group int, out []float32) {
	if err := w.Rewards(out); err != nil {
		w.fatalf("%v", err)
	}
}

// GetInfo answers the named read-only query into out, whose element
// type depends on the name: []int32 for id/num/action_space/view_space/
// feature_space, []bool for alive.
func (w *World) GetInfo(group int, name string, out any) {
	switch name {
	case InfoID:
		buf, ok := out.([]int32)
		if !ok || len(buf) < w.dir.Len() {
			w.fatalf("get_info: id wants []int32 of %d", w.dir.Len())
			return
		}
		parallelFor(w.dir.Len(), func(i int) {
			buf[i] = w.dir.At(i).ID
		})
	case InfoNum:
		buf, ok := out.([]int32)
		if !ok || len(buf) < 1 {
			w.fatalf("get_info: num wants []int32 of 1")
			return
		}
		if group == KindWall {
			buf[0] = 0
		} else {
			buf[0] = int32(w.dir.Len())
		}
	case InfoAlive:
		buf, ok := out.([]bool)
		if !ok || len(buf) < w.dir.Len() {
			w.fatalf("get_info: alive wants []bool of %d", w.dir.Len())
			return
		}
		parallelFor(w.dir.Len(), func(i int) {
			buf[i] = !w.dir.At(i).Dead
		})
	case InfoActionSpace:
		buf, ok := out.([]int32)
		if !ok || len(buf) < 1 {
			w.fatalf("get_info: action_space wants []int32 of 1")
			return
		}
		buf[0] = ActNum
	case InfoViewSpace:
		buf, ok := out.([]int32)
		if !ok || len(buf) < 3 {
			w.fatalf("get_info: view_space wants []int32 of 3")
			return
		}
		buf[0] = int32(w.cfg.ViewHeight)
		buf[1] = int32(w.cfg.ViewWidth)
		buf[2] = ChannelNum
	case InfoFeatureSpace:
		buf, ok := out.([]int32)
		if !ok || len(buf) < 1 {
			w.fatalf("get_info: feature_space wants []int32 of 1")
			return
		}
		buf[0] = int32(w.FeatureSize())
	default:
		w.fatalf("get_info: unsupported info name: %s", name)
	}
}

func zero(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
