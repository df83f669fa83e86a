package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"transcity.ai/internal/persistence/episodedb"
	"transcity.ai/internal/render"
	"transcity.ai/internal/sim/scenario"
	"transcity.ai/internal/sim/tuning"
	"transcity.ai/internal/sim/world"
	"transcity.ai/internal/transport/observer"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address for the live observer (empty to disable)")
		tuningPath   = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		scenarioPath = flag.String("scenario", "", "path to a scenario layout json (optional)")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		renderDir    = flag.String("render_dir", "", "render output directory (overrides tuning)")
		disableDB    = flag.Bool("disable_db", false, "disable the episode index")

		ticks       = flag.Int("ticks", 1000, "ticks to simulate")
		vehicles    = flag.Int("vehicles", 0, "extra randomly placed vehicles")
		renderEvery = flag.Int("render_every", 1, "render every n ticks (0 to disable)")
		tickMs      = flag.Int("tick_ms", 0, "sleep per tick in milliseconds (0 = free-running)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	w := world.New(logger)
	w.SetConfig("map_width", tune.MapWidth)
	w.SetConfig("map_height", tune.MapHeight)
	w.SetConfig("view_width", tune.ViewWidth)
	w.SetConfig("view_height", tune.ViewHeight)
	w.SetConfig("interval_min", tune.IntervalMin)
	w.SetConfig("interval_max", tune.IntervalMax)
	w.SetConfig("embedding_size", tune.EmbeddingSize)
	w.SetConfig("seed", int(tune.Seed))

	rd := strings.TrimSpace(*renderDir)
	if rd == "" {
		rd = tune.RenderDir
	}
	if rd == "" {
		rd = filepath.Join(*dataDir, "frames")
	}
	w.SetConfig("render_dir", rd)

	w.Reset()

	if *scenarioPath != "" {
		sc, err := scenario.Load(*scenarioPath)
		if err != nil {
			logger.Fatalf("load scenario: %v", err)
		}
		sc.Apply(w)
		logger.Printf("scenario %q applied: %d agents", sc.Name, w.NumAgents())
	}
	if *vehicles > 0 {
		w.AddObject(world.KindVehicle, *vehicles, world.MethodRandom, nil)
	}

	// Live observer endpoint, mirroring every rendered frame.
	hub := observer.NewHub(logger)
	gen := render.NewGenerator(rd)
	gen.Broadcast = hub.Broadcast
	defer gen.Close()
	w.SetRenderer(gen)

	if *addr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/observe", hub.Handler())
		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
			fmt.Fprintln(rw, "ok")
		})
		go func() {
			logger.Printf("observer on %s/v1/observe", *addr)
			if err := http.ListenAndServe(*addr, mux); err != nil {
				logger.Printf("http: %v", err)
			}
		}()
	}

	var idx *episodedb.DB
	if !*disableDB {
		idx, err = episodedb.Open(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open episode index: %v", err)
		}
		defer idx.Close()
	}

	episode := time.Now().Unix()
	if idx != nil {
		idx.WriteEpisode(episodedb.EpisodeRow{
			Episode: episode,
			Seed:    tune.Seed,
			Width:   tune.MapWidth,
			Height:  tune.MapHeight,
			Agents:  w.NumAgents(),
		})
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Driver-local action source. The engine ships no movement rule;
	// this loop still exercises the full observation/action/reward
	// data path every tick.
	actRng := rand.New(rand.NewSource(tune.Seed + 1))
	runLoop(w, idx, episode, *ticks, *renderEvery, *tickMs, actRng, stop, logger)
}

func runLoop(w *world.World, idx *episodedb.DB, episode int64, ticks, renderEvery, tickMs int,
	actRng *rand.Rand, stop <-chan os.Signal, logger *log.Logger) {

	n := w.NumAgents()
	viewStride := func() int {
		vs := make([]int32, 3)
		w.GetInfo(world.KindVehicle, world.InfoViewSpace, vs)
		return int(vs[0]) * int(vs[1]) * int(vs[2])
	}()

	view := make([]float32, n*viewStride)
	feature := make([]float32, n*w.FeatureSize())
	acts := make([]int32, n)
	rewards := make([]float32, n)

	for tick := 0; tick < ticks; tick++ {
		select {
		case <-stop:
			logger.Printf("interrupted at tick %d", tick)
			return
		default:
		}

		n = w.NumAgents()
		if need := n * viewStride; cap(view) < need {
			view = make([]float32, need)
			feature = make([]float32, n*w.FeatureSize())
			acts = make([]int32, n)
			rewards = make([]float32, n)
		}
		view = view[:n*viewStride]
		feature = feature[:n*w.FeatureSize()]
		acts = acts[:n]
		rewards = rewards[:n]

		w.GetObservation(world.KindVehicle, view, feature)
		for i := range acts {
			acts[i] = int32(actRng.Intn(world.ActNum))
		}
		w.SetAction(world.KindVehicle, acts)
		w.AdvanceTick()
		w.GetReward(world.KindVehicle, rewards)

		if idx != nil {
			var sum float64
			for _, r := range rewards {
				sum += float64(r)
			}
			mean := 0.0
			if n > 0 {
				mean = sum / float64(n)
			}
			idx.WriteTick(episodedb.TickRow{
				Episode:    episode,
				Tick:       w.Tick(),
				Alive:      n,
				MeanReward: mean,
			})
		}

		w.ClearDead()

		if renderEvery > 0 && tick%renderEvery == 0 {
			w.Render()
		}
		if tickMs > 0 {
			time.Sleep(time.Duration(tickMs) * time.Millisecond)
		}
	}
	logger.Printf("done: %d ticks, %d agents alive", ticks, w.NumAgents())
}
