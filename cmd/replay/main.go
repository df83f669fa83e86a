package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"transcity.ai/internal/sim/world"
)

func main() {
	var (
		framesDir = flag.String("frames", "", "render directory containing config.json and frames-*.jsonl.zst")
		fromTick  = flag.Uint64("from_tick", 0, "print frames starting at tick (inclusive)")
		toTick    = flag.Uint64("to_tick", 0, "stop after tick (0 = no limit)")
	)
	flag.Parse()

	if *framesDir == "" {
		fmt.Fprintln(os.Stderr, "missing -frames")
		os.Exit(2)
	}

	raw, err := os.ReadFile(filepath.Join(*framesDir, "config.json"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read config:", err)
		os.Exit(1)
	}
	var layout world.RenderLayout
	if err := json.Unmarshal(raw, &layout); err != nil {
		fmt.Fprintln(os.Stderr, "config json:", err)
		os.Exit(1)
	}
	fmt.Printf("map %dx%d walls=%d parks=%d buildings=%d lights=%d\n",
		layout.Width, layout.Height, len(layout.Walls), len(layout.Parks),
		len(layout.Buildings), len(layout.Lights))

	files, err := filepath.Glob(filepath.Join(*framesDir, "frames-*.jsonl.zst"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "glob:", err)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, path := range files {
		if err := dumpFrames(path, *fromTick, *toTick); err != nil {
			fmt.Fprintln(os.Stderr, path+":", err)
			os.Exit(1)
		}
	}
}

func dumpFrames(path string, fromTick, toTick uint64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for sc.Scan() {
		var fr world.Frame
		if err := json.Unmarshal(sc.Bytes(), &fr); err != nil {
			return err
		}
		if fr.Tick < fromTick {
			continue
		}
		if toTick > 0 && fr.Tick > toTick {
			return nil
		}
		fmt.Printf("tick %d: %d agents, phases %v\n", fr.Tick, len(fr.Agents), fr.Phases)
	}
	return sc.Err()
}
