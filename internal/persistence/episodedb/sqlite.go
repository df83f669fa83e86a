// Package episodedb is a secondary read-model index of simulation runs:
// one row per episode plus per-tick aggregates. It never feeds back
// into the sim and cannot affect determinism.
package episodedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type EpisodeRow struct {
	Episode int64
	Seed    int64
	Width   int
	Height  int
	Agents  int
}

type TickRow struct {
	Episode    int64
	Tick       uint64
	Alive      int
	MeanReward float64
}

type reqKind int

const (
	reqEpisode reqKind = iota + 1
	reqTick
)

type req struct {
	kind    reqKind
	episode EpisodeRow
	tick    TickRow
}

// DB indexes through a single writer goroutine so the tick loop never
// blocks on sqlite.
type DB struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &DB{
		db: db,
		ch: make(chan req, 8192),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only workload; NORMAL is enough durability
	// for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS episodes (
			episode INTEGER PRIMARY KEY,
			seed INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			agents INTEGER NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			episode INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			alive INTEGER NOT NULL,
			mean_reward REAL NOT NULL,
			PRIMARY KEY (episode, tick)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ticks_episode ON ticks(episode);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteEpisode records the start of an epoch. Drops the row rather
// than blocking when the queue is full.
func (s *DB) WriteEpisode(row EpisodeRow) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqEpisode, episode: row}:
	default:
	}
}

// WriteTick records one tick aggregate.
func (s *DB) WriteTick(row TickRow) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqTick, tick: row}:
	default:
	}
}

func (s *DB) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqEpisode:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO episodes(episode, seed, width, height, agents, started_at)
				 VALUES(?,?,?,?,?,?)`,
				r.episode.Episode, r.episode.Seed, r.episode.Width, r.episode.Height,
				r.episode.Agents, time.Now().UTC().Format(time.RFC3339))
		case reqTick:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO ticks(episode, tick, alive, mean_reward)
				 VALUES(?,?,?,?)`,
				r.tick.Episode, r.tick.Tick, r.tick.Alive, r.tick.MeanReward)
		}
	}
}

// Episodes returns all recorded episodes, oldest first.
func (s *DB) Episodes() ([]EpisodeRow, error) {
	rows, err := s.db.Query(`SELECT episode, seed, width, height, agents FROM episodes ORDER BY episode`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EpisodeRow
	for rows.Next() {
		var r EpisodeRow
		if err := rows.Scan(&r.Episode, &r.Seed, &r.Width, &r.Height, &r.Agents); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TickCount reports how many tick rows an episode has.
func (s *DB) TickCount(episode int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM ticks WHERE episode = ?`, episode).Scan(&n)
	return n, err
}

// Close drains the queue and closes the database.
func (s *DB) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
