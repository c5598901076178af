package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"randomcarnegie.app/internal/setup"
)

const schemaVersion = "1"

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTotal  atomic.Uint64
	writeTotal atomic.Uint64
	errTotal   atomic.Uint64
}

type reqKind int

const (
	reqSetup reqKind = iota + 1
	reqFlush
)

type req struct {
	kind reqKind

	setup Record
	done  chan struct{}
}

// Record is one served setup.
type Record struct {
	ID        int64         `json:"id"`
	ReqID     string        `json:"req_id"`
	Source    string        `json:"source"`
	Seed      uint64        `json:"seed"`
	Options   setup.Options `json:"options"`
	Buildings string        `json:"buildings"`
	Placed    int           `json:"placed"`
	Blocked   int           `json:"blocked"`
	Digest    string        `json:"digest"`
	CreatedAt time.Time     `json:"created_at"`
}

// RecordFromSetup summarises s for the index.
func RecordFromSetup(reqID, source string, s setup.Setup, at time.Time) Record {
	blocked := 0
	if s.Donations != nil {
		for _, b := range s.Donations.Blocked {
			blocked += b.Count
		}
	}
	return Record{
		ReqID:     reqID,
		Source:    source,
		Seed:      s.Seed,
		Options:   s.Options,
		Buildings: s.Buildings,
		Placed:    s.Layout.Placed,
		Blocked:   blocked,
		Digest:    s.Digest,
		CreatedAt: at.UTC(),
	}
}

type Stats struct {
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	WriteTotal    uint64 `json:"write_total"`
	DropTotal     uint64 `json:"drop_total"`
	ErrorTotal    uint64 `json:"error_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
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
	if err := upsertMeta(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
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
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS setups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			req_id TEXT NOT NULL,
			source TEXT NOT NULL,
			seed INTEGER NOT NULL,
			tiles TEXT NOT NULL,
			row_limit TEXT NOT NULL,
			permanent TEXT NOT NULL,
			players TEXT NOT NULL,
			buildings TEXT NOT NULL,
			placed INTEGER NOT NULL,
			blocked INTEGER NOT NULL,
			digest TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_setups_seed ON setups(seed, id);`,
		`CREATE INDEX IF NOT EXISTS idx_setups_digest ON setups(digest);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// upsertMeta records the generator parameters so an index can be matched to
// the build that wrote it.
func upsertMeta(db *sql.DB) error {
	rows := [][2]string{
		{"schema_version", schemaVersion},
		{"generator", "mcg128xsl64"},
		{"seed_space", strconv.Itoa(setup.SeedSpace)},
	}
	for _, kv := range rows {
		if _, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordSetup queues rec for writing.
func (s *SQLiteIndex) RecordSetup(rec Record) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqSetup, setup: rec}:
	default:
		// Drop if the indexer falls behind; the request log remains the source of truth.
		s.dropTotal.Add(1)
	}
}

// Flush blocks until every record queued before the call is committed.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqFlush, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		WriteTotal:    s.writeTotal.Load(),
		DropTotal:     s.dropTotal.Load(),
		ErrorTotal:    s.errTotal.Load(),
	}
}

const selectSetup = `SELECT id,req_id,source,seed,tiles,row_limit,permanent,players,buildings,placed,blocked,digest,created_at FROM setups`

// Recent returns up to limit records, newest first.
func (s *SQLiteIndex) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectSetup+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// BySeed returns up to limit records for seed, newest first.
func (s *SQLiteIndex) BySeed(ctx context.Context, seed uint64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectSetup+` WHERE seed=? ORDER BY id DESC LIMIT ?`, int64(seed), limit)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// Meta returns the key/value pairs written at open.
func (s *SQLiteIndex) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key,value FROM meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var (
			r                               Record
			seed                            int64
			tiles, limit, permanent, player string
			created                         string
		)
		if err := rows.Scan(&r.ID, &r.ReqID, &r.Source, &seed, &tiles, &limit, &permanent, &player,
			&r.Buildings, &r.Placed, &r.Blocked, &r.Digest, &created); err != nil {
			return nil, err
		}
		opts, err := setup.ParseOptions(tiles, limit, permanent, player)
		if err != nil {
			return nil, fmt.Errorf("setup %d: %w", r.ID, err)
		}
		r.Seed = uint64(seed)
		r.Options = opts
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("setup %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var errNoTx = errors.New("no transaction")

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertSetup, _ := s.db.Prepare(`INSERT INTO setups(req_id,source,seed,tiles,row_limit,permanent,players,buildings,placed,blocked,digest,created_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertSetup != nil {
			_ = insertSetup.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() error {
		if tx != nil {
			return nil
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return errNoTx
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
		return nil
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.errTotal.Add(1)
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	// Commit in batches under load and as soon as the queue drains, so
	// readers sharing the single connection never wait on an idle tx.
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait || len(s.ch) == 0 {
			commit()
		}
	}

	for r := range s.ch {
		switch r.kind {
		case reqFlush:
			commit()
			close(r.done)
			continue

		case reqSetup:
			if err := begin(); err != nil || insertSetup == nil {
				s.errTotal.Add(1)
				continue
			}
			rec := r.setup
			if _, err := tx.Stmt(insertSetup).Exec(
				rec.ReqID,
				rec.Source,
				int64(rec.Seed),
				rec.Options.Tiles.String(),
				rec.Options.Limit.String(),
				rec.Options.Permanent.String(),
				rec.Options.Players.String(),
				rec.Buildings,
				rec.Placed,
				rec.Blocked,
				rec.Digest,
				rec.CreatedAt.UTC().Format(time.RFC3339Nano),
			); err != nil {
				s.errTotal.Add(1)
				rollback()
				continue
			}
			opCount++
			s.writeTotal.Add(1)
		}
		flushIfNeeded()
	}

	commit()
}
