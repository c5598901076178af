package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"randomcarnegie.app/internal/persistence/indexdb"
	"randomcarnegie.app/internal/setup"
)

// openIndex registers the shared flags on fs, parses args and opens the index.
func openIndex(fs *flag.FlagSet, args []string) *indexdb.SQLiteIndex {
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional; defaults to <data>/index/setups.sqlite)")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "setups.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return idx
}

func historyCmd(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "result limit")
	idx := openIndex(fs, args)
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recs, err := idx.Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	if err := printRecords(os.Stdout, recs); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}

func seedCmd(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	limit := fs.Int("limit", 20, "result limit")
	idx := openIndex(fs, args)
	defer idx.Close()

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: admin seed [flags] <seed>")
		os.Exit(2)
	}
	seed, err := setup.ParseSeed(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recs, err := idx.BySeed(ctx, seed, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	if len(recs) == 0 {
		fmt.Fprintf(os.Stderr, "no setups recorded for seed %s\n", setup.FormatSeed(seed))
		os.Exit(1)
	}
	if err := printRecords(os.Stdout, recs); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}

func metaCmd(args []string) {
	fs := flag.NewFlagSet("meta", flag.ExitOnError)
	idx := openIndex(fs, args)
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	meta, err := idx.Meta(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, meta[k])
	}
}

// printRecords writes one JSON object per line.
func printRecords(w io.Writer, recs []indexdb.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
