package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"randomcarnegie.app/internal/persistence/export"
	"randomcarnegie.app/internal/setup"
)

func main() {
	var (
		seedStr = flag.String("seed", "", "seed (decimal, optional leading #); empty draws a random seed")
		asJSON  = flag.Bool("json", false, "print the setup as JSON")
		outPath = flag.String("out", "", "also write a "+export.Ext+" export (a directory gets <seed>"+export.Ext+")")
	)
	opts := setup.DefaultOptions()
	flag.TextVar(&opts.Tiles, "tiles", opts.Tiles, "building tiles: base|both|expansion")
	flag.TextVar(&opts.Limit, "limit", opts.Limit, "distinct departments per row: 4|5|6|8")
	flag.TextVar(&opts.Permanent, "permanent", opts.Permanent, "accent departments per row: 0|0+|1|1+|2")
	flag.TextVar(&opts.Players, "players", opts.Players, "player count: all|4|3|2")
	flag.Parse()

	seed := setup.RandomSeed()
	if *seedStr != "" {
		var err error
		seed, err = setup.ParseSeed(*seedStr)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	s, err := setup.Generate(seed, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(2)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			fmt.Fprintln(os.Stderr, "encode:", err)
			os.Exit(1)
		}
	} else {
		render(os.Stdout, s)
	}

	if *outPath != "" {
		path := *outPath
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			path = path + string(os.PathSeparator) + export.FileName(seed)
		}
		if err := export.Write(path, s, time.Now()); err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "wrote", path)
	}
}
