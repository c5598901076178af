package main

import (
	"bytes"
	"strings"
	"testing"

	"randomcarnegie.app/internal/setup"
	"randomcarnegie.app/internal/setup/players"
)

func TestRender_TwoPlayers(t *testing.T) {
	opts := setup.DefaultOptions()
	opts.Players = players.Two
	s, err := setup.Generate(12345678, opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var buf bytes.Buffer
	render(&buf, s)
	out := buf.String()
	for _, want := range []string{
		"seed 12345678  tiles=base limit=4 permanent=1 players=2\n",
		"buildings " + s.Buildings + "\n",
		"row 1  ",
		"row 4  ",
		"donations (18 disks)\n",
		"blocked cities\n",
		"  west\n",
		"San Francisco",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	// Disks on the grid equal the X marks.
	grid := 0
	for _, row := range s.Donations.Grid {
		for _, v := range row {
			if v {
				grid++
			}
		}
	}
	section := out[strings.Index(out, "donations"):strings.Index(out, "blocked cities")]
	if got := strings.Count(section, "X"); got != grid {
		t.Fatalf("X marks %d want %d", got, grid)
	}
}

func TestRender_NoDonationsForFourPlayers(t *testing.T) {
	s, err := setup.Generate(7, setup.DefaultOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var buf bytes.Buffer
	render(&buf, s)
	if strings.Contains(buf.String(), "donations") {
		t.Fatalf("four players should not block donations:\n%s", buf.String())
	}
	if strings.Count(buf.String(), "\nrow ") != 4 {
		t.Fatalf("expected four rows:\n%s", buf.String())
	}
}
