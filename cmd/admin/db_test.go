package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"randomcarnegie.app/internal/persistence/indexdb"
	"randomcarnegie.app/internal/setup"
)

func TestPrintRecords_JSONLines(t *testing.T) {
	s, err := setup.Generate(77, setup.DefaultOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := []indexdb.Record{
		indexdb.RecordFromSetup("R1", "http", s, at),
		indexdb.RecordFromSetup("R2", "ws", s, at),
	}
	var buf bytes.Buffer
	if err := printRecords(&buf, recs); err != nil {
		t.Fatalf("print: %v", err)
	}
	sc := bufio.NewScanner(&buf)
	n := 0
	for sc.Scan() {
		var r indexdb.Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("line %d: %v", n, err)
		}
		if r.Digest != s.Digest || r.Options != s.Options {
			t.Fatalf("line %d: %+v", n, r)
		}
		n++
	}
	if n != 2 {
		t.Fatalf("lines %d", n)
	}
}
