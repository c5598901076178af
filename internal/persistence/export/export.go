// Package export writes setups to self-contained .setup.zst files: a JSON
// header line followed by the gob-encoded setup, zstd-compressed.
package export

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"randomcarnegie.app/internal/setup"
)

const Version = 1

const Ext = ".setup.zst"

type Header struct {
	Version   int       `json:"version"`
	Seed      string    `json:"seed"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
}

type FileV1 struct {
	Header Header      `json:"header"`
	Setup  setup.Setup `json:"setup"`
}

// FileName is the default export name for seed.
func FileName(seed uint64) string { return setup.FormatSeed(seed) + Ext }

func Write(path string, s setup.Setup, at time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 32*1024)

	file := FileV1{
		Header: Header{
			Version:   Version,
			Seed:      s.SeedString(),
			Digest:    s.Digest,
			CreatedAt: at.UTC(),
		},
		Setup: s,
	}
	hb, _ := json.Marshal(file.Header)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&file); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func Read(path string) (FileV1, error) {
	var file FileV1
	f, err := os.Open(path)
	if err != nil {
		return file, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return file, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 32*1024)

	var hdr Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return file, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return file, fmt.Errorf("header: %w", err)
	}
	if hdr.Version != Version {
		return file, fmt.Errorf("unsupported export version %d", hdr.Version)
	}
	if err := gob.NewDecoder(br).Decode(&file); err != nil {
		return file, fmt.Errorf("gob decode: %w", err)
	}
	file.Setup.Normalize()
	return file, nil
}
