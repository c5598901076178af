package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"randomcarnegie.app/internal/setup"
)

type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// RequestEntry is one served (or rejected) setup request.
type RequestEntry struct {
	Time      time.Time     `json:"time"`
	ReqID     string        `json:"req_id"`
	SessionID string        `json:"session_id,omitempty"`
	Source    string        `json:"source"`
	Seed      uint64        `json:"seed"`
	Options   setup.Options `json:"options"`
	Digest    string        `json:"digest,omitempty"`
	Code      string        `json:"code,omitempty"`
}

// RequestLogger writes request JSONL entries (compressed).
type RequestLogger struct{ w *JSONLZstdWriter }

const requestPrefix = "requests"

func NewRequestLogger(dataDir string) *RequestLogger {
	return &RequestLogger{w: NewJSONLZstdWriter(RequestDir(dataDir), requestPrefix)}
}

// RequestDir is where NewRequestLogger puts its files.
func RequestDir(dataDir string) string { return filepath.Join(dataDir, "requests") }

func (l *RequestLogger) WriteRequest(e RequestEntry) error {
	if l == nil {
		return nil
	}
	return l.w.Write(e)
}

func (l *RequestLogger) Close() error {
	if l == nil {
		return nil
	}
	return l.w.Close()
}
