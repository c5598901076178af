// Package service resolves setup requests for the transports and records
// what was served.
package service

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"randomcarnegie.app/internal/persistence/indexdb"
	persistlog "randomcarnegie.app/internal/persistence/log"
	"randomcarnegie.app/internal/protocol"
	"randomcarnegie.app/internal/setup"
)

// Recorder receives every served setup. Implementations must not block.
type Recorder interface {
	RecordSetup(rec indexdb.Record)
}

type RequestLog interface {
	WriteRequest(e persistlog.RequestEntry) error
}

type Config struct {
	Defaults  setup.Options
	PublicURL string
	Index     Recorder
	Requests  RequestLog
	Logger    *log.Logger
}

type Service struct {
	defaults  setup.Options
	publicURL string
	index     Recorder
	requests  RequestLog
	log       *log.Logger
	now       func() time.Time

	mu       sync.Mutex
	served   map[string]uint64
	failures map[string]uint64
}

func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[service] ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Service{
		defaults:  cfg.Defaults,
		publicURL: cfg.PublicURL,
		index:     cfg.Index,
		requests:  cfg.Requests,
		log:       logger,
		now:       time.Now,
		served:    map[string]uint64{},
		failures:  map[string]uint64{},
	}
}

func (s *Service) Defaults() setup.Options { return s.defaults }

// ShareURL is the public link for seed, or "" without a public URL.
func (s *Service) ShareURL(seed uint64) string {
	if s.publicURL == "" {
		return ""
	}
	return setup.ShareURL(s.publicURL, seed)
}

// Request identifies where a setup request came from.
type Request struct {
	Source    string
	SessionID string
	Msg       protocol.SetupReqMsg
}

// Generate resolves r against the defaults and builds the setup. Failures
// are returned as wire errors.
func (s *Service) Generate(r Request) (protocol.SetupResultMsg, *protocol.ErrorMsg) {
	reqID := r.Msg.ReqID
	if reqID == "" {
		reqID = uuid.NewString()
	}
	now := s.now()

	seed, opts, err := r.Msg.Resolve(s.defaults)
	var out setup.Setup
	if err == nil {
		out, err = setup.Generate(seed, opts)
	}
	if err != nil {
		code := protocol.CodeFor(err)
		s.count(r.Source, code)
		s.writeLog(persistlog.RequestEntry{
			Time: now, ReqID: reqID, SessionID: r.SessionID, Source: r.Source,
			Seed: seed, Options: opts, Code: code,
		})
		e := protocol.NewError(reqID, code, err.Error())
		return protocol.SetupResultMsg{}, &e
	}

	s.count(r.Source, "")
	if s.index != nil {
		s.index.RecordSetup(indexdb.RecordFromSetup(reqID, r.Source, out, now))
	}
	s.writeLog(persistlog.RequestEntry{
		Time: now, ReqID: reqID, SessionID: r.SessionID, Source: r.Source,
		Seed: seed, Options: opts, Digest: out.Digest,
	})

	return protocol.SetupResultMsg{
		Type:            protocol.TypeSetupResult,
		ProtocolVersion: protocol.Version,
		ReqID:           reqID,
		SessionID:       r.SessionID,
		Seed:            out.SeedString(),
		ShareURL:        s.ShareURL(seed),
		Setup:           out,
	}, nil
}

func (s *Service) writeLog(e persistlog.RequestEntry) {
	if s.requests == nil {
		return
	}
	if err := s.requests.WriteRequest(e); err != nil {
		s.log.Printf("request log: %v", err)
	}
}

func (s *Service) count(source, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == "" {
		s.served[source]++
		return
	}
	s.failures[code]++
}

// Counter is one labelled counter value.
type Counter struct {
	Label string
	Value uint64
}

type Metrics struct {
	Served   []Counter // by source
	Failures []Counter // by error code
}

// Metrics returns the counters sorted by label.
func (s *Service) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Metrics{Served: sorted(s.served), Failures: sorted(s.failures)}
}

func sorted(m map[string]uint64) []Counter {
	out := make([]Counter, 0, len(m))
	for k, v := range m {
		out = append(out, Counter{Label: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
