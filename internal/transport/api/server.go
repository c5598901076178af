package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"randomcarnegie.app/internal/persistence/indexdb"
	"randomcarnegie.app/internal/protocol"
	"randomcarnegie.app/internal/service"
	"randomcarnegie.app/internal/setup"
)

// History serves recently recorded setups.
type History interface {
	Recent(ctx context.Context, limit int) ([]indexdb.Record, error)
	BySeed(ctx context.Context, seed uint64, limit int) ([]indexdb.Record, error)
}

type Server struct {
	svc     *service.Service
	history History
	log     *log.Logger
}

// NewServer builds the HTTP API. history may be nil when indexing is disabled.
func NewServer(svc *service.Service, history History, logger *log.Logger) *Server {
	return &Server{svc: svc, history: history, log: logger}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/setup", s.handleSetup)
	mux.HandleFunc("GET /v1/setup/{seed}", s.handleSetup)
	mux.HandleFunc("GET /v1/share/{seed}", s.handleShare)
	mux.HandleFunc("GET /v1/history", s.handleHistory)
}

func (s *Server) handleSetup(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seed := r.PathValue("seed")
	if seed == "" {
		seed = q.Get("seed")
	}
	msg := protocol.SetupReqMsg{
		Type:            protocol.TypeSetup,
		ProtocolVersion: protocol.Version,
		ReqID:           r.Header.Get("X-Request-Id"),
		Seed:            seed,
		Options: &protocol.RequestOptions{
			Tiles:     q.Get("tiles"),
			Limit:     q.Get("limit"),
			Permanent: plusValue(q.Get("permanent")),
			Players:   q.Get("players"),
		},
	}
	res, errMsg := s.svc.Generate(service.Request{Source: "http", Msg: msg})
	if errMsg != nil {
		writeError(rw, statusFor(errMsg.Code), *errMsg)
		return
	}
	writeJSON(rw, http.StatusOK, res)
}

func (s *Server) handleShare(rw http.ResponseWriter, r *http.Request) {
	seed, err := setup.ParseSeed(r.PathValue("seed"))
	if err != nil {
		writeError(rw, http.StatusBadRequest, protocol.NewError("", protocol.ErrBadSeed, err.Error()))
		return
	}
	link := s.svc.ShareURL(seed)
	if link == "" {
		writeError(rw, http.StatusNotFound, protocol.NewError("", protocol.ErrNotFound, "no public url configured"))
		return
	}
	size := 256
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			writeError(rw, http.StatusBadRequest, protocol.NewError("", protocol.ErrBadRequest, "size must be in [64,1024]"))
			return
		}
		size = n
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		s.log.Printf("qr %s: %v", link, err)
		writeError(rw, http.StatusInternalServerError, protocol.NewError("", protocol.ErrInternal, "qr encode failed"))
		return
	}
	rw.Header().Set("Content-Type", "image/png")
	rw.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = rw.Write(png)
}

func (s *Server) handleHistory(rw http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(rw, http.StatusNotFound, protocol.NewError("", protocol.ErrNotFound, "history disabled"))
		return
	}
	q := r.URL.Query()
	limit := 20
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(rw, http.StatusBadRequest, protocol.NewError("", protocol.ErrBadRequest, "limit must be in [1,500]"))
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		recs []indexdb.Record
		err  error
	)
	if v := q.Get("seed"); v != "" {
		seed, perr := setup.ParseSeed(v)
		if perr != nil {
			writeError(rw, http.StatusBadRequest, protocol.NewError("", protocol.ErrBadSeed, perr.Error()))
			return
		}
		recs, err = s.history.BySeed(ctx, seed, limit)
	} else {
		recs, err = s.history.Recent(ctx, limit)
	}
	if err != nil {
		s.log.Printf("history: %v", err)
		writeError(rw, http.StatusInternalServerError, protocol.NewError("", protocol.ErrInternal, "history query failed"))
		return
	}
	if recs == nil {
		recs = []indexdb.Record{}
	}
	writeJSON(rw, http.StatusOK, map[string]any{"setups": recs})
}

// plusValue undoes form decoding of a literal '+' in values such as "1+".
func plusValue(v string) string { return strings.ReplaceAll(v, " ", "+") }

func statusFor(code string) int {
	switch code {
	case protocol.ErrBadSeed, protocol.ErrBadOptions, protocol.ErrBadRequest, protocol.ErrProtoBadRequest:
		return http.StatusBadRequest
	case protocol.ErrNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(rw http.ResponseWriter, status int, e protocol.ErrorMsg) {
	writeJSON(rw, status, e)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}
