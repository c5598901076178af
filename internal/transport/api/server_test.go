package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"randomcarnegie.app/internal/persistence/indexdb"
	"randomcarnegie.app/internal/protocol"
	"randomcarnegie.app/internal/service"
	"randomcarnegie.app/internal/setup"
	"randomcarnegie.app/internal/setup/buildings"
	"randomcarnegie.app/internal/setup/players"
)

type fakeHistory struct {
	recs []indexdb.Record
	err  error
	seed uint64
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]indexdb.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recs[:min(limit, len(f.recs))], nil
}

func (f *fakeHistory) BySeed(ctx context.Context, seed uint64, limit int) ([]indexdb.Record, error) {
	f.seed = seed
	return nil, f.err
}

func newTestMux(t *testing.T, history History, publicURL string) *http.ServeMux {
	t.Helper()
	svc := service.New(service.Config{
		Defaults:  setup.DefaultOptions(),
		PublicURL: publicURL,
		Logger:    log.New(io.Discard, "", 0),
	})
	mux := http.NewServeMux()
	NewServer(svc, history, log.New(io.Discard, "", 0)).Register(mux)
	return mux
}

func get(t *testing.T, mux http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestSetup_QueryAndPath(t *testing.T) {
	mux := newTestMux(t, nil, "https://carnegie.example")

	rr := get(t, mux, "/v1/setup?seed=%2300001234&tiles=both&limit=6&permanent=1%2B&players=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var res protocol.SetupResultMsg
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := setup.Options{Tiles: buildings.Both, Limit: buildings.LimitSix, Permanent: buildings.OnePlus, Players: players.Two}
	if res.Seed != "00001234" || res.Setup.Options != want {
		t.Fatalf("result: seed=%s opts=%+v", res.Seed, res.Setup.Options)
	}
	if res.ShareURL != "https://carnegie.example/#00001234" {
		t.Fatalf("share url %q", res.ShareURL)
	}

	// An unescaped '+' arrives as a space.
	rr = get(t, mux, "/v1/setup?seed=1&permanent=0+")
	if rr.Code != http.StatusOK {
		t.Fatalf("plus form: status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = get(t, mux, "/v1/setup/00001234")
	if rr.Code != http.StatusOK {
		t.Fatalf("path: status=%d", rr.Code)
	}
	var byPath protocol.SetupResultMsg
	_ = json.Unmarshal(rr.Body.Bytes(), &byPath)
	direct, _ := setup.Generate(1234, setup.DefaultOptions())
	if byPath.Setup.Digest != direct.Digest {
		t.Fatalf("digest %s want %s", byPath.Setup.Digest, direct.Digest)
	}
}

func TestSetup_RandomSeedWhenMissing(t *testing.T) {
	mux := newTestMux(t, nil, "")
	rr := get(t, mux, "/v1/setup")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var res protocol.SetupResultMsg
	_ = json.Unmarshal(rr.Body.Bytes(), &res)
	if len(res.Seed) != 8 || res.ShareURL != "" {
		t.Fatalf("seed=%q share=%q", res.Seed, res.ShareURL)
	}
}

func TestSetup_Errors(t *testing.T) {
	mux := newTestMux(t, nil, "")
	cases := []struct {
		target string
		code   string
	}{
		{"/v1/setup?seed=abc", protocol.ErrBadSeed},
		{"/v1/setup/12x", protocol.ErrBadSeed},
		{"/v1/setup?seed=1&limit=7", protocol.ErrBadOptions},
		{"/v1/setup?seed=1&players=9", protocol.ErrBadOptions},
	}
	for _, tc := range cases {
		rr := get(t, mux, tc.target)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", tc.target, rr.Code)
		}
		var e protocol.ErrorMsg
		if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
			t.Fatalf("%s: decode: %v", tc.target, err)
		}
		if e.Type != protocol.TypeError || e.Code != tc.code {
			t.Fatalf("%s: got %+v want code %s", tc.target, e, tc.code)
		}
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/setup", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST: status=%d", rr.Code)
	}
}

func TestShare_PNG(t *testing.T) {
	mux := newTestMux(t, nil, "https://carnegie.example")
	rr := get(t, mux, "/v1/share/42?size=128")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content-type %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("body is not a PNG")
	}

	if rr := get(t, mux, "/v1/share/42?size=5"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad size: status=%d", rr.Code)
	}
	if rr := get(t, mux, "/v1/share/nope"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad seed: status=%d", rr.Code)
	}
	if rr := get(t, newTestMux(t, nil, ""), "/v1/share/42"); rr.Code != http.StatusNotFound {
		t.Fatalf("no public url: status=%d", rr.Code)
	}
}

func TestHistory(t *testing.T) {
	if rr := get(t, newTestMux(t, nil, ""), "/v1/history"); rr.Code != http.StatusNotFound {
		t.Fatalf("disabled: status=%d", rr.Code)
	}

	h := &fakeHistory{recs: []indexdb.Record{{ID: 3, Seed: 9}, {ID: 2, Seed: 8}, {ID: 1, Seed: 7}}}
	mux := newTestMux(t, h, "")
	rr := get(t, mux, "/v1/history?limit=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var body struct {
		Setups []indexdb.Record `json:"setups"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Setups) != 2 || body.Setups[0].ID != 3 {
		t.Fatalf("setups: %+v", body.Setups)
	}

	rr = get(t, mux, "/v1/history?seed=%23123")
	if rr.Code != http.StatusOK || h.seed != 123 {
		t.Fatalf("by seed: status=%d seed=%d", rr.Code, h.seed)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"setups":[]`)) {
		t.Fatalf("empty result should be an empty list: %s", rr.Body.String())
	}

	if rr := get(t, mux, "/v1/history?limit=0"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: status=%d", rr.Code)
	}
	h.err = errors.New("db closed")
	if rr := get(t, mux, "/v1/history"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("db error: status=%d", rr.Code)
	}
}
