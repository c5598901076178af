package ws

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"randomcarnegie.app/internal/protocol"
	"randomcarnegie.app/internal/service"
	"randomcarnegie.app/internal/setup"
)

func dialTestServer(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	svc := service.New(service.Config{
		Defaults:  setup.DefaultOptions(),
		PublicURL: "https://carnegie.example",
		Logger:    log.New(io.Discard, "", 0),
	})
	srv := httptest.NewServer(NewServer(svc, v, 4, log.New(io.Discard, "", 0)).Handler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
		srv.Close()
	}
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) (protocol.BaseMessage, []byte) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return base, b
}

func TestServer_SetupRoundTrip(t *testing.T) {
	conn, cleanup := dialTestServer(t)
	defer cleanup()

	base, b := roundTrip(t, conn, `{"type":"SETUP","protocol_version":"1.0","req_id":"R1","seed":"00001234","options":{"players":"2"}}`)
	if base.Type != protocol.TypeSetupResult {
		t.Fatalf("type %s: %s", base.Type, b)
	}
	var res protocol.SetupResultMsg
	if err := json.Unmarshal(b, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.ReqID != "R1" || res.Seed != "00001234" || res.SessionID == "" {
		t.Fatalf("result header: %+v", res)
	}
	opts := setup.DefaultOptions()
	opts.Players = 2
	want, _ := setup.Generate(1234, opts)
	if res.Setup.Digest != want.Digest {
		t.Fatalf("digest %s want %s", res.Setup.Digest, want.Digest)
	}

	// Same session keeps its id across requests.
	_, b = roundTrip(t, conn, `{"type":"SETUP","protocol_version":"1.0","seed":"5"}`)
	var res2 protocol.SetupResultMsg
	_ = json.Unmarshal(b, &res2)
	if res2.SessionID != res.SessionID {
		t.Fatalf("session id changed: %s -> %s", res.SessionID, res2.SessionID)
	}
}

func TestServer_Errors(t *testing.T) {
	conn, cleanup := dialTestServer(t)
	defer cleanup()

	cases := []struct {
		msg  string
		code string
	}{
		{`not json`, protocol.ErrProtoBadRequest},
		{`{"type":"HELLO","protocol_version":"1.0"}`, protocol.ErrProtoBadRequest},
		{`{"type":"SETUP","protocol_version":"0.1"}`, protocol.ErrProtoBadRequest},
		{`{"type":"SETUP","protocol_version":"1.0","options":{"limit":"7"}}`, protocol.ErrProtoBadRequest},
		{`{"type":"SETUP","protocol_version":"1.0","seed":"99999999999999999999"}`, protocol.ErrBadSeed},
	}
	for _, tc := range cases {
		base, b := roundTrip(t, conn, tc.msg)
		if base.Type != protocol.TypeError {
			t.Fatalf("%s: type %s", tc.msg, base.Type)
		}
		var e protocol.ErrorMsg
		_ = json.Unmarshal(b, &e)
		if e.Code != tc.code {
			t.Fatalf("%s: code %s want %s (%s)", tc.msg, e.Code, tc.code, e.Message)
		}
	}

	// The session survives errors.
	base, _ := roundTrip(t, conn, `{"type":"SETUP","protocol_version":"1.0","seed":"1"}`)
	if base.Type != protocol.TypeSetupResult {
		t.Fatalf("type %s after errors", base.Type)
	}
}
