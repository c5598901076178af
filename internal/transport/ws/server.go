package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"randomcarnegie.app/internal/protocol"
	"randomcarnegie.app/internal/service"
)

type Server struct {
	svc       *service.Service
	validator *protocol.Validator
	log       *log.Logger
	maxQueue  int

	upgrader websocket.Upgrader
}

func NewServer(svc *service.Service, validator *protocol.Validator, maxQueue int, logger *log.Logger) *Server {
	if maxQueue <= 0 {
		maxQueue = 8
	}
	if maxQueue > 64 {
		maxQueue = 64
	}
	s := &Server{
		svc:       svc,
		validator: validator,
		log:       logger,
		maxQueue:  maxQueue,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetReadLimit(16 * 1024)

		sessionID := uuid.NewString()
		out := make(chan []byte, s.maxQueue)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		send := func(v any) bool {
			b, err := json.Marshal(v)
			if err != nil {
				s.log.Printf("session %s: marshal: %v", sessionID, err)
				return true
			}
			select {
			case out <- b:
				return true
			case <-ctx.Done():
				return false
			}
		}

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if !s.handle(sessionID, msg, send) {
				break
			}
		}
		cancel()
		<-done
	}
}

// handle answers one inbound message. It reports false once the session
// can no longer send.
func (s *Server) handle(sessionID string, msg []byte, send func(any) bool) bool {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return send(protocol.NewError("", protocol.ErrProtoBadRequest, "malformed json"))
	}
	if base.Type != protocol.TypeSetup {
		return send(protocol.NewError("", protocol.ErrProtoBadRequest, "unsupported message type: "+base.Type))
	}
	if base.ProtocolVersion != protocol.Version {
		return send(protocol.NewError("", protocol.ErrProtoBadRequest, "bad protocol_version"))
	}
	if s.validator != nil {
		if err := s.validator.Validate(protocol.TypeSetup, msg); err != nil {
			return send(protocol.NewError("", protocol.CodeFor(err), err.Error()))
		}
	}
	var req protocol.SetupReqMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		return send(protocol.NewError("", protocol.ErrBadRequest, err.Error()))
	}
	res, errMsg := s.svc.Generate(service.Request{Source: "ws", SessionID: sessionID, Msg: req})
	if errMsg != nil {
		return send(*errMsg)
	}
	return send(res)
}
