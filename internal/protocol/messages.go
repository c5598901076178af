package protocol

import (
	"errors"

	"randomcarnegie.app/internal/setup"
)

// SETUP (client -> server)
type SetupReqMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	ReqID           string          `json:"req_id,omitempty"`
	Seed            string          `json:"seed,omitempty"` // empty draws a random seed
	Options         *RequestOptions `json:"options,omitempty"`
}

// RequestOptions uses the text forms of the setup options. Empty fields fall
// back to the server defaults.
type RequestOptions struct {
	Tiles     string `json:"tiles,omitempty"`
	Limit     string `json:"limit,omitempty"`
	Permanent string `json:"permanent,omitempty"`
	Players   string `json:"players,omitempty"`
}

// SETUP_RESULT (server -> client)
type SetupResultMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ReqID           string      `json:"req_id,omitempty"`
	SessionID       string      `json:"session_id,omitempty"`
	Seed            string      `json:"seed"`
	ShareURL        string      `json:"share_url,omitempty"`
	Setup           setup.Setup `json:"setup"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

// Resolve turns a request into a seed and options, starting from defaults.
func (m SetupReqMsg) Resolve(defaults setup.Options) (uint64, setup.Options, error) {
	opts := defaults
	if m.Options != nil {
		var err error
		opts, err = overlay(defaults, *m.Options)
		if err != nil {
			return 0, opts, err
		}
	}
	if m.Seed == "" {
		return setup.RandomSeed(), opts, nil
	}
	seed, err := setup.ParseSeed(m.Seed)
	return seed, opts, err
}

func overlay(base setup.Options, ro RequestOptions) (setup.Options, error) {
	parsed, err := setup.ParseOptions(ro.Tiles, ro.Limit, ro.Permanent, ro.Players)
	if err != nil {
		return base, err
	}
	if ro.Tiles != "" {
		base.Tiles = parsed.Tiles
	}
	if ro.Limit != "" {
		base.Limit = parsed.Limit
	}
	if ro.Permanent != "" {
		base.Permanent = parsed.Permanent
	}
	if ro.Players != "" {
		base.Players = parsed.Players
	}
	return base, nil
}

// CodeFor maps a setup error onto a wire error code.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, setup.ErrInvalidSeed):
		return ErrBadSeed
	case errors.Is(err, setup.ErrInvalidOptions):
		return ErrBadOptions
	case errors.Is(err, ErrSchema):
		return ErrProtoBadRequest
	}
	return ErrInternal
}

func NewError(reqID, code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		ReqID:           reqID,
		Code:            code,
		Message:         message,
	}
}
