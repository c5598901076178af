package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Setup requests.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrBadSeed    = "E_BAD_SEED"
	ErrBadOptions = "E_BAD_OPTIONS"
	ErrNotFound   = "E_NOT_FOUND"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrBadSeed:         {},
	ErrBadOptions:      {},
	ErrNotFound:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
