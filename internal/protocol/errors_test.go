package protocol

import (
	"fmt"
	"testing"

	"randomcarnegie.app/internal/setup"
)

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrBadRequest,
		ErrBadSeed,
		ErrBadOptions,
		ErrNotFound,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", setup.ErrInvalidSeed), ErrBadSeed},
		{fmt.Errorf("wrap: %w", setup.ErrInvalidOptions), ErrBadOptions},
		{fmt.Errorf("wrap: %w", ErrSchema), ErrProtoBadRequest},
		{fmt.Errorf("disk full"), ErrInternal},
	}
	for _, tc := range cases {
		got := CodeFor(tc.err)
		if got != tc.want {
			t.Fatalf("%v: got %q want %q", tc.err, got, tc.want)
		}
		if !IsKnownCode(got) {
			t.Fatalf("CodeFor produced unknown code %q", got)
		}
	}
}
