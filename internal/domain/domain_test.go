package domain

import (
	"strings"
	"testing"
)

func TestParseUserID(t *testing.T) {
	if _, err := ParseUserID(""); err != ErrUserIDEmpty {
		t.Errorf("empty id: err = %v", err)
	}
	if _, err := ParseUserID(strings.Repeat("x", MaxUserIDLen+1)); err != ErrUserIDTooLong {
		t.Errorf("long id: err = %v", err)
	}
	uid, err := ParseUserID("66a1b2c3")
	if err != nil || uid != "66a1b2c3" {
		t.Errorf("ParseUserID = %q, %v", uid, err)
	}
}

func TestParseCallKind(t *testing.T) {
	for _, raw := range []string{"audio", "video"} {
		kind, err := ParseCallKind(raw)
		if err != nil || string(kind) != raw {
			t.Errorf("ParseCallKind(%q) = %q, %v", raw, kind, err)
		}
	}
	for _, raw := range []string{"", "Video", "screen"} {
		if _, err := ParseCallKind(raw); err != ErrUnknownCallKind {
			t.Errorf("ParseCallKind(%q): err = %v", raw, err)
		}
	}
}

func TestCallStateTerminal(t *testing.T) {
	terminal := map[CallState]bool{
		CallStateOffering: false,
		CallStateRinging:  false,
		CallStateAccepted: false,
		CallStateEnded:    true,
		CallStateRejected: true,
	}
	for state, want := range terminal {
		if state.Terminal() != want {
			t.Errorf("%s.Terminal() = %v, want %v", state, !want, want)
		}
	}
}
