package hibiscus

import "testing"

func TestState_IsClosingOrClosed(t *testing.T) {
	cases := []struct {
		state State
		want  bool
	}{
		{disconnectedState(), false},
		{connectingState(fakeParams{}), false},
		{connectedState(), false},
		{closingState(), true},
		{closedState(), true},
	}
	for _, c := range cases {
		if got := c.state.IsClosingOrClosed(); got != c.want {
			t.Errorf("%v.IsClosingOrClosed() = %v, want %v", c.state.Kind, got, c.want)
		}
	}
}

func TestStateKind_String(t *testing.T) {
	if StateConnected.String() != "Connected" {
		t.Errorf("StateConnected.String() = %q, want %q", StateConnected.String(), "Connected")
	}
	if got := StateKind(99).String(); got == "" {
		t.Error("unknown StateKind should still render something non-empty")
	}
}
