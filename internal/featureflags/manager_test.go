package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("devto=on,guardian=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("devto") || !m.Enabled("c") || !m.Enabled("e") {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("guardian") || m.Enabled("d") || m.Enabled("f") {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
}

func TestEnabled_UnknownFlag(t *testing.T) {
	m := NewManager("devto=on")
	if m.Enabled("hashnode") {
		t.Fatal("unknown flags must be off")
	}
}

func TestEnabledFor_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.EnabledFor("always", "client-1") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.EnabledFor("never", "client-1") {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.EnabledFor("canary", "client-42")
	for i := 0; i < 5; i++ {
		if got := m.EnabledFor("canary", "client-42"); got != first {
			t.Fatal("rollout evaluation must be deterministic per key")
		}
	}

	if m.EnabledFor("canary", "") {
		t.Fatal("percentage rollout requires a rollout key")
	}
}

func TestParseSkipsMalformedPairs(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off, =v, k= ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d: %v", len(raw), raw)
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected parsed flags: %v", raw)
	}
}

func TestNilManagerIsOff(t *testing.T) {
	var m *Manager
	if m.EnabledFor("anything", "k") {
		t.Fatal("nil manager must evaluate everything off")
	}
}
