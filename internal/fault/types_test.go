package fault

import "testing"

func TestParseComponent(t *testing.T) {
	cases := []struct {
		in   string
		want Component
		ok   bool
	}{
		{"CPU", ComponentCPU, true},
		{"RAM", ComponentRAM, true},
		{"REGISTER", ComponentRegister, true},
		{"cpu", ComponentNone, false},
		{"", ComponentNone, false},
	}
	for _, c := range cases {
		got, ok := ParseComponent(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseComponent(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseTarget(t *testing.T) {
	got, ok := ParseTarget("REGISTER CELL")
	if !ok || got != TargetRegisterCell {
		t.Fatalf("ParseTarget(REGISTER CELL) = (%v, %v)", got, ok)
	}
	if _, ok := ParseTarget("REGISTER_CELL"); ok {
		t.Fatal("underscore variant must not parse")
	}
}

func TestModeIsCPSR(t *testing.T) {
	for m := ModeCPSRCF; m <= ModeCPSRQF; m++ {
		if !m.IsCPSR() {
			t.Errorf("%v.IsCPSR() = false, want true", m)
		}
	}
	if ModeBitflip.IsCPSR() {
		t.Fatal("BITFLIP.IsCPSR() = true, want false")
	}
	if ModeCouplingFault.IsCPSR() {
		t.Fatal("COUPLING FAULT.IsCPSR() = true, want false")
	}
}

func TestParseModeRoundTrip(t *testing.T) {
	for m := ModeNewValue; m <= ModeCPSRQF; m++ {
		got, ok := ParseMode(m.String())
		if !ok || got != m {
			t.Errorf("ParseMode(%q) = (%v, %v), want (%v, true)", m.String(), got, ok, m)
		}
	}
}

func TestPCOnly(t *testing.T) {
	f := Fault{Trigger: TriggerPC, Severity: SeverityNone}
	if !f.PCOnly() {
		t.Fatal("expected PCOnly fault with no severity to report PCOnly()")
	}
	f.Severity = SeverityPermanent
	if f.PCOnly() {
		t.Fatal("fault with a declared severity must not report PCOnly()")
	}
}

func TestUnknownStringers(t *testing.T) {
	if got := Component(99).String(); got != "UNKNOWN" {
		t.Errorf("Component(99).String() = %q, want UNKNOWN", got)
	}
	if got := Target(-1).String(); got != "UNKNOWN" {
		t.Errorf("Target(-1).String() = %q, want UNKNOWN", got)
	}
}
