package inject

import (
	"testing"

	"github.com/dependableDOTspace/fieser/internal/cputarget"
	"github.com/dependableDOTspace/fieser/internal/fault"
)

// fakeAccessor is a minimal in-memory cputarget.Accessor for testing
// the mutators that need one (CPSR, PC).
type fakeAccessor struct {
	cpsr uint32
	pc   uint64
}

func (f *fakeAccessor) ReadMemory(addr uint64, size int) (uint64, error)  { return 0, nil }
func (f *fakeAccessor) WriteMemory(addr uint64, size int, v uint64) error { return nil }
func (f *fakeAccessor) ReadRegister(i int) (uint64, error)                { return 0, nil }
func (f *fakeAccessor) WriteRegister(i int, v uint64) error               { return nil }
func (f *fakeAccessor) PC() uint64                                       { return f.pc }
func (f *fakeAccessor) SetPC(pc uint64) error                             { f.pc = pc; return nil }
func (f *fakeAccessor) CPSR() uint32                                      { return f.cpsr }
func (f *fakeAccessor) SetCPSR(v uint32) error                            { f.cpsr = v; return nil }
func (f *fakeAccessor) ThumbMode() bool                                   { return false }

var _ cputarget.Accessor = (*fakeAccessor)(nil)

func TestBitflip(t *testing.T) {
	// value 0xF0, mask 0x0F -> 0xFF
	got := Bitflip(0xF0, 0x0F)
	if got != 0xFF {
		t.Fatalf("Bitflip(0xF0, 0x0F) = %#x, want 0xFF", got)
	}
}

func TestStateFault(t *testing.T) {
	// value 0x0F, mask 0b1010, set_bit 0b1000 -> 0x0D
	got := StateFault(0x0F, 0b1010, 0b1000)
	if got != 0x0D {
		t.Fatalf("StateFault(0x0F, 0b1010, 0b1000) = %#x, want 0x0D", got)
	}
}

func TestInstructionSquash(t *testing.T) {
	got := InstructionSquash(cputarget.EventInstructionValueThumb32)
	if got != 0x46C046C0 {
		t.Fatalf("InstructionSquash(Thumb32) = %#x, want 0x46C046C0", got)
	}
	if got := InstructionSquash(cputarget.EventInstructionValueThumb16); got != 0x46C0 {
		t.Fatalf("InstructionSquash(Thumb16) = %#x, want 0x46C0", got)
	}
	if got := InstructionSquash(cputarget.EventInstructionValueARM); got != NOPArm {
		t.Fatalf("InstructionSquash(ARM) = %#x, want %#x", got, NOPArm)
	}
}

func TestNewValueWord(t *testing.T) {
	got := NewValueWord(0xE1A00000, 4)
	if got != 0xE1A00000 {
		t.Fatalf("NewValueWord = %#x, want 0xE1A00000", got)
	}
}

func TestConditionFlags(t *testing.T) {
	acc := &fakeAccessor{cpsr: 0}
	if err := ConditionFlags(acc, fault.ModeCPSRZF, 1); err != nil {
		t.Fatalf("ConditionFlags error: %v", err)
	}
	if acc.CPSR()&(1<<30) == 0 {
		t.Fatal("Z flag (bit 30) was not set")
	}
	if err := ConditionFlags(acc, fault.ModeCPSRZF, 0); err != nil {
		t.Fatalf("ConditionFlags error: %v", err)
	}
	if acc.CPSR()&(1<<30) != 0 {
		t.Fatal("Z flag (bit 30) was not cleared")
	}
}

func TestConditionFlagsRejectsNonCPSRMode(t *testing.T) {
	acc := &fakeAccessor{}
	if err := ConditionFlags(acc, fault.ModeBitflip, 1); err == nil {
		t.Fatal("expected an error for a non-CPSR mode")
	}
}

func TestLookUpError(t *testing.T) {
	acc := &fakeAccessor{}
	if err := LookUpError(acc, 0x8000, 4); err != nil {
		t.Fatalf("LookUpError error: %v", err)
	}
	if acc.PC() != 0x8004 {
		t.Fatalf("PC = %#x, want 0x8004", acc.PC())
	}
}
