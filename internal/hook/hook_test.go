package hook

import (
	"testing"

	"github.com/dependableDOTspace/fieser/internal/counters"
	"github.com/dependableDOTspace/fieser/internal/cputarget"
	"github.com/dependableDOTspace/fieser/internal/fault"
	"github.com/dependableDOTspace/fieser/internal/history"
	"github.com/dependableDOTspace/fieser/internal/vtime"
)

type fakeAccessor struct {
	mem  map[uint64]uint64
	regs map[int]uint64
	cpsr uint32
	pc   uint64
}

func newFakeAccessor() *fakeAccessor {
	return &fakeAccessor{mem: map[uint64]uint64{}, regs: map[int]uint64{}}
}

func (f *fakeAccessor) ReadMemory(addr uint64, size int) (uint64, error)  { return f.mem[addr], nil }
func (f *fakeAccessor) WriteMemory(addr uint64, size int, v uint64) error { f.mem[addr] = v; return nil }
func (f *fakeAccessor) ReadRegister(i int) (uint64, error)                { return f.regs[i], nil }
func (f *fakeAccessor) WriteRegister(i int, v uint64) error               { f.regs[i] = v; return nil }
func (f *fakeAccessor) PC() uint64                                        { return f.pc }
func (f *fakeAccessor) SetPC(pc uint64) error                             { f.pc = pc; return nil }
func (f *fakeAccessor) CPSR() uint32                                      { return f.cpsr }
func (f *fakeAccessor) SetCPSR(v uint32) error                            { f.cpsr = v; return nil }
func (f *fakeAccessor) ThumbMode() bool                                   { return false }

var _ cputarget.Accessor = (*fakeAccessor)(nil)

func newEngine(faults ...fault.Fault) *Engine {
	cat := fault.NewCatalogue(faults)
	return &Engine{
		Catalogue: cat,
		History:   history.NewTable(cat.MaxID(), 32),
		Counters:  counters.New(),
		Origin:    vtime.NewOrigin(),
	}
}

// TestHook_PCTriggeredInstructionDecoderNewValue exercises a PC-triggered
// NEW VALUE replacement on INSTRUCTION_DECODER.
func TestHook_PCTriggeredInstructionDecoderNewValue(t *testing.T) {
	f := fault.Fault{
		ID: 1, Component: fault.ComponentCPU, Target: fault.TargetInstructionDecoder,
		Mode: fault.ModeNewValue, Trigger: fault.TriggerPC,
		Params: fault.Params{Address: 0x8000, AddressDefined: true, Instruction: 0xE1A00000, InstructionDefined: true},
	}
	e := newEngine(f)
	acc := newFakeAccessor()

	out, reports, err := e.Hook(acc, Event{
		Kind: cputarget.EventInstructionValueARM, Access: AccessExec,
		Addr: 0x8000, Value: 0xEA000000, SizeBits: 32,
	})
	if err != nil {
		t.Fatalf("Hook error: %v", err)
	}
	if out.Value != 0xE1A00000 {
		t.Fatalf("Value = %#x, want 0xE1A00000", out.Value)
	}
	if len(reports) != 1 || reports[0].Severity != fault.SeverityTransient {
		t.Fatalf("reports = %+v, want one TRANSIENT activation", reports)
	}
	if got := e.Counters.Activations(1, fault.ComponentCPU, fault.SeverityTransient); got != 1 {
		t.Fatalf("Activations = %d, want 1", got)
	}
}

// TestHook_AccessBitflipWithinTemporalWindow exercises ACCESS BITFLIP on a
// RAM memory cell for an event that falls inside its temporal window.
func TestHook_AccessBitflipWithinTemporalWindow(t *testing.T) {
	f := fault.Fault{
		ID: 2, Component: fault.ComponentRAM, Target: fault.TargetMemoryCell,
		Mode: fault.ModeBitflip, Trigger: fault.TriggerAccess, Severity: fault.SeverityTransient,
		Timer: 0, Duration: 1_000_000,
		Params: fault.Params{Address: 0x1000, AddressDefined: true, Mask: 0x0F, MaskDefined: true},
	}
	e := newEngine(f)
	e.Origin = vtime.NewOrigin() // reset so the event lands early in the 0..1ms window
	acc := newFakeAccessor()

	ev := Event{Kind: cputarget.EventMemoryContent, Access: AccessWrite, Addr: 0x1000, Value: 0xF0, SizeBits: 8}

	out, _, err := e.Hook(acc, ev)
	if err != nil {
		t.Fatalf("Hook error: %v", err)
	}
	if out.Value != 0xFF {
		t.Fatalf("within window: Value = %#x, want 0xFF", out.Value)
	}
}

// TestHook_StateFaultOnRegisterCell exercises STATE_FAULT on a register cell.
func TestHook_StateFaultOnRegisterCell(t *testing.T) {
	f := fault.Fault{
		ID: 4, Component: fault.ComponentRegister, Target: fault.TargetRegisterCell,
		Mode: fault.ModeStateFault, Trigger: fault.TriggerAccess, Severity: fault.SeverityPermanent,
		Params: fault.Params{Address: 0x3, AddressDefined: true, Mask: 0b1010, MaskDefined: true, SetBit: 0b1000, SetBitDefined: true},
	}
	e := newEngine(f)
	acc := newFakeAccessor()

	out, _, err := e.Hook(acc, Event{Kind: cputarget.EventRegisterContent, Access: AccessWrite, Addr: 0x3, Value: 0x0F, SizeBits: 8})
	if err != nil {
		t.Fatalf("Hook error: %v", err)
	}
	if out.Value != 0x0D {
		t.Fatalf("Value = %#x, want 0x0D", out.Value)
	}
}

// TestHook_InstructionExecutionNOPSquashThumb32 exercises the NOP squash on
// a Thumb-32 instruction fetch.
func TestHook_InstructionExecutionNOPSquashThumb32(t *testing.T) {
	f := fault.Fault{
		ID: 5, Component: fault.ComponentCPU, Target: fault.TargetInstructionExecution,
		Mode: fault.ModeNewValue, Trigger: fault.TriggerAccess,
		Params: fault.Params{Address: 0x4000, AddressDefined: true},
	}
	e := newEngine(f)
	acc := newFakeAccessor()

	out, _, err := e.Hook(acc, Event{Kind: cputarget.EventInstructionValueThumb32, Access: AccessExec, Addr: 0x4000, Value: 0x1234, SizeBits: 32})
	if err != nil {
		t.Fatalf("Hook error: %v", err)
	}
	if out.Value != 0x46C046C0 {
		t.Fatalf("Value = %#x, want 0x46C046C0", out.Value)
	}
}

func TestHook_RecordsHistoryOnWrite(t *testing.T) {
	f := fault.Fault{
		ID: 1, Component: fault.ComponentRAM, Target: fault.TargetMemoryCell,
		Mode: fault.ModeBitflip, Trigger: fault.TriggerAccess, Severity: fault.SeverityPermanent,
		Params: fault.Params{Address: 0x10, AddressDefined: true, Mask: 0x1, MaskDefined: true},
	}
	e := newEngine(f)
	acc := newFakeAccessor()

	_, _, err := e.Hook(acc, Event{Kind: cputarget.EventMemoryContent, Access: AccessWrite, Addr: 0x10, Value: 0x0, SizeBits: 8})
	if err != nil {
		t.Fatalf("Hook error: %v", err)
	}
	if got := e.History.Get(1, 0); got != history.OPs0w1 {
		t.Fatalf("history bit 0 = %v, want %v", got, history.OPs0w1)
	}
}

func TestHook_AddressMismatchDoesNotActivate(t *testing.T) {
	f := fault.Fault{
		ID: 1, Component: fault.ComponentRAM, Target: fault.TargetMemoryCell,
		Mode: fault.ModeBitflip, Trigger: fault.TriggerAccess, Severity: fault.SeverityPermanent,
		Params: fault.Params{Address: 0x10, AddressDefined: true, Mask: 0x1, MaskDefined: true},
	}
	e := newEngine(f)
	acc := newFakeAccessor()

	out, reports, _ := e.Hook(acc, Event{Kind: cputarget.EventMemoryContent, Access: AccessWrite, Addr: 0x20, Value: 0x0})
	if len(reports) != 0 || out.Value != 0 {
		t.Fatalf("mismatched address must not activate, got value=%#x reports=%+v", out.Value, reports)
	}
}

// TestActivationGateIntermittentPhase exercises INTERMITTENT's
// on/off phase gating: active on even floor(elapsed/interval), idle
// on odd, only while inside the timer/duration window.
func TestActivationGateIntermittentPhase(t *testing.T) {
	f := fault.Fault{
		ID: 6, Component: fault.ComponentRAM, Target: fault.TargetMemoryCell,
		Mode: fault.ModeBitflip, Trigger: fault.TriggerAccess, Severity: fault.SeverityIntermittent,
		Timer: 0, Duration: 1_000_000, Interval: 100_000,
		Params: fault.Params{Address: 0x40, AddressDefined: true, Mask: 0x1, MaskDefined: true},
	}
	ev := Event{Kind: cputarget.EventMemoryContent, Access: AccessWrite, Addr: 0x40, Value: 0x0}

	cases := []struct {
		name      string
		elapsedNS int64
		wantOK    bool
	}{
		{"phase 0 (on)", 50_000, true},
		{"phase 1 (off)", 150_000, false},
		{"phase 2 (on)", 250_000, true},
		{"outside window", 2_000_000, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, ok := activationGate(f, ev, c.elapsedNS)
			if ok != c.wantOK {
				t.Fatalf("activationGate at elapsed=%d: ok = %v, want %v", c.elapsedNS, ok, c.wantOK)
			}
		})
	}
}
