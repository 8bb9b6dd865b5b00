package armtarget

import (
	"fmt"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"

	"github.com/dependableDOTspace/fieser/internal/cputarget"
	"github.com/dependableDOTspace/fieser/internal/engine"
	"github.com/dependableDOTspace/fieser/internal/hook"
	"github.com/dependableDOTspace/fieser/internal/traceui"
)

// driver is satisfied by engine.Engine; the memory and code callbacks
// take a driver so they can be exercised against a fake.
type driver interface {
	Hook(acc cputarget.Accessor, ev hook.Event) (hook.Event, []hook.ActivationReport, error)
}

// Wire registers Unicorn hooks that forward every memory read/write
// (as a MEMORY_CONTENT event) and every instruction fetch (as an
// INSTRUCTION_VALUE_* event) to e.Hook, writing a changed value back
// to guest memory. No MEMORY_ADDR, REGISTER_* or PC_OR_TIME events
// are generated, and an address changed by the hook is not applied.
//
// Caveat: Unicorn's HOOK_MEM_WRITE fires after the store has already
// committed (unlike QEMU's pre-commit translation hook the original
// engine was built against), so content faults on writes are applied
// as a corrective second write rather than intercepted in flight.
func (t *Target) Wire(e *engine.Engine) error {
	t.eng = e

	if _, err := t.mu.HookAdd(uc.HOOK_MEM_READ|uc.HOOK_MEM_WRITE, func(mu uc.Unicorn, access int, addr uint64, size int, value int64) {
		t.onMemoryEvent(e, access, addr, size, value)
	}, 1, 0); err != nil {
		return err
	}

	_, err := t.mu.HookAdd(uc.HOOK_CODE, func(mu uc.Unicorn, addr uint64, size uint32) {
		t.onCodeFetch(e, addr, size)
	}, 1, 0)
	return err
}

// noteActivations records the most recently activated fault id, for
// Start's post-mortem detection reporting.
func (t *Target) noteActivations(reports []hook.ActivationReport) {
	if len(reports) == 0 {
		return
	}
	t.lastFault = reports[len(reports)-1].FaultID
	t.lastFaultOK = true
}

func (t *Target) onMemoryEvent(e driver, access int, addr uint64, size int, value int64) {
	acc := AccessKind(access)
	ev := hook.Event{Kind: cputarget.EventMemoryContent, Access: acc, Addr: addr, Value: uint64(value), SizeBits: size * 8}

	out, reports, err := e.Hook(t, ev)
	t.noteActivations(reports)
	if t.trc != nil {
		// Every content write is a dynamic-history candidate,
		// independent of whether a fault also activated on it.
		dyn := acc == hook.AccessWrite
		fmt.Fprintln(t.trc, traceui.TraceLine(addr, out.Value, ev.SizeBits, reports, dyn))
	}
	if err != nil || out.Value == ev.Value {
		return
	}
	_ = t.WriteMemory(addr, size, out.Value)
}

func (t *Target) onCodeFetch(e driver, addr uint64, size uint32) {
	kind := cputarget.EventInstructionValueARM
	if t.ThumbMode() {
		if size == 2 {
			kind = cputarget.EventInstructionValueThumb16
		} else {
			kind = cputarget.EventInstructionValueThumb32
		}
	}

	value, err := t.ReadMemory(addr, int(size))
	if err != nil {
		return
	}

	ev := hook.Event{Kind: kind, Access: hook.AccessExec, Addr: addr, Value: value, SizeBits: int(size) * 8}
	out, reports, err := e.Hook(t, ev)
	t.noteActivations(reports)
	if t.trc != nil {
		fmt.Fprintln(t.trc, traceui.TraceLine(addr, out.Value, ev.SizeBits, reports, false))
	}
	if err != nil || out.Value == ev.Value {
		return
	}
	_ = t.WriteMemory(addr, int(size), out.Value)
}

// AccessKind maps a Unicorn mem-hook access constant to hook.Access.
func AccessKind(access int) hook.Access {
	switch access {
	case uc.MEM_WRITE:
		return hook.AccessWrite
	default:
		return hook.AccessRead
	}
}
