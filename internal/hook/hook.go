// Package hook implements the evaluation hook: the single entry point
// an emulator integration calls on every memory access, register
// access, instruction fetch, or virtual-time tick. It scans the
// catalogue in document order, decides per fault whether its
// activation gate passes for this event, and if so applies the
// mode-specific mutation via internal/inject.
//
// Grounded on fault-injection-controller.c's dispatch between
// evaluate_memory_address / evaluate_memory_content /
// evaluate_register_address / evaluate_register_content /
// evaluate_instruction / evaluate_pc_or_time, and
// FIESER_check_fault_trigger's activation-gate logic — simplified to
// the address-gate + trigger-gate + temporal-gate conjunction
// the activation rule defines explicitly, rather than a looser
// match-or-fallback chain.
package hook

import (
	"fmt"

	"github.com/dependableDOTspace/fieser/internal/counters"
	"github.com/dependableDOTspace/fieser/internal/cputarget"
	"github.com/dependableDOTspace/fieser/internal/fault"
	"github.com/dependableDOTspace/fieser/internal/history"
	"github.com/dependableDOTspace/fieser/internal/inject"
	"github.com/dependableDOTspace/fieser/internal/vtime"
)

// Access distinguishes a read from a write, since history logging
// only applies to writes.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	AccessExec
)

// Event is everything the hook needs to evaluate one guest occurrence
// against the catalogue. Addr/Value are passed by value and the
// (possibly mutated) Value/Addr are returned to the caller, which is
// Go's equivalent of the original's by-pointer in/out parameters. For
// INSTRUCTION_VALUE_* and PC_OR_TIME events, Addr carries the program
// counter ("PC/TIME evaluators use the PC value
// transported in addr*").
type Event struct {
	Kind     cputarget.EventKind
	Access   Access
	Addr     uint64
	Value    uint64
	SizeBits int
}

// ActivationReport records, for one fault evaluated against one event,
// that it matched and the severity bucket the activation was counted
// under. Replaces the C original's mutable Fault.was_triggered field:
// state here is a return value, not shared mutable storage
// design note).
type ActivationReport struct {
	FaultID  int
	Severity fault.Severity
}

// Engine bundles the state the hook needs: the current catalogue, the
// dynamic-history table, the activation counters, and the virtual-time
// origin. Engine does not own an Accessor; callers pass one per Hook
// invocation since the same catalogue may be evaluated against
// multiple accessor implementations in tests.
type Engine struct {
	Catalogue *fault.Catalogue
	History   *history.Table
	Counters  *counters.Counters
	Origin    vtime.Origin
}

// Hook evaluates every fault in e.Catalogue against ev in document
// order, composing their mutations (each later fault observes the
// mutations of the faults before it). It returns the final
// value/addr and one ActivationReport per fault that activated, in
// evaluation order.
func (e *Engine) Hook(acc cputarget.Accessor, ev Event) (Event, []ActivationReport, error) {
	if e == nil || e.Catalogue == nil {
		return ev, nil, nil
	}

	var reports []ActivationReport
	elapsed := e.Origin.Elapsed()

	for i := 0; i < e.Catalogue.Len(); i++ {
		f, _ := e.Catalogue.ByIndex(i)

		severity, ok := activationGate(f, ev, elapsed)
		if !ok {
			continue
		}

		prior := ev.Value
		newVal, newAddr, err := e.applyMode(acc, f, ev)
		if err != nil {
			// A malformed entry reaching here should have been caught
			// at load time; skip it silently rather than let it
			// escape to the guest.
			continue
		}
		ev.Value = newVal
		ev.Addr = newAddr

		if ev.Access == AccessWrite && eventTargetsCell(ev.Kind) {
			// prior/ev.Value here are the in-flight write value before
			// and after this fault's own mutation, not the cell's
			// resident value before the guest's write landed: the cell
			// is never read, so each logged transition compares the
			// guest's (or an earlier fault's) value with this fault's
			// result. When several faults mutate the same write, each
			// later fault's prior is the value the earlier ones left.
			e.History.Record(f.ID, f.Params.Mask, prior, ev.Value)
		}

		e.Counters.RecordActivation(f.ID, f.Component, severity)
		reports = append(reports, ActivationReport{FaultID: f.ID, Severity: severity})
	}

	return ev, reports, nil
}

// eventTargetsCell reports whether ev's kind is one for which
// dynamic-history logging applies (memory/register content events,
// not address-decoder or instruction-fetch events).
func eventTargetsCell(kind cputarget.EventKind) bool {
	return kind == cputarget.EventMemoryContent || kind == cputarget.EventRegisterContent
}

// activationGate implements the activation conjunction: address gate,
// trigger gate, then temporal gate. It returns the severity bucket to
// count this activation under, and whether it activates at all.
func activationGate(f fault.Fault, ev Event, elapsedNS int64) (fault.Severity, bool) {
	if !triggerCompatible(f.Trigger, ev.Kind) {
		return fault.SeverityNone, false
	}

	if f.Params.AddressDefined && ev.Addr != uint64(f.Params.Address) {
		return fault.SeverityNone, false
	}

	// A declared type is required only for TIME or non-CPU ACCESS
	// triggers; PC triggers and CPU ACCESS triggers
	// with no declared type activate unconditionally once the address
	// matches (the PC-only rule, generalized to CPU ACCESS).
	if f.Severity == fault.SeverityNone && (f.Trigger == fault.TriggerPC ||
		(f.Trigger == fault.TriggerAccess && f.Component == fault.ComponentCPU)) {
		return fault.SeverityTransient, true
	}

	switch f.Severity {
	case fault.SeverityPermanent:
		return fault.SeverityPermanent, true
	case fault.SeverityTransient:
		return fault.SeverityTransient, withinWindow(f, elapsedNS)
	case fault.SeverityIntermittent:
		if !withinWindow(f, elapsedNS) {
			return fault.SeverityTransient, false
		}
		onPhase := (elapsedNS/f.Interval)%2 == 0
		return fault.SeverityTransient, onPhase
	default:
		return fault.SeverityNone, false
	}
}

func withinWindow(f fault.Fault, elapsedNS int64) bool {
	return elapsedNS > f.Timer && elapsedNS < f.Duration
}

// triggerCompatible rejects event kinds that can't possibly satisfy
// this fault's trigger ("ACCESS evaluators reject
// TIME/PC faults and vice versa"). CPU instruction-fetch events are
// the one case evaluated under either ACCESS or PC trigger, since a
// PC-triggered instruction squash still fires from the fetch event
// that sees the opcode in flight.
func triggerCompatible(trigger fault.Trigger, kind cputarget.EventKind) bool {
	switch {
	case kind.IsInstructionValue():
		return trigger == fault.TriggerAccess || trigger == fault.TriggerPC
	case kind == cputarget.EventPCOrTime:
		return trigger == fault.TriggerPC || trigger == fault.TriggerTime
	default:
		return trigger == fault.TriggerAccess
	}
}

// applyMode dispatches to the mode-specific mutator, returning the
// event's new value and address. ADDRESS_DECODER targets mutate Addr
// instead of Value; PC/TIME-triggered RAM/REGISTER faults mutate
// underlying storage directly through acc rather than the in-flight
// value, since at evaluation time no access is actually in progress.
func (e *Engine) applyMode(acc cputarget.Accessor, f fault.Fault, ev Event) (uint64, uint64, error) {
	switch {
	case f.Mode.IsCPSR():
		return ev.Value, ev.Addr, inject.ConditionFlags(acc, f.Mode, f.Params.SetBit)

	case f.Component == fault.ComponentCPU && f.Target == fault.TargetInstructionDecoder && ev.Kind == cputarget.EventPCOrTime:
		return ev.Value, ev.Addr, inject.LookUpError(acc, uint64(f.Params.Instruction), ev.Kind.StepBytes())

	case f.Component == fault.ComponentCPU && f.Target == fault.TargetInstructionExecution && ev.Kind == cputarget.EventPCOrTime:
		return ev.Value, ev.Addr, inject.LookUpError(acc, uint64(f.Params.Instruction), ev.Kind.StepBytes())

	case f.Target == fault.TargetInstructionDecoder:
		return inject.NewValueWord(uint64(f.Params.Instruction), ev.SizeBits/8), ev.Addr, nil

	case f.Target == fault.TargetInstructionExecution:
		return inject.InstructionSquash(ev.Kind), ev.Addr, nil

	case ev.Kind == cputarget.EventPCOrTime && (f.Component == fault.ComponentRAM || f.Component == fault.ComponentRegister):
		return ev.Value, ev.Addr, e.mutateStorage(acc, f, uint64(f.Params.Instruction))

	default:
		return e.mutateInFlight(f, ev)
	}
}

// mutateInFlight applies mode-specific arithmetic to the event's
// in-flight value or address (the MEMORY_*/REGISTER_* evaluators).
func (e *Engine) mutateInFlight(f fault.Fault, ev Event) (uint64, uint64, error) {
	mutateAddr := f.Target == fault.TargetAddressDecoder
	target := ev.Value
	if mutateAddr {
		target = ev.Addr
	}

	mutated, err := mutate(f, target, ev.SizeBits/8)
	if err != nil {
		return ev.Value, ev.Addr, err
	}
	if mutateAddr {
		return ev.Value, mutated, nil
	}
	return mutated, ev.Addr, nil
}

// mutateStorage applies mode-specific arithmetic directly to register
// or memory storage at addr, used when no access is in flight
// (PC/TIME-triggered RAM/REGISTER faults).
func (e *Engine) mutateStorage(acc cputarget.Accessor, f fault.Fault, addr uint64) error {
	var cur uint64
	var err error
	if f.Component == fault.ComponentRegister {
		cur, err = acc.ReadRegister(int(addr))
	} else {
		cur, err = acc.ReadMemory(addr, 4)
	}
	if err != nil {
		return err
	}

	mutated, err := mutate(f, cur, 4)
	if err != nil {
		return err
	}

	if f.Component == fault.ComponentRegister {
		return acc.WriteRegister(int(addr), mutated)
	}
	return acc.WriteMemory(addr, 4, mutated)
}

func mutate(f fault.Fault, target uint64, sizeBytes int) (uint64, error) {
	switch f.Mode {
	case fault.ModeBitflip:
		return inject.Bitflip(target, f.Params.Mask), nil
	case fault.ModeStateFault:
		return inject.StateFault(target, f.Params.Mask, f.Params.SetBit), nil
	case fault.ModeNewValue:
		return inject.NewValueWord(uint64(f.Params.Mask), sizeBytes), nil
	default:
		return target, fmt.Errorf("hook: mode %s has no mutator", f.Mode)
	}
}
