package catalog

import (
	"fmt"

	"github.com/dependableDOTspace/fieser/internal/fault"
)

// validate applies every catalogue validation rule to a freshly parsed
// fault list, aggregating all violations rather than stopping at the
// first (mirrors validateFaultList, which logs every semantic error
// found before the load is rejected as a whole).
//
// COUPLING FAULT is accepted by the parser (it's a recognized mode
// string) but always rejected here — see SPEC_FULL.md §12 for why no
// target in this engine implements coupling-fault semantics.
func validate(faults []fault.Fault) SemanticErrors {
	var errs SemanticErrors
	for _, f := range faults {
		errs = append(errs, validateOne(f)...)
	}
	return errs
}

func validateOne(f fault.Fault) SemanticErrors {
	var errs SemanticErrors
	fail := func(format string, args ...any) {
		errs = append(errs, SemanticError{FaultID: f.ID, Message: fmt.Sprintf(format, args...)})
	}

	if f.Component == fault.ComponentNone {
		fail("component not defined")
	}
	if f.Target == fault.TargetNone {
		fail("target not defined")
	}
	if f.Mode == fault.ModeNone {
		fail("mode not defined")
	}
	if f.Mode == fault.ModeCouplingFault {
		fail("mode COUPLING FAULT is not implemented by any target")
	}

	// params.address required unless target=CONDITION_FLAGS and trigger=TIME
	addressExempt := f.Target == fault.TargetConditionFlags && f.Trigger == fault.TriggerTime
	if !addressExempt && !f.Params.AddressDefined {
		fail("params.address not defined")
	}

	switch f.Component {
	case fault.ComponentCPU:
		validateCPU(f, fail)
	case fault.ComponentRAM, fault.ComponentRegister:
		validateMemoryOrRegister(f, fail)
	case fault.ComponentNone:
		// already reported above
	default:
		fail("unrecognized component %s", f.Component)
	}

	if f.Trigger == fault.TriggerTime || (f.Trigger == fault.TriggerAccess && f.Component != fault.ComponentCPU) {
		validateTiming(f, fail)
	}

	return errs
}

func validateCPU(f fault.Fault, fail func(string, ...any)) {
	switch f.Target {
	case fault.TargetInstructionDecoder:
		if f.Mode != fault.ModeNewValue {
			fail("target INSTRUCTION DECODER requires mode NEW VALUE")
		}
		if !f.Params.InstructionDefined {
			fail("target INSTRUCTION DECODER requires params.instruction")
		}
	case fault.TargetInstructionExecution:
		// no further per-mode restriction
	case fault.TargetConditionFlags:
		if !f.Mode.IsCPSR() {
			fail("target CONDITION FLAGS requires a CPSR_* mode")
		}
		if !f.Params.SetBitDefined {
			fail("target CONDITION FLAGS requires params.set_bit")
		}
	default:
		fail("component CPU only supports target INSTRUCTION DECODER, INSTRUCTION EXECUTION or CONDITION FLAGS, got %s", f.Target)
	}
}

func validateMemoryOrRegister(f fault.Fault, fail func(string, ...any)) {
	switch f.Mode {
	case fault.ModeNewValue, fault.ModeBitflip, fault.ModeStateFault:
		// allowed
	case fault.ModeNone:
		// already reported as "mode not defined"
	default:
		fail("component %s only supports mode NEW VALUE, BITFLIP or STATE FAULT, got %s", f.Component, f.Mode)
	}

	if f.Trigger == fault.TriggerPC || f.Trigger == fault.TriggerTime {
		if !f.Params.InstructionDefined {
			fail("trigger %s requires params.instruction to carry the victim address", f.Trigger)
		}
	}

	switch f.Mode {
	case fault.ModeBitflip:
		if !f.Params.MaskDefined {
			fail("mode BITFLIP requires params.mask")
		}
	case fault.ModeNewValue:
		if !f.Params.MaskDefined {
			fail("mode NEW VALUE requires params.mask")
		}
	case fault.ModeStateFault:
		if !f.Params.MaskDefined {
			fail("mode STATE FAULT requires params.mask")
		}
		if !f.Params.SetBitDefined {
			fail("mode STATE FAULT requires params.set_bit")
		}
	}
}

func validateTiming(f fault.Fault, fail func(string, ...any)) {
	if f.Severity == fault.SeverityNone {
		fail("trigger %s requires type", f.Trigger)
		return
	}
	switch f.Severity {
	case fault.SeverityTransient, fault.SeverityIntermittent:
		if f.Timer < 0 {
			fail("type %s requires timer >= 0", f.Severity)
		}
		if f.Duration < 0 {
			fail("type %s requires duration >= 0", f.Severity)
		}
		if f.Severity == fault.SeverityIntermittent && f.Interval < 0 {
			fail("type INTERMITTENT requires interval >= 0")
		}
	case fault.SeverityPermanent:
		// no timer/duration/interval constraint
	}
}
