// Package inject implements the low-level mutators the evaluation
// hook calls once a fault's activation gate has passed: bit-flip,
// whole-word replace, per-bit state forcing, CPSR flag forcing, and
// the PC rewrite used to simulate an instruction-decoder redirect.
//
// Grounded on fault-injection-controller.c's FIESER_inject_bitflip,
// FIESER_inject_new_value, FIESER_inject_state_register and the
// do_inject_* family; those functions both gate and mutate, but here
// gating lives in internal/hook and this package only does the bit
// arithmetic and the Accessor calls the evaluator needs.
package inject

import (
	"fmt"

	"github.com/dependableDOTspace/fieser/internal/cputarget"
	"github.com/dependableDOTspace/fieser/internal/fault"
)

// ARM and Thumb NOP encodings for INSTRUCTION_EXECUTION squash faults
// Pre-AArch64 encodings: this engine targets ARM32/Thumb.
const (
	NOPArm     uint64 = 0xE1A08008
	NOPThumb16 uint64 = 0x46C0
	NOPThumb32 uint64 = (0x46C0 << 16) | 0x46C0
)

// Bitflip toggles every bit set in mask within value, per the
// BITFLIP rule. The hook uses it both for in-flight values and for
// values read from underlying register/memory storage.
func Bitflip(value uint64, mask int64) uint64 {
	return value ^ uint64(mask)
}

// StateFault forces every bit set in mask within value to the
// corresponding bit of setBit, leaving all other bits untouched.
func StateFault(value uint64, mask, setBit int64) uint64 {
	m := uint64(mask)
	forced := uint64(setBit) & m
	return (value &^ m) | forced
}

// NewValueWord replaces value outright with newValue, masked to the
// requested size in bytes (8/16/32/64 bits -> 1/2/4/8 bytes).
func NewValueWord(newValue uint64, sizeBytes int) uint64 {
	if sizeBytes <= 0 || sizeBytes >= 8 {
		return newValue
	}
	bits := uint(sizeBytes) * 8
	return newValue & ((uint64(1) << bits) - 1)
}

// InstructionSquash returns the ISA-appropriate NOP encoding for an
// INSTRUCTION_EXECUTION NEW_VALUE fault, selected by event kind.
func InstructionSquash(kind cputarget.EventKind) uint64 {
	switch kind {
	case cputarget.EventInstructionValueThumb16:
		return NOPThumb16
	case cputarget.EventInstructionValueThumb32:
		return NOPThumb32
	default:
		return NOPArm
	}
}

// ConditionFlags applies a CPSR_{C,V,Z,N,Q}F fault: force the single
// architectural flag bit named by mode to setBit's low bit.
// Grounded on do_inject_condition_flags.
func ConditionFlags(acc cputarget.Accessor, mode fault.Mode, setBit int64) error {
	bit, ok := cpsrBitFor(mode)
	if !ok {
		return fmt.Errorf("inject: mode %s is not a CPSR mode", mode)
	}
	cpsr := acc.CPSR()
	want := uint32(setBit) & 1
	cur := (cpsr >> bit) & 1
	if cur == want {
		return acc.SetCPSR(cpsr)
	}
	if want == 1 {
		cpsr |= 1 << bit
	} else {
		cpsr &^= 1 << bit
	}
	return acc.SetCPSR(cpsr)
}

// cpsrBitFor maps a CPSR_* mode to its ARM CPSR bit position: N=31,
// Z=30, C=29, V=28, Q=27.
func cpsrBitFor(mode fault.Mode) (uint, bool) {
	switch mode {
	case fault.ModeCPSRNF:
		return 31, true
	case fault.ModeCPSRZF:
		return 30, true
	case fault.ModeCPSRCF:
		return 29, true
	case fault.ModeCPSRVF:
		return 28, true
	case fault.ModeCPSRQF:
		return 27, true
	default:
		return 0, false
	}
}

// LookUpError rewrites the program counter to redirect execution away
// from victimAddr by one instruction step, simulating an
// instruction-decoder lookup fault. stepBytes is 2 for Thumb-16
// events, 4 otherwise. Grounded on do_inject_look_up_error.
func LookUpError(acc cputarget.Accessor, victimAddr uint64, stepBytes int) error {
	return acc.SetPC(victimAddr + uint64(stepBytes))
}
