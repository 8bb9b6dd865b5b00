// Package cputarget declares the accessor contract an emulator
// integration must satisfy for the evaluation hook to drive it.
// Nothing in this package touches real CPU state; armtarget is the
// concrete Unicorn-Engine-backed implementation.
//
// Grounded on the public surface of emulator.go (ReadMemory/WriteMemory,
// register getters/setters, PC tracking) generalized to the contract
// the injection primitives need: inject_memory_register, inject_insn,
// inject_condition_flags, inject_look_up_error.
package cputarget

// Accessor is the minimal CPU/memory/register surface the hook and the
// injection primitives need. An emulator integration owns the real
// storage; this package only describes what it must expose.
type Accessor interface {
	// ReadMemory reads size bytes at addr as a little-endian integer.
	ReadMemory(addr uint64, size int) (uint64, error)
	// WriteMemory writes the low size bytes of value at addr.
	WriteMemory(addr uint64, size int, value uint64) error

	// ReadRegister reads one general-purpose register by index.
	ReadRegister(index int) (uint64, error)
	// WriteRegister writes one general-purpose register by index.
	WriteRegister(index int, value uint64) error

	// PC returns the current program counter.
	PC() uint64
	// SetPC rewrites the program counter, used by instruction-decoder
	// redirect faults (inject_look_up_error).
	SetPC(pc uint64) error

	// CPSR returns the architectural flags/status register.
	CPSR() uint32
	// SetCPSR rewrites the flags/status register.
	SetCPSR(value uint32) error

	// ThumbMode reports whether the CPU is currently decoding Thumb
	// instructions. An integration uses it to choose between the ARM
	// and Thumb instruction-value event kinds; the hook does not call
	// it. The NOP encoding and the inject_look_up_error step size
	// follow the event kind, and PC_OR_TIME events always step 4 bytes.
	ThumbMode() bool
}

// EventKind identifies the class of guest event the hook was invoked
// for, generalizing an emulator's event_kind contract.
type EventKind int

const (
	EventNone EventKind = iota
	EventMemoryAddress
	EventMemoryContent
	EventRegisterAddress
	EventRegisterContent
	EventInstructionValueARM
	EventInstructionValueThumb16
	EventInstructionValueThumb32
	EventPCOrTime
)

var eventKindNames = [...]string{
	"",
	"MEMORY_ADDR",
	"MEMORY_CONTENT",
	"REGISTER_ADDR",
	"REGISTER_CONTENT",
	"INSTRUCTION_VALUE_ARM",
	"INSTRUCTION_VALUE_THUMB16",
	"INSTRUCTION_VALUE_THUMB32",
	"PC_OR_TIME",
}

func (e EventKind) String() string {
	if int(e) < 0 || int(e) >= len(eventKindNames) {
		return "UNKNOWN"
	}
	return eventKindNames[e]
}

// IsInstructionValue reports whether e is one of the three
// instruction-fetch event kinds.
func (e EventKind) IsInstructionValue() bool {
	return e == EventInstructionValueARM || e == EventInstructionValueThumb16 || e == EventInstructionValueThumb32
}

// StepBytes returns the instruction step size implied by this event
// kind: 2 for Thumb-16, 4 for ARM and Thumb-32 (a BL/BLX pair counts
// as one 4-byte step at the decoder-redirect level).
func (e EventKind) StepBytes() int {
	if e == EventInstructionValueThumb16 {
		return 2
	}
	return 4
}
