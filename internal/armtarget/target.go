// Package armtarget is the Unicorn-Engine-backed implementation of
// cputarget.Accessor for 32-bit ARM/Thumb guests (ARCH_ARM/MODE_ARM,
// not AArch64 — the NOP encodings this engine squashes instructions
// to, 0xE1A08008 / 0x46C0 / 0x46C046C0, are classic ARM32/Thumb).
package armtarget

import (
	"fmt"
	"io"
	"strings"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"

	"github.com/dependableDOTspace/fieser/internal/cputarget"
	"github.com/dependableDOTspace/fieser/internal/engine"
)

// Target wraps a Unicorn ARM32 instance as a cputarget.Accessor.
type Target struct {
	mu  uc.Unicorn
	eng *engine.Engine
	trc io.Writer

	lastFault   int
	lastFaultOK bool
}

// New creates a Unicorn instance in ARM32 mode.
func New() (*Target, error) {
	mu, err := uc.NewUnicorn(uc.ARCH_ARM, uc.MODE_ARM)
	if err != nil {
		return nil, fmt.Errorf("armtarget: create unicorn: %w", err)
	}
	return &Target{mu: mu}, nil
}

// SetTrace directs a per-instruction/per-access trace to w. A nil w
// (the default) disables tracing.
func (t *Target) SetTrace(w io.Writer) {
	t.trc = w
}

// Start runs the guest from begin until the PC reaches until (or
// forever, if until is 0), driving every wired hook along the way.
// Grounded on the emulator wrapper's Run(start, end uint64) error.
//
// On UC_ERR_READ_UNMAPPED/UC_ERR_WRITE_UNMAPPED — a guest-visible
// crash or trap — the most recently activated fault, if any, is
// recorded as a detection.
func (t *Target) Start(begin, until uint64) error {
	err := t.mu.Start(begin, until)
	if err != nil && t.eng != nil {
		msg := err.Error()
		if strings.Contains(msg, "UC_ERR_READ_UNMAPPED") || strings.Contains(msg, "UC_ERR_WRITE_UNMAPPED") {
			if t.lastFaultOK {
				t.eng.RecordDetection(t.lastFault)
			}
		}
	}
	return err
}

var _ cputarget.Accessor = (*Target)(nil)

// Close releases the underlying Unicorn instance.
func (t *Target) Close() error {
	return t.mu.Close()
}

// MapRegion maps a memory region of size bytes at addr, with
// read/write/execute permissions.
func (t *Target) MapRegion(addr, size uint64) error {
	return t.mu.MemMap(addr, size)
}

// LoadCode writes guest code at addr.
func (t *Target) LoadCode(addr uint64, code []byte) error {
	return t.mu.MemWrite(addr, code)
}

// ReadMemory reads size bytes at addr as a little-endian integer.
func (t *Target) ReadMemory(addr uint64, size int) (uint64, error) {
	data, err := t.mu.MemRead(addr, uint64(size))
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := len(data) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(data[i])
	}
	return v, nil
}

// WriteMemory writes the low size bytes of value at addr,
// little-endian.
func (t *Target) WriteMemory(addr uint64, size int, value uint64) error {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		data[i] = byte(value)
		value >>= 8
	}
	return t.mu.MemWrite(addr, data)
}

// ReadRegister reads general-purpose register R0-R12 by index, or the
// architectural SP/LR/PC registers via indices 13-15.
func (t *Target) ReadRegister(index int) (uint64, error) {
	return t.mu.RegRead(armRegConstant(index))
}

// WriteRegister writes general-purpose register R0-R12 by index, or
// the architectural SP/LR/PC registers via indices 13-15.
func (t *Target) WriteRegister(index int, value uint64) error {
	return t.mu.RegWrite(armRegConstant(index), value)
}

// PC returns the current program counter.
func (t *Target) PC() uint64 {
	pc, _ := t.mu.RegRead(uc.ARM_REG_PC)
	return pc
}

// SetPC rewrites the program counter.
func (t *Target) SetPC(pc uint64) error {
	return t.mu.RegWrite(uc.ARM_REG_PC, pc)
}

// CPSR returns the architectural flags/status register.
func (t *Target) CPSR() uint32 {
	v, _ := t.mu.RegRead(uc.ARM_REG_CPSR)
	return uint32(v)
}

// SetCPSR rewrites the flags/status register.
func (t *Target) SetCPSR(value uint32) error {
	return t.mu.RegWrite(uc.ARM_REG_CPSR, uint64(value))
}

// ThumbMode reports whether CPSR's T bit (bit 5) is set, selecting
// Thumb instruction decoding.
func (t *Target) ThumbMode() bool {
	return t.CPSR()&(1<<5) != 0
}

// armRegConstant maps a 0-15 general-purpose index to its Unicorn
// ARM register constant. R13/R14/R15 are SP/LR/PC by ARM convention.
func armRegConstant(index int) int {
	switch {
	case index >= 0 && index <= 12:
		return uc.ARM_REG_R0 + index
	case index == 13:
		return uc.ARM_REG_SP
	case index == 14:
		return uc.ARM_REG_LR
	case index == 15:
		return uc.ARM_REG_PC
	default:
		return uc.ARM_REG_R0
	}
}
