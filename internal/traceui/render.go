// Package traceui renders the colorized instruction trace fiesctl run
// prints while a guest executes under the fault-injection hook,
// adapted from the emulator's chroma-based instruction colorizer for
// ARM32/Thumb.
package traceui

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/dependableDOTspace/fieser/internal/fault"
	"github.com/dependableDOTspace/fieser/internal/hook"
)

// IsDisabled reports whether color output was suppressed via
// environment, honoring both a tool-specific and the conventional
// NO_COLOR variable.
func IsDisabled() bool {
	return os.Getenv("FIESCTL_NO_COLOR") != "" || os.Getenv("NO_COLOR") != ""
}

func asmLexer() chroma.Lexer {
	for _, name := range []string{"armasm", "gas", "GAS", "Gas"} {
		if l := lexers.Get(name); l != nil {
			return l
		}
	}
	return nil
}

func disasmStyle() *chroma.Style {
	for _, name := range []string{"disasm-dark", "dracula", "monokai"} {
		if s := styles.Get(name); s != nil {
			return s
		}
	}
	return styles.Fallback
}

func terminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if f := formatters.Get(name); f != nil {
			return f
		}
	}
	return formatters.Fallback
}

// Instruction colorizes one disassembled instruction mnemonic.
func Instruction(insn string) string {
	if IsDisabled() {
		return insn
	}
	lexer := asmLexer()
	if lexer == nil {
		return insn
	}
	iterator, err := lexer.Tokenise(nil, insn)
	if err != nil {
		return insn
	}
	var buf strings.Builder
	if err := terminalFormatter().Format(&buf, disasmStyle(), iterator); err != nil {
		return insn
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Address formats a guest address, e.g. for activation reports.
func Address(addr uint64) string {
	if IsDisabled() {
		return fmt.Sprintf("0x%08X", addr)
	}
	return fmt.Sprintf("\033[38;2;255;200;0m0x%08X\033[0m", addr)
}

// Severity colorizes a fault severity: red for PERMANENT, yellow for
// TRANSIENT/INTERMITTENT.
func Severity(s fault.Severity) string {
	if IsDisabled() {
		return s.String()
	}
	color := "\033[38;2;255;210;90m"
	if s == fault.SeverityPermanent {
		color = "\033[38;2;255;90;90m"
	}
	return color + s.String() + "\033[0m"
}

// ActivationLine formats one activation report for monitor output.
func ActivationLine(r hook.ActivationReport) string {
	return fmt.Sprintf("fault %d activated (%s)", r.FaultID, Severity(r.Severity))
}

// TraceLine formats one line of fiesctl run's trace (an instruction
// fetch or a memory access): address, raw encoding, and a #fault:<id>
// tag per activation report of that hook call, plus a #dyn tag when
// dyn is set. The armtarget callers set dyn for memory writes and
// never for instruction fetches.
func TraceLine(addr, raw uint64, sizeBits int, reports []hook.ActivationReport, dyn bool) string {
	hexWidth := sizeBits / 4
	insn := fmt.Sprintf("%0*X", hexWidth, raw)

	var tags strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&tags, " #fault:%d", r.FaultID)
	}
	if dyn {
		tags.WriteString(" #dyn")
	}

	return fmt.Sprintf("%s  %s%s", Address(addr), Instruction(insn), tags.String())
}
