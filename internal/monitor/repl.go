// Package monitor implements the line-oriented monitor commands
// the engine exposes as emulator-facing commands: fault_reload <path> and
// info_faults. It is a small REPL over an io.Reader/io.Writer pair,
// styled with lipgloss rather than a full bubbletea TUI
// (these are two terse, synchronous commands, not an interactive
// screen).
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dependableDOTspace/fieser/internal/engine"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Monitor is a synchronous command loop over the engine.
type Monitor struct {
	Engine *engine.Engine
	Out    io.Writer
}

// New returns a Monitor writing output to out.
func New(e *engine.Engine, out io.Writer) *Monitor {
	return &Monitor{Engine: e, Out: out}
}

// Run reads newline-terminated commands from in until EOF, dispatching
// each to the matching handler.
func (m *Monitor) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m.Dispatch(line)
	}
	return scanner.Err()
}

// Dispatch parses and executes one monitor command line.
func (m *Monitor) Dispatch(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "fault_reload":
		if len(fields) < 2 {
			fmt.Fprintln(m.Out, errorStyle.Render("fault_reload requires a path argument"))
			return
		}
		m.reload(fields[1])
	case "info_faults":
		m.infoFaults()
	default:
		fmt.Fprintf(m.Out, "%s\n", errorStyle.Render("unknown monitor command: "+fields[0]))
	}
}

func (m *Monitor) reload(path string) {
	result := m.Engine.Reload(path)
	if result.Err != nil {
		fmt.Fprintf(m.Out, "%s %s\n", errorStyle.Render("FIESER: configuration file load failed:"), result.Err)
		return
	}
	fmt.Fprintf(m.Out, "%s %s\n", okStyle.Render("FIESER: Configuration file loaded successfully"),
		dimStyle.Render(fmt.Sprintf("(%d faults, request %s)", result.FaultCount, result.RequestID)))
}

func (m *Monitor) infoFaults() {
	fmt.Fprintln(m.Out, headerStyle.Render("fault activation counters"))
	summaries := m.Engine.Counters().Summaries()
	if len(summaries) == 0 {
		fmt.Fprintln(m.Out, dimStyle.Render("  (no activations yet)"))
		return
	}
	for _, s := range summaries {
		fmt.Fprintf(m.Out, "  %-10s %-13s %d\n", s.Component, s.Severity, s.Count)
	}
}
