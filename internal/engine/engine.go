// Package engine is the process-global FIESer facade: it owns the
// current catalogue, dynamic-history table, activation counters, and
// virtual-time origin together, and serializes reloads against them.
//
// Grounded on fault-injection-library.c's global fault_list/load
// lifecycle (parseFile -> validateFaultList -> swap) and
// emulator.go's single top-level Emulator struct pattern (one owner
// for all mutable engine state, reached through the methods of
// Engine).
package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dependableDOTspace/fieser/internal/catalog"
	"github.com/dependableDOTspace/fieser/internal/counters"
	"github.com/dependableDOTspace/fieser/internal/cputarget"
	"github.com/dependableDOTspace/fieser/internal/fault"
	"github.com/dependableDOTspace/fieser/internal/history"
	"github.com/dependableDOTspace/fieser/internal/hook"
	"github.com/dependableDOTspace/fieser/internal/logx"
	"github.com/dependableDOTspace/fieser/internal/vtime"
)

// historyWordWidth is the bit width of a memory/register cell for
// dynamic-history sizing; ARM32 cells are 32 bits wide.
const historyWordWidth = 32

// Engine is the top-level, process-global fault-injection state.
// Reload is the only writer; Hook only reads the fields it swaps in,
// so the requirement that reload be serialized against the
// hook reduces to protecting the pointer swap itself.
type Engine struct {
	mu  sync.RWMutex
	cur *hook.Engine
}

// New returns an Engine in its pre-load state: an empty catalogue,
// a zero-sized history table, fresh counters, and a virtual-time
// origin captured now.
func New() *Engine {
	return &Engine{
		cur: &hook.Engine{
			Catalogue: fault.EmptyCatalogue(),
			History:   history.NewTable(0, historyWordWidth),
			Counters:  counters.New(),
			Origin:    vtime.NewOrigin(),
		},
	}
}

// LoadResult reports the outcome of one Reload call, tagged with a
// correlation id so concurrent monitor sessions can distinguish
// overlapping reload requests in logs.
type LoadResult struct {
	RequestID  string
	Path       string
	FaultCount int
	Err        error
}

// Reload builds a new catalogue, history table and counters from the
// document at path, and swaps them in only if the load succeeds —
// on any failure the previous Catalogue, history and counters are
// left exactly as they were (an Open Question, resolved in
// favor of the reference behaviour: the whole load is rejected and
// the engine keeps serving the prior generation).
func (e *Engine) Reload(path string) LoadResult {
	requestID := uuid.NewString()
	result := LoadResult{RequestID: requestID, Path: path}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		result.Err = err
		if logx.L != nil {
			logx.L.ReloadFailed(path, requestID, err)
		}
		return result
	}

	next := &hook.Engine{
		Catalogue: cat,
		History:   history.NewTable(cat.MaxID(), historyWordWidth),
		Counters:  counters.New(),
		Origin:    vtime.NewOrigin(),
	}

	e.mu.Lock()
	e.cur = next
	e.mu.Unlock()

	result.FaultCount = cat.Len()
	if logx.L != nil {
		logx.L.ReloadOK(path, requestID, cat.Len())
	}
	return result
}

// Hook evaluates ev against the currently loaded catalogue.
func (e *Engine) Hook(acc cputarget.Accessor, ev hook.Event) (hook.Event, []hook.ActivationReport, error) {
	e.mu.RLock()
	cur := e.cur
	e.mu.RUnlock()
	return cur.Hook(acc, ev)
}

// Counters returns the activation/detection counters for the
// currently loaded catalogue, for info_faults reporting.
func (e *Engine) Counters() *counters.Counters {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur.Counters
}

// Catalogue returns the currently loaded catalogue.
func (e *Engine) Catalogue() *fault.Catalogue {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur.Catalogue
}

// RecordDetection increments the detection counter for a fault id,
// used when a caller observes the guest crash or trap a fault caused.
func (e *Engine) RecordDetection(id int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	e.cur.Counters.RecordDetection(id)
}
