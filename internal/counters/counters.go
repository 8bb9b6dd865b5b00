// Package counters implements the per-(id, component, severity)
// fault-activation tallies exposed to the monitor, plus the
// aggregated (component x severity) view used by info_faults.
//
// Grounded on fault-injection-data-analyzer.h's
// incr_num_injected_faults and the get_num_injected_faults_* family.
package counters

import (
	"sync"

	"github.com/dependableDOTspace/fieser/internal/fault"
)

// perFaultKey identifies one (id, component, severity) bucket.
type perFaultKey struct {
	id        int
	component fault.Component
	severity  fault.Severity
}

// Counters is the process-global activation tally for one loaded
// catalogue. It is reset to zero by every successful Reload.
type Counters struct {
	mu         sync.Mutex
	perFault   map[perFaultKey]int
	detections map[int]int
	// aggregate[component][severity]
	aggregate map[fault.Component]map[fault.Severity]int
}

// New returns a zeroed Counters instance.
func New() *Counters {
	return &Counters{
		perFault:   make(map[perFaultKey]int),
		detections: make(map[int]int),
		aggregate:  make(map[fault.Component]map[fault.Severity]int),
	}
}

// RecordActivation increments the (id, component, severity) tally and
// its aggregate bucket, using severity as given. The hook passes
// SeverityPermanent for PERMANENT faults and SeverityTransient for
// everything else (TRANSIENT, INTERMITTENT firing, and PC-only faults),
// matching FIESER_check_fault_trigger's incr_num_injected_faults calls.
func (c *Counters) RecordActivation(id int, component fault.Component, severity fault.Severity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := perFaultKey{id: id, component: component, severity: severity}
	c.perFault[key]++

	bucket, ok := c.aggregate[component]
	if !ok {
		bucket = make(map[fault.Severity]int)
		c.aggregate[component] = bucket
	}
	bucket[severity]++
}

// RecordDetection increments the detection counter for a fault id.
// Detections are set externally — by whatever consumer
// observes the guest crash or trap a fault caused.
func (c *Counters) RecordDetection(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detections[id]++
}

// Activations returns the activation count for one (id, component,
// severity) bucket.
func (c *Counters) Activations(id int, component fault.Component, severity fault.Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perFault[perFaultKey{id: id, component: component, severity: severity}]
}

// Detections returns the detection count for one fault id.
func (c *Counters) Detections(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detections[id]
}

// Summary is the (component x severity) aggregate snapshot rendered
// by info_faults.
type Summary struct {
	Component fault.Component
	Severity  fault.Severity
	Count     int
}

// Summaries returns every non-zero (component, severity) aggregate
// bucket, for the monitor's info_faults output.
func (c *Counters) Summaries() []Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Summary
	for comp, bySeverity := range c.aggregate {
		for sev, n := range bySeverity {
			if n == 0 {
				continue
			}
			out = append(out, Summary{Component: comp, Severity: sev, Count: n})
		}
	}
	return out
}

// Total returns the sum of every activation bucket, across all
// faults, components and severities.
func (c *Counters) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.perFault {
		total += n
	}
	return total
}
