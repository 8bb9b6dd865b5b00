package fault

import (
	"fmt"
	"io"
)

// Catalogue is an ordered, append-only sequence of Faults produced by
// one load. It is replaced atomically by the next successful load;
// references handed out by index or id remain valid until then
// (deterministic document ordering; ids need not be ascending).
type Catalogue struct {
	faults []Fault
	byID   map[int]int // id -> index into faults
	maxID  int
}

// NewCatalogue builds a Catalogue from faults in document order. The
// slice is copied so later mutation of the caller's slice can't
// reach back into the Catalogue.
func NewCatalogue(faults []Fault) *Catalogue {
	c := &Catalogue{
		faults: append([]Fault(nil), faults...),
		byID:   make(map[int]int, len(faults)),
	}
	for i, f := range c.faults {
		c.byID[f.ID] = i
		if f.ID > c.maxID {
			c.maxID = f.ID
		}
	}
	return c
}

// EmptyCatalogue returns a Catalogue with zero faults and MaxID 0,
// the state the engine starts in before any load has succeeded.
func EmptyCatalogue() *Catalogue {
	return NewCatalogue(nil)
}

// Len returns the number of faults in the catalogue.
func (c *Catalogue) Len() int {
	if c == nil {
		return 0
	}
	return len(c.faults)
}

// MaxID returns the largest fault id present, or 0 if empty. History
// tables are sized to this value.
func (c *Catalogue) MaxID() int {
	if c == nil {
		return 0
	}
	return c.maxID
}

// ByIndex returns the fault at the given document-order index and
// whether it exists. Evaluation order follows this index.
func (c *Catalogue) ByIndex(i int) (Fault, bool) {
	if c == nil || i < 0 || i >= len(c.faults) {
		return Fault{}, false
	}
	return c.faults[i], true
}

// ByID returns the fault with the given id and whether it exists.
func (c *Catalogue) ByID(id int) (Fault, bool) {
	if c == nil {
		return Fault{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return Fault{}, false
	}
	return c.faults[idx], true
}

// All returns a read-only snapshot of the faults in document order.
func (c *Catalogue) All() []Fault {
	if c == nil {
		return nil
	}
	out := make([]Fault, len(c.faults))
	copy(out, c.faults)
	return out
}

// DebugDump writes one line per fault in document order, the Go
// equivalent of the C original's compile-time-gated fault list dump,
// here gated behind a verbose flag instead of a build macro.
func (c *Catalogue) DebugDump(w io.Writer) {
	fmt.Fprintf(w, "catalogue: %d fault(s), max id %d\n", c.Len(), c.MaxID())
	for i := 0; i < c.Len(); i++ {
		f, _ := c.ByIndex(i)
		fmt.Fprintf(w, "  [%d] %s\n", i, f.String())
	}
}
