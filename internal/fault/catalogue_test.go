package fault

import (
	"strings"
	"testing"
)

func TestCatalogueByIDAndIndex(t *testing.T) {
	c := NewCatalogue([]Fault{
		{ID: 3, Component: ComponentCPU},
		{ID: 1, Component: ComponentRAM},
	})

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.MaxID() != 3 {
		t.Fatalf("MaxID() = %d, want 3", c.MaxID())
	}

	f, ok := c.ByIndex(1)
	if !ok || f.ID != 1 {
		t.Fatalf("ByIndex(1) = (%v, %v), want id=1", f, ok)
	}

	f, ok = c.ByID(3)
	if !ok || f.Component != ComponentCPU {
		t.Fatalf("ByID(3) = (%v, %v), want component=CPU", f, ok)
	}

	if _, ok := c.ByID(99); ok {
		t.Fatal("ByID(99) found a fault that was never added")
	}
}

func TestEmptyCatalogue(t *testing.T) {
	c := EmptyCatalogue()
	if c.Len() != 0 || c.MaxID() != 0 {
		t.Fatalf("EmptyCatalogue() = len %d maxID %d, want 0, 0", c.Len(), c.MaxID())
	}
}

func TestCatalogueNilReceiver(t *testing.T) {
	var c *Catalogue
	if c.Len() != 0 || c.MaxID() != 0 || c.All() != nil {
		t.Fatal("nil *Catalogue must behave as empty, not panic")
	}
	if _, ok := c.ByID(1); ok {
		t.Fatal("nil *Catalogue ByID must report not-found")
	}
}

func TestCatalogueAllIsDefensiveCopy(t *testing.T) {
	c := NewCatalogue([]Fault{{ID: 1}})
	snap := c.All()
	snap[0].ID = 42
	if f, _ := c.ByID(1); f.ID != 1 {
		t.Fatal("mutating All()'s result must not affect the catalogue")
	}
}

func TestDebugDump(t *testing.T) {
	c := NewCatalogue([]Fault{
		{ID: 2, Component: ComponentRAM, Target: TargetMemoryCell, Mode: ModeBitflip, Trigger: TriggerAccess},
	})
	var buf strings.Builder
	c.DebugDump(&buf)
	out := buf.String()
	if !strings.Contains(out, "1 fault(s)") || !strings.Contains(out, "id=2") {
		t.Fatalf("DebugDump output = %q, want fault count and id=2", out)
	}
}

func TestDebugDumpNilReceiver(t *testing.T) {
	var c *Catalogue
	var buf strings.Builder
	c.DebugDump(&buf) // must not panic
	if !strings.Contains(buf.String(), "0 fault(s)") {
		t.Fatalf("DebugDump on nil catalogue = %q, want 0 fault(s)", buf.String())
	}
}
