package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	p := filepath.Join(t.TempDir(), "fieser.yaml")
	if err := os.WriteFile(p, []byte("catalogue_path: /tmp/cat.xml\ncollect_faults: true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.CataloguePath != "/tmp/cat.xml" || !cfg.CollectFaults {
		t.Fatalf("cfg = %+v, unexpected fields", cfg)
	}
	if cfg.Logs.Collector != "fies.log" {
		t.Fatalf("Logs.Collector = %q, want default fies.log", cfg.Logs.Collector)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
