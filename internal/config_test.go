package internal

import (
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.Defaults.Tax != 0.19 {
		t.Errorf("tax = %v, want 0.19", cfg.Defaults.Tax)
	}
	if !cfg.Store.UseGit {
		t.Error("git should be on by default")
	}
}

func TestStoreConfig_RequiresPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty store path should fail validation")
	}
}

func TestStoreConfig_RequiresDirNames(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.ArchiveDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty archive dir should fail validation")
	}
}

func TestDefaultsConfig_RejectsTaxAboveOne(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Defaults.Tax = 19
	if err := cfg.Validate(); err == nil {
		t.Fatal("tax above 1 should fail validation")
	}
}

func TestIndexConfig_RequiresPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Index.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty index path should fail validation")
	}
}
