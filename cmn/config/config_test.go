package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xornet-io/vault/cmn/config"
)

func TestDefaultMatchesSpecConstants(t *testing.T) {
	cfg := config.Default()
	if cfg.Liveness.NeighbourCount != 2 {
		t.Fatalf("expected default neighbour count 2, got %d", cfg.Liveness.NeighbourCount)
	}
	if cfg.Liveness.MinPendingOps != 10 {
		t.Fatalf("expected default min pending ops 10, got %d", cfg.Liveness.MinPendingOps)
	}
	if cfg.Placement.ChunkCopyCount != 4 {
		t.Fatalf("expected default chunk copy count 4, got %d", cfg.Placement.ChunkCopyCount)
	}
}

func TestLoadFillsZeroValuedTunables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"root_dir":"/tmp/vault-data"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RootDir != "/tmp/vault-data" {
		t.Fatalf("expected root_dir to be overridden, got %q", cfg.RootDir)
	}
	if cfg.Liveness.NeighbourCount != 2 {
		t.Fatalf("expected zero-valued neighbour_count to fall back to 2, got %d", cfg.Liveness.NeighbourCount)
	}
	if cfg.Placement.ChunkCopyCount != 4 {
		t.Fatalf("expected zero-valued chunk_copy_count to fall back to 4, got %d", cfg.Placement.ChunkCopyCount)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := config.Load("/nonexistent/path/config.json"); err == nil {
		t.Fatalf("expected an error loading a missing config file")
	}
}

func TestGlobalConfigOwnerRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.RootDir = "/custom/root"
	config.GCO.Put(cfg)

	if got := config.GCO.Get().RootDir; got != "/custom/root" {
		t.Fatalf("expected GCO to return the stored config, got %q", got)
	}
}
