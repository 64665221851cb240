// Package config owns process-wide configuration, loaded once from a
// JSON file and then read through an atomically-swappable global
// holder. The `GCO.Get()` call shape mirrors the teacher's own
// `cmn.GCO.Get()` idiom (see `xact/xs/tcb.go`).
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package config

import (
	"os"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Liveness holds the tunables from spec.md §4.3.
type Liveness struct {
	NeighbourCount       int     `json:"neighbour_count"`
	MinPendingOps        int     `json:"min_pending_ops"`
	PendingOpToleranceRatio float64 `json:"pending_op_tolerance_ratio"`
}

// Placement holds the tunables from spec.md §4.4.
type Placement struct {
	ChunkCopyCount int `json:"chunk_copy_count"`
}

// Section holds the static membership view a standalone elder process
// uses in place of a real routing collaborator (spec.md §1: membership
// and routing are external collaborators this core does not
// implement). Production deployments overwrite this with whatever the
// routing substrate delivers at runtime.
type Section struct {
	PrefixHex string   `json:"prefix_hex"`
	PrefixLen int      `json:"prefix_len"`
	SelfHex   string   `json:"self_hex"`
	MembersHex []string `json:"members_hex"`
}

// Config is the full set of process tunables. Elder and adult
// processes load the same shape; each only reads the fields it uses.
type Config struct {
	RootDir     string    `json:"root_dir"`
	MaxCapacity uint64    `json:"max_capacity"`
	Liveness    Liveness  `json:"liveness"`
	Placement   Placement `json:"placement"`
	AdminListen string    `json:"admin_listen"`
	LogLevel    string    `json:"log_level"`
	Section     Section   `json:"section"`
}

// Default returns the constants named in spec.md, for callers (tests,
// `cmd/*`) that don't load a config file.
func Default() *Config {
	return &Config{
		RootDir:     "./vault-data",
		MaxCapacity: 10 * 1024 * 1024 * 1024, // 10GiB
		Liveness: Liveness{
			NeighbourCount:          2,
			MinPendingOps:           10,
			PendingOpToleranceRatio: 0.1,
		},
		Placement: Placement{ChunkCopyCount: 4},
		AdminListen: ":7080",
		LogLevel:    "info",
	}
}

// Load reads and validates a JSON config file, falling back to
// Default() for any zero-valued field left unset by the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	if cfg.Liveness.NeighbourCount <= 0 {
		cfg.Liveness.NeighbourCount = 2
	}
	if cfg.Placement.ChunkCopyCount <= 0 {
		cfg.Placement.ChunkCopyCount = 4
	}
	return cfg, nil
}

// globalConfigOwner is the atomically-swappable holder of the active
// Config, exported as the package-level GCO singleton below.
type globalConfigOwner struct {
	v atomic.Pointer[Config]
}

func (g *globalConfigOwner) Get() *Config {
	c := g.v.Load()
	if c == nil {
		return Default()
	}
	return c
}

func (g *globalConfigOwner) Put(c *Config) { g.v.Store(c) }

// GCO is the process-wide config owner, set once at startup.
var GCO = &globalConfigOwner{}
