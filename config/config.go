// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads and validates network configuration files and builds
// ready-to-run networks from them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/neuronos/neuronos/neuronos"
)

// SimConfig is the top-level simulation configuration.
type SimConfig struct {
	Version string         `yaml:"version"`
	Name    string         `yaml:"name"`
	Seed    int64          `yaml:"seed,omitempty"`    // default 1
	Ticks   int            `yaml:"ticks,omitempty"`   // default 100
	Threads int            `yaml:"threads,omitempty"` // default 1
	Routing *RoutingConfig `yaml:"routing,omitempty"` // content-based routing, off by default
	Modules []ModuleConfig `yaml:"modules"`
	Links   []LinkConfig   `yaml:"links,omitempty"`
}

// ModuleConfig configures one module.
type ModuleConfig struct {
	Name    string  `yaml:"name"`
	Type    string  `yaml:"type"`   // Sensory, Temporal, Spatial, Linguistic, Executive, Memory
	Layers  []int   `yaml:"layers"` // units per layer, in feed-forward order
	Goal    float32 `yaml:"goal,omitempty"`
	Profile float32 `yaml:"profile,omitempty"`
}

// LinkConfig configures one highway link.
type LinkConfig struct {
	Src       string   `yaml:"src"`
	Dst       string   `yaml:"dst"`
	Priority  string   `yaml:"priority,omitempty"` // Low, Normal, High, Critical; default Normal
	Bandwidth *int     `yaml:"bandwidth,omitempty"`
	MaxQueue  *int     `yaml:"max_queue,omitempty"`
	Gain      *float32 `yaml:"gain,omitempty"`
}

// RoutingConfig configures content-based spike routing.
type RoutingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Temperature float32 `yaml:"temperature,omitempty"` // default 1
}

// Validate performs strict validation on the configuration.
func (c *SimConfig) Validate() error {
	if c.Version != "1" {
		return fmt.Errorf("unsupported version: %q (expected: 1)", c.Version)
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(c.Modules) == 0 {
		return fmt.Errorf("no modules defined")
	}
	seen := make(map[string]bool)
	for _, mc := range c.Modules {
		if err := mc.Validate(); err != nil {
			return err
		}
		if seen[mc.Name] {
			return fmt.Errorf("duplicate module name %q", mc.Name)
		}
		seen[mc.Name] = true
	}
	for _, lc := range c.Links {
		if !seen[lc.Src] {
			return fmt.Errorf("link %s>%s: unknown source module %q", lc.Src, lc.Dst, lc.Src)
		}
		if !seen[lc.Dst] {
			return fmt.Errorf("link %s>%s: unknown destination module %q", lc.Src, lc.Dst, lc.Dst)
		}
		if _, err := parsePriority(lc.Priority); err != nil {
			return fmt.Errorf("link %s>%s: %v", lc.Src, lc.Dst, err)
		}
	}
	return nil
}

// Validate checks a single module entry.
func (mc *ModuleConfig) Validate() error {
	if mc.Name == "" {
		return fmt.Errorf("module with empty name")
	}
	if _, err := parseModuleType(mc.Type); err != nil {
		return fmt.Errorf("module %q: %v", mc.Name, err)
	}
	if len(mc.Layers) == 0 {
		return fmt.Errorf("module %q: at least one layer is required", mc.Name)
	}
	for i, n := range mc.Layers {
		if n <= 0 {
			return fmt.Errorf("module %q: layer %d has %d units, must be > 0", mc.Name, i, n)
		}
	}
	return nil
}

// Load reads and validates a configuration from the specified path.
func Load(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg SimConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Build constructs and builds a network from the configuration.  InitState
// is left to the caller.
func (c *SimConfig) Build() (*neuronos.Network, error) {
	nt := neuronos.NewNetwork(c.Name)
	if c.Seed != 0 {
		nt.RndSeed = c.Seed
	}
	if c.Threads > 1 {
		nt.NThreads = c.Threads
	}
	if c.Routing != nil && c.Routing.Enabled {
		nt.HW.Route.On = true
		if c.Routing.Temperature > 0 {
			nt.HW.Route.Temp = c.Routing.Temperature
		}
	}
	for _, mc := range c.Modules {
		typ, _ := parseModuleType(mc.Type)
		md := nt.AddModule(mc.Name, typ, mc.Layers)
		if mc.Goal > 0 {
			md.Goal = mc.Goal
		}
		md.Profile = mc.Profile
	}
	for _, lc := range c.Links {
		pri, _ := parsePriority(lc.Priority)
		lk, err := nt.ConnectModules(lc.Src, lc.Dst, pri)
		if err != nil {
			return nil, err
		}
		if lc.Bandwidth != nil {
			lk.BW.Cap = *lc.Bandwidth
		}
		if lc.MaxQueue != nil {
			lk.BW.MaxQueue = *lc.MaxQueue
		}
		if lc.Gain != nil {
			lk.Gain = *lc.Gain
		}
	}
	if err := nt.Build(); err != nil {
		return nil, err
	}
	return nt, nil
}

// RunTicks returns the configured tick count, defaulted to 100.
func (c *SimConfig) RunTicks() int {
	if c.Ticks > 0 {
		return c.Ticks
	}
	return 100
}

func parseModuleType(s string) (neuronos.ModuleType, error) {
	for t := neuronos.ModuleType(0); t < neuronos.ModuleTypeN; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown module type %q", s)
}

func parsePriority(s string) (neuronos.Priority, error) {
	if s == "" {
		return neuronos.Normal, nil
	}
	for p := neuronos.Low; p < neuronos.PriorityN; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}
