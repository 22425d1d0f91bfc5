package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ZoneServer holds all configuration for a zone simulation process.
type ZoneServer struct {
	LogLevel string `yaml:"log_level" toml:"log_level"` // debug, info, warn, error

	// Zone tick
	TickInterval time.Duration `yaml:"tick_interval" toml:"tick_interval"` // AI tick period (default: 1s)

	// Quest scripts (Lua)
	ScriptsDir string `yaml:"scripts_dir" toml:"scripts_dir"`

	Aggro    Aggro    `yaml:"aggro" toml:"aggro"`
	HateList HateList `yaml:"hate_list" toml:"hate_list"`
	Combat   Combat   `yaml:"combat" toml:"combat"`
}

// DefaultZoneServer returns ZoneServer config with sensible defaults.
func DefaultZoneServer() ZoneServer {
	return ZoneServer{
		LogLevel:     "info",
		TickInterval: time.Second,
		ScriptsDir:   "scripts",
		Aggro:        DefaultAggro(),
		HateList:     DefaultHateList(),
		Combat:       DefaultCombat(),
	}
}

// LoadZoneServer loads zone config from a YAML file, or TOML when the
// path ends in .toml. If the file doesn't exist, returns defaults.
func LoadZoneServer(path string) (ZoneServer, error) {
	cfg := DefaultZoneServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := unmarshal(path, data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

func unmarshal(path string, data []byte, cfg *ZoneServer) error {
	if !strings.EqualFold(filepath.Ext(path), ".toml") {
		return yaml.Unmarshal(data, cfg)
	}

	// toml сливает массив таблиц с существующими элементами, поэтому
	// таблица способностей по умолчанию подставляется только если её нет в файле
	abilities := cfg.Combat.Abilities
	cfg.Combat.Abilities = nil
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if !md.IsDefined("combat", "abilities") {
		cfg.Combat.Abilities = abilities
	}
	return nil
}

// Validate rejects values the simulation cannot run with.
func (c ZoneServer) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.HateList.SweepEvery < 1 {
		return fmt.Errorf("hate_list.sweep_every must be >= 1, got %d", c.HateList.SweepEvery)
	}
	if c.Combat.MeleeRange < 0 {
		return fmt.Errorf("combat.melee_range must be >= 0, got %v", c.Combat.MeleeRange)
	}
	seen := make(map[int32]bool, len(c.Combat.Abilities))
	for _, a := range c.Combat.Abilities {
		if seen[a.ID] {
			return fmt.Errorf("combat.abilities: duplicate id %d", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}
