package config

import "time"

// Aggro holds the target acquisition rules. Percent modifiers are added
// together and applied to an attacker's stored hate.
type Aggro struct {
	// SmartAggroList enables situational modifiers and melee-range priority.
	SmartAggroList bool `yaml:"smart_aggro_list" toml:"smart_aggro_list"`

	SittingAggroMod           int64 `yaml:"sitting_aggro_mod" toml:"sitting_aggro_mod"`                       // % bonus vs seated players
	CurrentTargetAggroMod     int64 `yaml:"current_target_aggro_mod" toml:"current_target_aggro_mod"`         // % bonus vs current target
	MeleeRangeAggroMod        int64 `yaml:"melee_range_aggro_mod" toml:"melee_range_aggro_mod"`               // % bonus inside melee range (0 disables melee priority)
	CriticallyWoundedAggroMod int64 `yaml:"critically_wounded_aggro_mod" toml:"critically_wounded_aggro_mod"` // % bonus below 20% HP

	// PetRampageImmunity spares aggro-immune pets of players from rampage.
	PetRampageImmunity bool `yaml:"pet_rampage_immunity" toml:"pet_rampage_immunity"`
}

// DefaultAggro returns the stock aggro rules.
func DefaultAggro() Aggro {
	return Aggro{
		SmartAggroList:            true,
		SittingAggroMod:           35,
		CurrentTargetAggroMod:     0,
		MeleeRangeAggroMod:        10,
		CriticallyWoundedAggroMod: 100,
		PetRampageImmunity:        false,
	}
}

// HateList holds the staleness sweep parameters.
type HateList struct {
	StaleTimeout  time.Duration `yaml:"stale_timeout" toml:"stale_timeout"`   // drop attackers untouched this long
	StaleDistance float64       `yaml:"stale_distance" toml:"stale_distance"` // leash distance (horizontal)
	SweepEvery    int           `yaml:"sweep_every" toml:"sweep_every"`       // run the sweep every N AI ticks
}

// DefaultHateList returns default sweep parameters.
func DefaultHateList() HateList {
	return HateList{
		StaleTimeout:  10 * time.Minute,
		StaleDistance: 3000,
		SweepEvery:    10,
	}
}

// Ability describes an area ability usable from a hate list broadcast.
type Ability struct {
	ID       int32   `yaml:"id" toml:"id"`
	Name     string  `yaml:"name" toml:"name"`
	Damage   int64   `yaml:"damage" toml:"damage"`
	MinRange float64 `yaml:"min_range" toml:"min_range"` // targets closer than this are skipped
	Range    float64 `yaml:"range" toml:"range"`         // falloff reference distance
	Falloff  bool    `yaml:"falloff" toml:"falloff"`     // scale power down with distance, to half at Range
}

// Combat holds combat collaborator settings.
type Combat struct {
	MeleeRange      float64   `yaml:"melee_range" toml:"melee_range"`             // attack reach, horizontal
	MeleeDamage     int64     `yaml:"melee_damage" toml:"melee_damage"`           // damage per attack round
	MeleeZTolerance int32     `yaml:"melee_z_tolerance" toml:"melee_z_tolerance"` // max vertical gap for melee
	Abilities       []Ability `yaml:"abilities" toml:"abilities"`
}

// DefaultCombat returns default combat settings.
func DefaultCombat() Combat {
	return Combat{
		MeleeRange:      100,
		MeleeDamage:     10,
		MeleeZTolerance: 600,
		Abilities: []Ability{
			{ID: 1, Name: "Flame Burst", Damage: 40, Range: 300, Falloff: true},
			{ID: 2, Name: "Earthquake", Damage: 25, MinRange: 50, Range: 400},
		},
	}
}

// AbilityByID returns the ability with the given id.
func (c Combat) AbilityByID(id int32) (Ability, bool) {
	for _, a := range c.Abilities {
		if a.ID == id {
			return a, true
		}
	}
	return Ability{}, false
}
