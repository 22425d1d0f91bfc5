package model

import "sync"

// Kind identifies who controls a creature.
type Kind uint8

const (
	KindNPC Kind = iota
	KindPlayer
	KindBot
	KindMerc
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindBot:
		return "bot"
	case KindMerc:
		return "merc"
	default:
		return "npc"
	}
}

// Condition is a bit set of transient creature states and special abilities.
type Condition uint32

const (
	Dead Condition = 1 << iota
	Corpse
	Mezzed
	Feared
	Stunned
	Rooted
	Sitting
	// DivineAura makes the creature impossible to hit or aggro.
	DivineAura
	// Sanctuary drops the creature to the bottom of every hate list.
	Sanctuary
	// AllowedToTank lets an NPC hold aggro like a player would.
	AllowedToTank
	// AggroImmune protects pets from rampage when the rule is enabled.
	AggroImmune
	// RaidTarget marks raid-class NPCs; attackers count them separately.
	RaidTarget
)

// Creature is a live actor in a zone: player, bot, mercenary, NPC or pet.
// Created by world.Registry which assigns the Handle.
type Creature struct {
	handle     Handle
	name       string
	kind       Kind
	templateID int32

	mu         sync.RWMutex
	location   Location
	hp         int64
	maxHP      int64
	conditions Condition
	owner      Handle
	swarmPet   bool
	target     Handle

	class int32
	race  int32
	deity int32

	// Aggro bookkeeping (player side).
	aggroCount     int32
	raidAggroCount int32
	xtargets       map[Handle]struct{}
}

// NewCreature creates a creature bound to the given handle.
func NewCreature(h Handle, name string, kind Kind, loc Location) *Creature {
	return &Creature{
		handle:   h,
		name:     name,
		kind:     kind,
		location: loc,
		hp:       100,
		maxHP:    100,
		xtargets: make(map[Handle]struct{}),
	}
}

// Handle returns the registry handle (immutable).
func (c *Creature) Handle() Handle { return c.handle }

// Name returns the creature name (immutable).
func (c *Creature) Name() string { return c.name }

// Kind returns the controller kind (immutable).
func (c *Creature) Kind() Kind { return c.kind }

// TemplateID returns the NPC type id used for quest hook lookup. 0 for players.
func (c *Creature) TemplateID() int32 { return c.templateID }

// SetTemplateID sets the NPC type id.
func (c *Creature) SetTemplateID(id int32) { c.templateID = id }

// Has reports whether every bit of cond is set.
func (c *Creature) Has(cond Condition) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conditions&cond == cond
}

// Set sets condition bits.
func (c *Creature) Set(cond Condition) {
	c.mu.Lock()
	c.conditions |= cond
	c.mu.Unlock()
}

// Unset clears condition bits.
func (c *Creature) Unset(cond Condition) {
	c.mu.Lock()
	c.conditions &^= cond
	c.mu.Unlock()
}

// Location returns a copy of the creature position.
func (c *Creature) Location() Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.location
}

// SetLocation moves the creature.
func (c *Creature) SetLocation(loc Location) {
	c.mu.Lock()
	c.location = loc
	c.mu.Unlock()
}

// HP returns current hit points.
func (c *Creature) HP() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hp
}

// MaxHP returns maximum hit points.
func (c *Creature) MaxHP() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxHP
}

// SetHP sets current and maximum hit points. Current HP is clamped to [0, max].
func (c *Creature) SetHP(hp, maxHP int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxHP = maxHP
	c.hp = min(max(hp, 0), maxHP)
}

// HPPercent returns current HP as an integer percentage of max HP.
// A creature without max HP reports 100.
func (c *Creature) HPPercent() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.maxHP == 0 {
		return 100
	}
	return c.hp * 100 / c.maxHP
}

// TakeDamage lowers HP and marks the creature dead at zero.
// Returns true if this hit killed it.
func (c *Creature) TakeDamage(amount int64) bool {
	if amount <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conditions&Dead != 0 {
		return false
	}
	c.hp = max(c.hp-amount, 0)
	if c.hp == 0 {
		c.conditions |= Dead
		return true
	}
	return false
}

// Owner returns the pet owner handle (zero if not a pet).
func (c *Creature) Owner() Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.owner
}

// SetOwner makes the creature a pet of owner. Swarm pets are temporary
// summons that also count toward pet totals.
func (c *Creature) SetOwner(owner Handle, swarm bool) {
	c.mu.Lock()
	c.owner = owner
	c.swarmPet = swarm
	c.mu.Unlock()
}

// IsPet reports whether the creature has an owner.
func (c *Creature) IsPet() bool {
	return !c.Owner().IsZero()
}

// IsSwarmPet reports whether the creature is a temporary swarm summon.
func (c *Creature) IsSwarmPet() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.swarmPet
}

// Target returns the current combat target (zero if none).
func (c *Creature) Target() Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target
}

// SetTarget sets the current combat target.
func (c *Creature) SetTarget(h Handle) {
	c.mu.Lock()
	c.target = h
	c.mu.Unlock()
}

// ClearTarget clears the current combat target.
func (c *Creature) ClearTarget() {
	c.SetTarget(Handle{})
}

// SetLineage sets the class, race and deity used by faction formulas.
func (c *Creature) SetLineage(class, race, deity int32) {
	c.class, c.race, c.deity = class, race, deity
}

func (c *Creature) BaseClass() int32 { return c.class }
func (c *Creature) BaseRace() int32  { return c.race }
func (c *Creature) Deity() int32     { return c.deity }

// IncrementAggroCount records that one more hate list references this creature.
func (c *Creature) IncrementAggroCount(raidTarget bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aggroCount++
	if raidTarget {
		c.raidAggroCount++
	}
}

// DecrementAggroCount is the inverse of IncrementAggroCount. Never goes below zero.
func (c *Creature) DecrementAggroCount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aggroCount > 0 {
		c.aggroCount--
	}
}

// AggroCount returns the number of hate lists referencing this creature.
func (c *Creature) AggroCount() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aggroCount
}

// RaidAggroCount returns how many raid targets have ever listed this creature.
func (c *Creature) RaidAggroCount() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.raidAggroCount
}

// AddXTarget adds an NPC to the "hostile to me" index.
func (c *Creature) AddXTarget(npc Handle) {
	c.mu.Lock()
	c.xtargets[npc] = struct{}{}
	c.mu.Unlock()
}

// RemoveXTarget removes an NPC from the "hostile to me" index.
func (c *Creature) RemoveXTarget(npc Handle) {
	c.mu.Lock()
	delete(c.xtargets, npc)
	c.mu.Unlock()
}

// HasXTarget reports whether npc is in the hostile index.
func (c *Creature) HasXTarget(npc Handle) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.xtargets[npc]
	return ok
}
