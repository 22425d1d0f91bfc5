package hate

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/udisondev/hatelist/internal/config"
	"github.com/udisondev/hatelist/internal/model"
)

// Mob is the view of a creature the hate list needs.
// Implemented by *model.Creature.
type Mob interface {
	Handle() model.Handle
	Name() string
	Kind() model.Kind
	TemplateID() int32
	Location() model.Location
	Has(cond model.Condition) bool
	MaxHP() int64
	HPPercent() int64
	Owner() model.Handle
	IsSwarmPet() bool
	Target() model.Handle

	BaseClass() int32
	BaseRace() int32
	Deity() int32

	AggroTracker
}

// AggroTracker is the player-side bookkeeping touched when a hate list
// gains or loses an entry.
type AggroTracker interface {
	IncrementAggroCount(raidTarget bool)
	DecrementAggroCount()
	AddXTarget(npc model.Handle)
	RemoveXTarget(npc model.Handle)
}

// ResolveFunc looks up a live creature by handle.
// Must return false for stale handles.
type ResolveFunc func(h model.Handle) (Mob, bool)

// PartyLookup reports party-aggregated damage. The bool is false when
// member is not in a raid (or group).
type PartyLookup interface {
	RaidDamageTo(member, hater model.Handle) (uint64, bool)
	GroupDamageTo(member, hater model.Handle) (uint64, bool)
}

// Notifier receives hate list membership events (quest hooks).
type Notifier interface {
	EnteredHateList(owner, attacker Mob)
	LeftHateList(owner, attacker Mob)
}

// AttackOptions tweaks attack rounds started from area attacks.
type AttackOptions struct {
	DamagePercent int // 0 means 100
	RangePercent  int // 0 means 100
}

// Combat executes attacks and abilities on behalf of area operations.
type Combat interface {
	InCombatRange(attacker, target Mob, opts *AttackOptions) bool
	ResolveAttackRound(attacker, target Mob, opts *AttackOptions)
	AbilityMinRange(abilityID int32) float64
	ApplyDistancePowerModifier(abilityID int32, target Mob, distSq float64, caster Mob)
	ApplyAbilityEffect(abilityID int32, caster, target Mob)
	Damage(attacker, target Mob, amount int64)
}

// FactionService applies reputation changes to players.
type FactionService interface {
	RewardFaction(player Mob, factionID, value int32)
	SetFactionLevel(player Mob, levelID int64, class, race, deity int32)
}

// Env is the zone context shared by every hate list of a zone.
// Collaborators other than Resolve are optional; operations that need a
// missing collaborator degrade to no-ops.
type Env struct {
	Resolve  ResolveFunc
	Parties  PartyLookup
	Hooks    Notifier
	Combat   Combat
	Factions FactionService

	// Now defaults to time.Now. Rand defaults to the global source.
	Now  func() time.Time
	Rand *rand.Rand

	rules atomic.Pointer[config.Aggro]
}

// NewEnv creates a zone context with the given resolver and aggro rules.
func NewEnv(resolve ResolveFunc, rules config.Aggro) *Env {
	e := &Env{Resolve: resolve}
	e.rules.Store(&rules)
	return e
}

// Rules returns the current aggro rules snapshot.
func (e *Env) Rules() config.Aggro {
	if r := e.rules.Load(); r != nil {
		return *r
	}
	return config.DefaultAggro()
}

// SetRules swaps aggro rules. Takes effect on the next query.
func (e *Env) SetRules(rules config.Aggro) {
	e.rules.Store(&rules)
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) intN(n int) int {
	if e.Rand != nil {
		return e.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func (e *Env) resolve(h model.Handle) (Mob, bool) {
	if e.Resolve == nil || h.IsZero() {
		return nil, false
	}
	return e.Resolve(h)
}

func (e *Env) inMeleeRange(attacker, target Mob) bool {
	if e.Combat == nil {
		return false
	}
	return e.Combat.InCombatRange(attacker, target, nil)
}

func isPlayer(m Mob) bool {
	return m.Kind() == model.KindPlayer
}

// isPlayerOrBot reports client-like attackers eligible for melee priority.
func isPlayerOrBot(m Mob) bool {
	k := m.Kind()
	return k == model.KindPlayer || k == model.KindBot
}

func isPlayerBotOrMerc(m Mob) bool {
	return m.Kind() != model.KindNPC
}
