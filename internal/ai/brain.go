package ai

import (
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/hatelist/internal/config"
	"github.com/udisondev/hatelist/internal/hate"
	"github.com/udisondev/hatelist/internal/model"
)

// NPC is the creature a Brain drives.
type NPC interface {
	hate.Mob
	SetTarget(h model.Handle)
	ClearTarget()
}

// Brain drives one hostile NPC from its hate list.
//
// Each tick the brain runs the staleness sweep on its interval, picks the
// top threat (situational modifiers applied, mezzed attackers skipped),
// and attacks it when in melee range. Rampage and area abilities fire on
// their own tick intervals.
type Brain struct {
	npc    NPC
	list   *hate.List
	combat hate.Combat
	cfg    config.HateList

	isRunning atomic.Bool
	intention atomic.Uint32
	ticks     int

	rampageEvery int
	rampageExtra int

	abilityID    int32
	abilityEvery int
	abilityRange float64
}

// NewBrain creates a brain for npc. combat may be nil for a brain that
// only tracks targets.
func NewBrain(npc NPC, list *hate.List, combat hate.Combat, cfg config.HateList) *Brain {
	if cfg.SweepEvery < 1 {
		cfg.SweepEvery = 1
	}
	return &Brain{
		npc:    npc,
		list:   list,
		combat: combat,
		cfg:    cfg,
	}
}

// SetRampage makes the NPC rampage every n ticks, hitting up to maxExtra
// attackers besides its target (-1 = all).
func (b *Brain) SetRampage(every, maxExtra int) {
	b.rampageEvery, b.rampageExtra = every, maxExtra
}

// SetAreaAbility makes the NPC cast abilityID on its whole hate list within
// rng every n ticks.
func (b *Brain) SetAreaAbility(abilityID int32, every int, rng float64) {
	b.abilityID, b.abilityEvery, b.abilityRange = abilityID, every, rng
}

// List returns the brain's hate list.
func (b *Brain) List() *hate.List {
	return b.list
}

// Start starts the AI controller.
func (b *Brain) Start() {
	b.isRunning.Store(true)
	b.setIntention(IntentionActive)

	if IsDebugEnabled() {
		slog.Debug("brain started", "npc", b.npc.Name(), "handle", b.npc.Handle())
	}
}

// Stop stops the AI controller and forgets every attacker.
func (b *Brain) Stop() {
	b.isRunning.Store(false)
	b.setIntention(IntentionIdle)
	b.list.Clear(false)
	b.npc.ClearTarget()
}

// CurrentIntention returns current AI intention.
func (b *Brain) CurrentIntention() Intention {
	return Intention(b.intention.Load())
}

func (b *Brain) setIntention(i Intention) {
	old := Intention(b.intention.Swap(uint32(i)))
	if old != i && IsDebugEnabled() {
		slog.Debug("brain intention changed",
			"npc", b.npc.Name(),
			"from", old,
			"to", i)
	}
}

// Tick performs one AI step.
func (b *Brain) Tick() {
	if !b.isRunning.Load() || b.npc.Has(model.Dead) {
		return
	}
	b.ticks++

	if b.ticks%b.cfg.SweepEvery == 0 {
		b.list.ExpireStale(b.cfg.StaleTimeout, b.cfg.StaleDistance)
	}

	if b.list.IsEmpty() {
		b.disengage()
		return
	}

	target := b.list.TopThreatWithAggroModifiers(b.npc, model.Handle{}, true, hate.FilterAll)
	if target == nil {
		b.disengage()
		return
	}

	if b.npc.Target() != target.Handle() {
		b.npc.SetTarget(target.Handle())
		if IsDebugEnabled() {
			slog.Debug("brain switched target",
				"npc", b.npc.Name(),
				"target", target.Name(),
				"hate", b.list.HateAmount(target.Handle()))
		}
	}
	b.setIntention(IntentionAttack)

	if b.combat == nil {
		return
	}

	if b.abilityEvery > 0 && b.ticks%b.abilityEvery == 0 {
		b.list.BroadcastSpellCast(b.npc, b.abilityID, b.abilityRange, nil)
	}

	if !b.combat.InCombatRange(b.npc, target, nil) {
		return
	}
	if b.rampageEvery > 0 && b.ticks%b.rampageEvery == 0 {
		b.list.AreaAttack(b.npc, target, b.rampageExtra, nil)
	}
	// the target may have died from the rampage
	if t, ok := b.list.Resolve(target.Handle()); ok && !t.Has(model.Dead) {
		b.combat.ResolveAttackRound(b.npc, t, nil)
	}
}

func (b *Brain) disengage() {
	if !b.npc.Target().IsZero() {
		b.npc.ClearTarget()
	}
	b.setIntention(IntentionActive)
}

// Compact compacts the hate list between ticks.
func (b *Brain) Compact() {
	b.list.Compact()
}
