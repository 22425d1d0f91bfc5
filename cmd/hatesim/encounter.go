package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/hatelist/internal/ai"
	"github.com/udisondev/hatelist/internal/game/faction"
	"github.com/udisondev/hatelist/internal/hate"
	"github.com/udisondev/hatelist/internal/model"
)

const (
	chieftainTypeID  int32 = 1001
	levelBlackburrow int64 = 55

	factionGnolls int32 = 100
	factionQeynos int32 = 200

	maxRounds = 120
)

// encounter is a scripted raid on a gnoll chieftain: a tank taunts, a
// cleric heals and sits to recover mana, casters burn from range.
type encounter struct {
	z         *zone
	chieftain *model.Creature
	brain     *ai.Brain

	tank, cleric, wizard, rogue *model.Creature
	familiar                    *model.Creature

	rounds atomic.Int32
	done   chan struct{}
}

func newEncounter(z *zone) (*encounter, error) {
	e := &encounter{z: z, done: make(chan struct{})}

	z.factions.DefineLevel(levelBlackburrow, []faction.Hit{
		{FactionID: factionGnolls, Value: -10},
		{FactionID: factionQeynos, Value: 5},
	})
	z.factions.DefineMods(factionQeynos, faction.Mods{Race: map[int32]int32{1: 100}})

	e.chieftain, e.brain = z.spawnNPC("a_gnoll_chieftain", chieftainTypeID,
		model.NewLocation(0, 0, 0, 0), 1200, levelBlackburrow)
	e.chieftain.Set(model.RaidTarget)
	e.brain.SetRampage(3, 2)
	e.brain.SetAreaAbility(1, 5, 400)

	e.tank = e.player("Brannigan", 20, 1, 1)
	e.cleric = e.player("Illuvia", 150, 2, 1)
	e.wizard = e.player("Zeblok", 250, 12, 1)
	e.rogue = e.player("Shadowstep", 30, 9, 2)
	e.tank.SetHP(600, 600)

	e.familiar = z.reg.Spawn("Zeblok`s familiar", model.KindNPC, model.NewLocation(60, 0, 0, 0))
	e.familiar.SetOwner(e.wizard.Handle(), false)

	group, err := z.parties.CreateGroup(e.tank.Handle())
	if err != nil {
		return nil, fmt.Errorf("forming group: %w", err)
	}
	if err := z.parties.Join(group.ID(), e.cleric.Handle()); err != nil {
		return nil, fmt.Errorf("forming group: %w", err)
	}

	z.onNpcDeath = func(npc hate.Mob) {
		if npc.Handle() == e.chieftain.Handle() {
			close(e.done)
		}
	}
	return e, nil
}

func (e *encounter) player(name string, x int32, class, race int32) *model.Creature {
	p := e.z.reg.Spawn(name, model.KindPlayer, model.NewLocation(x, 0, 0, 0))
	p.SetLineage(class, race, 0)
	return p
}

// run feeds one round of player actions to the tick goroutine per tick
// until the chieftain dies or the round limit is hit.
func (e *encounter) run(ctx context.Context) error {
	defer e.z.ticks.Stop()

	ticker := time.NewTicker(e.z.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			slog.Info("encounter won", "rounds", e.rounds.Load())
			return nil
		case <-ticker.C:
		}

		if e.rounds.Load() >= maxRounds {
			slog.Warn("encounter timed out", "rounds", maxRounds)
			return nil
		}
		if err := e.z.ticks.Submit(e.step); err != nil {
			return fmt.Errorf("submitting round %d: %w", e.rounds.Load()+1, err)
		}
	}
}

// step runs on the tick goroutine.
func (e *encounter) step() {
	if e.chieftain.Has(model.Dead) || e.rounds.Load() >= maxRounds {
		return
	}
	round := e.rounds.Add(1)
	list := e.brain.List()
	c := e.z.combat

	switch round {
	case 1:
		// The familiar pulls, then the group engages
		list.AddOrUpdate(e.familiar, 1, 0, false, true)
	case 6:
		e.cleric.Set(model.Sitting)
	case 9:
		e.cleric.Unset(model.Sitting)
	case 12:
		e.rogue.Set(model.Feared)
		e.rogue.SetLocation(e.rogue.Location().WithCoordinates(400, 0, 0))
		if r := list.FleeingTarget(e.chieftain, 0, false); r != nil {
			slog.Info("chieftain eyes a fleeing target", "target", r.Name())
		}
	case 15:
		e.rogue.Unset(model.Feared)
		e.rogue.SetLocation(e.rogue.Location().WithCoordinates(30, 0, 0))
	case 20:
		// Memory blur on the wizard
		list.SetHateAmount(e.wizard.Handle(), 1, 0)
		list.Clear(true)
	}

	fighting := func(p *model.Creature) bool {
		return !e.chieftain.Has(model.Dead) && !p.Has(model.Corpse)
	}

	if fighting(e.tank) {
		c.Damage(e.tank, e.chieftain, 15)
		list.AddOrUpdate(e.tank, 30, 0, false, false) // taunt
	}
	if fighting(e.cleric) && !e.cleric.Has(model.Sitting) && !e.tank.Has(model.Corpse) {
		e.tank.SetHP(e.tank.HP()+40, e.tank.MaxHP())
		list.AddOrUpdate(e.cleric, 20, 0, false, true)
	}
	if fighting(e.wizard) && round%2 == 0 {
		c.Damage(e.wizard, e.chieftain, 60)
	}
	if fighting(e.rogue) && !e.rogue.Has(model.Feared) {
		c.Damage(e.rogue, e.chieftain, 25)
	}

	if round%10 == 0 && !e.chieftain.Has(model.Dead) {
		if top := list.TopThreat(false); top != nil {
			slog.Info("threat check",
				"round", round,
				"top", top.Name(),
				"wizardRatio", list.ThreatRatio(top.Handle(), e.wizard.Handle()),
				"players", list.CountByCategory(hate.FilterPlayers),
				"pets", list.PetCount())
		}
	}
}
