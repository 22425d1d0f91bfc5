package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/udisondev/hatelist/internal/ai"
	"github.com/udisondev/hatelist/internal/config"
	"github.com/udisondev/hatelist/internal/game/combat"
	"github.com/udisondev/hatelist/internal/game/faction"
	"github.com/udisondev/hatelist/internal/game/party"
	"github.com/udisondev/hatelist/internal/hate"
	"github.com/udisondev/hatelist/internal/model"
	"github.com/udisondev/hatelist/internal/scripting"
	"github.com/udisondev/hatelist/internal/world"
)

// zone wires every collaborator of a simulated zone. All hate list access
// happens on the tick goroutine.
type zone struct {
	cfg config.ZoneServer
	out io.Writer

	reg      *world.Registry
	env      *hate.Env
	ticks    *ai.TickManager
	combat   *combat.Manager
	parties  *party.Manager
	factions *faction.Manager
	scripts  *scripting.Engine

	brains    map[model.Handle]*ai.Brain
	factionOf map[model.Handle]int64 // npc → faction level applied on death

	onNpcDeath func(npc hate.Mob)
}

func newZone(cfg config.ZoneServer, out io.Writer) (*zone, error) {
	scripts, err := scripting.NewEngine(cfg.ScriptsDir)
	if err != nil {
		return nil, fmt.Errorf("creating script engine: %w", err)
	}

	z := &zone{
		cfg:       cfg,
		out:       out,
		reg:       world.NewRegistry(),
		ticks:     ai.NewTickManager(cfg.TickInterval),
		combat:    combat.NewManager(cfg.Combat),
		factions:  faction.NewManager(),
		scripts:   scripts,
		brains:    make(map[model.Handle]*ai.Brain),
		factionOf: make(map[model.Handle]int64),
	}
	z.parties = party.NewManager(z.damageTo)

	z.env = hate.NewEnv(z.reg.Resolver(), cfg.Aggro)
	z.env.Parties = z.parties
	z.env.Hooks = scripts
	z.env.Combat = z.combat
	z.env.Factions = z.factions

	z.combat.SetDamageFunc(z.onDamage)
	return z, nil
}

func (z *zone) close() {
	z.scripts.Close()
}

// spawnNPC spawns a hostile NPC and registers its brain.
func (z *zone) spawnNPC(name string, typeID int32, loc model.Location, hp int64, factionLevel int64) (*model.Creature, *ai.Brain) {
	npc := z.reg.Spawn(name, model.KindNPC, loc)
	npc.SetTemplateID(typeID)
	npc.SetHP(hp, hp)

	brain := ai.NewBrain(npc, hate.NewList(npc, z.env), z.combat, z.cfg.HateList)
	z.brains[npc.Handle()] = brain
	if factionLevel != 0 {
		z.factionOf[npc.Handle()] = factionLevel
	}
	z.ticks.Register(npc.Handle(), brain)
	return npc, brain
}

// damageTo reports damage member dealt to hater, for party aggregation.
func (z *zone) damageTo(hater, member model.Handle) uint64 {
	b, ok := z.brains[hater]
	if !ok {
		return 0
	}
	return b.List().DamageAmount(member)
}

// onDamage turns landed damage into hate and handles deaths.
func (z *zone) onDamage(attacker, target hate.Mob, amount int64, killed bool) {
	if b, ok := z.brains[target.Handle()]; ok && attacker != nil {
		b.List().AddOrUpdate(attacker, amount, amount, false, true)
	}
	if !killed {
		return
	}

	if _, ok := z.brains[target.Handle()]; ok {
		z.npcDied(target)
		return
	}

	// Corpses drop off every hate list; pets are gone for good
	for _, b := range z.brains {
		b.List().Remove(target.Handle())
	}
	if target.Kind() == model.KindNPC {
		z.reg.Despawn(target.Handle())
		return
	}
	if c, ok := z.reg.Get(target.Handle()); ok {
		c.Set(model.Corpse)
	}
	slog.Info("player died", "player", target.Name())
}

func (z *zone) npcDied(npc hate.Mob) {
	b, ok := z.brains[npc.Handle()]
	if !ok {
		return
	}
	list := b.List()

	if killer := list.HighestDamageAggregate(npc); killer != nil {
		slog.Info("loot credit",
			"npc", npc.Name(),
			"winner", killer.Name(),
			"damage", list.DamageAmount(killer.Handle()))
	}
	if level, ok := z.factionOf[npc.Handle()]; ok {
		list.ApplyFactionConsequence(level, 0, 0)
	}
	if err := hate.WriteDump(z.out, npc.Name(), list.Dump()); err != nil {
		slog.Error("writing hate list dump", "npc", npc.Name(), "error", err)
	}

	z.ticks.Unregister(npc.Handle())
	delete(z.brains, npc.Handle())
	z.reg.Despawn(npc.Handle())

	if z.onNpcDeath != nil {
		z.onNpcDeath(npc)
	}
}
