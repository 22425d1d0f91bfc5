package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hatelist/internal/config"
	"github.com/udisondev/hatelist/internal/game/combat"
	"github.com/udisondev/hatelist/internal/hate"
	"github.com/udisondev/hatelist/internal/model"
	"github.com/udisondev/hatelist/internal/world"
)

type brainFixture struct {
	reg    *world.Registry
	npc    *model.Creature
	list   *hate.List
	brain  *Brain
	combat *combat.Manager
	now    time.Time
}

func newBrainFixture(t *testing.T, cfg config.HateList) *brainFixture {
	t.Helper()
	f := &brainFixture{
		reg: world.NewRegistry(),
		now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.npc = f.reg.Spawn("a_gnoll_pup", model.KindNPC, model.NewLocation(0, 0, 0, 0))
	f.combat = combat.NewManager(config.DefaultCombat())

	env := hate.NewEnv(f.reg.Resolver(), config.DefaultAggro())
	env.Combat = f.combat
	env.Now = func() time.Time { return f.now }

	f.list = hate.NewList(f.npc, env)
	f.brain = NewBrain(f.npc, f.list, f.combat, cfg)
	f.brain.Start()
	return f
}

func (f *brainFixture) player(name string, x int32) *model.Creature {
	return f.reg.Spawn(name, model.KindPlayer, model.NewLocation(x, 0, 0, 0))
}

func TestBrain_PicksTopThreatAndAttacksInRange(t *testing.T) {
	f := newBrainFixture(t, config.DefaultHateList())
	caster := f.player("Caster", 500)
	tank := f.player("Tank", 50)

	f.list.AddOrUpdate(caster, 100, 0, false, true)
	f.list.AddOrUpdate(tank, 50, 0, false, true)

	f.brain.Tick()
	assert.Equal(t, caster.Handle(), f.npc.Target())
	assert.Equal(t, IntentionAttack, f.brain.CurrentIntention())
	assert.Equal(t, int64(100), caster.HP(), "caster is out of melee range")

	f.list.AddOrUpdate(tank, 150, 0, false, true)
	f.brain.Tick()
	assert.Equal(t, tank.Handle(), f.npc.Target())
	assert.Equal(t, int64(90), tank.HP())
}

func TestBrain_SweepOnInterval(t *testing.T) {
	cfg := config.HateList{StaleTimeout: time.Minute, StaleDistance: 3000, SweepEvery: 2}
	f := newBrainFixture(t, cfg)
	tank := f.player("Tank", 500)
	f.list.AddOrUpdate(tank, 10, 0, false, true)

	f.now = f.now.Add(2 * time.Minute)

	f.brain.Tick()
	assert.True(t, f.list.Contains(tank.Handle()), "no sweep on the first tick")
	assert.Equal(t, tank.Handle(), f.npc.Target())

	f.brain.Tick()
	assert.True(t, f.list.IsEmpty())
	assert.True(t, f.npc.Target().IsZero())
	assert.Equal(t, IntentionActive, f.brain.CurrentIntention())
}

func TestBrain_Rampage(t *testing.T) {
	f := newBrainFixture(t, config.DefaultHateList())
	f.brain.SetRampage(1, -1)
	tank := f.player("Tank", 10)
	healer := f.player("Healer", 20)

	f.list.AddOrUpdate(tank, 100, 0, false, true)
	f.list.AddOrUpdate(healer, 10, 0, false, true)

	f.brain.Tick()

	assert.Equal(t, int64(90), tank.HP(), "regular attack round")
	assert.Equal(t, int64(90), healer.HP(), "rampage")
}

func TestBrain_AreaAbility(t *testing.T) {
	f := newBrainFixture(t, config.DefaultHateList())
	// Earthquake: 25 damage, min range 50
	f.brain.SetAreaAbility(2, 1, 500)
	tank := f.player("Tank", 10)
	archer := f.player("Archer", 200)

	f.list.AddOrUpdate(tank, 100, 0, false, true)
	f.list.AddOrUpdate(archer, 10, 0, false, true)

	f.brain.Tick()

	assert.Equal(t, int64(90), tank.HP(), "too close for the ability, melee only")
	assert.Equal(t, int64(75), archer.HP())
}

func TestBrain_SkipsMezzed(t *testing.T) {
	f := newBrainFixture(t, config.DefaultHateList())
	top := f.player("Top", 500)
	second := f.player("Second", 500)
	f.list.AddOrUpdate(top, 100, 0, false, true)
	f.list.AddOrUpdate(second, 50, 0, false, true)

	top.Set(model.Mezzed)
	f.brain.Tick()
	assert.Equal(t, second.Handle(), f.npc.Target())
}

func TestBrain_DoesNotHitMezzedTarget(t *testing.T) {
	f := newBrainFixture(t, config.DefaultHateList())
	tank := f.player("Tank", 10)
	f.list.AddOrUpdate(tank, 100, 0, false, true)

	f.brain.Tick()
	require.Equal(t, tank.Handle(), f.npc.Target())
	require.Equal(t, int64(90), tank.HP())

	tank.Set(model.Mezzed)
	f.brain.Tick()
	f.brain.Tick()

	assert.Equal(t, int64(90), tank.HP(), "mez holds")
	assert.True(t, f.npc.Target().IsZero())
	assert.Equal(t, IntentionActive, f.brain.CurrentIntention())
	assert.True(t, f.list.Contains(tank.Handle()))
}

func TestBrain_DeadOrStoppedDoesNothing(t *testing.T) {
	f := newBrainFixture(t, config.DefaultHateList())
	tank := f.player("Tank", 10)
	f.list.AddOrUpdate(tank, 100, 0, false, true)

	f.npc.Set(model.Dead)
	f.brain.Tick()
	assert.True(t, f.npc.Target().IsZero())
	assert.Equal(t, int64(100), tank.HP())

	f.npc.Unset(model.Dead)
	f.brain.Tick()
	require.Equal(t, tank.Handle(), f.npc.Target())

	f.brain.Stop()
	assert.True(t, f.list.IsEmpty())
	assert.True(t, f.npc.Target().IsZero())
	assert.Equal(t, IntentionIdle, f.brain.CurrentIntention())
	assert.Zero(t, tank.AggroCount())

	f.list.AddOrUpdate(tank, 100, 0, false, true)
	f.brain.Tick()
	assert.True(t, f.npc.Target().IsZero(), "stopped brain does not tick")
}

func TestBrain_WithTickManager(t *testing.T) {
	f := newBrainFixture(t, config.DefaultHateList())
	tank := f.player("Tank", 10)
	bystander := f.player("Bystander", 10)

	mgr := NewTickManager(time.Second)
	mgr.Register(f.npc.Handle(), f.brain)

	f.list.AddOrUpdate(tank, 100, 0, false, true)
	f.list.AddOrUpdate(bystander, 1, 0, false, true)
	f.list.Remove(bystander.Handle())

	mgr.tickAll()

	assert.Equal(t, tank.Handle(), f.npc.Target())
	assert.Equal(t, 1, f.list.Len())
	assert.Equal(t, []hate.DumpRow{{Name: "Tank", ID: tank.Handle().ID(), Hate: 100}}, f.list.Dump())

	mgr.Unregister(f.npc.Handle())
	assert.True(t, f.list.IsEmpty())
}
