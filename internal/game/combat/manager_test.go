package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hatelist/internal/config"
	"github.com/udisondev/hatelist/internal/hate"
	"github.com/udisondev/hatelist/internal/model"
	"github.com/udisondev/hatelist/internal/world"
)

func creature(name string, kind model.Kind, x, y, z int32) *model.Creature {
	return model.NewCreature(model.Handle{Index: uint32(len(name)), Gen: 1}, name, kind, model.NewLocation(x, y, z, 0))
}

func TestManager_InCombatRange(t *testing.T) {
	mgr := NewManager(config.DefaultCombat())
	npc := creature("npc", model.KindNPC, 0, 0, 0)

	tests := []struct {
		name   string
		target *model.Creature
		opts   *hate.AttackOptions
		want   bool
	}{
		{"edge of reach", creature("edge", model.KindPlayer, 60, 80, 0), nil, true},
		{"just outside", creature("outside", model.KindPlayer, 61, 80, 0), nil, false},
		{"too far below", creature("below", model.KindPlayer, 10, 0, -700), nil, false},
		{"within z tolerance", creature("ledge", model.KindPlayer, 10, 0, 500), nil, true},
		{"reduced reach", creature("half", model.KindPlayer, 60, 0, 0), &hate.AttackOptions{RangePercent: 50}, false},
		{"extended reach", creature("long", model.KindPlayer, 150, 0, 0), &hate.AttackOptions{RangePercent: 200}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mgr.InCombatRange(npc, tt.target, tt.opts))
		})
	}

	assert.False(t, mgr.InCombatRange(npc, nil, nil))
}

func TestManager_ResolveAttackRound(t *testing.T) {
	mgr := NewManager(config.DefaultCombat())
	var hits []HitResult
	mgr.SetHitObserver(func(r HitResult) { hits = append(hits, r) })

	npc := creature("npc", model.KindNPC, 0, 0, 0)
	tank := creature("tank", model.KindPlayer, 5, 0, 0)

	mgr.ResolveAttackRound(npc, tank, nil)
	assert.Equal(t, int64(90), tank.HP())

	mgr.ResolveAttackRound(npc, tank, &hate.AttackOptions{DamagePercent: 200})
	assert.Equal(t, int64(70), tank.HP())

	tank.Set(model.DivineAura)
	mgr.ResolveAttackRound(npc, tank, nil)
	assert.Equal(t, int64(70), tank.HP())

	require.Len(t, hits, 3)
	assert.Equal(t, int64(10), hits[0].Damage)
	assert.Equal(t, int64(20), hits[1].Damage)
	assert.True(t, hits[2].Miss)
}

func TestManager_DistancePowerModifier(t *testing.T) {
	tests := []struct {
		name      string
		abilityID int32
		distSq    float64
		want      int64
	}{
		{"point blank", 1, 0, 40},
		{"half way", 1, 150 * 150, 30},
		{"at reference range", 1, 300 * 300, 20},
		{"floored beyond range", 1, 900 * 900, 20},
		{"no falloff", 2, 300 * 300, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := NewManager(config.DefaultCombat())
			npc := creature("npc", model.KindNPC, 0, 0, 0)
			target := creature("target", model.KindPlayer, 0, 0, 0)

			mgr.ApplyDistancePowerModifier(tt.abilityID, target, tt.distSq, npc)
			_, pending := mgr.PowerModifier(target.Handle())
			assert.True(t, pending)

			mgr.ApplyAbilityEffect(tt.abilityID, npc, target)
			assert.Equal(t, 100-tt.want, target.HP())

			_, pending = mgr.PowerModifier(target.Handle())
			assert.False(t, pending, "modifier is consumed")
		})
	}
}

func TestManager_UnknownAbility(t *testing.T) {
	mgr := NewManager(config.DefaultCombat())
	npc := creature("npc", model.KindNPC, 0, 0, 0)
	target := creature("target", model.KindPlayer, 0, 0, 0)

	assert.Zero(t, mgr.AbilityMinRange(99))
	assert.Equal(t, float64(50), mgr.AbilityMinRange(2))

	mgr.ApplyDistancePowerModifier(99, target, 100, npc)
	mgr.ApplyAbilityEffect(99, npc, target)
	assert.Equal(t, int64(100), target.HP())
}

func TestManager_DamageKills(t *testing.T) {
	mgr := NewManager(config.DefaultCombat())
	npc := creature("npc", model.KindNPC, 0, 0, 0)
	victim := creature("victim", model.KindPlayer, 0, 0, 0)

	var calls []bool
	mgr.SetDamageFunc(func(attacker, target hate.Mob, amount int64, killed bool) {
		assert.Equal(t, "npc", attacker.Name())
		assert.Equal(t, "victim", target.Name())
		calls = append(calls, killed)
	})

	mgr.Damage(npc, victim, 60)
	mgr.Damage(npc, victim, 60)
	mgr.Damage(npc, victim, 60) // уже мёртв
	mgr.Damage(npc, victim, 0)

	assert.Equal(t, []bool{false, true}, calls)
	assert.True(t, victim.Has(model.Dead))
	assert.Zero(t, victim.HP())
}

func TestManager_HateListBroadcast(t *testing.T) {
	reg := world.NewRegistry()
	owner := reg.Spawn("a_fire_beetle", model.KindNPC, model.NewLocation(0, 0, 0, 0))
	near := reg.Spawn("Near", model.KindPlayer, model.NewLocation(100, 0, 0, 0))
	far := reg.Spawn("Far", model.KindPlayer, model.NewLocation(600, 0, 0, 0))

	mgr := NewManager(config.DefaultCombat())
	env := hate.NewEnv(reg.Resolver(), config.DefaultAggro())
	env.Combat = mgr

	list := hate.NewList(owner, env)
	list.AddOrUpdate(near, 10, 0, false, true)
	list.AddOrUpdate(far, 10, 0, false, true)

	list.BroadcastSpellCast(owner, 1, 1000, nil)

	assert.Equal(t, int64(67), near.HP(), "1 - 0.5*100/300 of 40 rounds to 33")
	assert.Equal(t, int64(80), far.HP())
}

func TestManager_RampageThroughHateList(t *testing.T) {
	reg := world.NewRegistry()
	owner := reg.Spawn("a_troll", model.KindNPC, model.NewLocation(0, 0, 0, 0))
	tank := reg.Spawn("Tank", model.KindPlayer, model.NewLocation(10, 0, 0, 0))
	healer := reg.Spawn("Healer", model.KindPlayer, model.NewLocation(50, 0, 0, 0))
	archer := reg.Spawn("Archer", model.KindPlayer, model.NewLocation(500, 0, 0, 0))
	healer.SetHP(5, 100)

	mgr := NewManager(config.DefaultCombat())
	env := hate.NewEnv(reg.Resolver(), config.DefaultAggro())
	env.Combat = mgr

	list := hate.NewList(owner, env)
	mgr.SetDamageFunc(func(_, target hate.Mob, _ int64, killed bool) {
		if killed {
			list.Remove(target.Handle())
			reg.Despawn(target.Handle())
		}
	})
	for _, c := range []*model.Creature{tank, healer, archer} {
		list.AddOrUpdate(c, 10, 0, false, true)
	}

	hits := list.AreaAttack(owner, tank, -1, nil)

	assert.Equal(t, 1, hits)
	assert.False(t, list.Contains(healer.Handle()))
	assert.Equal(t, int64(100), tank.HP(), "primary is not part of the rampage")
	assert.Equal(t, int64(100), archer.HP(), "out of melee range")
	assert.Equal(t, 2, list.Len())
}
