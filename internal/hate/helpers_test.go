package hate

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/udisondev/hatelist/internal/config"
	"github.com/udisondev/hatelist/internal/model"
)

// testZone is a minimal creature registry with recording collaborators.
type testZone struct {
	t    *testing.T
	mobs map[model.Handle]*model.Creature
	next uint32
	now  time.Time

	env     *Env
	hooks   *recordingHooks
	combat  *fakeCombat
	parties *fakeParties
}

func newTestZone(t *testing.T) *testZone {
	t.Helper()
	z := &testZone{
		t:       t,
		mobs:    make(map[model.Handle]*model.Creature),
		next:    1,
		now:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		hooks:   &recordingHooks{},
		parties: newFakeParties(),
	}
	z.combat = &fakeCombat{zone: z, meleeRange: 10}

	z.env = NewEnv(func(h model.Handle) (Mob, bool) {
		c, ok := z.mobs[h]
		if !ok {
			return nil, false
		}
		return c, true
	}, config.DefaultAggro())
	z.env.Hooks = z.hooks
	z.env.Combat = z.combat
	z.env.Parties = z.parties
	z.env.Now = func() time.Time { return z.now }
	z.env.Rand = rand.New(rand.NewPCG(1, 2))
	return z
}

func (z *testZone) spawn(name string, kind model.Kind, x, y int32) *model.Creature {
	h := model.Handle{Index: z.next, Gen: 1}
	z.next++
	c := model.NewCreature(h, name, kind, model.NewLocation(x, y, 0, 0))
	z.mobs[h] = c
	return c
}

func (z *testZone) despawn(c *model.Creature) {
	delete(z.mobs, c.Handle())
}

func (z *testZone) advance(d time.Duration) {
	z.now = z.now.Add(d)
}

// newOwner spawns an NPC at the origin and returns it with an empty list.
func (z *testZone) newOwner() (*model.Creature, *List) {
	npc := z.spawn("a_gnoll", model.KindNPC, 0, 0)
	npc.SetTemplateID(1001)
	return npc, NewList(npc, z.env)
}

func (z *testZone) setRules(mutate func(*config.Aggro)) {
	r := config.DefaultAggro()
	mutate(&r)
	z.env.SetRules(r)
}

type hookEvent struct {
	owner, attacker string
	entered         bool
}

type recordingHooks struct {
	events   []hookEvent
	onLeft   func(owner, attacker Mob)
	onEnters func(owner, attacker Mob)
}

func (r *recordingHooks) EnteredHateList(owner, attacker Mob) {
	r.events = append(r.events, hookEvent{owner.Name(), attacker.Name(), true})
	if r.onEnters != nil {
		r.onEnters(owner, attacker)
	}
}

func (r *recordingHooks) LeftHateList(owner, attacker Mob) {
	r.events = append(r.events, hookEvent{owner.Name(), attacker.Name(), false})
	if r.onLeft != nil {
		r.onLeft(owner, attacker)
	}
}

func (r *recordingHooks) count(attacker string, entered bool) int {
	n := 0
	for _, e := range r.events {
		if e.attacker == attacker && e.entered == entered {
			n++
		}
	}
	return n
}

type fakeCombat struct {
	zone       *testZone
	meleeRange float64

	attacks  []string
	casts    []string
	powerMod map[string]float64
	damage   map[string]int64
	onAttack func(target Mob)
}

func (f *fakeCombat) InCombatRange(attacker, target Mob, _ *AttackOptions) bool {
	d := attacker.Location().DistanceSquaredNoZ(target.Location())
	return float64(d) <= f.meleeRange*f.meleeRange
}

func (f *fakeCombat) ResolveAttackRound(attacker, target Mob, _ *AttackOptions) {
	f.attacks = append(f.attacks, target.Name())
	if f.onAttack != nil {
		f.onAttack(target)
	}
}

func (f *fakeCombat) AbilityMinRange(abilityID int32) float64 {
	if abilityID == 2 {
		return 5
	}
	return 0
}

func (f *fakeCombat) ApplyDistancePowerModifier(_ int32, target Mob, distSq float64, _ Mob) {
	if f.powerMod == nil {
		f.powerMod = make(map[string]float64)
	}
	f.powerMod[target.Name()] = distSq
}

func (f *fakeCombat) ApplyAbilityEffect(abilityID int32, _, target Mob) {
	f.casts = append(f.casts, fmt.Sprintf("%d:%s", abilityID, target.Name()))
}

func (f *fakeCombat) Damage(_, target Mob, amount int64) {
	if f.damage == nil {
		f.damage = make(map[string]int64)
	}
	f.damage[target.Name()] += amount
}

type fakeParties struct {
	raid  map[model.Handle]uint64
	group map[model.Handle]uint64
}

func newFakeParties() *fakeParties {
	return &fakeParties{
		raid:  make(map[model.Handle]uint64),
		group: make(map[model.Handle]uint64),
	}
}

func (p *fakeParties) RaidDamageTo(member, _ model.Handle) (uint64, bool) {
	d, ok := p.raid[member]
	return d, ok
}

func (p *fakeParties) GroupDamageTo(member, _ model.Handle) (uint64, bool) {
	d, ok := p.group[member]
	return d, ok
}

type factionCall struct {
	player    string
	factionID int32
	value     int32
	levelID   int64
	lineage   [3]int32
}

type fakeFactions struct {
	calls []factionCall
}

func (f *fakeFactions) RewardFaction(player Mob, factionID, value int32) {
	f.calls = append(f.calls, factionCall{player: player.Name(), factionID: factionID, value: value})
}

func (f *fakeFactions) SetFactionLevel(player Mob, levelID int64, class, race, deity int32) {
	f.calls = append(f.calls, factionCall{
		player:  player.Name(),
		levelID: levelID,
		lineage: [3]int32{class, race, deity},
	})
}

func names(mobs []Mob) []string {
	out := make([]string, len(mobs))
	for i, m := range mobs {
		out[i] = m.Name()
	}
	return out
}

func nameOf(m Mob) string {
	if m == nil {
		return "<nil>"
	}
	return m.Name()
}
