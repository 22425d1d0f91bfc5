package hate

import (
	"math"

	"github.com/udisondev/hatelist/internal/model"
)

// critWoundedPercent is the HP threshold below which an attacker counts as
// critically wounded.
const critWoundedPercent = 20

// rank converts stored hate into a comparable score. Frenzied attackers
// outrank every numeric value; negative hate ranks as zero.
func rank(hate int64, frenzied bool) int64 {
	if frenzied {
		return math.MaxInt64
	}
	return max(hate, 0)
}

// TopThreat returns the attacker with the most hate, or nil.
// Frenzied attackers always win; ties go to the earlier entry.
func (l *List) TopThreat(skipMezzed bool) Mob {
	var top Mob
	best := int64(-1)

	for i := range l.entries {
		e := &l.entries[i]
		if !e.live {
			continue
		}
		m, ok := l.env.resolve(e.attacker)
		if !ok {
			continue
		}
		if skipMezzed && m.Has(model.Mezzed) {
			continue
		}
		if r := rank(e.hate, e.frenzied); r > best {
			top, best = m, r
		}
	}
	return top
}

// TopThreatWithAggroModifiers picks the attack target for center.
//
// With the smart aggro rule enabled, stored hate is scaled by situational
// modifiers (seated, current target, melee range, critically wounded).
// Attackers under sanctuary, divine aura, mez or fear are only used when
// nothing else qualifies. If a player or bot is in melee range and the top
// pick cannot tank (not a player, bot, mercenary or AllowedToTank NPC), the
// most hated attacker in melee range is returned instead.
//
// skip, mezzed attackers (with skipMezzed) and attackers failing filter are
// never returned, even when that leaves nothing to pick.
func (l *List) TopThreatWithAggroModifiers(center Mob, skip model.Handle, skipMezzed bool, filter Filter) Mob {
	if center == nil {
		return nil
	}

	rules := l.env.Rules()
	if !rules.SmartAggroList {
		return l.topThreatPlain(skip, skipMezzed, filter)
	}

	var (
		top         Mob
		hate        int64 = -1
		topInRange  Mob
		hateInRange int64 = -1
	)

	for i := range l.entries {
		e := &l.entries[i]
		if !e.live {
			continue
		}
		m, ok := l.env.resolve(e.attacker)
		if !ok {
			continue
		}
		if e.attacker == skip || (skipMezzed && m.Has(model.Mezzed)) {
			continue
		}
		if !filter.Match(m) {
			continue
		}

		if m.Has(model.Sanctuary) {
			if hate == -1 {
				top, hate = m, 1
			}
			continue
		}
		if m.Has(model.DivineAura) || m.Has(model.Mezzed) || m.Has(model.Feared) {
			if hate == -1 {
				top, hate = m, 0
			}
			continue
		}

		current := max(e.hate, 0)
		var mod int64

		if center.Target() == e.attacker {
			mod += rules.CurrentTargetAggroMod
		}
		if isPlayer(m) && m.Has(model.Sitting) {
			mod += rules.SittingAggroMod
		}
		if rules.MeleeRangeAggroMod != 0 && l.env.inMeleeRange(center, m) {
			mod += rules.MeleeRangeAggroMod
			if isPlayerOrBot(m) {
				if r := rank(current, e.frenzied); r > hateInRange {
					topInRange, hateInRange = m, r
				}
			}
		}
		if m.MaxHP() != 0 && m.HPPercent() < critWoundedPercent {
			mod += rules.CriticallyWoundedAggroMod
		}

		if mod != 0 {
			current += current * mod / 100
		}

		if r := rank(current, e.frenzied); r > hate {
			top, hate = m, r
		}
	}

	if topInRange != nil && top != nil {
		if canHoldAggro(top) {
			return top
		}
		return topInRange
	}
	return top
}

// topThreatPlain ranks by stored hate only.
func (l *List) topThreatPlain(skip model.Handle, skipMezzed bool, filter Filter) Mob {
	var top Mob
	best := int64(-1)

	for i := range l.entries {
		e := &l.entries[i]
		if !e.live {
			continue
		}
		m, ok := l.env.resolve(e.attacker)
		if !ok {
			continue
		}
		if e.attacker == skip || (skipMezzed && m.Has(model.Mezzed)) {
			continue
		}
		if !filter.Match(m) {
			continue
		}
		if r := rank(e.hate, e.frenzied); r > best {
			top, best = m, r
		}
	}
	return top
}

// canHoldAggro reports whether the top pick may keep aggro over a melee-range player.
func canHoldAggro(m Mob) bool {
	return isPlayerBotOrMerc(m) || m.Has(model.AllowedToTank)
}

// currentTarget resolves who's current target.
func (l *List) currentTarget(who Mob) Mob {
	t := who.Target()
	if t.IsZero() {
		return nil
	}
	m, ok := l.env.resolve(t)
	if !ok {
		return nil
	}
	return m
}

// ClosestTarget returns the attacker nearest to hater (horizontal distance).
// If nothing qualifies (NPC hater only), or the nearest attacker is under
// divine aura, hater's current target is returned instead. Equidistant
// attackers resolve to the later entry.
func (l *List) ClosestTarget(hater Mob, skipMezzed bool, filter Filter) Mob {
	if hater == nil {
		return nil
	}

	var closest Mob
	best := int64(math.MaxInt64)
	from := hater.Location()

	for i := range l.entries {
		e := &l.entries[i]
		if !e.live {
			continue
		}
		m, ok := l.env.resolve(e.attacker)
		if !ok {
			continue
		}
		if skipMezzed && m.Has(model.Mezzed) {
			continue
		}
		if !filter.Match(m) {
			continue
		}
		if d := from.DistanceSquaredNoZ(m.Location()); d <= best {
			closest, best = m, d
		}
	}

	if (closest == nil && hater.Kind() == model.KindNPC) ||
		(closest != nil && closest.Has(model.DivineAura)) {
		return l.currentTarget(hater)
	}
	return closest
}

// RandomTarget returns a uniformly random attacker matching filter, or nil.
func (l *List) RandomTarget(filter Filter) Mob {
	candidates := l.filtered(filter, 0)
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	default:
		return candidates[l.env.intN(len(candidates))]
	}
}

// HighestDamageAggregate returns the attacker with the most damage dealt to
// hater, crediting raid damage first, then group damage, then the
// attacker's own damage. Later attackers win ties.
func (l *List) HighestDamageAggregate(hater Mob) Mob {
	if hater == nil {
		return nil
	}

	var top Mob
	var best uint64

	for i := range l.entries {
		e := &l.entries[i]
		if !e.live {
			continue
		}
		m, ok := l.env.resolve(e.attacker)
		if !ok {
			continue
		}
		if dmg := l.aggregateDamage(m, e.damage, hater.Handle()); dmg >= best {
			top, best = m, dmg
		}
	}
	return top
}

func (l *List) aggregateDamage(m Mob, own uint64, hater model.Handle) uint64 {
	if l.env.Parties == nil {
		return own
	}
	if isPlayerOrBot(m) {
		if dmg, ok := l.env.Parties.RaidDamageTo(m.Handle(), hater); ok {
			return dmg
		}
	}
	if dmg, ok := l.env.Parties.GroupDamageTo(m.Handle(), hater); ok {
		return dmg
	}
	return own
}

// FleeingTarget returns a feared attacker that is free to run (not rooted,
// mezzed or stunned) within maxRange of center (0 = unlimited). With
// firstOnly the first match is returned, otherwise the farthest one.
func (l *List) FleeingTarget(center Mob, maxRange float64, firstOnly bool) Mob {
	if center == nil {
		return nil
	}

	var fleeing Mob
	farthest := int64(-1)
	from := center.Location()
	range2 := maxRange * maxRange

	for i := range l.entries {
		e := &l.entries[i]
		if !e.live {
			continue
		}
		m, ok := l.env.resolve(e.attacker)
		if !ok {
			continue
		}
		if !m.Has(model.Feared) || m.Has(model.Rooted) || m.Has(model.Mezzed) || m.Has(model.Stunned) {
			continue
		}

		d := from.DistanceSquared(m.Location())
		if maxRange > 0 && float64(d) > range2 {
			continue
		}
		if firstOnly {
			return m
		}
		if d > farthest {
			fleeing, farthest = m, d
		}
	}
	return fleeing
}

// ThreatRatio returns other's hate as a percentage of top's, clamped to
// [1, 999]. Returns 0 when other has no hate and 999 when top has none.
func (l *List) ThreatRatio(top, other model.Handle) int {
	oi, ok := l.index[other]
	if !ok || l.entries[oi].hate < 1 {
		return 0
	}

	ti, ok := l.index[top]
	if !ok || l.entries[ti].hate < 1 {
		// top should always outrank other; callers asking the other way round get the ceiling
		return 999
	}

	ratio := l.entries[oi].hate * 100 / l.entries[ti].hate
	return int(min(max(ratio, 1), 999))
}

// CountByCategory returns the number of attackers matching filter.
func (l *List) CountByCategory(filter Filter) int {
	if filter == FilterAll {
		return l.Len()
	}
	return len(l.filtered(filter, 0))
}

// PetCount returns the number of NPC pets and swarm pets on the list.
func (l *List) PetCount() int {
	count := 0
	for _, m := range l.resolved() {
		if m.Kind() == model.KindNPC && (!m.Owner().IsZero() || m.IsSwarmPet()) {
			count++
		}
	}
	return count
}

// Filtered returns handles of attackers matching filter within distance
// (horizontal, from the owner; 0 = unlimited), in list order.
func (l *List) Filtered(filter Filter, distance uint32) []model.Handle {
	mobs := l.filtered(filter, distance)
	out := make([]model.Handle, len(mobs))
	for i, m := range mobs {
		out[i] = m.Handle()
	}
	return out
}

func (l *List) filtered(filter Filter, distance uint32) []Mob {
	out := make([]Mob, 0, len(l.index))
	from := l.owner.Location()
	dist2 := int64(distance) * int64(distance)

	for i := range l.entries {
		e := &l.entries[i]
		if !e.live {
			continue
		}
		m, ok := l.env.resolve(e.attacker)
		if !ok {
			continue
		}
		if distance != 0 && from.DistanceSquaredNoZ(m.Location()) > dist2 {
			continue
		}
		if !filter.Match(m) {
			continue
		}
		out = append(out, m)
	}
	return out
}
