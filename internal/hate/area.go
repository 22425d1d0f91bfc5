package hate

import (
	"log/slog"

	"github.com/udisondev/hatelist/internal/model"
)

// Area operations run side effects (attacks, abilities, damage) that can
// kill attackers and mutate this list. They snapshot attacker handles first
// and resolve each handle again right before acting on it.

// AreaAttack performs a rampage: caster attacks up to maxExtra attackers in
// combat range other than itself and primary (maxExtra < 0 means no limit).
// If the list holds a single attacker only primary is attacked.
// Returns the number of attack rounds performed.
func (l *List) AreaAttack(caster, primary Mob, maxExtra int, opts *AttackOptions) int {
	if caster == nil || primary == nil || l.env.Combat == nil {
		return 0
	}

	if l.Len() == 1 {
		l.env.Combat.ResolveAttackRound(caster, primary, opts)
		return 1
	}

	rules := l.env.Rules()
	ids := make([]model.Handle, 0, l.Len())

	for i := range l.entries {
		if maxExtra >= 0 && len(ids) >= maxExtra {
			break
		}
		e := &l.entries[i]
		if !e.live || e.attacker == caster.Handle() || e.attacker == primary.Handle() {
			continue
		}
		m, ok := l.env.resolve(e.attacker)
		if !ok || !l.env.Combat.InCombatRange(caster, m, opts) {
			continue
		}
		if rules.PetRampageImmunity && m.Has(model.AggroImmune) {
			if owner, ok := l.env.resolve(m.Owner()); ok && isPlayer(owner) {
				continue
			}
		}
		ids = append(ids, e.attacker)
	}

	hits := 0
	for _, h := range ids {
		m, ok := l.env.resolve(h)
		if !ok || m.Has(model.Dead) {
			continue
		}
		l.env.Combat.ResolveAttackRound(caster, m, opts)
		hits++
	}

	if IsDebugEnabled() {
		slog.Debug("area attack",
			"caster", caster.Name(),
			"primary", primary.Name(),
			"candidates", len(ids),
			"hits", hits)
	}
	return hits
}

// BroadcastSpellCast casts abilityID from caster on every attacker within
// rng of center (center defaults to caster; rng 0 means unlimited) and not
// closer than the ability's minimum range. Distance power modifiers are
// applied while collecting targets, the ability itself afterwards.
func (l *List) BroadcastSpellCast(caster Mob, abilityID int32, rng float64, center Mob) {
	if caster == nil || l.env.Combat == nil {
		return
	}
	if center == nil {
		center = caster
	}

	from := center.Location()
	range2 := rng * rng
	minRange := l.env.Combat.AbilityMinRange(abilityID)
	minRange2 := minRange * minRange

	ids := make([]model.Handle, 0, l.Len())
	for i := range l.entries {
		e := &l.entries[i]
		if !e.live {
			continue
		}
		m, ok := l.env.resolve(e.attacker)
		if !ok {
			continue
		}

		if rng > 0 {
			d := float64(from.DistanceSquared(m.Location()))
			if d > range2 || d < minRange2 {
				continue
			}
			ids = append(ids, e.attacker)
			l.env.Combat.ApplyDistancePowerModifier(abilityID, m, d, caster)
		} else {
			ids = append(ids, e.attacker)
			l.env.Combat.ApplyDistancePowerModifier(abilityID, m, 0, caster)
		}
	}

	for _, h := range ids {
		if m, ok := l.env.resolve(h); ok {
			l.env.Combat.ApplyAbilityEffect(abilityID, caster, m)
		}
	}

	if IsDebugEnabled() {
		slog.Debug("hate list spell cast",
			"caster", caster.Name(),
			"abilityID", abilityID,
			"range", rng,
			"targets", len(ids))
	}
}

// DamageAll damages every attacker matching filter within distance of the
// owner (0 = unlimited). With percentage set, amount is a percent of each
// attacker's max HP, clamped to [1, 100].
func (l *List) DamageAll(amount int64, distance uint32, filter Filter, percentage bool) {
	if amount <= 0 || l.env.Combat == nil {
		return
	}

	for _, h := range l.Filtered(filter, distance) {
		m, ok := l.env.resolve(h)
		if !ok {
			continue
		}
		total := amount
		if percentage {
			pct := min(max(amount, 1), 100)
			total = (m.MaxHP() / 100) * pct
		}
		l.env.Combat.Damage(l.owner, m, total)
	}
}
