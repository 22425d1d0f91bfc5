package combat

import (
	"log/slog"
	"math"
	"sync"

	"github.com/udisondev/hatelist/internal/config"
	"github.com/udisondev/hatelist/internal/hate"
	"github.com/udisondev/hatelist/internal/model"
)

// minFalloffPower is the power left at the falloff reference distance and beyond.
const minFalloffPower = 0.5

// Damageable is implemented by creatures that can lose hit points.
type Damageable interface {
	TakeDamage(amount int64) bool
}

// HitResult содержит результат одного удара для наблюдения в тестах.
type HitResult struct {
	Attacker model.Handle
	Target   model.Handle
	Damage   int64
	Miss     bool
	Killed   bool
}

// DamageFunc is called after damage lands. The zone uses it to add hate
// to the target's list and to clean up the dead.
type DamageFunc func(attacker, target hate.Mob, amount int64, killed bool)

// Manager resolves attacks and abilities started from hate lists.
// Ability power modifiers computed while collecting targets are held per
// target until the ability lands.
type Manager struct {
	cfg config.Combat

	onDamage    DamageFunc
	hitObserver func(HitResult)

	mu        sync.Mutex
	powerMods map[model.Handle]float64
}

// NewManager creates a combat manager with the given settings.
func NewManager(cfg config.Combat) *Manager {
	return &Manager{
		cfg:       cfg,
		powerMods: make(map[model.Handle]float64),
	}
}

// SetDamageFunc sets the callback invoked after damage lands.
func (m *Manager) SetDamageFunc(fn DamageFunc) {
	m.onDamage = fn
}

// SetHitObserver sets callback for observing attack results (for tests).
func (m *Manager) SetHitObserver(fn func(HitResult)) {
	m.hitObserver = fn
}

// InCombatRange reports whether target is within melee reach of attacker:
// horizontal distance up to MeleeRange (scaled by RangePercent) and a
// vertical gap up to MeleeZTolerance.
func (m *Manager) InCombatRange(attacker, target hate.Mob, opts *hate.AttackOptions) bool {
	if attacker == nil || target == nil {
		return false
	}

	reach := m.cfg.MeleeRange
	if opts != nil && opts.RangePercent > 0 {
		reach = reach * float64(opts.RangePercent) / 100
	}

	from, to := attacker.Location(), target.Location()
	dz := int64(from.Z) - int64(to.Z)
	if m.cfg.MeleeZTolerance > 0 && max(dz, -dz) > int64(m.cfg.MeleeZTolerance) {
		return false
	}
	return float64(from.DistanceSquaredNoZ(to)) <= reach*reach
}

// ResolveAttackRound performs one melee round. Targets under divine aura
// are missed.
func (m *Manager) ResolveAttackRound(attacker, target hate.Mob, opts *hate.AttackOptions) {
	if attacker == nil || target == nil {
		return
	}

	if target.Has(model.DivineAura) {
		m.observe(HitResult{Attacker: attacker.Handle(), Target: target.Handle(), Miss: true})
		return
	}

	dmg := m.cfg.MeleeDamage
	if opts != nil && opts.DamagePercent > 0 {
		dmg = dmg * int64(opts.DamagePercent) / 100
	}
	m.Damage(attacker, target, dmg)
}

// AbilityMinRange returns the minimum range of an ability (0 if unknown).
func (m *Manager) AbilityMinRange(abilityID int32) float64 {
	a, ok := m.cfg.AbilityByID(abilityID)
	if !ok {
		return 0
	}
	return a.MinRange
}

// ApplyDistancePowerModifier records the power of abilityID against target
// for a target distSq away. Falloff abilities lose power linearly down to
// half at their reference range.
func (m *Manager) ApplyDistancePowerModifier(abilityID int32, target hate.Mob, distSq float64, _ hate.Mob) {
	a, ok := m.cfg.AbilityByID(abilityID)
	if !ok || target == nil {
		return
	}

	power := 1.0
	if a.Falloff && a.Range > 0 && distSq > 0 {
		power = 1 - (1-minFalloffPower)*math.Sqrt(distSq)/a.Range
		power = max(power, minFalloffPower)
	}

	m.mu.Lock()
	m.powerMods[target.Handle()] = power
	m.mu.Unlock()
}

// ApplyAbilityEffect lands abilityID on target, consuming any pending
// power modifier.
func (m *Manager) ApplyAbilityEffect(abilityID int32, caster, target hate.Mob) {
	a, ok := m.cfg.AbilityByID(abilityID)
	if !ok || target == nil {
		slog.Warn("unknown ability", "abilityID", abilityID)
		return
	}

	m.mu.Lock()
	power, ok := m.powerMods[target.Handle()]
	delete(m.powerMods, target.Handle())
	m.mu.Unlock()
	if !ok {
		power = 1
	}

	m.Damage(caster, target, int64(math.Round(float64(a.Damage)*power)))
}

// PowerModifier returns the pending power modifier for target, if any.
func (m *Manager) PowerModifier(target model.Handle) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.powerMods[target]
	return p, ok
}

// Damage applies amount to target. Non-positive amounts and dead targets
// are ignored.
func (m *Manager) Damage(attacker, target hate.Mob, amount int64) {
	if target == nil || amount <= 0 || target.Has(model.Dead) {
		return
	}

	var killed bool
	if d, ok := target.(Damageable); ok {
		killed = d.TakeDamage(amount)
	}

	res := HitResult{Target: target.Handle(), Damage: amount, Killed: killed}
	if attacker != nil {
		res.Attacker = attacker.Handle()
	}
	m.observe(res)

	if killed {
		slog.Info("creature killed",
			"target", target.Name(),
			"killer", nameOf(attacker))
	}

	if m.onDamage != nil {
		m.onDamage(attacker, target, amount, killed)
	}
}

func (m *Manager) observe(r HitResult) {
	if m.hitObserver != nil {
		m.hitObserver(r)
	}
}

func nameOf(m hate.Mob) string {
	if m == nil {
		return ""
	}
	return m.Name()
}
