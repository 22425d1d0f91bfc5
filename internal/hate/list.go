package hate

import (
	"log/slog"
	"time"

	"github.com/udisondev/hatelist/internal/model"
)

// entry tracks hate and damage from a single attacker.
type entry struct {
	attacker     model.Handle
	hate         int64
	damage       uint64
	frenzied     bool
	oorCount     uint8 // consecutive out-of-range sweeps
	lastModified time.Time
	live         bool
}

func newEntry(attacker model.Handle, hate, damage int64, frenzied bool, now time.Time) entry {
	if attacker.IsZero() {
		panic("hate: entry with zero attacker handle")
	}
	return entry{
		attacker:     attacker,
		hate:         hate,
		damage:       uint64(max(damage, 0)),
		frenzied:     frenzied,
		lastModified: now,
		live:         true,
	}
}

// List is the hate list of one NPC.
//
// Entries live in an arena slice in insertion order. Removal marks the slot
// dead and drops it from the index; dead slots are compacted away only when
// no iteration is in progress, so hooks and combat callbacks may remove
// entries while the list is being walked.
//
// Not safe for concurrent use: a list belongs to its zone's tick goroutine.
type List struct {
	owner Mob
	env   *Env

	entries []entry
	index   map[model.Handle]int // attacker → slot in entries
	dead    int                  // dead slots awaiting compaction
	walking int                  // iteration depth; compaction is deferred while > 0
}

// NewList creates an empty hate list for owner.
func NewList(owner Mob, env *Env) *List {
	return &List{
		owner: owner,
		env:   env,
		index: make(map[model.Handle]int),
	}
}

// Owner returns the NPC this list belongs to.
func (l *List) Owner() Mob {
	return l.owner
}

// Resolve looks up a creature through the zone resolver.
func (l *List) Resolve(h model.Handle) (Mob, bool) {
	return l.env.resolve(h)
}

// Len returns the number of attackers on the list.
func (l *List) Len() int {
	return len(l.index)
}

// IsEmpty returns true if the list has no attackers.
func (l *List) IsEmpty() bool {
	return len(l.index) == 0
}

// Contains reports whether attacker is on the list.
func (l *List) Contains(attacker model.Handle) bool {
	_, ok := l.index[attacker]
	return ok
}

// HateAmount returns stored hate for attacker (0 if absent).
func (l *List) HateAmount(attacker model.Handle) int64 {
	if i, ok := l.index[attacker]; ok {
		return l.entries[i].hate
	}
	return 0
}

// DamageAmount returns accumulated damage from attacker (0 if absent).
func (l *List) DamageAmount(attacker model.Handle) uint64 {
	if i, ok := l.index[attacker]; ok {
		return l.entries[i].damage
	}
	return 0
}

// AddOrUpdate adds hate and damage for attacker. An existing entry
// accumulates both values, takes the new frenzy flag and refreshes its
// timestamp. A missing entry is created only when createIfAbsent is set.
// Dead attackers and corpses are ignored. Negative damage never reduces
// stored damage.
func (l *List) AddOrUpdate(attacker Mob, hate, damage int64, frenzied, createIfAbsent bool) {
	if attacker == nil {
		return
	}
	if attacker.Has(model.Corpse) || attacker.Has(model.Dead) {
		return
	}

	h := attacker.Handle()
	now := l.env.now()

	if i, ok := l.index[h]; ok {
		e := &l.entries[i]
		e.damage += uint64(max(damage, 0))
		e.hate += hate
		e.frenzied = frenzied
		e.lastModified = now

		if IsDebugEnabled() {
			slog.Debug("hate list updated",
				"owner", l.owner.Name(),
				"attacker", attacker.Name(),
				"hateDelta", hate,
				"damageDelta", damage,
				"hate", e.hate,
				"damage", e.damage)
		}
		return
	}

	if !createIfAbsent {
		return
	}

	l.entries = append(l.entries, newEntry(h, hate, damage, frenzied, now))
	l.index[h] = len(l.entries) - 1

	if IsDebugEnabled() {
		slog.Debug("hate list entry added",
			"owner", l.owner.Name(),
			"attacker", attacker.Name(),
			"hate", hate,
			"damage", damage,
			"frenzied", frenzied)
	}

	l.entered(attacker)
}

// SetHateAmount overwrites hate and damage for an attacker already on the
// list. Non-positive values leave the stored value untouched.
func (l *List) SetHateAmount(attacker model.Handle, hate int64, damage uint64) {
	i, ok := l.index[attacker]
	if !ok {
		return
	}
	e := &l.entries[i]
	if damage > 0 {
		e.damage = damage
	}
	if hate > 0 {
		e.hate = hate
	}
	e.lastModified = l.env.now()
}

// Remove drops attacker from the list. Returns false if it was not listed.
// Side effects fire only if the attacker is still alive in the registry.
func (l *List) Remove(attacker model.Handle) bool {
	i, ok := l.index[attacker]
	if !ok {
		return false
	}
	m, _ := l.env.resolve(attacker)
	l.removeAt(i, m)
	return true
}

// Clear removes every attacker. With npcOnly set, attackers controlled by a
// player, bot or mercenary (or pets of one) are kept.
func (l *List) Clear(npcOnly bool) {
	l.walking++
	removed := 0
	for i := 0; i < len(l.entries); i++ {
		if !l.entries[i].live {
			continue
		}
		m, ok := l.env.resolve(l.entries[i].attacker)
		if npcOnly && ok && l.keptOnNpcWipe(m) {
			continue
		}
		l.removeAt(i, m)
		removed++
	}
	l.walking--
	l.maybeCompact()

	if removed > 0 && IsDebugEnabled() {
		slog.Debug("hate list cleared",
			"owner", l.owner.Name(),
			"npcOnly", npcOnly,
			"removed", removed,
			"remaining", l.Len())
	}
}

func (l *List) keptOnNpcWipe(m Mob) bool {
	if isPlayerBotOrMerc(m) {
		return true
	}
	owner, ok := l.env.resolve(m.Owner())
	return ok && isPlayerBotOrMerc(owner)
}

// ExpireStale drops attackers not touched for longer than maxAge, and
// attackers found farther than maxDistance (horizontal) on two consecutive
// sweeps. Returning into range resets the strike count. Entries whose
// attacker no longer exists are purged without side effects.
// Returns the number of removed entries.
func (l *List) ExpireStale(maxAge time.Duration, maxDistance float64) int {
	now := l.env.now()
	dist2 := maxDistance * maxDistance
	ownerLoc := l.owner.Location()

	l.walking++
	removed := 0
	for i := 0; i < len(l.entries); i++ {
		e := &l.entries[i]
		if !e.live {
			continue
		}

		m, ok := l.env.resolve(e.attacker)
		if !ok {
			l.removeAt(i, nil)
			removed++
			continue
		}

		remove := now.Sub(e.lastModified) > maxAge

		if !remove && float64(ownerLoc.DistanceSquaredNoZ(m.Location())) > dist2 {
			e.oorCount++
			if e.oorCount >= 2 {
				remove = true
			}
		} else if e.oorCount != 0 {
			e.oorCount = 0
		}

		if remove {
			l.removeAt(i, m)
			removed++
		}
	}
	l.walking--
	l.maybeCompact()

	if removed > 0 {
		slog.Debug("stale hate entries removed",
			"owner", l.owner.Name(),
			"removed", removed,
			"remaining", l.Len())
	}
	return removed
}

// ApplyFactionConsequence adjusts faction for every player on the list.
// With both factionID and value set a direct reward is applied, otherwise
// the level-based faction is recomputed from the player's lineage.
func (l *List) ApplyFactionConsequence(levelID int64, factionID, value int32) {
	if levelID <= 0 && factionID <= 0 && value == 0 {
		return
	}
	if l.env.Factions == nil {
		return
	}

	for _, m := range l.resolved() {
		if !isPlayer(m) {
			continue
		}
		if factionID != 0 && value != 0 {
			l.env.Factions.RewardFaction(m, factionID, value)
		} else {
			l.env.Factions.SetFactionLevel(m, levelID, m.BaseClass(), m.BaseRace(), m.Deity())
		}
	}
}

// Compact drops dead slots. No-op while the list is being walked.
// The AI tick manager calls it between ticks.
func (l *List) Compact() {
	if l.walking > 0 || l.dead == 0 {
		return
	}

	n := 0
	for i := range l.entries {
		if !l.entries[i].live {
			continue
		}
		l.entries[n] = l.entries[i]
		l.index[l.entries[n].attacker] = n
		n++
	}
	clear(l.entries[n:])
	l.entries = l.entries[:n]
	l.dead = 0
}

// removeAt kills slot i and runs removal side effects when m is non-nil.
func (l *List) removeAt(i int, m Mob) {
	e := &l.entries[i]
	delete(l.index, e.attacker)
	e.live = false
	l.dead++

	if m != nil {
		l.left(m)
	}
	l.maybeCompact()
}

// maybeCompact compacts once dead slots outnumber live ones.
func (l *List) maybeCompact() {
	if l.walking == 0 && l.dead > len(l.index) {
		l.Compact()
	}
}

func (l *List) entered(m Mob) {
	if isPlayer(m) {
		m.IncrementAggroCount(l.owner.Has(model.RaidTarget))
		m.AddXTarget(l.owner.Handle())
	}
	if l.env.Hooks != nil {
		l.env.Hooks.EnteredHateList(l.owner, m)
	}
}

func (l *List) left(m Mob) {
	if isPlayer(m) {
		m.DecrementAggroCount()
		m.RemoveXTarget(l.owner.Handle())
	}
	if l.env.Hooks != nil {
		l.env.Hooks.LeftHateList(l.owner, m)
	}
}

// resolved snapshots live attackers in list order.
func (l *List) resolved() []Mob {
	out := make([]Mob, 0, len(l.index))
	for i := range l.entries {
		if !l.entries[i].live {
			continue
		}
		if m, ok := l.env.resolve(l.entries[i].attacker); ok {
			out = append(out, m)
		}
	}
	return out
}
