package faction

import (
	"log/slog"
	"sync"

	"github.com/udisondev/hatelist/internal/hate"
	"github.com/udisondev/hatelist/internal/model"
)

// Standing bounds.
const (
	MinStanding int32 = -2000
	MaxStanding int32 = 2000
)

// Hit is one faction change applied when an NPC of a faction level dies.
type Hit struct {
	FactionID int32
	Value     int32
}

// Mods are starting standing modifiers for a faction keyed by lineage.
type Mods struct {
	Class map[int32]int32
	Race  map[int32]int32
	Deity map[int32]int32
}

func (m Mods) base(class, race, deity int32) int32 {
	return m.Class[class] + m.Race[race] + m.Deity[deity]
}

// Manager keeps player faction standings in memory.
//
// A player's standing with a faction starts from the faction's lineage
// modifiers the first time it is touched and is clamped to
// [MinStanding, MaxStanding] afterwards.
type Manager struct {
	mu        sync.RWMutex
	levels    map[int64][]Hit
	mods      map[int32]Mods
	standings map[model.Handle]map[int32]int32
}

// NewManager creates an empty faction manager.
func NewManager() *Manager {
	return &Manager{
		levels:    make(map[int64][]Hit),
		mods:      make(map[int32]Mods),
		standings: make(map[model.Handle]map[int32]int32),
	}
}

// DefineLevel registers the faction hits of an NPC faction level.
func (m *Manager) DefineLevel(levelID int64, hits []Hit) {
	m.mu.Lock()
	m.levels[levelID] = hits
	m.mu.Unlock()
}

// DefineMods registers starting standing modifiers for a faction.
func (m *Manager) DefineMods(factionID int32, mods Mods) {
	m.mu.Lock()
	m.mods[factionID] = mods
	m.mu.Unlock()
}

// RewardFaction adds value to the player's standing with factionID.
func (m *Manager) RewardFaction(player hate.Mob, factionID, value int32) {
	if player == nil || factionID == 0 {
		return
	}

	m.mu.Lock()
	got := m.adjustLocked(player.Handle(), factionID, value, player.BaseClass(), player.BaseRace(), player.Deity())
	m.mu.Unlock()

	slog.Debug("faction rewarded",
		"player", player.Name(),
		"factionID", factionID,
		"value", value,
		"standing", got)
}

// SetFactionLevel applies every hit of levelID to the player. class, race
// and deity seed standings the player has not touched yet.
func (m *Manager) SetFactionLevel(player hate.Mob, levelID int64, class, race, deity int32) {
	if player == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	hits, ok := m.levels[levelID]
	if !ok {
		slog.Debug("unknown faction level", "levelID", levelID)
		return
	}
	for _, hit := range hits {
		got := m.adjustLocked(player.Handle(), hit.FactionID, hit.Value, class, race, deity)
		slog.Debug("faction level hit",
			"player", player.Name(),
			"levelID", levelID,
			"factionID", hit.FactionID,
			"value", hit.Value,
			"standing", got)
	}
}

// Standing returns the player's standing with factionID and whether it was
// ever touched.
func (m *Manager) Standing(player model.Handle, factionID int32) (int32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.standings[player][factionID]
	return v, ok
}

// Forget drops all standings of a player (logout).
func (m *Manager) Forget(player model.Handle) {
	m.mu.Lock()
	delete(m.standings, player)
	m.mu.Unlock()
}

func (m *Manager) adjustLocked(player model.Handle, factionID, value, class, race, deity int32) int32 {
	byFaction, ok := m.standings[player]
	if !ok {
		byFaction = make(map[int32]int32)
		m.standings[player] = byFaction
	}

	cur, ok := byFaction[factionID]
	if !ok {
		cur = m.mods[factionID].base(class, race, deity)
	}

	next := min(max(int64(cur)+int64(value), int64(MinStanding)), int64(MaxStanding))
	byFaction[factionID] = int32(next)
	return int32(next)
}
