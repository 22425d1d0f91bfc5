package party

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/udisondev/hatelist/internal/model"
)

var (
	ErrPartyNotFound  = errors.New("party not found")
	ErrAlreadyInParty = errors.New("already in a party of this kind")
	ErrPartyFull      = errors.New("party is full")
)

// DamageFunc returns damage member has dealt to hater, as recorded on
// hater's hate list.
type DamageFunc func(hater, member model.Handle) uint64

// Manager manages all active groups and raids in a zone.
// Thread-safe: uses RWMutex for party maps and atomic for ID generation.
type Manager struct {
	mu      sync.RWMutex
	parties map[int32]*Party
	groupOf map[model.Handle]int32
	raidOf  map[model.Handle]int32
	nextID  atomic.Int32

	damage DamageFunc
}

// NewManager creates a new party manager. damage is consulted when
// aggregating party damage; nil means no damage is ever recorded.
func NewManager(damage DamageFunc) *Manager {
	return &Manager{
		parties: make(map[int32]*Party),
		groupOf: make(map[model.Handle]int32),
		raidOf:  make(map[model.Handle]int32),
		damage:  damage,
	}
}

// CreateGroup creates a group led by leader.
func (m *Manager) CreateGroup(leader model.Handle) (*Party, error) {
	return m.create(KindGroup, leader)
}

// CreateRaid creates a raid led by leader.
func (m *Manager) CreateRaid(leader model.Handle) (*Party, error) {
	return m.create(KindRaid, leader)
}

func (m *Manager) create(kind Kind, leader model.Handle) (*Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.membership(kind)[leader]; ok {
		return nil, fmt.Errorf("create %s for %s: %w", kind, leader, ErrAlreadyInParty)
	}

	id := m.nextID.Add(1)
	p := newParty(id, kind, leader)
	m.parties[id] = p
	m.membership(kind)[leader] = id
	return p, nil
}

// Join adds member to the party.
func (m *Manager) Join(partyID int32, member model.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parties[partyID]
	if !ok {
		return fmt.Errorf("join party %d: %w", partyID, ErrPartyNotFound)
	}
	idx := m.membership(p.kind)
	if _, ok := idx[member]; ok {
		return fmt.Errorf("join party %d as %s: %w", partyID, member, ErrAlreadyInParty)
	}
	if !p.add(member) {
		return fmt.Errorf("join party %d: %w", partyID, ErrPartyFull)
	}
	idx[member] = partyID
	return nil
}

// Leave removes member from its group and raid. A party left without
// members is disbanded.
func (m *Manager) Leave(member model.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, kind := range []Kind{KindGroup, KindRaid} {
		idx := m.membership(kind)
		id, ok := idx[member]
		if !ok {
			continue
		}
		delete(idx, member)
		if p := m.parties[id]; p != nil && p.remove(member) == 0 {
			delete(m.parties, id)
		}
	}
}

// Disband removes a party and releases all its members.
func (m *Manager) Disband(partyID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parties[partyID]
	if !ok {
		return
	}
	idx := m.membership(p.kind)
	for _, h := range p.Members() {
		delete(idx, h)
	}
	delete(m.parties, partyID)
}

// GetParty returns a party by ID, or nil if not found.
func (m *Manager) GetParty(partyID int32) *Party {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parties[partyID]
}

// GroupOf returns the group of member, or nil.
func (m *Manager) GroupOf(member model.Handle) *Party {
	return m.partyOf(KindGroup, member)
}

// RaidOf returns the raid of member, or nil.
func (m *Manager) RaidOf(member model.Handle) *Party {
	return m.partyOf(KindRaid, member)
}

func (m *Manager) partyOf(kind Kind, member model.Handle) *Party {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.membership(kind)[member]
	if !ok {
		return nil
	}
	return m.parties[id]
}

// PartyCount returns the number of active groups and raids.
func (m *Manager) PartyCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.parties)
}

// TotalDamageTo sums damage dealt to hater by every member of p.
func (m *Manager) TotalDamageTo(p *Party, hater model.Handle) uint64 {
	if p == nil || m.damage == nil {
		return 0
	}
	var total uint64
	for _, h := range p.Members() {
		total += m.damage(hater, h)
	}
	return total
}

// RaidDamageTo returns the raid-wide damage to hater if member is in a raid.
func (m *Manager) RaidDamageTo(member, hater model.Handle) (uint64, bool) {
	p := m.RaidOf(member)
	if p == nil {
		return 0, false
	}
	return m.TotalDamageTo(p, hater), true
}

// GroupDamageTo returns the group-wide damage to hater if member is in a group.
func (m *Manager) GroupDamageTo(member, hater model.Handle) (uint64, bool) {
	p := m.GroupOf(member)
	if p == nil {
		return 0, false
	}
	return m.TotalDamageTo(p, hater), true
}

// membership must be called with mu held.
func (m *Manager) membership(kind Kind) map[model.Handle]int32 {
	if kind == KindRaid {
		return m.raidOf
	}
	return m.groupOf
}
