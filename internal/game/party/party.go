package party

import (
	"slices"
	"sync"

	"github.com/udisondev/hatelist/internal/model"
)

const (
	// MaxGroupMembers is the maximum group size (leader included).
	MaxGroupMembers = 6
	// MaxRaidMembers is the maximum raid size (twelve full groups).
	MaxRaidMembers = 72
)

// Kind distinguishes groups from raids.
type Kind uint8

const (
	KindGroup Kind = iota
	KindRaid
)

func (k Kind) String() string {
	if k == KindRaid {
		return "raid"
	}
	return "group"
}

// Party is a group or raid of creatures cooperating together.
// Thread-safe: all methods acquire internal mutex.
type Party struct {
	mu      sync.RWMutex
	id      int32
	kind    Kind
	leader  model.Handle
	members []model.Handle // лидер всегда первый элемент
}

func newParty(id int32, kind Kind, leader model.Handle) *Party {
	limit := MaxGroupMembers
	if kind == KindRaid {
		limit = MaxRaidMembers
	}
	p := &Party{
		id:      id,
		kind:    kind,
		leader:  leader,
		members: make([]model.Handle, 0, limit),
	}
	p.members = append(p.members, leader)
	return p
}

// ID returns immutable party ID.
func (p *Party) ID() int32 { return p.id }

// Kind returns whether this is a group or a raid.
func (p *Party) Kind() Kind { return p.kind }

// Leader returns current party leader.
func (p *Party) Leader() model.Handle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.leader
}

// Members returns a snapshot of party members, leader first.
func (p *Party) Members() []model.Handle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.members)
}

// MemberCount returns the number of members.
func (p *Party) MemberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

// IsMember reports whether h belongs to the party.
func (p *Party) IsMember(h model.Handle) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Contains(p.members, h)
}

func (p *Party) add(h model.Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.members) >= cap(p.members) {
		return false
	}
	p.members = append(p.members, h)
	return true
}

// remove drops h and returns the remaining member count. Leadership
// passes to the next member when the leader leaves.
func (p *Party) remove(h model.Handle) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := slices.Index(p.members, h); i >= 0 {
		p.members = slices.Delete(p.members, i, i+1)
	}
	if p.leader == h && len(p.members) > 0 {
		p.leader = p.members[0]
	}
	return len(p.members)
}
