package hate

import "github.com/udisondev/hatelist/internal/model"

// Filter restricts queries to a category of attackers.
type Filter uint8

const (
	FilterAll Filter = iota
	FilterPlayers
	FilterBots
	FilterNPCs
)

func (f Filter) String() string {
	switch f {
	case FilterPlayers:
		return "players"
	case FilterBots:
		return "bots"
	case FilterNPCs:
		return "npcs"
	default:
		return "all"
	}
}

// Match reports whether m belongs to the filter category.
func (f Filter) Match(m Mob) bool {
	switch f {
	case FilterPlayers:
		return m.Kind() == model.KindPlayer
	case FilterBots:
		return m.Kind() == model.KindBot
	case FilterNPCs:
		return m.Kind() == model.KindNPC
	default:
		return true
	}
}
