package ai

// Intention is what an NPC is currently trying to do.
type Intention uint8

const (
	IntentionIdle   Intention = iota // not ticking
	IntentionActive                  // ticking, nothing to fight
	IntentionAttack                  // engaged with a target
)

func (i Intention) String() string {
	switch i {
	case IntentionActive:
		return "ACTIVE"
	case IntentionAttack:
		return "ATTACK"
	default:
		return "IDLE"
	}
}

// Controller represents AI controller interface for NPCs
type Controller interface {
	// Start starts AI controller
	Start()

	// Stop stops AI controller
	Stop()

	// CurrentIntention returns current AI intention
	CurrentIntention() Intention

	// Tick performs one AI step
	Tick()
}

// Compactor is implemented by controllers holding hate lists. Compact runs
// after every controller has ticked, when no list is being walked.
type Compactor interface {
	Compact()
}
