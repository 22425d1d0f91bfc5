package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/hatelist/internal/model"
)

// ErrTaskQueueFull is returned by Submit when the tick goroutine is backed up.
var ErrTaskQueueFull = errors.New("ai task queue full")

const taskQueueSize = 256

// TickManager manages AI ticks for all registered NPCs of a zone.
//
// Hate lists are not safe for concurrent use, so everything touching them
// (ticks, compaction and tasks posted with Submit) runs on the goroutine
// that called Start.
type TickManager struct {
	interval        time.Duration
	controllers     sync.Map // map[model.Handle]Controller
	controllerCount atomic.Int32
	tasks           chan func()
	stopCh          chan struct{}
	stopOnce        sync.Once
	ticks           atomic.Uint64
}

// NewTickManager creates a tick manager ticking every interval.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		interval = time.Second
	}
	return &TickManager{
		interval: interval,
		tasks:    make(chan func(), taskQueueSize),
		stopCh:   make(chan struct{}),
	}
}

// Register registers AI controller for NPC
func (m *TickManager) Register(npc model.Handle, controller Controller) {
	if _, loaded := m.controllers.Swap(npc, controller); !loaded {
		m.controllerCount.Add(1)
	}
	controller.Start()

	slog.Debug("AI controller registered",
		"npc", npc,
		"intention", controller.CurrentIntention())
}

// Unregister unregisters AI controller
func (m *TickManager) Unregister(npc model.Handle) {
	value, ok := m.controllers.LoadAndDelete(npc)
	if !ok {
		return
	}
	m.controllerCount.Add(-1)
	value.(Controller).Stop()

	slog.Debug("AI controller unregistered", "npc", npc)
}

// Submit queues fn to run on the tick goroutine before the next tick.
func (m *TickManager) Submit(fn func()) error {
	select {
	case m.tasks <- fn:
		return nil
	default:
		return ErrTaskQueueFull
	}
}

// Start runs the tick loop (blocks until context is canceled or Stop is called)
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("AI tick manager started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping", "ticks", m.ticks.Load())
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("AI tick manager stopped", "ticks", m.ticks.Load())
			return nil

		case fn := <-m.tasks:
			fn()

		case <-ticker.C:
			m.drainTasks()
			m.tickAll()
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *TickManager) drainTasks() {
	for {
		select {
		case fn := <-m.tasks:
			fn()
		default:
			return
		}
	}
}

// tickAll ticks all registered controllers, then compacts their hate lists.
func (m *TickManager) tickAll() {
	count := 0
	m.controllers.Range(func(_, value any) bool {
		value.(Controller).Tick()
		count++
		return true
	})

	m.controllers.Range(func(_, value any) bool {
		if c, ok := value.(Compactor); ok {
			c.Compact()
		}
		return true
	})

	n := m.ticks.Add(1)
	if count > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "tick", n, "controllers", count)
	}
}

// Ticks returns the number of completed ticks.
func (m *TickManager) Ticks() uint64 {
	return m.ticks.Load()
}

// Count returns number of registered controllers
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// GetController returns controller for NPC
func (m *TickManager) GetController(npc model.Handle) (Controller, error) {
	value, ok := m.controllers.Load(npc)
	if !ok {
		return nil, fmt.Errorf("controller not found for npc %s", npc)
	}
	return value.(Controller), nil
}
