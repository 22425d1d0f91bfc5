package scripting

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/udisondev/hatelist/internal/hate"
)

// Engine wraps a gopher-lua VM running quest scripts.
//
// Scripts register hate list handlers per NPC type:
//
//	quest.on_hate_list(1001, function(e)
//	  if e.joined then quest.log(e.attacker.name .. " engaged " .. e.npc.name) end
//	end)
//
// Engine implements hate.Notifier. Handler errors are logged and swallowed.
type Engine struct {
	mu       sync.Mutex
	vm       *lua.LState
	handlers map[int32][]*lua.LFunction // npc type id → handlers
}

// NewEngine creates a Lua engine and loads every .lua file of scriptsDir.
// A missing directory yields an engine without handlers.
func NewEngine(scriptsDir string) (*Engine, error) {
	e := newEngine()
	if err := e.loadDir(scriptsDir); err != nil {
		e.Close()
		return nil, fmt.Errorf("load quest scripts: %w", err)
	}
	return e, nil
}

func newEngine() *Engine {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:       vm,
		handlers: make(map[int32][]*lua.LFunction),
	}

	mod := vm.NewTable()
	vm.SetFuncs(mod, map[string]lua.LGFunction{
		"on_hate_list": e.luaOnHateList,
		"log":          luaLog,
	})
	vm.SetGlobal("quest", mod)
	return e
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		slog.Debug("loaded lua script", "file", path)
	}
	return nil
}

// LoadString runs a chunk of Lua source.
func (e *Engine) LoadString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua chunk: %w", err)
	}
	return nil
}

// HandlerCount returns the number of hate list handlers for an NPC type.
func (e *Engine) HandlerCount(npcTypeID int32) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers[npcTypeID])
}

// EnteredHateList fires event_hate_list with joined = true.
func (e *Engine) EnteredHateList(owner, attacker hate.Mob) {
	e.dispatch(owner, attacker, true)
}

// LeftHateList fires event_hate_list with joined = false.
func (e *Engine) LeftHateList(owner, attacker hate.Mob) {
	e.dispatch(owner, attacker, false)
}

func (e *Engine) dispatch(owner, attacker hate.Mob, joined bool) {
	if owner == nil || attacker == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fns := e.handlers[owner.TemplateID()]
	if len(fns) == 0 {
		return
	}

	ev := e.vm.NewTable()
	ev.RawSetString("npc", e.mobTable(owner))
	ev.RawSetString("attacker", e.mobTable(attacker))
	ev.RawSetString("joined", lua.LBool(joined))

	for _, fn := range fns {
		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, ev); err != nil {
			slog.Error("lua event_hate_list error",
				"npc", owner.Name(),
				"npcTypeID", owner.TemplateID(),
				"attacker", attacker.Name(),
				"error", err)
		}
	}
}

func (e *Engine) mobTable(m hate.Mob) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("name", lua.LString(m.Name()))
	t.RawSetString("id", lua.LNumber(m.Handle().ID()))
	t.RawSetString("type_id", lua.LNumber(m.TemplateID()))
	t.RawSetString("kind", lua.LString(m.Kind().String()))
	t.RawSetString("hp_pct", lua.LNumber(m.HPPercent()))
	return t
}

// quest.on_hate_list(npc_type_id, fn)
func (e *Engine) luaOnHateList(L *lua.LState) int {
	id := int32(L.CheckInt(1))
	fn := L.CheckFunction(2)
	e.handlers[id] = append(e.handlers[id], fn)
	return 0
}

// quest.log(msg)
func luaLog(L *lua.LState) int {
	slog.Info("quest", "msg", L.CheckString(1))
	return 0
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
