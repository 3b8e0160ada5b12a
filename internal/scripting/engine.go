package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the lifecycle hooks.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory: the root first, then the lifecycle/ subdirectory. Missing
// directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "lifecycle")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, err
		}
	}
	return e, nil
}

// NewEngineFromSource builds an engine from a single in-memory chunk.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load lua source: %w", err)
	}
	return &Engine{vm: vm, log: log}, nil
}

func (e *Engine) Close() { e.vm.Close() }

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a global function with the given name is defined.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// CalcLifespan calls worm_lifespan({generation=, base=}). ok is false when
// the hook is missing, fails, or returns a non-positive number.
func (e *Engine) CalcLifespan(generation int, base float64) (float64, bool) {
	ret, ok := e.call("worm_lifespan", func(t *lua.LTable) {
		t.RawSetString("generation", lua.LNumber(generation))
		t.RawSetString("base", lua.LNumber(base))
	})
	if !ok {
		return 0, false
	}
	n, isNum := ret.(lua.LNumber)
	if v := float64(n); !isNum || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		e.log.Error("lua worm_lifespan returned invalid value", zap.String("value", ret.String()))
		return 0, false
	}
	return float64(n), true
}

// WormName calls worm_name({generation=, base=}).
func (e *Engine) WormName(generation int, base string) (string, bool) {
	ret, ok := e.call("worm_name", func(t *lua.LTable) {
		t.RawSetString("generation", lua.LNumber(generation))
		t.RawSetString("base", lua.LString(base))
	})
	if !ok {
		return "", false
	}
	s, isStr := ret.(lua.LString)
	if !isStr || s == "" {
		e.log.Error("lua worm_name returned invalid value", zap.String("value", ret.String()))
		return "", false
	}
	return string(s), true
}

func (e *Engine) call(name string, fill func(*lua.LTable)) (lua.LValue, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return nil, false
	}
	t := e.vm.NewTable()
	fill(t)
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua call error", zap.String("fn", name), zap.Error(err))
		return nil, false
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret, true
}
