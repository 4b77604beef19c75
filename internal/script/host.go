package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/store"
)

// Default limits for a script run.
const (
	DefaultTimeout       = 5 * time.Second
	DefaultMaxDispatches = 10_000
)

const handleType = "mapbox.map"

// Host owns one Lua state wired to a store dispatch function.
//
// gopher-lua states are not goroutine-safe; Host serializes runs.
type Host struct {
	mu sync.Mutex
	L  *lua.LState

	dispatch store.Dispatch
	logger   store.Logger

	timeout       time.Duration
	maxDispatches int

	dispatched int
	lastErr    error
	closed     bool
}

// Option configures a Host.
type Option func(*Host)

// WithLogger routes mapbox.log and print output to logger.
func WithLogger(logger store.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithTimeout bounds the wall time of each run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.timeout = d
	}
}

// WithMaxDispatches bounds the actions a single run may dispatch. Zero
// disables the bound.
func WithMaxDispatches(n int) Option {
	return func(h *Host) {
		h.maxDispatches = n
	}
}

// NewHost creates a host whose scripts dispatch through dispatch.
func NewHost(dispatch store.Dispatch, opts ...Option) *Host {
	h := &Host{
		dispatch:      dispatch,
		logger:        store.NopLogger{},
		timeout:       DefaultTimeout,
		maxDispatches: DefaultMaxDispatches,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(h.L)
	h.install()
	return h
}

// openSafeLibraries opens base, table, string and math only.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (h *Host) install() {
	L := h.L

	mt := L.NewTypeMetatable(handleType)
	methods := make(map[string]lua.LGFunction, len(action.Creators)+1)
	for name := range action.Creators {
		methods[name] = h.handleMethod(name)
	}
	methods["id"] = func(L *lua.LState) int {
		L.Push(lua.LString(checkHandle(L)))
		return 1
	}
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), methods))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(fmt.Sprintf("mapbox.map(%q)", checkHandle(L))))
		return 1
	}))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"map":      h.luaMap,
		"dispatch": h.luaDispatch,
		"log":      h.luaLog,
	})
	L.SetField(mod, "types", toLua(L, action.Types))
	L.SetField(mod, "capabilities", toLua(L, capabilityNames()))
	L.SetGlobal("mapbox", mod)
	L.SetGlobal("print", L.NewFunction(h.luaLog))
}

func capabilityNames() []string {
	names := make([]string, 0, len(action.Capabilities))
	for _, c := range action.Capabilities {
		names = append(names, c.Name)
	}
	return names
}

// Run executes code as a chunk called name.
func (h *Host) Run(ctx context.Context, name, code string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}

	fn, err := h.L.Load(strings.NewReader(code), name)
	if err != nil {
		return &Error{Name: name, Err: err}
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	h.dispatched = 0
	h.lastErr = nil

	h.L.Push(fn)
	if err := h.protectedCall(); err != nil {
		cause := h.lastErr
		if cause == nil {
			cause = ctx.Err()
		}
		return &Error{Name: name, Err: err, Cause: cause}
	}
	return nil
}

func (h *Host) protectedCall() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return h.L.PCall(0, lua.MultRet, nil)
}

// RunFile reads and runs a script file.
func (h *Host) RunFile(ctx context.Context, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return h.Run(ctx, filepath.Base(path), string(code))
}

// Dispatched returns the number of actions dispatched by the latest run.
func (h *Host) Dispatched() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dispatched
}

// Close releases the Lua state. Closing twice is harmless.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.L.Close()
	h.closed = true
	return nil
}

// send dispatches a, raising a Lua error on failure.
func (h *Host) send(L *lua.LState, a action.Action) {
	if h.maxDispatches > 0 && h.dispatched >= h.maxDispatches {
		h.lastErr = ErrDispatchLimit
		L.RaiseError("%v", ErrDispatchLimit)
		return
	}
	h.dispatched++
	if err := h.dispatch(a); err != nil {
		h.lastErr = err
		L.RaiseError("dispatch %s: %v", a.ActionType(), err)
	}
}

func (h *Host) luaMap(L *lua.LState) int {
	id := L.CheckString(1)
	if id == "" {
		L.ArgError(1, "map id must not be empty")
		return 0
	}
	ud := L.NewUserData()
	ud.Value = action.MapID(id)
	L.SetMetatable(ud, L.GetTypeMetatable(handleType))
	L.Push(ud)
	return 1
}

func checkHandle(L *lua.LState) action.MapID {
	ud := L.CheckUserData(1)
	id, ok := ud.Value.(action.MapID)
	if !ok {
		L.ArgError(1, "map handle expected")
	}
	return id
}

func (h *Host) handleMethod(name string) lua.LGFunction {
	create := action.Creators[name]
	return func(L *lua.LState) int {
		id := checkHandle(L)
		args := make([]any, 0, L.GetTop()-1)
		for i := 2; i <= L.GetTop(); i++ {
			args = append(args, toGo(L.Get(i)))
		}
		h.send(L, create(id, args...))
		return 0
	}
}

// luaDispatch sends a table as an action. Map command types become
// Commands; anything else becomes a Generic action.
func (h *Host) luaDispatch(L *lua.LState) int {
	tbl := L.CheckTable(1)
	fields, ok := toGo(tbl).(map[string]any)
	if !ok {
		L.ArgError(1, "action table expected")
		return 0
	}
	typ, _ := fields["type"].(string)
	if typ == "" {
		L.ArgError(1, "action type expected")
		return 0
	}
	id, _ := fields["mapId"].(string)

	if action.IsInternal(typ) {
		var args []any
		switch a := fields["args"].(type) {
		case []any:
			args = a
		case map[string]any:
			// {} converts to an empty map; Lua cannot tell it from an empty list.
			if len(a) > 0 {
				args = []any{a}
			}
		case nil:
		default:
			args = []any{a}
		}
		h.send(L, action.Create(action.NameOf(typ), action.MapID(id), args...))
		return 0
	}

	delete(fields, "type")
	delete(fields, "mapId")
	h.send(L, action.Generic{Type: typ, MapID: action.MapID(id), Fields: fields})
	return 0
}

func (h *Host) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	h.logger.Info("script: %s", strings.Join(parts, " "))
	return 0
}

// IsLimit reports whether err came from a run exceeding its timeout or
// dispatch budget.
func IsLimit(err error) bool {
	return errors.Is(err, ErrDispatchLimit) || errors.Is(err, context.DeadlineExceeded)
}
