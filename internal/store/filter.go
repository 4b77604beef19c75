package store

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dshills/mapbridge/internal/action"
)

// Filter selects actions with a boolean expression over the action's fields:
//
//	type      string  action type
//	mapId     string  target map, "" when untargeted
//	name      string  type with the mapbox prefixes removed
//	event     string  notification event name, "" otherwise
//	args      []any   command arguments, empty otherwise
//	command   bool    type is an internal command
//	notice    bool    type is a notification
//
// Example: `notice && event in ["moveend", "zoomend"]`.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles source. An empty source matches every action.
func CompileFilter(source string) (*Filter, error) {
	if source == "" {
		return &Filter{}, nil
	}
	program, err := expr.Compile(source, expr.Env(filterEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// String returns the filter source.
func (f *Filter) String() string {
	return f.source
}

// Match reports whether a satisfies the filter. A nil filter matches everything.
func (f *Filter) Match(a action.Action) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, filterEnv(a))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

func filterEnv(a action.Action) map[string]any {
	env := map[string]any{
		"type":    "",
		"mapId":   "",
		"name":    "",
		"event":   "",
		"args":    []any{},
		"command": false,
		"notice":  false,
	}
	if action.IsNil(a) {
		return env
	}

	typ := a.ActionType()
	env["type"] = typ
	env["mapId"] = string(action.TargetOf(a))
	env["name"] = action.NameOf(typ)
	env["command"] = action.IsInternal(typ)
	env["notice"] = !action.IsInternal(typ) && action.IsExternal(typ)

	switch v := a.(type) {
	case action.Command:
		env["args"] = v.Args
	case *action.Command:
		env["args"] = v.Args
	case action.Notification:
		env["event"] = v.Event
	case *action.Notification:
		env["event"] = v.Event
	}
	return env
}
