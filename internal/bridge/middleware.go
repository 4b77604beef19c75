package bridge

import (
	"fmt"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/glmap"
	"github.com/dshills/mapbridge/internal/store"
)

// directive applies a special command to a map and announces it.
type directive func(b *Bridge, m glmap.Map, id action.MapID, args []any) error

func defaultDirectives() map[string]directive {
	d := map[string]directive{
		action.InternalType(action.Sync): func(b *Bridge, m glmap.Map, id action.MapID, _ []any) error {
			return b.announce(m, id, action.Sync)
		},
	}
	flags := map[string]glmap.DebugFlag{
		action.SetShowCollisionBoxes:    glmap.ShowCollisionBoxes,
		action.SetShowTileBoundaries:    glmap.ShowTileBoundaries,
		action.SetShowOverdrawInspector: glmap.ShowOverdrawInspector,
	}
	for name, flag := range flags {
		d[action.InternalType(name)] = debugDirective(name, flag)
	}
	return d
}

func debugDirective(name string, flag glmap.DebugFlag) directive {
	return func(b *Bridge, m glmap.Map, id action.MapID, args []any) error {
		if len(args) != 1 {
			return NewInvocationError(id, name, glmap.ErrArity)
		}
		enabled, ok := args[0].(bool)
		if !ok {
			return NewInvocationError(id, name, fmt.Errorf("%w: want bool, got %T", glmap.ErrArgument, args[0]))
		}
		m.SetDebugFlag(flag, enabled)
		return b.announce(m, id, name)
	}
}

// announce dispatches the notification for an applied directive. It has no
// event or event data.
func (b *Bridge) announce(m glmap.Map, id action.MapID, name string) error {
	return b.emit(action.Notification{
		Map:   m,
		MapID: id,
		Type:  action.ExternalType(name),
	})
}

// Middleware returns the store middleware for this bridge. Applying it to a
// store captures that store's dispatch function; Controls use it to deliver
// notifications from then on.
func (b *Bridge) Middleware() store.Middleware {
	return func(api store.API) func(store.Dispatch) store.Dispatch {
		b.setDispatch(api.Dispatch)
		return func(next store.Dispatch) store.Dispatch {
			return func(a action.Action) error {
				if err := b.intercept(a); err != nil {
					return err
				}
				return next(a)
			}
		}
	}
}

// intercept applies a to its target map when it is a recognised command for
// an attached map. Anything else is left alone.
func (b *Bridge) intercept(a action.Action) error {
	if action.IsNil(a) {
		return nil
	}
	id := action.TargetOf(a)
	if id == "" {
		return nil
	}
	m, ok := b.registry.Lookup(id)
	if !ok {
		return nil
	}

	typ := a.ActionType()
	if apply, ok := b.directives[typ]; ok {
		return apply(b, m, id, argsOf(a))
	}

	c, ok := b.capabilities[typ]
	if !ok {
		return nil
	}
	args := argsOf(a)
	if !c.Accepts(len(args)) {
		return NewInvocationError(id, c.Name, fmt.Errorf("%w: %d", glmap.ErrArity, len(args)))
	}
	b.logger.Debug("invoke %s on %s", c.Name, id)
	if err := m.Call(c.Name, args...); err != nil {
		return NewInvocationError(id, c.Name, err)
	}
	return nil
}

func argsOf(a action.Action) []any {
	if action.IsNil(a) {
		return nil
	}
	switch v := a.(type) {
	case action.Command:
		return v.Args
	case *action.Command:
		return v.Args
	case action.Generic:
		args, _ := v.Fields["args"].([]any)
		return args
	case *action.Generic:
		args, _ := v.Fields["args"].([]any)
		return args
	}
	return nil
}
