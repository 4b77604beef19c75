package action

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Wire errors.
var (
	// ErrMalformed indicates the input is not a JSON object.
	ErrMalformed = errors.New("action: malformed wire action")

	// ErrMissingType indicates the input has no "type" string.
	ErrMissingType = errors.New("action: missing type")

	// ErrUnencodable indicates the action has no wire representation.
	ErrUnencodable = errors.New("action: cannot encode action")
)

// DecodeError describes why a wire action could not be decoded.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Marshal encodes an action in its wire shape:
//
//	{"mapId":..., "type":"internal-mapbox-<capability>", "args":[...]}
//	{"mapId":..., "type":"mapbox-<name>", "event":..., "eventData":...}
//
// The live map reference of a notification is never encoded.
func Marshal(a Action) ([]byte, error) {
	switch v := a.(type) {
	case Command:
		return marshalCommand(v)
	case *Command:
		return marshalCommand(*v)
	case Notification:
		return marshalNotification(v)
	case *Notification:
		return marshalNotification(*v)
	case Generic:
		return marshalGeneric(v)
	case *Generic:
		return marshalGeneric(*v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnencodable, a)
	}
}

func marshalCommand(c Command) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "mapId", string(c.MapID)); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "type", c.Type); err != nil {
		return nil, err
	}
	args := c.Args
	if args == nil {
		args = []any{}
	}
	return sjson.SetBytes(out, "args", args)
}

func marshalNotification(n Notification) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "mapId", string(n.MapID)); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "type", n.Type); err != nil {
		return nil, err
	}
	if n.Event != "" {
		if out, err = sjson.SetBytes(out, "event", n.Event); err != nil {
			return nil, err
		}
	}
	if n.EventData != nil {
		if out, err = sjson.SetBytes(out, "eventData", n.EventData); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func marshalGeneric(g Generic) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	for k, v := range g.Fields {
		if out, err = sjson.SetBytes(out, escapeKey(k), v); err != nil {
			return nil, err
		}
	}
	if g.MapID != "" {
		if out, err = sjson.SetBytes(out, "mapId", string(g.MapID)); err != nil {
			return nil, err
		}
	}
	return sjson.SetBytes(out, "type", g.Type)
}

// Unmarshal decodes a wire action. Command and notification types decode to
// Command and Notification; any other type decodes to Generic.
func Unmarshal(data []byte) (Action, error) {
	if !gjson.ValidBytes(data) {
		return nil, &DecodeError{Reason: "invalid json", Err: ErrMalformed}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &DecodeError{Reason: "not an object", Err: ErrMalformed}
	}

	typ := root.Get("type")
	if typ.Type != gjson.String || typ.String() == "" {
		return nil, &DecodeError{Err: ErrMissingType}
	}
	mapID := MapID(root.Get("mapId").String())

	switch {
	case IsInternal(typ.String()):
		args := []any{}
		if a := root.Get("args"); a.Exists() {
			if !a.IsArray() {
				return nil, &DecodeError{Reason: "args is not an array", Err: ErrMalformed}
			}
			args, _ = a.Value().([]any)
		}
		return Command{MapID: mapID, Type: typ.String(), Args: args}, nil

	case IsExternal(typ.String()):
		n := Notification{MapID: mapID, Type: typ.String(), Event: root.Get("event").String()}
		if d := root.Get("eventData"); d.Exists() {
			n.EventData = d.Value()
		}
		return n, nil

	default:
		fields, _ := root.Value().(map[string]any)
		delete(fields, "type")
		delete(fields, "mapId")
		return Generic{Type: typ.String(), MapID: mapID, Fields: fields}, nil
	}
}

// escapeKey protects sjson path metacharacters in a literal object key.
func escapeKey(k string) string {
	var out []byte
	for i := 0; i < len(k); i++ {
		switch k[i] {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			out = append(out, '\\')
		}
		out = append(out, k[i])
	}
	return string(out)
}
