// Package action defines the plain-data messages that drive map instances
// through a state container.
//
// Two kinds of map actions exist:
//
//   - Command: "invoke capability X on map M with these arguments". Its type is
//     the capability name prefixed with "internal-mapbox-".
//   - Notification: "map M changed" or "directive X was applied to map M". Its
//     type is the event or directive name prefixed with "mapbox-".
//
// The vocabulary is table driven. Capabilities, Specials and Events are the
// only places names are declared; creators, type tables and the bridge's
// routing are all derived from them.
//
// # Usage
//
//	creators := action.Bind("main")
//	store.Dispatch(creators["zoomTo"](7))
//
//	// Equivalent, without binding:
//	store.Dispatch(action.Create("zoomTo", "main", 7))
package action
