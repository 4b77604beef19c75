// Package bridge connects live map instances to a store's action stream.
//
// A Bridge owns two pieces of shared state: the registry of attached maps
// and the dispatch function captured from the store. Controls and the
// bridge middleware are both created from the same Bridge, so several
// independent bridges can coexist in one process.
//
//	b := bridge.New()
//	s, _ := store.New(reducer, initial, b.Middleware())
//
//	ctrl := b.NewControl("main")
//	node, err := ctrl.Attach(m)   // registers m, listens to map events
//	root.AppendChild(node)
//
//	s.Dispatch(ctrl.Actions["zoomTo"](7)) // m.Call("zoomTo", 7)
//
//	ctrl.Detach()                 // unsubscribes, unregisters, unmounts
//
// Commands addressed to an unknown map, and actions of unknown type, pass
// through untouched. Every action that does not fail is forwarded exactly
// once, as the same value it arrived as.
package bridge
