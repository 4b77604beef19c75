// Package store is a small unidirectional state container.
//
// State changes only by dispatching actions. Every dispatched action passes
// through the middleware chain (outermost first) before the reducer sees it:
//
//	  Dispatch(a)
//	      │
//	┌─────▼──────┐   ┌────────────┐   ┌────────────┐   ┌─────────┐
//	│ middleware │──▶│ middleware │──▶│ middleware │──▶│ reducer │
//	└────────────┘   └────────────┘   └────────────┘   └─────────┘
//	                                                        │
//	                                                  subscribers
//
// Middleware has the conventional curried shape. It receives the store API
// once, the next stage once, and then sees each action:
//
//	func Example(api store.API) func(next store.Dispatch) store.Dispatch {
//	    return func(next store.Dispatch) store.Dispatch {
//	        return func(a action.Action) error {
//	            return next(a)
//	        }
//	    }
//	}
//
// Dispatch is synchronous. A Store expects one dispatching goroutine at a
// time; middleware may dispatch re-entrantly, reducers may not.
package store
