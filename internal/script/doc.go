// Package script runs Lua scripts that drive maps through the store.
//
// A script sees a single global table, mapbox:
//
//	local m = mapbox.map("main")    -- handle bound to one map id
//	m:zoomTo(5)                     -- dispatches internal-mapbox-zoomTo
//	m:setShowTileBoundaries(true)
//	mapbox.dispatch({type = "app/ready"})
//	mapbox.log("zoom is", 5)        -- print goes to the same logger
//	print(mapbox.types.zoomend)     -- mapbox-zoomend
//
// Every handle method corresponds to one bound action creator. Dispatch
// errors are raised as Lua errors and reported from Run with the underlying
// Go error preserved for errors.Is.
//
// Scripts run in a restricted state: io, os, debug and package are not
// opened, and dofile, loadfile, load and loadstring are removed.
package script
