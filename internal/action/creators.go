package action

// Creator builds a command for one capability or directive.
type Creator func(mapID MapID, args ...any) Command

// BoundCreator is a Creator with the map already chosen.
type BoundCreator func(args ...any) Command

// BoundCreators maps capability and directive names to bound creators.
type BoundCreators map[string]BoundCreator

// Creators holds one creator per capability and directive.
var Creators = buildCreators()

func buildCreators() map[string]Creator {
	creators := make(map[string]Creator, len(Capabilities)+len(Specials))
	for _, c := range Capabilities {
		creators[c.Name] = creatorFor(c.Name)
	}
	for _, c := range Specials {
		creators[c.Name] = creatorFor(c.Name)
	}
	return creators
}

func creatorFor(name string) Creator {
	typ := InternalType(name)
	return func(mapID MapID, args ...any) Command {
		return Command{MapID: mapID, Type: typ, Args: copyArgs(args)}
	}
}

// Create builds a command for any name. Args are kept verbatim; no
// validation happens here.
func Create(name string, mapID MapID, args ...any) Command {
	return Command{MapID: mapID, Type: InternalType(name), Args: copyArgs(args)}
}

// Bind returns creators with mapID pre-filled.
func Bind(mapID MapID) BoundCreators {
	bound := make(BoundCreators, len(Creators))
	for name, create := range Creators {
		create := create
		bound[name] = func(args ...any) Command {
			return create(mapID, args...)
		}
	}
	return bound
}

func copyArgs(args []any) []any {
	out := make([]any, len(args))
	copy(out, args)
	return out
}
