package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Shopify/go-lua"
)

// ErrInvalidScript indicates a catalog script that did not return a usable table.
var ErrInvalidScript = errors.New("invalid catalog script")

// LoadLuaFile runs a catalog script from disk. See LoadLua for the format.
func LoadLuaFile(path string) (Catalog, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.LoadFile(state, path, ""); err != nil {
		return Catalog{}, fmt.Errorf("load lua: %w", err)
	}
	return runCatalogChunk(state)
}

// LoadLua runs a catalog script held in memory.
//
// The chunk must return a table with optional "units" and "prefixes" arrays:
//
//	return {
//	  units = {
//	    { name = "newton", dims = { 1, 1, -2, 0 } },
//	  },
//	  prefixes = {
//	    { name = "", magnitude = 0 },
//	    { name = "kilo", magnitude = 3 },
//	  },
//	}
//
// A missing section inherits the SI default. The result is validated.
func LoadLua(name, source string) (Catalog, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return Catalog{}, fmt.Errorf("load lua: %w", err)
	}
	return runCatalogChunk(state)
}

func runCatalogChunk(state *lua.State) (Catalog, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return Catalog{}, fmt.Errorf("run lua: %w", err)
	}
	defer state.Pop(1)
	if !state.IsTable(-1) {
		return Catalog{}, fmt.Errorf("%w: script must return a table", ErrInvalidScript)
	}
	root := state.AbsIndex(-1)

	cat := SI()

	state.Field(root, "units")
	if !state.IsNil(-1) {
		units, err := readUnits(state, state.AbsIndex(-1))
		if err != nil {
			state.Pop(1)
			return Catalog{}, err
		}
		cat.Units = units
	}
	state.Pop(1)

	state.Field(root, "prefixes")
	if !state.IsNil(-1) {
		prefixes, err := readPrefixes(state, state.AbsIndex(-1))
		if err != nil {
			state.Pop(1)
			return Catalog{}, err
		}
		cat.Prefixes = prefixes
	}
	state.Pop(1)

	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func readUnits(state *lua.State, index int) ([]DerivedUnit, error) {
	if !state.IsTable(index) {
		return nil, fmt.Errorf("%w: units must be an array", ErrInvalidScript)
	}
	count := state.RawLength(index)
	units := make([]DerivedUnit, 0, count)
	for i := 1; i <= count; i++ {
		state.RawGetInt(index, i)
		unit, err := readUnit(state, state.AbsIndex(-1), i)
		state.Pop(1)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

func readUnit(state *lua.State, index, position int) (DerivedUnit, error) {
	if !state.IsTable(index) {
		return DerivedUnit{}, fmt.Errorf("%w: units[%d] must be a table", ErrInvalidScript, position)
	}
	name, err := stringField(state, index, "name")
	if err != nil {
		return DerivedUnit{}, fmt.Errorf("units[%d]: %w", position, err)
	}

	state.Field(index, "dims")
	defer state.Pop(1)
	dimsIndex := state.AbsIndex(-1)
	if !state.IsTable(dimsIndex) || state.RawLength(dimsIndex) != AxisCount {
		return DerivedUnit{}, fmt.Errorf("%w: units[%d].dims must hold %d integers", ErrInvalidScript, position, AxisCount)
	}
	var dims Dimensions
	for axis := 0; axis < AxisCount; axis++ {
		state.RawGetInt(dimsIndex, axis+1)
		value, ok := integerAt(state, -1)
		state.Pop(1)
		if !ok {
			return DerivedUnit{}, fmt.Errorf("%w: units[%d].dims[%d] is not an integer", ErrInvalidScript, position, axis+1)
		}
		dims[axis] = value
	}
	return DerivedUnit{Name: name, Dims: dims}, nil
}

func readPrefixes(state *lua.State, index int) ([]Prefix, error) {
	if !state.IsTable(index) {
		return nil, fmt.Errorf("%w: prefixes must be an array", ErrInvalidScript)
	}
	count := state.RawLength(index)
	prefixes := make([]Prefix, 0, count)
	for i := 1; i <= count; i++ {
		state.RawGetInt(index, i)
		entry := state.AbsIndex(-1)
		if !state.IsTable(entry) {
			state.Pop(1)
			return nil, fmt.Errorf("%w: prefixes[%d] must be a table", ErrInvalidScript, i)
		}
		// An empty name is the "no prefix" entry.
		state.Field(entry, "name")
		name, _ := state.ToString(-1)
		state.Pop(1)

		state.Field(entry, "magnitude")
		magnitude, ok := integerAt(state, -1)
		state.Pop(2)
		if !ok {
			return nil, fmt.Errorf("%w: prefixes[%d].magnitude is not an integer", ErrInvalidScript, i)
		}
		prefixes = append(prefixes, Prefix{Name: strings.TrimSpace(name), Magnitude: magnitude})
	}
	return prefixes, nil
}

func stringField(state *lua.State, index int, key string) (string, error) {
	state.Field(index, key)
	defer state.Pop(1)
	value, ok := state.ToString(-1)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidScript, key)
	}
	return value, nil
}

func integerAt(state *lua.State, index int) (int, bool) {
	if state.TypeOf(index) != lua.TypeNumber {
		return 0, false
	}
	number, ok := state.ToNumber(index)
	if !ok || number != math.Trunc(number) {
		return 0, false
	}
	return int(number), true
}
