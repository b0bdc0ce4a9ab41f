package kmod

import "sort"

// Direction says which way a difference goes
type Direction int

const (
	Lost Direction = iota
	Gained
)

// String returns the string representation of Direction
func (d Direction) String() string {
	if d == Gained {
		return "gained"
	}
	return "lost"
}

// setDiff returns the items of a missing from b and the items of b missing
// from a, each in its input order
func setDiff(a, b []string) (removed, added []string) {
	inA := make(map[string]bool, len(a))
	for _, s := range a {
		inA[s] = true
	}
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}

	for _, s := range a {
		if !inB[s] {
			removed = append(removed, s)
		}
	}
	for _, s := range b {
		if !inA[s] {
			added = append(added, s)
		}
	}
	return removed, added
}

// DiffParameters returns the module parameters removed and added by after
func DiffParameters(before, after *ModuleInfo) (removed, added []string) {
	return setDiff(before.Parameters, after.Parameters)
}

// DiffDependencies returns the module dependencies removed and added by after
func DiffDependencies(before, after *ModuleInfo) (removed, added []string) {
	return setDiff(before.Dependencies, after.Dependencies)
}

// AliasTable maps an alias string to the modules claiming it
type AliasTable struct {
	modules map[string][]string
}

// NewAliasTable groups the aliases of the given modules
func NewAliasTable(infos ...*ModuleInfo) *AliasTable {
	t := &AliasTable{modules: make(map[string][]string)}
	for _, info := range infos {
		if info == nil {
			continue
		}
		for _, alias := range info.Aliases {
			t.add(alias, info.Name)
		}
	}
	return t
}

func (t *AliasTable) add(alias, module string) {
	for _, m := range t.modules[alias] {
		if m == module {
			return
		}
	}
	t.modules[alias] = append(t.modules[alias], module)
}

// Aliases returns the alias strings in sorted order
func (t *AliasTable) Aliases() []string {
	out := make([]string, 0, len(t.modules))
	for a := range t.modules {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Modules returns the modules bound to alias
func (t *AliasTable) Modules(alias string) []string {
	return t.modules[alias]
}

// AliasChange is one module losing or gaining one alias
type AliasChange struct {
	Alias     string
	Module    string
	Direction Direction
}

// DiffAliases reports every module bound to an alias present on only one side.
// Lost bindings come first, then gained ones, each ordered by alias.
func DiffAliases(before, after *AliasTable) []AliasChange {
	var changes []AliasChange

	for _, alias := range before.Aliases() {
		if _, ok := after.modules[alias]; ok {
			continue
		}
		for _, m := range before.Modules(alias) {
			changes = append(changes, AliasChange{Alias: alias, Module: m, Direction: Lost})
		}
	}

	for _, alias := range after.Aliases() {
		if _, ok := before.modules[alias]; ok {
			continue
		}
		for _, m := range after.Modules(alias) {
			changes = append(changes, AliasChange{Alias: alias, Module: m, Direction: Gained})
		}
	}

	return changes
}
