package registry

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/zjrosen/devconsole/internal/command"
)

// Whatever the declaration order, each name maps to the first declaration
// carrying it, and a rebuild changes nothing.
func TestBuild_FirstDeclarationWinsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfN(rapid.SampledFrom([]string{"heal", "spawn", "god", "noclip", "fps"}), 1, 20).Draw(rt, "names")

		hits := make([]int, len(names))
		catalog := command.NewCatalog()
		for i, name := range names {
			if err := catalog.Add(command.FuncDeclaration(name, func() { hits[i]++ })); err != nil {
				rt.Fatalf("add: %v", err)
			}
		}
		candidates := command.NewScanner(catalog).Scan()

		r := New()
		r.Build(candidates, nil, BuildOptions{})
		keys := r.Keys()

		firstIndex := make(map[string]int)
		for i, name := range names {
			if _, seen := firstIndex[name]; !seen {
				firstIndex[name] = i
			}
		}
		if len(keys) != len(firstIndex) {
			rt.Fatalf("got %d keys, want %d", len(keys), len(firstIndex))
		}

		for name, idx := range firstIndex {
			entry, ok := r.Lookup(name)
			if !ok {
				rt.Fatalf("missing %q", name)
			}
			before := hits[idx]
			entry.Action.Invoke()
			if hits[idx] != before+1 {
				rt.Fatalf("%q did not run its first declaration", name)
			}
		}

		second := r.Build(candidates, nil, BuildOptions{})
		if len(second.Registered) != 0 || len(second.Duplicates) != len(names) {
			rt.Fatalf("rebuild changed the table: %+v", second)
		}
	})
}
