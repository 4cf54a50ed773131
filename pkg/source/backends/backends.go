// Package backends is the registry of repository backends.
//
// It exists so that pkg/source stays free of backend imports while callers
// still get a single place to enumerate what can open a repository.
package backends

import (
	"github.com/matzehuels/gitlanes/pkg/source"
	"github.com/matzehuels/gitlanes/pkg/source/gitexec"
	"github.com/matzehuels/gitlanes/pkg/source/gogit"
)

// all lists the registered backends in selection order: the first available
// one wins when the caller asks for "auto".
var all = []*source.Backend{
	gogit.Backend,
	gitexec.Backend,
}

// All returns the registered backends in selection order.
func All() []*source.Backend {
	out := make([]*source.Backend, len(all))
	copy(out, all)
	return out
}

// Find returns the backend selected by name, or nil if no backend matches.
func Find(name string) *source.Backend {
	for _, b := range all {
		if b.Matches(name) {
			return b
		}
	}
	return nil
}

// Open opens the repository at path with the named backend, consulting the
// registry. An empty name or "auto" picks the first available backend.
func Open(path, name string) (source.Source, error) {
	return source.Open(path, name, All())
}
