// Package frontend dispatches file discovery to the right C3/C4 front-end
// by extension, the way the rest of the corpus keeps a language registry
// decoupled from the core engine.
package frontend

import (
	"fmt"
	"sync"

	"github.com/oxhq/csgraph/internal/core"
	"github.com/oxhq/csgraph/internal/graph"
)

// Globals are the read-only values C5 binds before a front-end walks one
// file's tree.
type Globals struct {
	FilePath   string
	DomainNode core.Handle
	RootNode   core.Handle
	Domain     core.Domain
}

// Transform parses src and populates g with the nodes/edges for one file.
type Transform func(g *graph.Graph, src []byte, globals Globals) error

// Registry maps file extensions (".cs", ".xml") to the Transform that
// handles them.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Transform
}

// NewRegistry returns an empty front-end registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Transform)}
}

// Register binds ext (including its leading dot) to a Transform.
func (r *Registry) Register(ext string, t Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[ext] = t
}

// Lookup returns the Transform registered for ext.
func (r *Registry) Lookup(ext string) (Transform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byExt[ext]
	return t, ok
}

// ErrNoFrontend is wrapped into the error returned by Lookup callers that
// need an error value rather than a boolean.
func ErrNoFrontend(ext string) error {
	return fmt.Errorf("no front-end registered for extension %q", ext)
}
