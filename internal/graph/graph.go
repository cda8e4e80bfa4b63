// Package graph implements the in-memory symbol graph (C2): an append-mostly
// directed graph of core.Node vertices connected by precedence-tagged
// core.Edge arcs, safe for many concurrent readers and one writer at a time.
package graph

import (
	"sort"
	"sync"

	"github.com/oxhq/csgraph/internal/core"
)

type edgeKey struct {
	src, dst   core.Handle
	precedence int
}

// Graph is one in-memory symbol graph instance.
type Graph struct {
	mu sync.RWMutex

	nextHandle core.Handle
	nodes      map[core.Handle]*core.Node
	seenEdges  map[edgeKey]struct{}
	outgoing   map[core.Handle][]core.Edge

	byFile map[string][]core.Handle
	byKind map[core.SyntaxKind][]core.Handle
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[core.Handle]*core.Node),
		seenEdges: make(map[edgeKey]struct{}),
		outgoing:  make(map[core.Handle][]core.Edge),
		byFile:    make(map[string][]core.Handle),
		byKind:    make(map[core.SyntaxKind][]core.Handle),
	}
}

// AddNode inserts a node and returns its newly-allocated dense handle.
// Duplicates of (domain, symbol, syntax_kind, location) are permitted; the
// dedup stage outside the core resolves those.
func (g *Graph) AddNode(attrs core.NodeAttrs) core.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextHandle++
	h := g.nextHandle
	g.nodes[h] = &core.Node{Handle: h, NodeAttrs: attrs}

	if attrs.File != "" {
		g.byFile[attrs.File] = append(g.byFile[attrs.File], h)
	}
	g.byKind[attrs.Kind] = append(g.byKind[attrs.Kind], h)

	return h
}

// RestoreNode re-inserts a node at its previously-assigned handle, used when
// rehydrating the graph from the backing store. The graph's next-handle
// counter is advanced past h so future AddNode calls stay dense relative to
// what has been restored.
func (g *Graph) RestoreNode(h core.Handle, attrs core.NodeAttrs) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes[h] = &core.Node{Handle: h, NodeAttrs: attrs}
	if attrs.File != "" {
		g.byFile[attrs.File] = append(g.byFile[attrs.File], h)
	}
	g.byKind[attrs.Kind] = append(g.byKind[attrs.Kind], h)
	if h > g.nextHandle {
		g.nextHandle = h
	}
}

// AddEdge inserts a directed edge. Idempotent: re-adding an identical
// (src, dst, precedence) triple is a no-op.
func (g *Graph) AddEdge(src, dst core.Handle, precedence int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := edgeKey{src, dst, precedence}
	if _, ok := g.seenEdges[key]; ok {
		return
	}
	g.seenEdges[key] = struct{}{}
	g.outgoing[src] = append(g.outgoing[src], core.Edge{Src: src, Dst: dst, Precedence: precedence})
}

// OutgoingEdge pairs an edge with its resolved sink node.
type OutgoingEdge struct {
	Edge core.Edge
	Sink *core.Node
}

// Outgoing returns node's outgoing edges in deterministic order: sorted by
// sink handle, then precedence.
func (g *Graph) Outgoing(node core.Handle) []OutgoingEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := g.outgoing[node]
	if len(edges) == 0 {
		return nil
	}
	sorted := make([]core.Edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Dst != sorted[j].Dst {
			return sorted[i].Dst < sorted[j].Dst
		}
		return sorted[i].Precedence < sorted[j].Precedence
	})

	out := make([]OutgoingEdge, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, OutgoingEdge{Edge: e, Sink: g.nodes[e.Dst]})
	}
	return out
}

// Node returns the node for a handle, or nil if it does not exist.
func (g *Graph) Node(h core.Handle) *core.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[h]
}

// NodesByFile returns every node anchored to path, sorted by handle.
func (g *Graph) NodesByFile(path string) []*core.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.resolveSorted(g.byFile[path])
}

// NodesByKind returns every node of the given syntax kind, sorted by handle.
func (g *Graph) NodesByKind(kind core.SyntaxKind) []*core.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.resolveSorted(g.byKind[kind])
}

// AllNodesWithSymbol returns every node with a non-empty symbol, sorted by
// handle, for query-engine candidate scans.
func (g *Graph) AllNodesWithSymbol() []*core.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	handles := make([]core.Handle, 0, len(g.nodes))
	for h, n := range g.nodes {
		if n.Symbol != "" {
			handles = append(handles, h)
		}
	}
	return g.resolveSorted(handles)
}

func (g *Graph) resolveSorted(handles []core.Handle) []*core.Node {
	if len(handles) == 0 {
		return nil
	}
	sorted := make([]core.Handle, len(handles))
	copy(sorted, handles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]*core.Node, 0, len(sorted))
	for _, h := range sorted {
		if n := g.nodes[h]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// PurgeFile removes every node anchored to path and the edges that
// originate from them, prior to re-indexing that file.
func (g *Graph) PurgeFile(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	handles := g.byFile[path]
	if len(handles) == 0 {
		return
	}
	doomed := make(map[core.Handle]struct{}, len(handles))
	for _, h := range handles {
		doomed[h] = struct{}{}
	}

	for h := range doomed {
		n := g.nodes[h]
		for _, e := range g.outgoing[h] {
			delete(g.seenEdges, edgeKey{e.Src, e.Dst, e.Precedence})
		}
		delete(g.nodes, h)
		delete(g.outgoing, h)
		if n != nil {
			g.byKind[n.Kind] = removeHandle(g.byKind[n.Kind], h)
		}
	}
	delete(g.byFile, path)

	for src, edges := range g.outgoing {
		kept := edges[:0:0]
		for _, e := range edges {
			if _, gone := doomed[e.Dst]; gone {
				delete(g.seenEdges, edgeKey{e.Src, e.Dst, e.Precedence})
				continue
			}
			kept = append(kept, e)
		}
		g.outgoing[src] = kept
	}
}

func removeHandle(handles []core.Handle, target core.Handle) []core.Handle {
	out := handles[:0:0]
	for _, h := range handles {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}

// ReplaceFrom swaps g's contents for other's, used when a fresh graph has
// been rehydrated from the backing store and needs to become the live graph
// every existing holder of g already points to. other must not be shared
// with any other goroutine after this call.
func (g *Graph) ReplaceFrom(other *Graph) {
	g.mu.Lock()
	defer g.mu.Unlock()

	other.mu.Lock()
	defer other.mu.Unlock()

	g.nextHandle = other.nextHandle
	g.nodes = other.nodes
	g.seenEdges = other.seenEdges
	g.outgoing = other.outgoing
	g.byFile = other.byFile
	g.byKind = other.byKind
}

// Len returns the number of live nodes, for tests and diagnostics.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}
