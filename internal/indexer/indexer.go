// Package indexer is C5: it discovers files under a project root, routes
// each to the right front-end (C3 for .cs, C4 for .xml), and keeps the
// in-memory graph and the backing store in sync. Per-file indexing fans out
// across a bounded worker pool; the store write path is serialized behind
// one owner, matching the single-writer discipline the rest of the system
// assumes.
package indexer

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oxhq/csgraph/internal/core"
	"github.com/oxhq/csgraph/internal/frontend"
	"github.com/oxhq/csgraph/internal/graph"
	"github.com/oxhq/csgraph/internal/store"
)

// extPatterns are the glob patterns file discovery walks, one per
// registered front-end extension.
var extPatterns = []string{"**/*.cs", "**/*.xml"}

// Summary reports the outcome of one Index/Reindex call. RunID identifies
// this invocation in logs, the way a session id ties a run's log lines
// together.
type Summary struct {
	RunID        string
	FilesIndexed int
	FileErrors   map[string]error
}

// Indexer orchestrates C3/C4 over a project tree and persists the result.
type Indexer struct {
	writeMu sync.Mutex // serializes all backing-store writes
	scafMu  sync.Mutex // guards rootNode/domainNodes across worker goroutines

	g       *graph.Graph
	st      *store.Store
	reg     *frontend.Registry
	logger  *zap.Logger
	workers int

	rootNode    core.Handle
	domainNodes map[core.Domain]core.Handle
}

// New wires an Indexer over an existing graph and store. The graph is
// expected to already be empty or freshly restored; the indexer bootstraps
// ROOT_NODE and the three DOMAIN_NODEs on first use.
func New(g *graph.Graph, st *store.Store, reg *frontend.Registry, logger *zap.Logger, workers int) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 32
	}
	return &Indexer{
		g:           g,
		st:          st,
		reg:         reg,
		logger:      logger,
		workers:     workers,
		domainNodes: make(map[core.Domain]core.Handle),
	}
}

// Open rehydrates from the store if it already holds data, otherwise runs a
// full Index over rootDir.
func (ix *Indexer) Open(ctx context.Context, rootDir string, domain core.Domain) (*Summary, error) {
	empty, err := ix.st.IsEmpty()
	if err != nil {
		return nil, err
	}
	if !empty {
		runID := uuid.New().String()
		restored, err := ix.st.Restore()
		if err != nil {
			return nil, fmt.Errorf("%w: restore: %v", core.ErrStorage, err)
		}
		ix.g.ReplaceFrom(restored)
		ix.bootstrapFromGraph()
		ix.logger.Info("rehydrated from store", zap.String("run_id", runID), zap.Int("nodes", ix.g.Len()))
		return &Summary{RunID: runID, FileErrors: map[string]error{}}, nil
	}
	return ix.Index(ctx, rootDir, domain)
}

// bootstrapFromGraph re-derives rootNode/domainNodes handles after a
// restore, by symbol text, since the indexer's own fields do not survive a
// process restart.
func (ix *Indexer) bootstrapFromGraph() {
	for _, n := range ix.g.NodesByKind(core.KindRoot) {
		ix.rootNode = n.Handle
	}
	for _, n := range ix.g.NodesByKind(core.KindDomainTag) {
		switch n.Symbol {
		case core.DomainTagSource:
			ix.domainNodes[core.DomainSource] = n.Handle
		case core.DomainTagDependency:
			ix.domainNodes[core.DomainDependency] = n.Handle
		case core.DomainTagBuiltin:
			ix.domainNodes[core.DomainBuiltin] = n.Handle
		}
	}
}

// ensureScaffolding returns ROOT_NODE and the DOMAIN_NODE for domain,
// adding them to the graph on first use; persistFile writes them to the
// store.
func (ix *Indexer) ensureScaffolding(domain core.Domain) (core.Handle, core.Handle, error) {
	ix.scafMu.Lock()
	defer ix.scafMu.Unlock()

	if ix.rootNode == core.NoHandle {
		ix.rootNode = ix.g.AddNode(core.NodeAttrs{Symbol: "ROOT_NODE", Kind: core.KindRoot})
	}
	if h, ok := ix.domainNodes[domain]; ok {
		return ix.rootNode, h, nil
	}
	h := ix.g.AddNode(core.NodeAttrs{Symbol: core.DomainTag(domain), Kind: core.KindDomainTag, Domain: domain})
	ix.domainNodes[domain] = h
	return ix.rootNode, h, nil
}

// Index walks rootDir, running C3 over .cs files and C4 over .xml files,
// and persists every discovered node, edge, and partial path.
func (ix *Indexer) Index(ctx context.Context, rootDir string, domain core.Domain) (*Summary, error) {
	paths, err := discover(rootDir)
	if err != nil {
		return nil, fmt.Errorf("%w: discover: %v", core.ErrStorage, err)
	}

	runID := uuid.New().String()
	ix.logger.Info("index run starting", zap.String("run_id", runID), zap.String("root", rootDir), zap.Int("files", len(paths)))

	summary := &Summary{RunID: runID, FileErrors: make(map[string]error)}
	var summaryMu sync.Mutex

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < ix.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case path, ok := <-jobs:
					if !ok {
						return
					}
					if err := ix.indexOne(rootDir, path, domain); err != nil {
						summaryMu.Lock()
						summary.FileErrors[path] = err
						summaryMu.Unlock()
						ix.logger.Warn("front-end failure", zap.String("path", path), zap.Error(err))
						continue
					}
					summaryMu.Lock()
					summary.FilesIndexed++
					summaryMu.Unlock()
				}
			}
		}()
	}

feed:
	for _, p := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- p:
		}
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		return summary, fmt.Errorf("%w", core.ErrCancelled)
	}
	return summary, nil
}

// Reindex purges and re-indexes each changed path, then rebuilds the
// in-memory graph from the store so no stale in-memory state survives.
func (ix *Indexer) Reindex(ctx context.Context, changedPaths []string, rootDir string, domain core.Domain) (*Summary, error) {
	sorted := append([]string(nil), changedPaths...)
	sort.Strings(sorted)

	ix.writeMu.Lock()
	for _, p := range sorted {
		if err := ix.st.PurgeFile(p); err != nil {
			ix.writeMu.Unlock()
			return nil, fmt.Errorf("%w: purge %s: %v", core.ErrStorage, p, err)
		}
		// The in-memory graph must shed the file's nodes too, or persistFile
		// would write the stale ones straight back alongside the new ones.
		ix.g.PurgeFile(p)
	}
	ix.writeMu.Unlock()

	runID := uuid.New().String()
	ix.logger.Info("reindex run starting", zap.String("run_id", runID), zap.Int("changed", len(sorted)))

	summary := &Summary{RunID: runID, FileErrors: make(map[string]error)}
	for _, p := range sorted {
		select {
		case <-ctx.Done():
			return summary, fmt.Errorf("%w", core.ErrCancelled)
		default:
		}
		if err := ix.indexOne(rootDir, p, domain); err != nil {
			summary.FileErrors[p] = err
			continue
		}
		summary.FilesIndexed++
	}

	restored, err := ix.st.Restore()
	if err != nil {
		return summary, fmt.Errorf("%w: rebuild: %v", core.ErrStorage, err)
	}
	ix.g.ReplaceFrom(restored)
	ix.bootstrapFromGraph()
	return summary, nil
}

// indexOne hashes, transforms, and persists a single file. rootDir-relative
// path is used as the stored identity.
func (ix *Indexer) indexOne(rootDir, relPath string, domain core.Domain) error {
	full := filepath.Join(rootDir, relPath)
	content, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", core.ErrParse, relPath, err)
	}
	hash := sha1Hex(content)

	ext := filepath.Ext(relPath)
	fileDomain := domain
	if ext == ".xml" {
		fileDomain = core.DomainDependency
	}

	transform, ok := ix.reg.Lookup(ext)
	if !ok {
		return frontend.ErrNoFrontend(ext)
	}

	root, domainNode, err := ix.ensureScaffolding(fileDomain)
	if err != nil {
		return err
	}

	globals := frontend.Globals{
		FilePath:   relPath,
		RootNode:   root,
		DomainNode: domainNode,
		Domain:     fileDomain,
	}
	if err := transform(ix.g, content, globals); err != nil {
		return err
	}

	return ix.persistFile(relPath, hash, fileDomain, root, domainNode)
}

// persistFile writes the file row plus every node/edge reachable from
// nodes anchored to relPath, including the scaffolding edges above it.
func (ix *Indexer) persistFile(relPath, hash string, domain core.Domain, root, domainNode core.Handle) error {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	if err := ix.st.PutFile(relPath, hash, domain); err != nil {
		return err
	}

	seen := make(map[core.Handle]struct{})
	nodes := ix.g.NodesByFile(relPath)
	for _, n := range nodes {
		if err := ix.st.PutNode(n.Handle, n.NodeAttrs); err != nil {
			return err
		}
		// The partial path is the symbol of the node's FQDN parent, the
		// immediate dotted prefix of its name.
		for _, oe := range ix.g.Outgoing(n.Handle) {
			if oe.Edge.Precedence != core.PrecedenceFQDN || oe.Sink == nil {
				continue
			}
			switch oe.Sink.Kind {
			case core.KindNamespaceDecl, core.KindClassDef, core.KindMethodName:
				if err := ix.st.PutPartialPath(n.Handle, oe.Sink.Symbol); err != nil {
					return err
				}
			}
			break
		}
		seen[n.Handle] = struct{}{}
	}

	for h := range seen {
		for _, oe := range ix.g.Outgoing(h) {
			if err := ix.st.PutEdge(oe.Edge); err != nil {
				return err
			}
		}
	}

	for _, scaffold := range []core.Handle{root, domainNode} {
		if err := ix.persistScaffoldNode(scaffold); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Indexer) persistScaffoldNode(h core.Handle) error {
	n := ix.g.Node(h)
	if n == nil {
		return nil
	}
	if err := ix.st.PutNode(n.Handle, n.NodeAttrs); err != nil {
		return err
	}
	for _, oe := range ix.g.Outgoing(h) {
		if err := ix.st.PutEdge(oe.Edge); err != nil {
			return err
		}
	}
	return nil
}

// discover returns every .cs/.xml path under root, relative to root and
// sorted, so iteration order is deterministic.
func discover(root string) ([]string, error) {
	var all []string
	for _, pattern := range extPatterns {
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return nil, err
		}
		all = append(all, matches...)
	}
	sort.Strings(all)
	return all, nil
}

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
