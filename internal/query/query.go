// Package query is the Query Engine (C6): given a compiled pattern, it
// enumerates candidate symbol nodes, reconstructs each one's fully
// qualified name by walking FQDN back-edges, and resolves member-access
// symbols and import ambiguity before returning an ordered result set. It
// holds no state of its own; every call operates over a snapshot of the
// graph handed to it.
package query

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/oxhq/csgraph/internal/core"
	"github.com/oxhq/csgraph/internal/graph"
	"github.com/oxhq/csgraph/internal/pattern"
	"go.uber.org/zap"
)

// PathFilter restricts candidates to a fixed set of files. A nil or empty
// filter means "no restriction".
type PathFilter map[string]bool

// Engine runs Find against one graph.
type Engine struct {
	g      *graph.Graph
	logger *zap.Logger
}

// New returns a query engine reading from g.
func New(g *graph.Graph, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{g: g, logger: logger}
}

// locationCompatible reports whether kind is an acceptable candidate shape
// for the requested location_kind.
func locationCompatible(kind core.SyntaxKind, loc core.LocationKind) bool {
	switch loc {
	case core.LocationNamespace:
		return kind == core.KindNamespaceDecl || kind == core.KindImport
	case core.LocationClass:
		return kind == core.KindClassDef
	case core.LocationMethod:
		return kind == core.KindMethodName
	case core.LocationField:
		return kind == core.KindFieldName || kind == core.KindName
	case core.LocationAll:
		return core.QueryableKinds[kind]
	default:
		return false
	}
}

// tail returns the final dot-segment of s, or s itself if it has none.
func tail(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// candidate is one Phase A survivor, carried through B-E with its working
// FQDN and original location.
type candidate struct {
	node *core.Node
	fqdn core.FQDN
}

// Find runs the five-phase match/reconstruct/resolve algorithm and returns
// results sorted by (file_uri, start_line, start_char). It checks ctx for
// cancellation between candidates.
func (e *Engine) Find(
	ctx context.Context,
	p *pattern.Pattern,
	domainFilter core.DomainFilter,
	pathFilter PathFilter,
	locationKind core.LocationKind,
) ([]core.Result, error) {
	candidates, err := e.phaseA(ctx, p, domainFilter, pathFilter, locationKind)
	if err != nil {
		return nil, err
	}

	reconstructed := make([]candidate, 0, len(candidates))
	for _, n := range candidates {
		select {
		case <-ctx.Done():
			return nil, core.ErrCancelled
		default:
		}

		fqdn, err := e.phaseB(n)
		if err != nil {
			e.logger.Warn("malformed graph during FQDN reconstruction", zap.Int64("handle", int64(n.Handle)), zap.Error(err))
			continue
		}

		// Phase D runs before Phase C's namespace check: a member-access
		// candidate's own FQDN is empty (it carries no FQDN edges of its
		// own), so the namespace re-validation has to run against the
		// symbol Phase D resolves it to, not against the candidate itself.
		fqdn = e.phaseD(n, fqdn)

		if !e.phaseC(p, n, fqdn) {
			continue
		}

		reconstructed = append(reconstructed, candidate{node: n, fqdn: fqdn})
	}

	reconstructed = e.phaseE(reconstructed)

	results := make([]core.Result, 0, len(reconstructed))
	for _, c := range reconstructed {
		results = append(results, core.Result{
			FileURI:    fileURI(c.node.File),
			StartLine:  c.node.Location.StartLine,
			StartChar:  c.node.Location.StartChar,
			EndLine:    c.node.Location.EndLine,
			EndChar:    c.node.Location.EndChar,
			FQDNString: c.fqdn.String(),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FileURI != b.FileURI {
			return a.FileURI < b.FileURI
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartChar < b.StartChar
	})
	return results, nil
}

func fileURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

// phaseA enumerates every node eligible as a candidate.
func (e *Engine) phaseA(
	ctx context.Context,
	p *pattern.Pattern,
	domainFilter core.DomainFilter,
	pathFilter PathFilter,
	locationKind core.LocationKind,
) ([]*core.Node, error) {
	out := make([]*core.Node, 0)
	for _, n := range e.g.AllNodesWithSymbol() {
		select {
		case <-ctx.Done():
			return nil, core.ErrCancelled
		default:
		}

		if !domainFilter.Allows(n.Domain) {
			continue
		}
		if len(pathFilter) > 0 && !pathFilter[n.File] {
			continue
		}
		if !locationCompatible(n.Kind, locationKind) {
			continue
		}
		if !p.MatchSymbol(tail(n.Symbol)) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// phaseB walks precedence-10 edges up to core.MaxFQDNHops, seeding the FQDN
// from the candidate's own kind and filling in slots as ancestors are
// visited.
func (e *Engine) phaseB(n *core.Node) (core.FQDN, error) {
	var fqdn core.FQDN

	switch n.Kind {
	case core.KindImport, core.KindNamespaceDecl:
		fqdn.Namespace = n.Symbol
	case core.KindClassDef:
		fqdn.Class = n.Symbol
	case core.KindMethodName, core.KindFieldName:
		fqdn.Member = n.Symbol
	}

	if n.Kind == core.KindImport {
		return fqdn, nil // imports carry their full namespace text; no traversal
	}

	visited := map[core.Handle]bool{n.Handle: true}
	current := n.Handle
	for hop := 0; hop < core.MaxFQDNHops; hop++ {
		next := firstFQDNSink(e.g, current)
		if next == nil || !isFQDNRelevant(next.Kind) {
			return fqdn, nil
		}
		if visited[next.Handle] {
			return fqdn, core.ErrMalformedGraph
		}
		visited[next.Handle] = true

		switch next.Kind {
		case core.KindNamespaceDecl:
			if fqdn.Namespace == "" {
				fqdn.Namespace = next.Symbol
			} else {
				fqdn.Namespace = next.Symbol + "." + fqdn.Namespace
			}
		case core.KindClassDef:
			if fqdn.Class == "" {
				fqdn.Class = next.Symbol
			}
		case core.KindMethodName, core.KindFieldName:
			if fqdn.Member == "" {
				fqdn.Member = next.Symbol
			}
		}
		current = next.Handle
	}

	if next := firstFQDNSink(e.g, current); next != nil && isFQDNRelevant(next.Kind) {
		return fqdn, core.ErrMalformedGraph
	}
	return fqdn, nil
}

// isFQDNRelevant reports whether a node kind contributes a dotted-name
// component. Traversal stops as soon as it steps off this set (onto the
// comp_unit/DOMAIN_NODE/ROOT_NODE scaffolding above every file), since those
// levels carry no symbol text and are not hops against the bound.
func isFQDNRelevant(k core.SyntaxKind) bool {
	switch k {
	case core.KindNamespaceDecl, core.KindClassDef, core.KindMethodName, core.KindFieldName:
		return true
	default:
		return false
	}
}

func firstFQDNSink(g *graph.Graph, h core.Handle) *core.Node {
	for _, oe := range g.Outgoing(h) {
		if oe.Edge.Precedence == core.PrecedenceFQDN {
			return oe.Sink
		}
	}
	return nil
}

// phaseC re-validates the reconstructed namespace and leaf symbol against
// the pattern. The "namespace" half of the comparison is everything in the
// FQDN that precedes this candidate's own leaf component: for a class_def
// that is just the enclosing namespace; for a method_name/field_name it is
// namespace plus class, since the pattern's prefix spans both.
func (e *Engine) phaseC(p *pattern.Pattern, n *core.Node, fqdn core.FQDN) bool {
	if !p.MatchNamespace(namespacePrefix(n.Kind, fqdn)) {
		return false
	}
	return p.MatchSymbol(tail(n.Symbol))
}

func namespacePrefix(kind core.SyntaxKind, fqdn core.FQDN) string {
	switch kind {
	case core.KindNamespaceDecl, core.KindImport:
		return fqdn.Namespace
	case core.KindClassDef:
		return fqdn.Namespace
	case core.KindMethodName, core.KindFieldName:
		if fqdn.Class == "" {
			return fqdn.Namespace
		}
		if fqdn.Namespace == "" {
			return fqdn.Class
		}
		return fqdn.Namespace + "." + fqdn.Class
	default:
		switch {
		case fqdn.Namespace != "" && fqdn.Class != "":
			return fqdn.Namespace + "." + fqdn.Class
		case fqdn.Class != "":
			return fqdn.Class
		default:
			return fqdn.Namespace
		}
	}
}

// phaseD resolves a member-access candidate ("accessor.accessed") to the
// FQDN of the member it references, when that resolution succeeds.
func (e *Engine) phaseD(n *core.Node, fqdn core.FQDN) core.FQDN {
	if n.Kind != core.KindName {
		return fqdn
	}
	idx := strings.IndexByte(n.Symbol, '.')
	if idx < 0 || strings.IndexByte(n.Symbol[idx+1:], '.') >= 0 {
		return fqdn // not a single-dot member access
	}
	accessor, accessed := n.Symbol[:idx], n.Symbol[idx+1:]

	typeNode := e.resolveLocalVarType(n.File, accessor)
	if typeNode == nil {
		typeNode = e.findTypeByName(accessor)
	}
	if typeNode == nil {
		return fqdn
	}

	for _, oe := range e.g.Outgoing(typeNode.Handle) {
		if oe.Edge.Precedence != core.PrecedenceContainment || oe.Sink == nil {
			continue
		}
		if oe.Sink.Symbol == accessed {
			resolved, err := e.phaseB(oe.Sink)
			if err == nil {
				return resolved
			}
		}
	}
	return fqdn
}

// resolveLocalVarType looks for a local_var named accessor in file and
// follows its type-reference containment edge.
func (e *Engine) resolveLocalVarType(file, accessor string) *core.Node {
	for _, n := range e.g.NodesByFile(file) {
		if n.Kind != core.KindLocalVar || n.Symbol != accessor {
			continue
		}
		for _, oe := range e.g.Outgoing(n.Handle) {
			if oe.Edge.Precedence == core.PrecedenceContainment && oe.Sink != nil && oe.Sink.Kind == core.KindName {
				return e.findTypeByName(oe.Sink.Symbol)
			}
		}
	}
	return nil
}

func (e *Engine) findTypeByName(name string) *core.Node {
	for _, n := range e.g.NodesByKind(core.KindClassDef) {
		if n.Symbol == name {
			return n
		}
	}
	return nil
}

// phaseE prefers the import-matching FQDN when phase B produced more than
// one candidate for the same (file, position).
func (e *Engine) phaseE(candidates []candidate) []candidate {
	byPos := make(map[string][]int)
	for i, c := range candidates {
		key := posKey(c.node)
		byPos[key] = append(byPos[key], i)
	}

	drop := make(map[int]bool)
	for _, idxs := range byPos {
		if len(idxs) < 2 {
			continue
		}
		imports := e.importsForFile(candidates[idxs[0]].node.File)

		var winners []int
		for _, i := range idxs {
			ns := candidates[i].fqdn.Namespace
			for _, imp := range imports {
				if imp == ns {
					winners = append(winners, i)
					break
				}
			}
		}
		if len(winners) == 1 {
			for _, i := range idxs {
				if i != winners[0] {
					drop[i] = true
				}
			}
		}
	}

	out := make([]candidate, 0, len(candidates))
	for i, c := range candidates {
		if !drop[i] {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) importsForFile(file string) []string {
	var out []string
	for _, n := range e.g.NodesByFile(file) {
		if n.Kind == core.KindImport {
			out = append(out, n.Symbol)
		}
	}
	return out
}

func posKey(n *core.Node) string {
	return n.File + "|" + strconv.Itoa(n.Location.StartLine) + "|" + strconv.Itoa(n.Location.StartChar)
}
