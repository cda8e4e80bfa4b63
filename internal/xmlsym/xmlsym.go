// Package xmlsym is the XML Symbol Analyzer (C4): an alternate front-end
// that derives the same symbol-graph shapes C3 produces, but from SDK
// documentation XML rather than source text. It streams tokens instead of
// building a DOM, since only <member name="..."> elements matter and the
// rest of the document can be ignored outright.
package xmlsym

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/oxhq/csgraph/internal/core"
	"github.com/oxhq/csgraph/internal/frontend"
	"github.com/oxhq/csgraph/internal/graph"
)

// Transform scans src for <member name="K:Dotted.Path"> records and emits
// namespace_decl/class_def/method_name/field_name nodes plus their
// containment+FQDN edge pairs. It satisfies frontend.Transform.
func Transform(g *graph.Graph, src []byte, globals frontend.Globals) error {
	compUnit := g.AddNode(core.NodeAttrs{
		Symbol: globals.FilePath,
		Kind:   core.KindCompUnit,
		Role:   core.RoleDefinition,
		Domain: globals.Domain,
		File:   globals.FilePath,
	})
	g.AddEdge(globals.RootNode, globals.DomainNode, core.PrecedenceContainment)
	g.AddEdge(globals.DomainNode, globals.RootNode, core.PrecedenceFQDN)
	g.AddEdge(globals.DomainNode, compUnit, core.PrecedenceContainment)
	g.AddEdge(compUnit, globals.DomainNode, core.PrecedenceFQDN)

	dec := xml.NewDecoder(bytes.NewReader(src))
	namespaces := make(map[string]core.Handle)
	classes := make(map[string]core.Handle)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrParse, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "member" {
			continue
		}
		name := attr(start, "name")
		if name == "" {
			continue
		}
		if err := emitMember(g, globals, compUnit, namespaces, classes, name); err != nil {
			return err
		}
	}
	return nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// emitMember decodes one "K:Dotted.Symbol.Path" record and emits the
// namespace/class/member chain it implies, reusing already-seen namespace
// and class nodes for this file.
func emitMember(
	g *graph.Graph,
	globals frontend.Globals,
	compUnit core.Handle,
	namespaces, classes map[string]core.Handle,
	raw string,
) error {
	idx := strings.Index(raw, ":")
	if idx < 0 || idx != 1 {
		return nil
	}
	kind := raw[0]
	path := stripParens(raw[idx+1:])
	if path == "" {
		return nil
	}

	switch kind {
	case 'N':
		internNamespace(g, globals, compUnit, namespaces, path)
	case 'T':
		nsPath, className := splitLast(path)
		ns := internNamespace(g, globals, compUnit, namespaces, nsPath)
		internClass(g, globals, ns, classes, nsPath, className)
	case 'M', 'F', 'P':
		rest, memberName := splitLast(path)
		nsPath, className := splitLast(rest)
		ns := internNamespace(g, globals, compUnit, namespaces, nsPath)
		class := internClass(g, globals, ns, classes, nsPath, className)
		emitMemberNode(g, globals, class, kind, memberName)
	default:
		return nil
	}
	return nil
}

// stripParens removes a trailing parameter list, e.g. "Format(System.String)"
// becomes "Format", before the path is split into segments.
func stripParens(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 {
		return s[:i]
	}
	return s
}

// splitLast splits a dotted path into (prefix, last segment).
func splitLast(s string) (string, string) {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}

func internNamespace(
	g *graph.Graph,
	globals frontend.Globals,
	compUnit core.Handle,
	namespaces map[string]core.Handle,
	path string,
) core.Handle {
	if path == "" {
		return compUnit
	}
	if h, ok := namespaces[path]; ok {
		return h
	}
	h := g.AddNode(core.NodeAttrs{
		Symbol: path,
		Kind:   core.KindNamespaceDecl,
		Role:   core.RoleDefinition,
		Domain: globals.Domain,
		File:   globals.FilePath,
	})
	namespaces[path] = h
	g.AddEdge(compUnit, h, core.PrecedenceContainment)
	g.AddEdge(h, compUnit, core.PrecedenceFQDN)
	return h
}

func internClass(
	g *graph.Graph,
	globals frontend.Globals,
	nsHandle core.Handle,
	classes map[string]core.Handle,
	nsPath, className string,
) core.Handle {
	key := nsPath + "\x00" + className
	if h, ok := classes[key]; ok {
		return h
	}
	h := g.AddNode(core.NodeAttrs{
		Symbol: className,
		Kind:   core.KindClassDef,
		Role:   core.RoleDefinition,
		Domain: globals.Domain,
		File:   globals.FilePath,
	})
	classes[key] = h
	g.AddEdge(nsHandle, h, core.PrecedenceContainment)
	g.AddEdge(h, nsHandle, core.PrecedenceFQDN)
	return h
}

func emitMemberNode(g *graph.Graph, globals frontend.Globals, class core.Handle, kind byte, name string) {
	var syntaxKind core.SyntaxKind
	if kind == 'M' {
		syntaxKind = core.KindMethodName
	} else {
		syntaxKind = core.KindFieldName
	}
	h := g.AddNode(core.NodeAttrs{
		Symbol: name,
		Kind:   syntaxKind,
		Role:   core.RoleDefinition,
		Domain: globals.Domain,
		File:   globals.FilePath,
	})
	g.AddEdge(class, h, core.PrecedenceContainment)
	g.AddEdge(h, class, core.PrecedenceFQDN)
}
