// Package csharp is the CST→Graph Transformer (C3): a tree-sitter-backed
// rule set that walks a parsed C# compilation unit and emits the symbol
// nodes and edges required by the data model. Each CST node type that
// matters is dispatched to its own handler, the per-node-type code
// generation option the transformer design allows in place of a runtime
// rule interpreter; capture sharing across "rules" for one CST node falls
// out naturally because each handler both declares and wires its node in a
// single pass.
package csharp

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/csgraph/internal/core"
	"github.com/oxhq/csgraph/internal/frontend"
	"github.com/oxhq/csgraph/internal/graph"
)

// scope carries the globals C5 injects plus the containment chain accrued
// while walking one compilation unit. It is rebuilt per file, matching the
// "per-invocation, not per-process" lifetime the globals require.
type scope struct {
	g       *graph.Graph
	src     []byte
	globals frontend.Globals

	compUnit  core.Handle
	namespace core.Handle
	class     core.Handle
	method    core.Handle
}

// Transform parses src as C# and populates g with this file's nodes and
// edges. It satisfies frontend.Transform.
func Transform(g *graph.Graph, src []byte, globals frontend.Globals) error {
	parser := sitter.NewParser()
	parser.SetLanguage(Language())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrParse, err)
	}
	root := tree.RootNode()
	if root == nil {
		return fmt.Errorf("%w: empty tree for %s", core.ErrParse, globals.FilePath)
	}

	compUnit := g.AddNode(core.NodeAttrs{
		Symbol: globals.FilePath,
		Kind:   core.KindCompUnit,
		Role:   core.RoleDefinition,
		Domain: globals.Domain,
		File:   globals.FilePath,
	})
	addContainment(g, globals.RootNode, globals.DomainNode)
	addContainment(g, globals.DomainNode, compUnit)

	s := &scope{g: g, src: src, globals: globals, compUnit: compUnit}
	s.walkChildren(root)
	return nil
}

// addContainment emits both halves of a containment/FQDN edge pair:
// precedence-0 parent→child and precedence-10 child→parent.
func addContainment(g *graph.Graph, parent, child core.Handle) {
	g.AddEdge(parent, child, core.PrecedenceContainment)
	g.AddEdge(child, parent, core.PrecedenceFQDN)
}

func (s *scope) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(s.src)
}

func (s *scope) loc(n *sitter.Node) core.Location {
	start, end := n.StartPoint(), n.EndPoint()
	return core.Location{
		StartLine: int(start.Row),
		StartChar: int(start.Column),
		EndLine:   int(end.Row),
		EndChar:   int(end.Column),
	}
}

// walkChildren dispatches every named child of n to its handler, then
// recurses into children that do not establish their own scope (so nested
// expressions inside e.g. a namespace body are still visited).
func (s *scope) walkChildren(n *sitter.Node) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		s.dispatch(child)
	}
}

func (s *scope) dispatch(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "using_directive":
		s.handleUsing(n)
	case "namespace_declaration", "file_scoped_namespace_declaration":
		s.handleNamespace(n)
	case "class_declaration", "struct_declaration", "interface_declaration", "record_declaration":
		s.handleClass(n)
	case "method_declaration", "constructor_declaration", "operator_declaration", "destructor_declaration":
		s.handleMethod(n)
	case "field_declaration":
		s.handleField(n)
	case "property_declaration":
		s.handleProperty(n)
	case "local_declaration_statement":
		s.handleLocalDeclaration(n)
	case "argument":
		s.handleArgument(n)
	case "member_access_expression":
		s.handleMemberAccess(n)
		s.walkChildren(n)
	case "object_creation_expression":
		s.handleObjectCreation(n)
		s.walkChildren(n)
	default:
		s.walkChildren(n)
	}
}

func (s *scope) handleUsing(n *sitter.Node) {
	// The imported name is the directive's last named child, after any
	// "static" or alias prefix.
	count := int(n.NamedChildCount())
	if count == 0 {
		return
	}
	name := n.NamedChild(count - 1)
	s.g.AddNode(core.NodeAttrs{
		Symbol:   s.text(name),
		Kind:     core.KindImport,
		Role:     core.RoleReference,
		Domain:   s.globals.Domain,
		File:     s.globals.FilePath,
		Location: s.loc(n),
	})
}

func (s *scope) handleNamespace(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	handle := s.g.AddNode(core.NodeAttrs{
		Symbol:   s.text(name),
		Kind:     core.KindNamespaceDecl,
		Role:     core.RoleDefinition,
		Domain:   s.globals.Domain,
		File:     s.globals.FilePath,
		Location: s.loc(n),
	})

	parent := s.compUnit
	if s.namespace != core.NoHandle {
		parent = s.namespace
	}
	addContainment(s.g, parent, handle)

	child := &scope{g: s.g, src: s.src, globals: s.globals, compUnit: s.compUnit, namespace: handle}
	body := n.ChildByFieldName("body")
	if body != nil {
		child.walkChildren(body)
	} else {
		child.walkChildren(n)
	}
}

func (s *scope) handleClass(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	handle := s.g.AddNode(core.NodeAttrs{
		Symbol:   s.text(name),
		Kind:     core.KindClassDef,
		Role:     core.RoleDefinition,
		Domain:   s.globals.Domain,
		File:     s.globals.FilePath,
		Location: s.loc(n),
	})

	var parent core.Handle
	switch {
	case s.class != core.NoHandle:
		parent = s.class
	case s.namespace != core.NoHandle:
		parent = s.namespace
	default:
		parent = s.compUnit
	}
	addContainment(s.g, parent, handle)

	child := &scope{g: s.g, src: s.src, globals: s.globals, compUnit: s.compUnit, namespace: s.namespace, class: handle}
	body := n.ChildByFieldName("body")
	if body != nil {
		child.walkChildren(body)
	} else {
		child.walkChildren(n)
	}
}

func (s *scope) handleMethod(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	symbol := s.text(name)
	if symbol == "" {
		// Constructors, destructors, and operators may not carry a "name"
		// field depending on the grammar revision; fall back to the node
		// text itself trimmed to its header.
		header := s.text(n)
		if body := n.ChildByFieldName("body"); body != nil {
			header = string(s.src[n.StartByte():body.StartByte()])
		}
		symbol = strings.TrimSpace(header)
	}

	handle := s.g.AddNode(core.NodeAttrs{
		Symbol:   symbol,
		Kind:     core.KindMethodName,
		Role:     core.RoleDefinition,
		Domain:   s.globals.Domain,
		File:     s.globals.FilePath,
		Location: s.loc(n),
	})

	parent := s.compUnit
	if s.class != core.NoHandle {
		parent = s.class
	}
	addContainment(s.g, parent, handle)

	child := &scope{g: s.g, src: s.src, globals: s.globals, compUnit: s.compUnit, namespace: s.namespace, class: s.class, method: handle}
	body := n.ChildByFieldName("body")
	if body != nil {
		child.walkChildren(body)
	}
}

func (s *scope) handleField(n *sitter.Node) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c.Type() != "variable_declaration" {
			continue
		}
		declCount := int(c.NamedChildCount())
		for j := 0; j < declCount; j++ {
			d := c.NamedChild(j)
			if d.Type() != "variable_declarator" {
				continue
			}
			name := d.ChildByFieldName("name")
			s.emitField(name, d)
		}
	}
}

func (s *scope) handleProperty(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	s.emitField(name, n)
}

func (s *scope) emitField(name *sitter.Node, loc *sitter.Node) {
	if s.class == core.NoHandle {
		return
	}
	handle := s.g.AddNode(core.NodeAttrs{
		Symbol:   s.text(name),
		Kind:     core.KindFieldName,
		Role:     core.RoleDefinition,
		Domain:   s.globals.Domain,
		File:     s.globals.FilePath,
		Location: s.loc(loc),
	})
	addContainment(s.g, s.class, handle)
}

func (s *scope) handleLocalDeclaration(n *sitter.Node) {
	if s.method == core.NoHandle {
		s.walkChildren(n)
		return
	}

	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c.Type() != "variable_declaration" {
			continue
		}
		typeNode := c.ChildByFieldName("type")
		declCount := int(c.NamedChildCount())
		for j := 0; j < declCount; j++ {
			d := c.NamedChild(j)
			if d.Type() != "variable_declarator" {
				continue
			}
			name := d.ChildByFieldName("name")
			local := s.g.AddNode(core.NodeAttrs{
				Symbol:   s.text(name),
				Kind:     core.KindLocalVar,
				Role:     core.RoleDefinition,
				Domain:   s.globals.Domain,
				File:     s.globals.FilePath,
				Location: s.loc(d),
			})
			addContainment(s.g, s.method, local)

			if typeNode != nil {
				typeRef := s.g.AddNode(core.NodeAttrs{
					Symbol:   s.text(typeNode),
					Kind:     core.KindName,
					Role:     core.RoleReference,
					Domain:   s.globals.Domain,
					File:     s.globals.FilePath,
					Location: s.loc(typeNode),
				})
				addContainment(s.g, local, typeRef)
			}

			// Object creations and member accesses inside the initializer
			// still need their reference nodes.
			s.walkChildren(d)
		}
	}
}

func (s *scope) handleArgument(n *sitter.Node) {
	if name := n.ChildByFieldName("name"); name != nil && s.method != core.NoHandle {
		handle := s.g.AddNode(core.NodeAttrs{
			Symbol:   s.text(name),
			Kind:     core.KindArgument,
			Role:     core.RoleReference,
			Domain:   s.globals.Domain,
			File:     s.globals.FilePath,
			Location: s.loc(n),
		})
		addContainment(s.g, s.method, handle)
	}
	s.walkChildren(n)
}

func (s *scope) handleMemberAccess(n *sitter.Node) {
	expr := n.ChildByFieldName("expression")
	name := n.ChildByFieldName("name")
	if expr == nil || name == nil {
		return
	}
	symbol := s.text(expr) + "." + s.text(name)
	s.g.AddNode(core.NodeAttrs{
		Symbol:   symbol,
		Kind:     core.KindName,
		Role:     core.RoleReference,
		Domain:   s.globals.Domain,
		File:     s.globals.FilePath,
		Location: s.loc(n),
	})
}

func (s *scope) handleObjectCreation(n *sitter.Node) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	s.g.AddNode(core.NodeAttrs{
		Symbol:   s.text(typeNode),
		Kind:     core.KindName,
		Role:     core.RoleReference,
		Domain:   s.globals.Domain,
		File:     s.globals.FilePath,
		Location: s.loc(n),
	})
}
