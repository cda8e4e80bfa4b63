package xmlsym

import (
	"testing"

	"github.com/oxhq/csgraph/internal/core"
	"github.com/oxhq/csgraph/internal/frontend"
	"github.com/oxhq/csgraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTransform(t *testing.T, src string) *graph.Graph {
	t.Helper()
	g := graph.New()
	root := g.AddNode(core.NodeAttrs{Symbol: "ROOT_NODE"})
	domain := g.AddNode(core.NodeAttrs{Symbol: core.DomainTagDependency, Domain: core.DomainDependency})

	err := Transform(g, []byte(src), frontend.Globals{
		FilePath:   "System.xml",
		RootNode:   root,
		DomainNode: domain,
		Domain:     core.DomainDependency,
	})
	require.NoError(t, err)
	return g
}

func TestTransform_MethodMember(t *testing.T) {
	g := mustTransform(t, `<doc><members><member name="M:System.String.Format(System.String)"/></members></doc>`)

	methods := g.NodesByKind(core.KindMethodName)
	require.Len(t, methods, 1)
	assert.Equal(t, "Format", methods[0].Symbol)
	assert.Equal(t, core.DomainDependency, methods[0].Domain)
	assert.Equal(t, core.RoleDefinition, methods[0].Role)

	classes := g.NodesByKind(core.KindClassDef)
	require.Len(t, classes, 1)
	assert.Equal(t, "String", classes[0].Symbol)

	namespaces := g.NodesByKind(core.KindNamespaceDecl)
	require.Len(t, namespaces, 1)
	assert.Equal(t, "System", namespaces[0].Symbol)

	out := g.Outgoing(classes[0].Handle)
	var sawContainment bool
	for _, e := range out {
		if e.Edge.Dst == methods[0].Handle && e.Edge.Precedence == core.PrecedenceContainment {
			sawContainment = true
		}
	}
	assert.True(t, sawContainment)
}

func TestTransform_TypeAndNamespaceDedup(t *testing.T) {
	g := mustTransform(t, `<doc><members>
		<member name="T:System.Web.Mvc.Controller"/>
		<member name="M:System.Web.Mvc.Controller.Execute"/>
	</members></doc>`)

	namespaces := g.NodesByKind(core.KindNamespaceDecl)
	require.Len(t, namespaces, 1, "both members share the same namespace prefix")
	assert.Equal(t, "System.Web.Mvc", namespaces[0].Symbol)

	classes := g.NodesByKind(core.KindClassDef)
	require.Len(t, classes, 1, "both members share the same class")
	assert.Equal(t, "Controller", classes[0].Symbol)

	methods := g.NodesByKind(core.KindMethodName)
	require.Len(t, methods, 1)
	assert.Equal(t, "Execute", methods[0].Symbol)
}

func TestTransform_FieldAndProperty(t *testing.T) {
	g := mustTransform(t, `<doc><members>
		<member name="F:Acme.Widget.count"/>
		<member name="P:Acme.Widget.Name"/>
	</members></doc>`)

	fields := g.NodesByKind(core.KindFieldName)
	require.Len(t, fields, 2)
	names := []string{fields[0].Symbol, fields[1].Symbol}
	assert.Contains(t, names, "count")
	assert.Contains(t, names, "Name")
}

func TestTransform_IgnoresNonMemberElements(t *testing.T) {
	g := mustTransform(t, `<doc><assembly><name>System</name></assembly><members>
		<member name="N:System.Web"/>
	</members></doc>`)

	namespaces := g.NodesByKind(core.KindNamespaceDecl)
	require.Len(t, namespaces, 1)
	assert.Equal(t, "System.Web", namespaces[0].Symbol)
}
