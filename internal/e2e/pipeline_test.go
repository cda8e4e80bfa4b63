// Package e2e drives the full Index -> Find pipeline against real files on
// disk, rather than hand-built graph fixtures, so the wiring between C3/C4,
// C5, and C6 is exercised together at least once.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/csgraph/internal/core"
	"github.com/oxhq/csgraph/internal/csharp"
	"github.com/oxhq/csgraph/internal/frontend"
	"github.com/oxhq/csgraph/internal/graph"
	"github.com/oxhq/csgraph/internal/indexer"
	"github.com/oxhq/csgraph/internal/pattern"
	"github.com/oxhq/csgraph/internal/query"
	"github.com/oxhq/csgraph/internal/store"
	"github.com/oxhq/csgraph/internal/xmlsym"
)

func newPipeline(t *testing.T) (*indexer.Indexer, *graph.Graph, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:", false, nil)
	require.NoError(t, err)

	reg := frontend.NewRegistry()
	reg.Register(".cs", csharp.Transform)
	reg.Register(".xml", xmlsym.Transform)

	g := graph.New()
	return indexer.New(g, st, reg, nil, 4), g, st
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func find(t *testing.T, g *graph.Graph, p string, domain core.DomainFilter, loc core.LocationKind) []core.Result {
	t.Helper()
	compiled, err := pattern.Compile(p)
	require.NoError(t, err)
	results, err := query.New(g, nil).Find(context.Background(), compiled, domain, nil, loc)
	require.NoError(t, err)
	return results
}

const controllerSrc = `
using System.Web.Mvc;

namespace App.Web
{
    public class HomeController
    {
        private readonly Widget widget;

        public void Index()
        {
            Widget local = new Widget();
            local.Render();
        }
    }
}
`

const widgetSrc = `
namespace App.Web
{
    public class Widget
    {
        public string Name;
        public void Render() {}
    }
}
`

const mvcDocXML = `<?xml version="1.0"?>
<doc>
  <members>
    <member name="T:System.Web.Mvc.Controller">
      <summary>Base controller.</summary>
    </member>
    <member name="M:System.Web.Mvc.Controller.View">
      <summary>Renders a view.</summary>
    </member>
  </members>
</doc>
`

// Combined C3+C4 scenario: source files indexed alongside a dependency XML
// doc, queried both for a user class and for an imported framework type.
func TestPipeline_SourceAndXMLTogether(t *testing.T) {
	ix, g, _ := newPipeline(t)
	dir := writeFiles(t, map[string]string{
		"Home.cs":    controllerSrc,
		"Widget.cs":  widgetSrc,
		"System.xml": mvcDocXML,
	})

	summary, err := ix.Index(context.Background(), dir, core.DomainSource)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.FilesIndexed) // Home.cs, Widget.cs, System.xml (routed to DomainDependency)
	assert.Empty(t, summary.FileErrors)

	classResults := find(t, g, "App.Web.HomeController", core.DomainFilterSource, core.LocationClass)
	require.Len(t, classResults, 1)
	assert.Equal(t, "App.Web.HomeController", classResults[0].FQDNString)

	methodResults := find(t, g, "System.Web.Mvc.Controller.View", core.DomainFilterDependency, core.LocationMethod)
	require.Len(t, methodResults, 1)
	assert.Equal(t, "System.Web.Mvc.Controller.View", methodResults[0].FQDNString)

	importResults := find(t, g, "System.Web.Mvc.*", core.DomainFilterSource, core.LocationNamespace)
	require.Len(t, importResults, 1)
	assert.Equal(t, "file://Home.cs", importResults[0].FileURI)
}

// S5, via the real indexer pipeline rather than a direct graph.PurgeFile
// call: reindexing a changed file must drop its stale nodes from both the
// in-memory graph and subsequent queries.
func TestPipeline_ReindexDropsStaleNodes(t *testing.T) {
	ix, g, _ := newPipeline(t)
	dir := writeFiles(t, map[string]string{"Widget.cs": widgetSrc})

	_, err := ix.Index(context.Background(), dir, core.DomainSource)
	require.NoError(t, err)
	require.Len(t, find(t, g, "App.Web.Widget", core.DomainFilterSource, core.LocationClass), 1)

	renamed := `
namespace App.Web
{
    public class Gadget
    {
        public void Render() {}
    }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Widget.cs"), []byte(renamed), 0o644))

	_, err = ix.Reindex(context.Background(), []string{"Widget.cs"}, dir, core.DomainSource)
	require.NoError(t, err)

	assert.Empty(t, find(t, g, "App.Web.Widget", core.DomainFilterSource, core.LocationClass))
	require.Len(t, find(t, g, "App.Web.Gadget", core.DomainFilterSource, core.LocationClass), 1)
}

// A fresh Indexer opened against the same store after Reindex must restore
// the post-reindex state, not the original.
func TestPipeline_OpenAfterReindexRestoresLatest(t *testing.T) {
	st, err := store.Open(":memory:", false, nil)
	require.NoError(t, err)
	reg := frontend.NewRegistry()
	reg.Register(".cs", csharp.Transform)

	dir := writeFiles(t, map[string]string{"Widget.cs": widgetSrc})

	g1 := graph.New()
	ix1 := indexer.New(g1, st, reg, nil, 4)
	_, err = ix1.Index(context.Background(), dir, core.DomainSource)
	require.NoError(t, err)

	renamed := `
namespace App.Web
{
    public class Gadget
    {
        public void Render() {}
    }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Widget.cs"), []byte(renamed), 0o644))
	_, err = ix1.Reindex(context.Background(), []string{"Widget.cs"}, dir, core.DomainSource)
	require.NoError(t, err)

	g2 := graph.New()
	ix2 := indexer.New(g2, st, reg, nil, 4)
	_, err = ix2.Open(context.Background(), dir, core.DomainSource)
	require.NoError(t, err)

	assert.Empty(t, find(t, g2, "App.Web.Widget", core.DomainFilterSource, core.LocationClass))
	require.Len(t, find(t, g2, "App.Web.Gadget", core.DomainFilterSource, core.LocationClass), 1)
}

// Member-access resolution (Phase D) through the real transformer: a local
// variable typed as Widget, used via "local.Render()", should resolve its
// KindName member-access node to Widget.Render's FQDN. location_kind must be
// "field" (or "all"), since a bare member-access expression is graphed as a
// KindName node, not KindMethodName, so it is invisible under "method".
func TestPipeline_LocalVarMemberAccessResolvesToDeclaration(t *testing.T) {
	ix, g, _ := newPipeline(t)
	dir := writeFiles(t, map[string]string{
		"Home.cs":   controllerSrc,
		"Widget.cs": widgetSrc,
	})

	_, err := ix.Index(context.Background(), dir, core.DomainSource)
	require.NoError(t, err)

	results := find(t, g, "App.Web.Widget.Render", core.DomainFilterSource, core.LocationField)
	require.Len(t, results, 1)
	assert.Equal(t, "App.Web.Widget.Render", results[0].FQDNString)
	assert.Equal(t, "file://Home.cs", results[0].FileURI)
}
