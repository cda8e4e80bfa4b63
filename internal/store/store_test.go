package store

import (
	"testing"

	"github.com/oxhq/csgraph/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", false, nil)
	require.NoError(t, err)
	return s
}

func TestOpen_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	empty, err := s.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestPutAndRestore_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutFile("A.cs", "hash1", core.DomainSource))
	require.NoError(t, s.PutNode(1, core.NodeAttrs{
		Symbol: "App", Kind: core.KindNamespaceDecl, Role: core.RoleDefinition,
		Domain: core.DomainSource, File: "A.cs",
		Location: core.Location{StartLine: 0, StartChar: 0, EndLine: 0, EndChar: 3},
	}))
	require.NoError(t, s.PutNode(2, core.NodeAttrs{
		Symbol: "Ctl", Kind: core.KindClassDef, Role: core.RoleDefinition,
		Domain: core.DomainSource, File: "A.cs",
	}))
	require.NoError(t, s.PutEdge(core.Edge{Src: 1, Dst: 2, Precedence: core.PrecedenceContainment}))
	require.NoError(t, s.PutEdge(core.Edge{Src: 2, Dst: 1, Precedence: core.PrecedenceFQDN}))
	require.NoError(t, s.PutPartialPath(2, "App"))

	empty, err := s.IsEmpty()
	require.NoError(t, err)
	assert.False(t, empty)

	g, err := s.Restore()
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())

	ns := g.Node(1)
	require.NotNil(t, ns)
	assert.Equal(t, "App", ns.Symbol)

	out := g.Outgoing(1)
	require.Len(t, out, 1)
	assert.Equal(t, core.Handle(2), out[0].Edge.Dst)

	segment, ok, err := s.PartialPath(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "App", segment)
}

func TestPurgeFile_RemovesEverything(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutFile("A.cs", "hash1", core.DomainSource))
	require.NoError(t, s.PutNode(1, core.NodeAttrs{Symbol: "Old", Kind: core.KindClassDef, File: "A.cs"}))
	require.NoError(t, s.PutEdge(core.Edge{Src: 1, Dst: 1, Precedence: core.PrecedenceFQDN}))

	require.NoError(t, s.PurgeFile("A.cs"))

	g, err := s.Restore()
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher("blob", "00112233445566778899aabbccddeeff00112233445566778899aabbccddee", "xchacha20poly1305")
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("System.Web.Mvc"))
	require.NoError(t, err)
	assert.NotEqual(t, "System.Web.Mvc", string(sealed))

	plain, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "System.Web.Mvc", string(plain))
}

func TestCipher_OffIsPassthrough(t *testing.T) {
	c, err := NewCipher("off", "", "")
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(sealed))
}
