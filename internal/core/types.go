// Package core contains the pure data model shared by every component of the
// symbol graph: node/edge shapes, the closed syntax-kind enumeration, and the
// error taxonomy. Nothing here depends on tree-sitter, GORM, or any other
// concrete backend.
package core

// SyntaxKind tags a symbol node with the closed set of shapes the graph can
// hold. The CST transformer and the XML analyzer are the only two producers.
type SyntaxKind string

const (
	KindImport        SyntaxKind = "import"
	KindCompUnit      SyntaxKind = "comp_unit"
	KindNamespaceDecl SyntaxKind = "namespace_decl"
	KindClassDef      SyntaxKind = "class_def"
	KindMethodName    SyntaxKind = "method_name"
	KindFieldName     SyntaxKind = "field_name"
	KindLocalVar      SyntaxKind = "local_var"
	KindArgument      SyntaxKind = "argument"
	KindName          SyntaxKind = "name"

	// KindRoot and KindDomainTag tag the two graph-scaffolding node kinds
	// (ROOT_NODE and the three DOMAIN_NODEs) that sit above every comp_unit.
	// They fall outside the closed symbol-kind enumeration above and the
	// query engine never treats them as a candidate.
	KindRoot      SyntaxKind = "root"
	KindDomainTag SyntaxKind = "domain_tag"
)

// QueryableKinds are the symbol-node kinds the query engine may return as a
// candidate. KindRoot and KindDomainTag are structural and excluded even
// under location_kind=all.
var QueryableKinds = map[SyntaxKind]bool{
	KindImport:        true,
	KindCompUnit:      true,
	KindNamespaceDecl: true,
	KindClassDef:      true,
	KindMethodName:    true,
	KindFieldName:     true,
	KindLocalVar:      true,
	KindArgument:      true,
	KindName:          true,
}

// Role distinguishes a symbol's definition site from a mere reference to it.
type Role string

const (
	RoleDefinition Role = "definition"
	RoleReference  Role = "reference"
)

// Domain is the provenance category of a comp_unit and everything under it.
type Domain string

const (
	DomainSource     Domain = "source"
	DomainDependency Domain = "dependency"
	DomainBuiltin    Domain = "builtin"
)

// Domain tag symbols, the fixed strings carried by DOMAIN_NODE entities.
const (
	DomainTagSource     = "<core>/source_type=source"
	DomainTagDependency = "<core>/source_type=dependency"
	DomainTagBuiltin    = "<core>/source_type=builtin"
)

// DomainTag returns the fixed symbol string for a Domain.
func DomainTag(d Domain) string {
	switch d {
	case DomainSource:
		return DomainTagSource
	case DomainDependency:
		return DomainTagDependency
	case DomainBuiltin:
		return DomainTagBuiltin
	default:
		return ""
	}
}

// Edge precedence classes. Values 1-9 are reserved for future use and must be
// ignored by FQDN traversal.
const (
	PrecedenceContainment = 0
	PrecedenceFQDN        = 10
)

// MaxFQDNHops bounds precedence-10 traversal. Exceeding it is a
// MalformedGraph condition rather than an infinite walk.
const MaxFQDNHops = 3

// Handle is a stable, dense, process-lifetime node identifier.
type Handle int64

// NoHandle is the zero value, never assigned to a real node.
const NoHandle Handle = 0

// Location is a zero-based, end-exclusive source span.
type Location struct {
	StartLine int
	StartChar int
	EndLine   int
	EndChar   int
}

// NodeAttrs is everything about a node besides its handle.
type NodeAttrs struct {
	Symbol   string
	Kind     SyntaxKind
	Role     Role
	Domain   Domain
	File     string
	Location Location
}

// Node is a symbol graph vertex.
type Node struct {
	Handle Handle
	NodeAttrs
}

// Edge is a directed, precedence-tagged graph edge.
type Edge struct {
	Src        Handle
	Dst        Handle
	Precedence int
}

// LocationKind narrows a query to one class of node.
type LocationKind string

const (
	LocationNamespace LocationKind = "namespace"
	LocationClass     LocationKind = "class"
	LocationMethod    LocationKind = "method"
	LocationField     LocationKind = "field"
	LocationAll       LocationKind = "all"
)

// DomainFilter narrows a query to one or both non-builtin domains.
type DomainFilter string

const (
	DomainFilterSource      DomainFilter = "source"
	DomainFilterDependency  DomainFilter = "dependency"
	DomainFilterSourceOrDep DomainFilter = "source|dependency"
)

// Allows reports whether d satisfies the filter.
func (f DomainFilter) Allows(d Domain) bool {
	switch f {
	case DomainFilterSource:
		return d == DomainSource
	case DomainFilterDependency:
		return d == DomainDependency
	case DomainFilterSourceOrDep:
		return d == DomainSource || d == DomainDependency
	default:
		return false
	}
}

// FQDN is the reconstructed fully-qualified name of a symbol.
type FQDN struct {
	Namespace string
	Class     string
	Member    string
}

// String renders the canonical dotted form, joined only over non-empty parts.
func (f FQDN) String() string {
	s := f.Namespace
	if f.Class != "" {
		if s != "" {
			s += "."
		}
		s += f.Class
	}
	if f.Member != "" {
		if s != "" {
			s += "."
		}
		s += f.Member
	}
	return s
}

// Equal reports whether two FQDNs agree on all three components.
func (f FQDN) Equal(o FQDN) bool {
	return f.Namespace == o.Namespace && f.Class == o.Class && f.Member == o.Member
}

// Result is one match record returned by the query engine.
type Result struct {
	FileURI    string
	StartLine  int
	StartChar  int
	EndLine    int
	EndChar    int
	FQDNString string
}
