package store

import "time"

// FileRow is the Files logical table: one row per indexed file, keyed by
// relative path.
type FileRow struct {
	Path      string    `gorm:"primaryKey;type:varchar(1024)"`
	Hash      string    `gorm:"type:varchar(64);not null"`
	Domain    string    `gorm:"type:varchar(20);not null"`
	IndexedAt time.Time `gorm:"autoCreateTime"`
}

func (FileRow) TableName() string { return "files" }

// NodeRow is the Nodes logical table: one row per graph node, keyed by its
// dense in-process handle. Symbol may be stored encrypted at rest; see
// encrypt.go.
type NodeRow struct {
	Handle     int64  `gorm:"primaryKey"`
	Symbol     []byte `gorm:"type:blob;not null"`
	SyntaxKind string `gorm:"type:varchar(20);not null;index"`
	Role       string `gorm:"type:varchar(20);not null"`
	Domain     string `gorm:"type:varchar(20);not null"`
	File       string `gorm:"type:varchar(1024);index"`
	StartLine  int
	StartChar  int
	EndLine    int
	EndChar    int
	KeyVersion int `gorm:"default:0"`
}

func (NodeRow) TableName() string { return "nodes" }

// EdgeRow is the Edges logical table: a directed, precedence-tagged arc
// between two node handles.
type EdgeRow struct {
	SrcHandle  int64 `gorm:"primaryKey;autoIncrement:false"`
	DstHandle  int64 `gorm:"primaryKey;autoIncrement:false"`
	Precedence int   `gorm:"primaryKey;autoIncrement:false"`
}

func (EdgeRow) TableName() string { return "edges" }

// PartialPathRow is the PartialPaths logical table: a cached dotted-prefix
// segment for a node, populated incrementally as FQDN edges are emitted so
// Reindex does not need to re-walk precedence-10 edges for unaffected files.
type PartialPathRow struct {
	SourceHandle int64  `gorm:"primaryKey;autoIncrement:false"`
	Segment      string `gorm:"type:varchar(512);not null"`
}

func (PartialPathRow) TableName() string { return "partial_paths" }
