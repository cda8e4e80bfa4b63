// Package store is the persistent backing store for the symbol graph:
// four logical tables (Files, Nodes, Edges, PartialPaths) over GORM, with a
// SQLite or libsql/Turso dialector underneath and optional at-rest
// encryption of node symbol text.
package store

import (
	"fmt"

	"github.com/oxhq/csgraph/internal/core"
	"github.com/oxhq/csgraph/internal/graph"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the authoritative persisted view of one symbol graph.
type Store struct {
	db     *gorm.DB
	cipher *Cipher
}

// Open connects to dsn and builds a Store ready for use.
func Open(dsn string, debug bool, cipher *Cipher) (*Store, error) {
	db, err := Connect(dsn, debug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStorage, err)
	}
	if cipher == nil {
		cipher = &Cipher{}
	}
	return &Store{db: db, cipher: cipher}, nil
}

// DB exposes the underlying *gorm.DB for checkpoint/health-check callers.
func (s *Store) DB() *gorm.DB { return s.db }

// IsEmpty reports whether the store has never been indexed into.
func (s *Store) IsEmpty() (bool, error) {
	var count int64
	if err := s.db.Model(&FileRow{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrStorage, err)
	}
	return count == 0, nil
}

// PutFile upserts a file's content hash and domain tag.
func (s *Store) PutFile(path, hash string, domain core.Domain) error {
	row := FileRow{Path: path, Hash: hash, Domain: string(domain)}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("%w: put file %s: %v", core.ErrStorage, path, err)
	}
	return nil
}

// PurgeFile removes every node, edge, and partial path anchored to path,
// along with its file row, ahead of a re-index.
func (s *Store) PurgeFile(path string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var handles []int64
		if err := tx.Model(&NodeRow{}).Where("file = ?", path).Pluck("handle", &handles).Error; err != nil {
			return err
		}
		if len(handles) > 0 {
			if err := tx.Where("src_handle IN ? OR dst_handle IN ?", handles, handles).Delete(&EdgeRow{}).Error; err != nil {
				return err
			}
			if err := tx.Where("source_handle IN ?", handles).Delete(&PartialPathRow{}).Error; err != nil {
				return err
			}
			if err := tx.Where("handle IN ?", handles).Delete(&NodeRow{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("path = ?", path).Delete(&FileRow{}).Error
	})
}

// PutNode persists a single graph node at its handle.
func (s *Store) PutNode(h core.Handle, attrs core.NodeAttrs) error {
	sealed, err := s.cipher.Seal([]byte(attrs.Symbol))
	if err != nil {
		return fmt.Errorf("%w: seal symbol: %v", core.ErrStorage, err)
	}
	row := NodeRow{
		Handle:     int64(h),
		Symbol:     sealed,
		SyntaxKind: string(attrs.Kind),
		Role:       string(attrs.Role),
		Domain:     string(attrs.Domain),
		File:       attrs.File,
		StartLine:  attrs.Location.StartLine,
		StartChar:  attrs.Location.StartChar,
		EndLine:    attrs.Location.EndLine,
		EndChar:    attrs.Location.EndChar,
	}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("%w: put node %d: %v", core.ErrStorage, h, err)
	}
	return nil
}

// PutEdge persists a single directed edge. Putting an edge that is already
// stored is a no-op.
func (s *Store) PutEdge(e core.Edge) error {
	row := EdgeRow{SrcHandle: int64(e.Src), DstHandle: int64(e.Dst), Precedence: e.Precedence}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: put edge %d->%d: %v", core.ErrStorage, e.Src, e.Dst, err)
	}
	return nil
}

// PutPartialPath caches the dotted-prefix segment for a node.
func (s *Store) PutPartialPath(h core.Handle, segment string) error {
	row := PartialPathRow{SourceHandle: int64(h), Segment: segment}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("%w: put partial path %d: %v", core.ErrStorage, h, err)
	}
	return nil
}

// PartialPath returns the cached dotted-prefix segment for a node, if any.
func (s *Store) PartialPath(h core.Handle) (string, bool, error) {
	var row PartialPathRow
	err := s.db.Where("source_handle = ?", int64(h)).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", core.ErrStorage, err)
	}
	return row.Segment, true, nil
}

// Restore rehydrates a fresh in-memory graph from everything persisted.
// Nodes are restored at their original handles so handles stay stable
// across the rehydrate.
func (s *Store) Restore() (*graph.Graph, error) {
	g := graph.New()

	var nodes []NodeRow
	if err := s.db.Order("handle asc").Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("%w: load nodes: %v", core.ErrStorage, err)
	}
	for _, row := range nodes {
		plain, err := s.cipher.Open(row.Symbol)
		if err != nil {
			return nil, fmt.Errorf("%w: open symbol %d: %v", core.ErrStorage, row.Handle, err)
		}
		attrs := core.NodeAttrs{
			Symbol: string(plain),
			Kind:   core.SyntaxKind(row.SyntaxKind),
			Role:   core.Role(row.Role),
			Domain: core.Domain(row.Domain),
			File:   row.File,
			Location: core.Location{
				StartLine: row.StartLine,
				StartChar: row.StartChar,
				EndLine:   row.EndLine,
				EndChar:   row.EndChar,
			},
		}
		g.RestoreNode(core.Handle(row.Handle), attrs)
	}

	var edges []EdgeRow
	if err := s.db.Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("%w: load edges: %v", core.ErrStorage, err)
	}
	for _, row := range edges {
		g.AddEdge(core.Handle(row.SrcHandle), core.Handle(row.DstHandle), row.Precedence)
	}

	return g, nil
}
