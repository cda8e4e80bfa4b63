package store

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the backing store and runs migrations. dsn is either a
// filesystem path (local SQLite) or a libsql:// / http(s):// URL (remote
// Turso/libsql server).
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if !isURL(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)

	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		if token := os.Getenv("CSGRAPH_LIBSQL_AUTH_TOKEN"); token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("create libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		dialector = sqlite.Open(localDSN(dsn))
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("open store: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		applyPragmas(sqlDB)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	return db, nil
}

// localDSN appends the WAL and durability pragmas the way a single-writer,
// multi-reader store needs them applied at connection time.
func localDSN(path string) string {
	return fmt.Sprintf(
		"%s?_busy_timeout=5000&_foreign_keys=ON&_journal_mode=WAL&_synchronous=NORMAL&_temp_store=MEMORY",
		path,
	)
}

func applyPragmas(db *sql.DB) {
	db.Exec("PRAGMA foreign_keys = ON")
}

// isURL reports whether dsn names a remote store rather than a local file.
func isURL(dsn string) bool {
	return len(dsn) > 7 && (dsn[:7] == "http://" || (len(dsn) > 8 && dsn[:8] == "https://") || (len(dsn) > 6 && dsn[:6] == "libsql"))
}

// Migrate creates or upgrades the four logical tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&FileRow{}, &NodeRow{}, &EdgeRow{}, &PartialPathRow{})
}

// CheckWALSizeAndCheckpoint truncates the WAL file once it exceeds
// thresholdMB, mirroring the store's configured checkpoint threshold.
func CheckWALSizeAndCheckpoint(db *gorm.DB, dsn string, thresholdMB int) error {
	if isURL(dsn) {
		return nil
	}
	info, err := os.Stat(dsn + "-wal")
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("stat wal file: %w", err)
	}

	if info.Size() > int64(thresholdMB)*1024*1024 {
		if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE);").Error; err != nil {
			return fmt.Errorf("checkpoint wal: %w", err)
		}
	}
	return nil
}
