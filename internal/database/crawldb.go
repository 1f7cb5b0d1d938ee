package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/gravestash/internal/model"
)

// FileName is the ledger database file name inside the database directory.
const FileName = "gravestash.db"

// ErrDatabaseNotFound is returned by Open when the ledger does not exist
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("database not found")

// CrawlDB is the crawl ledger.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the ledger in dbDir.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per stored memorial page. A family page is identified by the
	-- burial that led to it as well as its own URL.
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		kind TEXT NOT NULL,
		owner_id TEXT NOT NULL DEFAULT '',
		target_id TEXT NOT NULL,
		cemetery_id TEXT NOT NULL,
		path TEXT NOT NULL,
		digest TEXT NOT NULL,
		size INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(url, kind, owner_id)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_cemetery ON pages(cemetery_id);
	CREATE INDEX IF NOT EXISTS idx_pages_target ON pages(target_id);

	-- Family links found on burial pages, stored or not.
	CREATE TABLE IF NOT EXISTS relations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_id TEXT NOT NULL,
		from_slug TEXT NOT NULL,
		to_id TEXT NOT NULL,
		to_slug TEXT NOT NULL,
		kind TEXT NOT NULL,
		cemetery_id TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(from_id, to_id, kind)
	);

	CREATE INDEX IF NOT EXISTS idx_rel_from ON relations(from_id);
	CREATE INDEX IF NOT EXISTS idx_rel_to ON relations(to_id);
	CREATE INDEX IF NOT EXISTS idx_rel_cemetery ON relations(cemetery_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord is a stored page as recorded in the ledger.
type PageRecord struct {
	ID         int64
	URL        string
	Kind       model.RelationKind
	OwnerID    string
	TargetID   string
	CemeteryID string
	Path       string
	Digest     string
	Size       int64
	Timestamp  time.Time
}

// RecordPage inserts or refreshes the row of a stored page.
func (cdb *CrawlDB) RecordPage(ctx context.Context, page *model.CachedPage) error {
	if page.Digest == "" && len(page.Body) > 0 {
		page.ComputeDigest()
	}

	query := `
	INSERT INTO pages (url, kind, owner_id, target_id, cemetery_id, path, digest, size)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, kind, owner_id) DO UPDATE SET
		target_id = excluded.target_id,
		cemetery_id = excluded.cemetery_id,
		path = excluded.path,
		digest = excluded.digest,
		size = excluded.size,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err := cdb.db.ExecContext(ctx, query,
		page.URL,
		page.Kind.String(),
		page.Owner.ID,
		page.Target.ID,
		page.CemeteryID,
		page.Path,
		page.Digest,
		page.Size(),
	)
	if err != nil {
		return fmt.Errorf("failed to record page: %w", err)
	}
	return nil
}

// GetPage returns the row of a stored page, or nil when there is none.
func (cdb *CrawlDB) GetPage(ctx context.Context, url string, kind model.RelationKind, ownerID string) (*PageRecord, error) {
	query := `
	SELECT id, url, kind, owner_id, target_id, cemetery_id, path, digest, size, timestamp
	FROM pages
	WHERE url = ? AND kind = ? AND owner_id = ?
	`

	var rec PageRecord
	var kindToken, timestamp string
	err := cdb.db.QueryRowContext(ctx, query, url, kind.String(), ownerID).Scan(
		&rec.ID,
		&rec.URL,
		&kindToken,
		&rec.OwnerID,
		&rec.TargetID,
		&rec.CemeteryID,
		&rec.Path,
		&rec.Digest,
		&rec.Size,
		&timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	rec.Kind, err = model.ParseRelationKind(kindToken)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page kind: %w", err)
	}
	rec.Timestamp = parseTimestamp(timestamp)
	return &rec, nil
}

// Relation is a family link as recorded in the ledger.
type Relation struct {
	ID         int64
	From       model.MemorialRef
	To         model.MemorialRef
	Kind       model.RelationKind
	CemeteryID string
	Timestamp  time.Time
}

// RecordRelation inserts a relation edge. Seeing the same edge again only
// refreshes its timestamp.
func (cdb *CrawlDB) RecordRelation(ctx context.Context, edge model.RelationEdge) error {
	query := `
	INSERT INTO relations (from_id, from_slug, to_id, to_slug, kind, cemetery_id)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(from_id, to_id, kind) DO UPDATE SET
		from_slug = excluded.from_slug,
		to_slug = excluded.to_slug,
		cemetery_id = excluded.cemetery_id,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err := cdb.db.ExecContext(ctx, query,
		edge.From.ID,
		edge.From.Slug,
		edge.To.ID,
		edge.To.Slug,
		edge.Kind.String(),
		edge.CemeteryID,
	)
	if err != nil {
		return fmt.Errorf("failed to record relation: %w", err)
	}
	return nil
}

// RelationFilter narrows QueryRelations. Zero fields match everything.
type RelationFilter struct {
	// MemorialID matches edges starting or ending at the memorial.
	MemorialID string

	// CemeteryID matches edges found in the cemetery.
	CemeteryID string

	// Kind matches edges of one family kind when non-nil.
	Kind *model.RelationKind
}

// QueryRelations returns the edges matching f, oldest first.
func (cdb *CrawlDB) QueryRelations(ctx context.Context, f RelationFilter) ([]Relation, error) {
	query := `
	SELECT id, from_id, from_slug, to_id, to_slug, kind, cemetery_id, timestamp
	FROM relations
	WHERE 1=1
	`
	args := make([]any, 0)

	if f.MemorialID != "" {
		query += " AND (from_id = ? OR to_id = ?)"
		args = append(args, f.MemorialID, f.MemorialID)
	}
	if f.CemeteryID != "" {
		query += " AND cemetery_id = ?"
		args = append(args, f.CemeteryID)
	}
	if f.Kind != nil {
		query += " AND kind = ?"
		args = append(args, f.Kind.String())
	}

	query += " ORDER BY id"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relations: %w", err)
	}
	defer rows.Close()

	var results []Relation
	for rows.Next() {
		var rel Relation
		var kindToken, timestamp string

		err := rows.Scan(
			&rel.ID,
			&rel.From.ID,
			&rel.From.Slug,
			&rel.To.ID,
			&rel.To.Slug,
			&kindToken,
			&rel.CemeteryID,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}

		rel.Kind, err = model.ParseRelationKind(kindToken)
		if err != nil {
			return nil, fmt.Errorf("failed to parse relation kind: %w", err)
		}
		rel.Timestamp = parseTimestamp(timestamp)
		results = append(results, rel)
	}

	return results, rows.Err()
}

// CemeteryStats summarizes the ledger rows of one cemetery.
type CemeteryStats struct {
	CemeteryID  string
	Burials     int
	FamilyPages int
	Relations   int
	Bytes       int64
	LastStored  time.Time
}

// Pages returns the number of stored pages.
func (s CemeteryStats) Pages() int {
	return s.Burials + s.FamilyPages
}

// CemeteryStats returns per-cemetery counts, ordered by cemetery id.
func (cdb *CrawlDB) CemeteryStats(ctx context.Context) ([]CemeteryStats, error) {
	query := `
	SELECT p.cemetery_id,
		SUM(CASE WHEN p.kind = ? THEN 1 ELSE 0 END),
		SUM(CASE WHEN p.kind <> ? THEN 1 ELSE 0 END),
		(SELECT COUNT(*) FROM relations r WHERE r.cemetery_id = p.cemetery_id),
		SUM(p.size),
		MAX(p.timestamp)
	FROM pages p
	GROUP BY p.cemetery_id
	ORDER BY p.cemetery_id
	`

	burial := model.Burial.String()
	rows, err := cdb.db.QueryContext(ctx, query, burial, burial)
	if err != nil {
		return nil, fmt.Errorf("failed to query cemetery stats: %w", err)
	}
	defer rows.Close()

	var results []CemeteryStats
	for rows.Next() {
		var s CemeteryStats
		var timestamp sql.NullString
		if err := rows.Scan(&s.CemeteryID, &s.Burials, &s.FamilyPages, &s.Relations, &s.Bytes, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan cemetery stats: %w", err)
		}
		if timestamp.Valid {
			s.LastStored = parseTimestamp(timestamp.String)
		}
		results = append(results, s)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp tries each known format and returns the zero time when
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
