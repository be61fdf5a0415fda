package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dshills/notepack/pkg/types"
)

// SQLiteCatalog implements the Store interface using SQLite
type SQLiteCatalog struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteCatalog opens (creating if necessary) a build catalog database
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

// Close closes the database connection
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// RecordBuild persists a build and its child records in one transaction
func (c *SQLiteCatalog) RecordBuild(ctx context.Context, build *Build) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO builds (notes_dir, target_bytes, hard_bytes, note_count, part_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		build.NotesDir, build.TargetBytes, build.HardBytes,
		build.NoteCount, build.PartCount, now)
	if err != nil {
		return 0, fmt.Errorf("failed to record build: %w", err)
	}

	buildID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i := range build.Notes {
		n := &build.Notes[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notes (build_id, note_id, title, source_path, first_part_id,
			                   part_count, chunk_count, payload_bytes, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			buildID, n.NoteID, n.Title, n.SourcePath, n.FirstPartID,
			n.PartCount, n.ChunkCount, n.PayloadBytes, n.ContentHash)
		if err != nil {
			return 0, fmt.Errorf("failed to record note %d: %w", n.NoteID, err)
		}
	}

	for i := range build.Parts {
		p := &build.Parts[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO parts (build_id, note_id, global_id, name, part_index, size_bytes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			buildID, p.NoteID, p.GlobalID, p.Name, p.PartIndex, p.SizeBytes)
		if err != nil {
			return 0, fmt.Errorf("failed to record part %s: %w", p.Name, err)
		}
	}

	for seq, msg := range build.Diagnostics {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagnostics (build_id, seq, message) VALUES (?, ?, ?)`,
			buildID, seq, msg)
		if err != nil {
			return 0, fmt.Errorf("failed to record diagnostic %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit build record: %w", err)
	}

	build.ID = buildID
	build.CreatedAt = now
	return buildID, nil
}

// GetBuild loads one build with its notes, parts and diagnostics
func (c *SQLiteCatalog) GetBuild(ctx context.Context, id int64) (*Build, error) {
	var build Build
	err := c.db.QueryRowContext(ctx, `
		SELECT id, notes_dir, target_bytes, hard_bytes, note_count, part_count, created_at
		FROM builds WHERE id = ?`, id).
		Scan(&build.ID, &build.NotesDir, &build.TargetBytes, &build.HardBytes,
			&build.NoteCount, &build.PartCount, &build.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load build %d: %w", id, err)
	}

	if build.Notes, err = c.loadNotes(ctx, id); err != nil {
		return nil, err
	}
	if build.Parts, err = c.loadParts(ctx, id); err != nil {
		return nil, err
	}
	if build.Diagnostics, err = c.loadDiagnostics(ctx, id); err != nil {
		return nil, err
	}

	return &build, nil
}

// ListBuilds returns the most recent builds, newest first
func (c *SQLiteCatalog) ListBuilds(ctx context.Context, limit int) ([]Build, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, notes_dir, target_bytes, hard_bytes, note_count, part_count, created_at
		FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var builds []Build
	for rows.Next() {
		var b Build
		if err := rows.Scan(&b.ID, &b.NotesDir, &b.TargetBytes, &b.HardBytes,
			&b.NoteCount, &b.PartCount, &b.CreatedAt); err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

func (c *SQLiteCatalog) loadNotes(ctx context.Context, buildID int64) ([]NoteRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT note_id, title, source_path, first_part_id, part_count,
		       chunk_count, payload_bytes, content_hash
		FROM notes WHERE build_id = ? ORDER BY note_id`, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var notes []NoteRecord
	for rows.Next() {
		var n NoteRecord
		if err := rows.Scan(&n.NoteID, &n.Title, &n.SourcePath, &n.FirstPartID,
			&n.PartCount, &n.ChunkCount, &n.PayloadBytes, &n.ContentHash); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (c *SQLiteCatalog) loadParts(ctx context.Context, buildID int64) ([]PartRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT note_id, global_id, name, part_index, size_bytes
		FROM parts WHERE build_id = ? ORDER BY global_id`, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var parts []PartRecord
	for rows.Next() {
		var p PartRecord
		if err := rows.Scan(&p.NoteID, &p.GlobalID, &p.Name, &p.PartIndex, &p.SizeBytes); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func (c *SQLiteCatalog) loadDiagnostics(ctx context.Context, buildID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT message FROM diagnostics WHERE build_id = ? ORDER BY seq`, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load diagnostics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
