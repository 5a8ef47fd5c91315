package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/zap"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/logging"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS exhibitions (
    id       TEXT PRIMARY KEY,
    doc      TEXT NOT NULL,
    modified TEXT NOT NULL
)`

// SQLite stores exhibition documents in a single table.
type SQLite struct {
	mutations

	db     *sql.DB
	logger *zap.Logger
}

// OpenDB opens (creating if needed) the database file at path.
func OpenDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewSQLite opens the database at path and creates the table.
func NewSQLite(path string, schema *exhibition.Schema, logger *zap.Logger) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite store needs a database path")
	}
	db, err := OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	logger = logging.OrNop(logger)
	s := &SQLite{db: db, logger: logger}
	s.mutations = newMutations(schema, logger, s.update)
	return s, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) Load(ctx context.Context, eventID string) (*exhibition.Exhibition, error) {
	return s.read(ctx, s.db, eventID)
}

func (s *SQLite) read(ctx context.Context, q queryer, eventID string) (*exhibition.Exhibition, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT doc FROM exhibitions WHERE id = ?`, eventID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load exhibition: %w", err)
	}
	var ex exhibition.Exhibition
	if err := json.Unmarshal([]byte(doc), &ex); err != nil {
		return nil, fmt.Errorf("decode exhibition %s: %w", eventID, err)
	}
	return &ex, nil
}

func (s *SQLite) write(ctx context.Context, q queryer, ex *exhibition.Exhibition) error {
	doc, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encode exhibition: %w", err)
	}
	_, err = q.ExecContext(ctx, `
        INSERT INTO exhibitions (id, doc, modified) VALUES (?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, modified = excluded.modified
    `, ex.ID, string(doc), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save exhibition: %w", err)
	}
	return nil
}

func (s *SQLite) Save(ctx context.Context, ex *exhibition.Exhibition) error {
	if err := checkID(ex.ID); err != nil {
		return err
	}
	return s.write(ctx, s.db, ex)
}

func (s *SQLite) update(ctx context.Context, eventID string, fn func(*exhibition.Exhibition) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ex, err := s.read(ctx, tx, eventID)
	if err != nil {
		return err
	}
	if err := fn(ex); err != nil {
		return err
	}
	if err := s.write(ctx, tx, ex); err != nil {
		return err
	}
	return tx.Commit()
}

// Events lists the stored exhibition ids.
func (s *SQLite) Events(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM exhibitions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
