package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/mcp-training/homedecor/game/engine"
)

// SQLitePersistence implements SessionPersistence on a SQLite database.
// Layout entries are stored one row each, keyed by room and order.
type SQLitePersistence struct {
	db *sql.DB
}

// NewSQLitePersistence opens (or creates) the database at path
func NewSQLitePersistence(path string) (*SQLitePersistence, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLitePersistence{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			config_name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_accessed_at TEXT NOT NULL,
			house_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS layout_entries (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			room INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			item_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			stacked INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session_id, room, seq)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Save replaces the stored session and its layout rows in one transaction
func (sp *SQLitePersistence) Save(data *PersistedSessionData) error {
	if data == nil {
		return fmt.Errorf("session cannot be nil")
	}
	house, err := json.Marshal(data.House)
	if err != nil {
		return fmt.Errorf("failed to marshal house: %w", err)
	}

	tx, err := sp.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO sessions(id,config_name,created_at,last_accessed_at,house_json) VALUES(?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET config_name=excluded.config_name, last_accessed_at=excluded.last_accessed_at, house_json=excluded.house_json`,
		data.ID, data.ConfigName, data.CreatedAt.UTC().Format(time.RFC3339Nano), data.LastAccessedAt.UTC().Format(time.RFC3339Nano), string(house)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM layout_entries WHERE session_id = ?`, data.ID); err != nil {
		return fmt.Errorf("failed to clear layout: %w", err)
	}

	insert, err := tx.Prepare(`INSERT INTO layout_entries(session_id,room,seq,item_id,x,y,stacked) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare layout insert: %w", err)
	}
	defer insert.Close()

	for room, entries := range data.Layouts {
		for seq, entry := range entries {
			stacked := 0
			if entry.Stacked {
				stacked = 1
			}
			if _, err := insert.Exec(data.ID, room, seq, entry.ItemID, entry.X, entry.Y, stacked); err != nil {
				return fmt.Errorf("failed to save layout entry: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Load retrieves a session and its layout rows
func (sp *SQLitePersistence) Load(id string) (*PersistedSessionData, error) {
	var (
		data                PersistedSessionData
		createdAt, accessed string
		house               string
	)
	err := sp.db.QueryRow(`SELECT id,config_name,created_at,last_accessed_at,house_json FROM sessions WHERE id = ?`, id).
		Scan(&data.ID, &data.ConfigName, &createdAt, &accessed, &house)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if data.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if data.LastAccessedAt, err = time.Parse(time.RFC3339Nano, accessed); err != nil {
		return nil, fmt.Errorf("invalid last_accessed_at: %w", err)
	}
	if err := json.Unmarshal([]byte(house), &data.House); err != nil {
		return nil, fmt.Errorf("failed to unmarshal house: %w", err)
	}

	rows, err := sp.db.Query(`SELECT room,item_id,x,y,stacked FROM layout_entries WHERE session_id = ? ORDER BY room, seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	defer rows.Close()

	data.Layouts = make(map[int][]engine.LayoutEntry)
	for rows.Next() {
		var (
			room    int
			entry   engine.LayoutEntry
			stacked int
		)
		if err := rows.Scan(&room, &entry.ItemID, &entry.X, &entry.Y, &stacked); err != nil {
			return nil, fmt.Errorf("failed to scan layout entry: %w", err)
		}
		entry.Stacked = stacked != 0
		data.Layouts[room] = append(data.Layouts[room], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	return &data, nil
}

// Delete removes a session; its layout rows cascade
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all stored session IDs
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session is stored
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	return err == nil
}

// Close closes the database
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}
