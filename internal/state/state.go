// Package state provides durable client-side storage for session
// credentials, backed by SQLite.
//
// The database is stored at ~/.taskdeck/state.db by default. Only the
// session store writes here; everything else reads at bootstrap. Use Open()
// to connect and Init() to create the schema.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Well-known session keys. Cleared together on logout.
const (
	keyToken    = "token"
	keyUserID   = "user_id"
	keyFullName = "full_name"
)

// DB wraps a SQL database connection with session persistence operations.
type DB struct {
	*sql.DB
}

// Credentials is the durable (identity, credential) pair a session can be
// rehydrated from after a process restart.
type Credentials struct {
	UserID   int64
	FullName string
	Token    string
}

// DefaultPath returns the default state database path (~/.taskdeck/state.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".taskdeck", "state.db"), nil
}

// Open opens or creates the state database at the given path
func Open(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{db}, nil
}

// Init creates the schema.
func (db *DB) Init() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveCredentials persists the session's identity and bearer credential,
// replacing whatever was stored before. All three keys are written in one
// transaction so a crash cannot leave a partial session behind.
func (db *DB) SaveCredentials(c Credentials) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	pairs := map[string]string{
		keyToken:    c.Token,
		keyUserID:   strconv.FormatInt(c.UserID, 10),
		keyFullName: c.FullName,
	}
	for key, value := range pairs {
		_, err := tx.Exec(`
			INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			key, value)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// LoadCredentials reads the stored (identity, credential) pair. The second
// return value is false when no complete session is stored.
func (db *DB) LoadCredentials() (Credentials, bool, error) {
	rows, err := db.Query(`SELECT key, value FROM session WHERE key IN (?, ?, ?)`,
		keyToken, keyUserID, keyFullName)
	if err != nil {
		return Credentials{}, false, fmt.Errorf("failed to load session: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]string, 3)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Credentials{}, false, fmt.Errorf("failed to scan session row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return Credentials{}, false, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	token, userID, name := values[keyToken], values[keyUserID], values[keyFullName]
	if token == "" || userID == "" {
		return Credentials{}, false, nil
	}

	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return Credentials{}, false, fmt.Errorf("corrupt stored user id %q: %w", userID, err)
	}

	return Credentials{UserID: id, FullName: name, Token: token}, true, nil
}

// ClearCredentials removes all stored session keys. Clearing an already
// empty store is not an error.
func (db *DB) ClearCredentials() error {
	_, err := db.Exec(`DELETE FROM session WHERE key IN (?, ?, ?)`,
		keyToken, keyUserID, keyFullName)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
