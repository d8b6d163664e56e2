package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"deskmate/model"
)

// MessageStorage persists conversation messages in a local SQLite database.
// Writes are serialized by a mutex; the sqlite driver handles concurrent
// readers.
type MessageStorage struct {
	db *sql.DB
	mu sync.Mutex
}

func NewMessageStorage(dataDir string) (*MessageStorage, error) {
	dbPath := filepath.Join(dataDir, "messages.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &MessageStorage{db: db}

	if err := storage.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return storage, nil
}

func (ms *MessageStorage) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		level INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_messages_level ON messages(level);
	`

	_, err := ms.db.Exec(schema)
	return err
}

// Append stores a message. Blank fields are filled in: a missing ID gets a
// new UUID and a missing timestamp gets the current time in RFC 3339.
func (ms *MessageStorage) Append(msg model.ChatMessage) error {
	if strings.TrimSpace(string(msg.Role)) == "" {
		return fmt.Errorf("%w: message role is empty", model.ErrStorage)
	}
	if msg.Content == "" {
		return fmt.Errorf("%w: message content is empty", model.ErrStorage)
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	_, err := ms.db.Exec(
		`INSERT INTO messages (id, timestamp, role, content, level) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.Timestamp, string(msg.Role), msg.Content, int(msg.Level),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert message: %v", model.ErrStorage, err)
	}

	return nil
}

// Recent returns the last n messages in chronological order (oldest first).
// A non-positive n returns all messages.
func (ms *MessageStorage) Recent(n int) ([]model.ChatMessage, error) {
	query := `SELECT id, timestamp, role, content, level FROM messages ORDER BY rowid DESC`
	args := []any{}
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := ms.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query messages: %v", model.ErrStorage, err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		var role string
		var level int
		if err := rows.Scan(&msg.ID, &msg.Timestamp, &role, &msg.Content, &level); err != nil {
			return nil, fmt.Errorf("%w: failed to scan message: %v", model.ErrStorage, err)
		}
		msg.Role = model.Role(role)
		msg.Level = model.Level(level)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read messages: %v", model.ErrStorage, err)
	}

	// Rows come back newest first; flip to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// Clear deletes all stored messages
func (ms *MessageStorage) Clear() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, err := ms.db.Exec(`DELETE FROM messages`); err != nil {
		return fmt.Errorf("%w: failed to clear messages: %v", model.ErrStorage, err)
	}
	return nil
}

// Close closes the underlying database
func (ms *MessageStorage) Close() error {
	return ms.db.Close()
}
