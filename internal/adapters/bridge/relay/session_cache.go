package relay

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
)

// SessionDatabase is the embedded database holding the cached session table.
const SessionDatabase = "relay-sessions"

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    topic TEXT PRIMARY KEY,
    peer_json TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`

// SessionCache mirrors the relay's live session table so it can be shown while
// the relay is unreachable. It is never used to decide whether a session is live.
type SessionCache struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func NewSessionCache(ctx context.Context, db *sql.DB) (*SessionCache, error) {
	if db == nil {
		return nil, fmt.Errorf("session database is required")
	}
	if _, err := db.ExecContext(ctx, sessionSchema); err != nil {
		return nil, fmt.Errorf("ensure session schema: %w", err)
	}
	return &SessionCache{db: db}, nil
}

// Replace swaps the cached table for sessions in one transaction.
func (c *SessionCache) Replace(ctx context.Context, sessions []domain.SessionEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session replace: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear sessions: %w", err)
	}
	for _, session := range sessions {
		if err := upsertSession(ctx, tx, session); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session replace: %w", err)
	}
	return nil
}

func (c *SessionCache) Upsert(ctx context.Context, session domain.SessionEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return upsertSession(ctx, c.db, session)
}

func (c *SessionCache) Remove(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM sessions WHERE topic = ?`, strings.TrimSpace(topic)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List returns cached sessions, oldest first.
func (c *SessionCache) List(ctx context.Context) ([]domain.SessionEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `SELECT topic, peer_json, created_at FROM sessions ORDER BY created_at, topic`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.SessionEntry{}
	for rows.Next() {
		var (
			entry     domain.SessionEntry
			peerJSON  string
			createdAt int64
		)
		if err := rows.Scan(&entry.Topic, &peerJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if err := json.Unmarshal([]byte(peerJSON), &entry.Peer); err != nil {
			return nil, fmt.Errorf("decode session peer: %w", err)
		}
		if createdAt > 0 {
			entry.CreatedAt = fromMillis(createdAt)
		}
		sessions = append(sessions, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func (c *SessionCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertSession(ctx context.Context, db execer, session domain.SessionEntry) error {
	topic := strings.TrimSpace(session.Topic)
	if topic == "" {
		return fmt.Errorf("session topic is required")
	}
	peer, err := json.Marshal(session.Peer)
	if err != nil {
		return fmt.Errorf("encode session peer: %w", err)
	}
	_, err = db.ExecContext(
		ctx,
		`INSERT INTO sessions (topic, peer_json, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(topic) DO UPDATE SET peer_json = excluded.peer_json, created_at = excluded.created_at`,
		topic,
		string(peer),
		toMillis(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}
