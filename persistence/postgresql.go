// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // PostgreSQL 驱动

	"github.com/wfunc/gridarena/models"
)

// PostgreSQL 数据库实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(opts Options) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", opts.dsn())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS match_events (
            id SERIAL PRIMARY KEY,
            event_id VARCHAR(64) UNIQUE NOT NULL,
            kind VARCHAR(32) NOT NULL,
            slot INTEGER NOT NULL,
            actor INTEGER NOT NULL DEFAULT -1,
            session_id VARCHAR(64),
            hp INTEGER,
            x INTEGER,
            y INTEGER,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_match_events_kind ON match_events(kind);
        CREATE INDEX IF NOT EXISTS idx_match_events_session_id ON match_events(session_id);
    `)
	return err
}

func (p *PostgreSQL) SaveEvent(ctx context.Context, event models.MatchEvent) error {
	query := `
        INSERT INTO match_events (event_id, kind, slot, actor, session_id, hp, x, y, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (event_id) DO NOTHING
    `
	_, err := p.db.ExecContext(ctx, query,
		event.ID, string(event.Kind), event.Slot, event.Actor, event.SessionID,
		event.HP, event.X, event.Y, event.CreatedAt)
	return err
}

func (p *PostgreSQL) RecentEvents(ctx context.Context, limit int) ([]models.MatchEvent, error) {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	rows, err := p.db.QueryContext(ctx, `
        SELECT event_id, kind, slot, actor, COALESCE(session_id, ''), COALESCE(hp, 0),
               COALESCE(x, 0), COALESCE(y, 0), created_at
        FROM match_events ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.MatchEvent
	for rows.Next() {
		var e models.MatchEvent
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Slot, &e.Actor, &e.SessionID, &e.HP, &e.X, &e.Y, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = models.EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
