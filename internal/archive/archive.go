// Package archive persists finalized conversation turns to Postgres for
// audit. It is a storage collaborator of the chat state core: the core
// stays memory-only, and archive failures are logged by the caller, never
// surfaced as state errors.
package archive

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/atelier/console-backend/internal/chatstate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config holds the Postgres connection settings.
type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// DSN returns the URL-form connection string used by migrations.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Connect opens and pings a pooled connection.
func Connect(cfg Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to archive database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// RunMigrations applies all pending schema migrations.
func RunMigrations(cfg Config) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// turn is the stored row for one finalized message.
type turn struct {
	SessionKey string    `db:"session_key"`
	MessageID  string    `db:"message_id"`
	Role       string    `db:"role"`
	Content    string    `db:"content"`
	MediaURL   string    `db:"media_url"`
	CreatedAt  time.Time `db:"created_at"`
}

// Recorder writes finalized turns. It implements gateway.TurnRecorder.
type Recorder struct {
	db *sqlx.DB
}

// NewRecorder creates a recorder over an open connection.
func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

// RecordFinal inserts one finalized turn. Re-delivery of the same message
// id is a no-op, mirroring the core's at-most-once invariant.
func (r *Recorder) RecordFinal(ctx context.Context, sessionKey string, msg chatstate.Message) error {
	row := turn{
		SessionKey: sessionKey,
		MessageID:  msg.ID,
		Role:       string(msg.Role),
		Content:    msg.Content,
		MediaURL:   msg.MediaURL,
		CreatedAt:  msg.Timestamp,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO turns (session_key, message_id, role, content, media_url, created_at)
		VALUES (:session_key, :message_id, :role, :content, :media_url, :created_at)
		ON CONFLICT (session_key, message_id) DO NOTHING
	`
	_, err := r.db.NamedExecContext(ctx, query, row)
	return err
}

// ListBySession returns the archived turns for one session, oldest first.
func (r *Recorder) ListBySession(ctx context.Context, sessionKey string) ([]chatstate.Message, error) {
	var rows []turn
	query := `
		SELECT session_key, message_id, role, content, media_url, created_at
		FROM turns
		WHERE session_key = $1
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query, sessionKey); err != nil {
		return nil, err
	}

	msgs := make([]chatstate.Message, len(rows))
	for i, row := range rows {
		msgs[i] = chatstate.Message{
			ID:        row.MessageID,
			Role:      chatstate.Role(row.Role),
			Content:   row.Content,
			MediaURL:  row.MediaURL,
			Timestamp: row.CreatedAt,
		}
	}
	return msgs, nil
}
