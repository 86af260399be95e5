// Package oplog implements the multi-writer append-only log that every
// replicated store is built on. Entries are persisted in SQLite, ordered
// deterministically and handed to an Applier that maintains the view.
package oplog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/saimonmoore/experiment-autobee/internal/crypto"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its configuration in package globals
var migrateMu sync.Mutex

// Storage represents SQLite storage shared by all logs of a device
type Storage struct {
	db *sql.DB
}

// New creates a new SQLite storage instance
// dbPath is the path to the SQLite database file
// Use ":memory:" for in-memory database (useful for testing)
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем соединение с БД
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite с WAL mode может поддерживать несколько читателей, но только одного писателя
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	storage := &Storage{db: db}

	if err := storage.runMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// runMigrations выполняет миграции из embedded FS
func (s *Storage) runMigrations() error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// LocalKeyPair returns this device's write slot for namespace, generating
// and persisting it on first use. The slot exists before the log grants
// write capability to it.
func (s *Storage) LocalKeyPair(ctx context.Context, namespace string) (*crypto.KeyPair, error) {
	var private []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT private_key FROM local_keys WHERE namespace = ?`, namespace,
	).Scan(&private)

	switch {
	case err == nil:
		return crypto.KeyPairFromPrivate(private)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to load local key: %w", err)
	}

	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	// INSERT OR IGNORE + повторное чтение на случай гонки двух Open
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO local_keys (namespace, public_key, private_key) VALUES (?, ?, ?)`,
		namespace, kp.PublicHex(), []byte(kp.Private),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save local key: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT private_key FROM local_keys WHERE namespace = ?`, namespace,
	).Scan(&private); err != nil {
		return nil, fmt.Errorf("failed to reload local key: %w", err)
	}

	return crypto.KeyPairFromPrivate(private)
}

// saveEntry stores an entry; re-inserting a known entry is a no-op.
// Reports whether a row was actually inserted.
func (s *Storage) saveEntry(ctx context.Context, logKey string, e *Entry) (bool, error) {
	query := `
		INSERT OR IGNORE INTO entries (log_key, writer, seq, clock, kind, value, signature)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		logKey,
		e.Writer,
		int64(e.Seq),
		e.Clock,
		string(e.Kind),
		e.Value,
		e.Signature,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n > 0, nil
}

// loadEntries returns every stored entry of a log ordered by writer and seq
func (s *Storage) loadEntries(ctx context.Context, logKey string) ([]*Entry, error) {
	query := `
		SELECT writer, seq, clock, kind, value, signature
		FROM entries
		WHERE log_key = ?
		ORDER BY writer, seq
	`

	rows, err := s.db.QueryContext(ctx, query, logKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e    Entry
			seq  int64
			kind string
		)
		if err := rows.Scan(&e.Writer, &seq, &e.Clock, &kind, &e.Value, &e.Signature); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Seq = uint64(seq)
		e.Kind = Kind(kind)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}
