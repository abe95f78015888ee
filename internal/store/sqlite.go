package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// SQLite keeps the ledger in a SQLite database. Each save replaces the whole
// document inside one transaction.
type SQLite struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*SQLite, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*SQLite, error) {
	return New(":memory:")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *SQLite) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS records (
		seq            INTEGER PRIMARY KEY AUTOINCREMENT,
		date           TEXT NOT NULL UNIQUE,
		morning_in     TEXT NOT NULL DEFAULT '',
		morning_out    TEXT NOT NULL DEFAULT '',
		afternoon_in   TEXT NOT NULL DEFAULT '',
		afternoon_out  TEXT NOT NULL DEFAULT '',
		worked         TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('balance_minutes', '0'),
		('reset_date',      '');
	`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *SQLite) Load() (*Ledger, error) {
	l := NewLedger()

	bal, err := getSetting(s.db, settingBalance)
	if err != nil {
		return nil, err
	}
	if l.BalanceMinutes, err = strconv.ParseInt(bal, 10, 64); err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", bal, err)
	}

	reset, err := getSetting(s.db, settingResetDate)
	if err != nil {
		return nil, err
	}
	if reset != "" {
		d, err := ParseDate(reset)
		if err != nil {
			return nil, fmt.Errorf("parse reset date %q: %w", reset, err)
		}
		l.ResetDate = &d
	}

	rows, err := s.db.Query(
		`SELECT date, morning_in, morning_out, afternoon_in, afternoon_out, worked
		 FROM records ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r DailyRecord
		if err := rows.Scan(&r.Date, &r.MorningIn, &r.MorningOut, &r.AfternoonIn, &r.AfternoonOut, &r.Worked); err != nil {
			return nil, err
		}
		l.Records = append(l.Records, r)
	}
	return l, rows.Err()
}

func (s *SQLite) Save(l *Ledger) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	// Reset the sequence so the stored order always mirrors the slice order.
	if _, err := tx.Exec(`DELETE FROM sqlite_sequence WHERE name = 'records'`); err != nil {
		return fmt.Errorf("reset record sequence: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO records (date, morning_in, morning_out, afternoon_in, afternoon_out, worked)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range l.Records {
		if _, err := stmt.Exec(r.Date, r.MorningIn, r.MorningOut, r.AfternoonIn, r.AfternoonOut, r.Worked); err != nil {
			return fmt.Errorf("insert record %s: %w", r.Date, err)
		}
	}

	if err := setSetting(tx, settingBalance, strconv.FormatInt(l.BalanceMinutes, 10)); err != nil {
		return err
	}
	reset := ""
	if l.ResetDate != nil {
		reset = l.ResetDate.Format(DateLayout)
	}
	if err := setSetting(tx, settingResetDate, reset); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
