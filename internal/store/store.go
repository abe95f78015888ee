package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Store loads and saves the ledger as a single document.
type Store interface {
	// Load returns the saved ledger, or a fresh one when none exists yet.
	Load() (*Ledger, error)
	// Save replaces the saved ledger with l.
	Save(l *Ledger) error
	Close() error
}

// Open returns the backend for driver rooted at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewFile(path)
	case DriverSQLite:
		return New(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// DefaultPath returns ~/.config/ponto/registro_ponto.json or
// ~/.config/ponto/ponto.db depending on driver.
func DefaultPath(driver string) (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	name := "registro_ponto.json"
	if driver == DriverSQLite {
		name = "ponto.db"
	}
	return filepath.Join(cfg, "ponto", name), nil
}
