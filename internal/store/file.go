package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File keeps the ledger in a human-readable JSON document.
type File struct {
	path string
}

type document struct {
	Balance   float64     `json:"banco_de_horas"`
	Records   []recordDoc `json:"registros"`
	ResetDate *string     `json:"data_reset"`
}

type recordDoc struct {
	Date         string `json:"data"`
	MorningIn    string `json:"entrada_manha"`
	MorningOut   string `json:"saida_manha"`
	AfternoonIn  string `json:"entrada_tarde"`
	AfternoonOut string `json:"saida_tarde"`
	Worked       string `json:"horas_trabalhadas"`
}

// NewFile returns a JSON store at path. The file is created on first save.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("empty ledger path")
	}
	return &File{path: path}, nil
}

func (f *File) Path() string { return f.path }

func (f *File) Close() error { return nil }

func (f *File) Load() (*Ledger, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewLedger(), nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", f.path, err)
	}

	l := NewLedger()
	// Older files carry fractional minutes; whole minutes are kept.
	l.BalanceMinutes = int64(doc.Balance)
	for _, r := range doc.Records {
		l.Records = append(l.Records, DailyRecord{
			Date:         r.Date,
			MorningIn:    r.MorningIn,
			MorningOut:   r.MorningOut,
			AfternoonIn:  r.AfternoonIn,
			AfternoonOut: r.AfternoonOut,
			Worked:       r.Worked,
		})
	}
	l.Records = dedupe(l.Records)

	if doc.ResetDate != nil && *doc.ResetDate != "" {
		d, err := ParseDate(*doc.ResetDate)
		if err != nil {
			return nil, fmt.Errorf("decode reset date: %w", err)
		}
		l.ResetDate = &d
	}
	return l, nil
}

// Save writes to a temporary file next to the target and renames it into
// place, so a crash never leaves a truncated document behind.
func (f *File) Save(l *Ledger) error {
	doc := document{
		Balance: float64(l.BalanceMinutes),
		Records: make([]recordDoc, 0, len(l.Records)),
	}
	for _, r := range l.Records {
		doc.Records = append(doc.Records, recordDoc(r))
	}
	if l.ResetDate != nil {
		s := l.ResetDate.Format(DateLayout)
		doc.ResetDate = &s
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(f.path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp ledger: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
