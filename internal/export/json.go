package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/ponto/internal/store"
)

type jsonExport struct {
	ExportedAt     string `json:"exported_at"`
	BalanceMinutes int64  `json:"balance_minutes"`
	BalanceHours   string `json:"balance_hours"`
	ResetDate      string `json:"reset_date,omitempty"`
	Count          int    `json:"count"`
	Rows           []Row  `json:"rows"`
}

func ToJSON(l *store.Ledger, path string) error {
	rows := Rows(l)
	export := jsonExport{
		ExportedAt:     time.Now().UTC().Format(time.RFC3339),
		BalanceMinutes: l.BalanceMinutes,
		BalanceHours:   BalanceHours(l.BalanceMinutes),
		Count:          len(rows),
		Rows:           rows,
	}
	if l.ResetDate != nil {
		export.ResetDate = l.ResetDate.Format(store.DateLayout)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
