package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/ponto/internal/store"
)

// ToCSV writes one line per day followed by a balance line.
func ToCSV(l *store.Ledger, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range Rows(l) {
		if err := w.Write(r.cells()); err != nil {
			return err
		}
	}
	balance := make([]string, len(header))
	balance[0] = "Balance (min)"
	balance[1] = fmt.Sprintf("%d", l.BalanceMinutes)
	if err := w.Write(balance); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
