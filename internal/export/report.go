package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sadopc/ponto/internal/store"
	"github.com/shopspring/decimal"
)

// NA marks a punch or total that was never entered.
const NA = "N/A"

var header = []string{"Date", "Morning In", "Morning Out", "Afternoon In", "Afternoon Out", "Worked"}

// Row is one report line: a day with its punches and worked time.
type Row struct {
	Date         string `json:"date"`
	MorningIn    string `json:"morning_in"`
	MorningOut   string `json:"morning_out"`
	AfternoonIn  string `json:"afternoon_in"`
	AfternoonOut string `json:"afternoon_out"`
	Worked       string `json:"worked"`
}

func (r Row) cells() []string {
	return []string{r.Date, r.MorningIn, r.MorningOut, r.AfternoonIn, r.AfternoonOut, r.Worked}
}

// Rows converts the ledger records into report rows, in ledger order.
// Dates are shown as DD/MM/YYYY and missing values as N/A.
func Rows(l *store.Ledger) []Row {
	rows := make([]Row, 0, len(l.Records))
	for _, r := range l.Records {
		rows = append(rows, Row{
			Date:         displayDate(r.Date),
			MorningIn:    orNA(r.MorningIn),
			MorningOut:   orNA(r.MorningOut),
			AfternoonIn:  orNA(r.AfternoonIn),
			AfternoonOut: orNA(r.AfternoonOut),
			Worked:       orNA(r.Worked),
		})
	}
	return rows
}

// BalanceHours renders minutes as exact decimal hours with two places.
func BalanceHours(minutes int64) string {
	return decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60)).StringFixed(2)
}

// ToText writes the report as an aligned table preceded by the balance.
func ToText(w io.Writer, l *store.Ledger) error {
	fmt.Fprintln(w, "Time Clock Report")
	fmt.Fprintf(w, "Current balance: %d minutes (%sh)\n", l.BalanceMinutes, BalanceHours(l.BalanceMinutes))
	if l.ResetDate != nil {
		fmt.Fprintf(w, "Next reset: %s\n", l.ResetDate.Format("02/01/2006"))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range Rows(l) {
		fmt.Fprintln(tw, strings.Join(r.cells(), "\t"))
	}
	return tw.Flush()
}

func displayDate(iso string) string {
	t, err := time.Parse(store.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

func orNA(s string) string {
	if s == "" {
		return NA
	}
	return s
}
