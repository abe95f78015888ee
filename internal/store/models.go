package store

import "time"

const (
	// DateLayout is the ISO calendar date used as the record key.
	DateLayout = "2006-01-02"
	// TimeLayout is the wall-clock format of a punch.
	TimeLayout = "15:04"
)

// DailyRecord holds the four punches of one day. Punches are kept exactly as
// entered so a day with a malformed value can still be saved and corrected later.
type DailyRecord struct {
	Date         string
	MorningIn    string
	MorningOut   string
	AfternoonIn  string
	AfternoonOut string
	Worked       string // empty until all four punches are accounted
}

// Complete reports whether all four punches are set.
func (r DailyRecord) Complete() bool {
	return r.MorningIn != "" && r.MorningOut != "" && r.AfternoonIn != "" && r.AfternoonOut != ""
}

// Ledger is the whole persisted document: the time bank balance, the daily
// records in insertion order and an optional scheduled reset.
type Ledger struct {
	BalanceMinutes int64
	Records        []DailyRecord
	ResetDate      *time.Time // local midnight, nil when no reset is scheduled
}

// NewLedger returns the default document used when nothing was saved yet.
func NewLedger() *Ledger {
	return &Ledger{Records: []DailyRecord{}}
}

// Record returns the record for date, or nil.
func (l *Ledger) Record(date string) *DailyRecord {
	for i := range l.Records {
		if l.Records[i].Date == date {
			return &l.Records[i]
		}
	}
	return nil
}

// FindOrCreate returns the record for date, appending an empty one if missing.
func (l *Ledger) FindOrCreate(date string) *DailyRecord {
	if r := l.Record(date); r != nil {
		return r
	}
	l.Records = append(l.Records, DailyRecord{Date: date})
	return &l.Records[len(l.Records)-1]
}

// Clone returns a deep copy, safe to hand to read-only consumers.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		BalanceMinutes: l.BalanceMinutes,
		Records:        make([]DailyRecord, len(l.Records)),
	}
	copy(c.Records, l.Records)
	if l.ResetDate != nil {
		d := *l.ResetDate
		c.ResetDate = &d
	}
	return c
}

// Day truncates t to local midnight of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses an ISO date in the local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// dedupe keeps the first record of each date.
func dedupe(records []DailyRecord) []DailyRecord {
	seen := make(map[string]bool, len(records))
	out := make([]DailyRecord, 0, len(records))
	for _, r := range records {
		if seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		out = append(out, r)
	}
	return out
}
