// Package bank is the time accounting engine. It owns the loaded ledger,
// turns a day's four punches into worked time, keeps the running balance
// against the expected workload and persists every change through the store.
//
// The engine is not safe for concurrent use; callers drive it from a single
// goroutine, one user action at a time.
package bank

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sadopc/ponto/internal/logging"
	"github.com/sadopc/ponto/internal/store"
)

const (
	// DefaultExpected is the expected daily workload.
	DefaultExpected = 8*time.Hour + 30*time.Minute
	// DefaultMinBreak is the lunch break allowed before overage is charged.
	DefaultMinBreak = time.Hour
)

// LedgerStore persists the whole ledger document.
type LedgerStore interface {
	Load() (*store.Ledger, error)
	Save(*store.Ledger) error
}

type Engine struct {
	store  LedgerStore
	ledger *store.Ledger

	expected time.Duration
	minBreak time.Duration
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithExpected(d time.Duration) Option {
	return func(e *Engine) { e.expected = d }
}

func WithMinBreak(d time.Duration) Option {
	return func(e *Engine) { e.minBreak = d }
}

// New loads the ledger from s and returns an engine that owns it.
func New(s LedgerStore, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:    s,
		expected: DefaultExpected,
		minBreak: DefaultMinBreak,
		now:      time.Now,
		log:      logging.Discard(),
	}
	for _, o := range opts {
		o(e)
	}

	l, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	e.ledger = l
	e.log.Debug("ledger loaded", "balance", l.BalanceMinutes, "records", len(l.Records))
	return e, nil
}

// Result describes the outcome of a registration.
type Result struct {
	// Complete is true when all four punches were present and the balance
	// was updated. False means the punches were only saved.
	Complete     bool
	Balance      int64
	Worked       time.Duration
	Delta        time.Duration
	LunchOverage time.Duration
	Record       store.DailyRecord
}

// Register merges p into today's record and saves it. When the record then
// holds all four punches, the day is accounted: the difference to the
// expected workload and any lunch overage are applied to the balance and the
// ledger is saved again.
//
// A *FormatError leaves the partially saved record in place. Registering a
// complete day again applies its delta again.
func (e *Engine) Register(p Punches) (Result, error) {
	date := e.today()
	rec := e.ledger.FindOrCreate(date)
	p.mergeInto(rec)
	// Worked is only set again once the punches are accounted.
	rec.Worked = ""

	if err := e.save(); err != nil {
		return Result{}, fmt.Errorf("save punches: %w", err)
	}

	res := Result{Balance: e.ledger.BalanceMinutes, Record: *rec}
	if !rec.Complete() {
		e.log.Info("partial punches saved", "date", date)
		return res, nil
	}

	acc, err := Compute(PunchesOf(*rec), e.minBreak)
	if err != nil {
		e.log.Warn("punches rejected", "date", date, "error", err)
		return res, err
	}

	delta := acc.Worked - e.expected
	e.ledger.BalanceMinutes += Minutes(delta)
	e.ledger.BalanceMinutes -= Minutes(acc.LunchOverage)
	rec.Worked = FormatDuration(acc.Worked)

	if err := e.save(); err != nil {
		return Result{}, fmt.Errorf("save balance: %w", err)
	}

	e.log.Info("day accounted",
		"date", date,
		"worked", rec.Worked,
		"delta_min", Minutes(delta),
		"lunch_overage_min", Minutes(acc.LunchOverage),
		"balance", e.ledger.BalanceMinutes,
	)

	return Result{
		Complete:     true,
		Balance:      e.ledger.BalanceMinutes,
		Worked:       acc.Worked,
		Delta:        delta,
		LunchOverage: acc.LunchOverage,
		Record:       *rec,
	}, nil
}

// Flush stores whatever punches are held at shutdown, without accounting.
// A changed punch drops the worked time of an accounted day.
func (e *Engine) Flush(p Punches) error {
	rec := e.ledger.FindOrCreate(e.today())
	before := *rec
	p.mergeInto(rec)
	if *rec != before {
		rec.Worked = ""
	}
	if err := e.save(); err != nil {
		return fmt.Errorf("flush punches: %w", err)
	}
	e.log.Debug("punches flushed", "date", rec.Date)
	return nil
}

// EvaluateReset zeroes the balance when the scheduled reset date has been
// reached, clears the schedule and saves. It reports whether a reset happened.
func (e *Engine) EvaluateReset() (bool, error) {
	if e.ledger.ResetDate == nil {
		return false, nil
	}
	reset := e.ledger.ResetDate.Format(store.DateLayout)
	if e.today() < reset {
		return false, nil
	}

	prev := e.ledger.BalanceMinutes
	e.ledger.BalanceMinutes = 0
	e.ledger.ResetDate = nil
	if err := e.save(); err != nil {
		return false, fmt.Errorf("save reset: %w", err)
	}
	e.log.Info("balance reset", "reset_date", reset, "previous_balance", prev)
	return true, nil
}

// SetResetDate schedules a balance reset for the calendar day of d.
func (e *Engine) SetResetDate(d time.Time) error {
	day := store.Day(d)
	e.ledger.ResetDate = &day
	if err := e.save(); err != nil {
		return fmt.Errorf("save reset date: %w", err)
	}
	e.log.Info("reset date set", "reset_date", day.Format(store.DateLayout))
	return nil
}

func (e *Engine) ClearResetDate() error {
	e.ledger.ResetDate = nil
	if err := e.save(); err != nil {
		return fmt.Errorf("clear reset date: %w", err)
	}
	e.log.Info("reset date cleared")
	return nil
}

// Today returns today's record without creating it.
func (e *Engine) Today() store.DailyRecord {
	date := e.today()
	if r := e.ledger.Record(date); r != nil {
		return *r
	}
	return store.DailyRecord{Date: date}
}

func (e *Engine) Balance() int64 { return e.ledger.BalanceMinutes }

// ResetDate returns the scheduled reset, if any.
func (e *Engine) ResetDate() (time.Time, bool) {
	if e.ledger.ResetDate == nil {
		return time.Time{}, false
	}
	return *e.ledger.ResetDate, true
}

func (e *Engine) Expected() time.Duration { return e.expected }

// Snapshot returns a copy of the ledger for read-only consumers such as
// reports.
func (e *Engine) Snapshot() *store.Ledger {
	return e.ledger.Clone()
}

func (e *Engine) today() string {
	return e.now().Format(store.DateLayout)
}

func (e *Engine) save() error {
	return e.store.Save(e.ledger)
}
