package bank

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/ponto/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.Local)

const testToday = "2026-10-18"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newFileStore(t *testing.T) *store.File {
	t.Helper()
	f, err := store.NewFile(filepath.Join(t.TempDir(), "registro_ponto.json"))
	require.NoError(t, err)
	return f
}

func newEngine(t *testing.T, s LedgerStore, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock(testNow))}, opts...)
	e, err := New(s, opts...)
	require.NoError(t, err)
	return e
}

func reload(t *testing.T, s LedgerStore) *store.Ledger {
	t.Helper()
	l, err := s.Load()
	require.NoError(t, err)
	return l
}

func day(mi, mo, ai, ao string) Punches {
	return Punches{MorningIn: mi, MorningOut: mo, AfternoonIn: ai, AfternoonOut: ao}
}

// failingStore loads an empty ledger and fails every save after the first
// `okSaves` calls.
type failingStore struct {
	okSaves int
	saves   int
	loadErr error
}

func (f *failingStore) Load() (*store.Ledger, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return store.NewLedger(), nil
}

func (f *failingStore) Save(*store.Ledger) error {
	f.saves++
	if f.saves > f.okSaves {
		return errors.New("disk full")
	}
	return nil
}

// --- Register: complete days ---

func TestRegister_ExactWorkdayLeavesBalance(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	res, err := e.Register(day("08:00", "12:00", "13:00", "17:30"))
	require.NoError(t, err)

	assert.True(t, res.Complete)
	assert.Equal(t, 8*time.Hour+30*time.Minute, res.Worked)
	assert.Equal(t, time.Duration(0), res.Delta)
	assert.Equal(t, int64(0), res.Balance)
	assert.Equal(t, "8:30:00", res.Record.Worked)

	saved := reload(t, s)
	assert.Equal(t, int64(0), saved.BalanceMinutes)
	require.Len(t, saved.Records, 1)
	assert.Equal(t, testToday, saved.Records[0].Date)
	assert.Equal(t, "8:30:00", saved.Records[0].Worked)
}

func TestRegister_OvertimeAddsToBalance(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	res, err := e.Register(day("08:00", "12:00", "13:00", "18:00"))
	require.NoError(t, err)

	assert.True(t, res.Complete)
	assert.Equal(t, 9*time.Hour, res.Worked)
	assert.Equal(t, 30*time.Minute, res.Delta)
	assert.Equal(t, int64(30), res.Balance)
	assert.Equal(t, "9:00:00", res.Record.Worked)
	assert.Equal(t, int64(30), reload(t, s).BalanceMinutes)
}

func TestRegister_DeficitSubtractsFromBalance(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	res, err := e.Register(day("08:00", "12:00", "13:00", "16:00"))
	require.NoError(t, err)
	assert.Equal(t, -90*time.Minute, res.Delta)
	assert.Equal(t, int64(-90), res.Balance)
}

func TestRegister_LunchOverageCharged(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	// 90 minute lunch: 30 minutes over the allowed hour.
	res, err := e.Register(day("08:00", "12:00", "13:30", "18:00"))
	require.NoError(t, err)

	assert.Equal(t, 8*time.Hour+30*time.Minute, res.Worked)
	assert.Equal(t, time.Duration(0), res.Delta)
	assert.Equal(t, 30*time.Minute, res.LunchOverage)
	assert.Equal(t, int64(-30), res.Balance)
	assert.Equal(t, int64(-30), reload(t, s).BalanceMinutes)
}

func TestRegister_LunchOverageOnTopOfDelta(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	// Worked 9h (+30) with a 75 minute lunch (-15).
	res, err := e.Register(day("08:00", "12:00", "13:15", "18:15"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, res.Delta)
	assert.Equal(t, 15*time.Minute, res.LunchOverage)
	assert.Equal(t, int64(15), res.Balance)
}

func TestRegister_ExactHourLunchNotCharged(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	res, err := e.Register(day("08:00", "12:00", "13:00", "17:30"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), res.LunchOverage)
}

func TestRegister_ShortLunchNotCredited(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	// 30 minute lunch, 8h30 worked: no bonus for skipping part of the break.
	res, err := e.Register(day("08:00", "12:00", "12:30", "17:00"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), res.LunchOverage)
	assert.Equal(t, int64(0), res.Balance)
}

func TestRegister_OverageIsNotCarriedBetweenCalls(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	_, err := e.Register(day("08:00", "12:00", "13:30", "18:00"))
	require.NoError(t, err)
	require.Equal(t, int64(-30), e.Balance())

	// Correct the afternoon to a normal lunch: only the new computation applies.
	res, err := e.Register(Punches{AfternoonIn: "13:00", AfternoonOut: "17:30"})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), res.LunchOverage)
	assert.Equal(t, int64(-30), res.Balance)
}

func TestRegister_RepeatedRegistrationAppliesDeltaTwice(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)
	p := day("08:00", "12:00", "13:00", "18:00")

	first, err := e.Register(p)
	require.NoError(t, err)
	second, err := e.Register(p)
	require.NoError(t, err)

	assert.Equal(t, first.Worked, second.Worked)
	assert.Equal(t, first.Record.Worked, second.Record.Worked)
	assert.Equal(t, int64(30), first.Balance)
	assert.Equal(t, int64(60), second.Balance)
	assert.Len(t, reload(t, s).Records, 1)
}

func TestRegister_WorkedEqualsSumOfSpans(t *testing.T) {
	tests := []struct {
		p    Punches
		want time.Duration
	}{
		{day("08:00", "12:00", "13:00", "17:30"), 8*time.Hour + 30*time.Minute},
		{day("07:45", "11:50", "12:50", "17:05"), 4*time.Hour + 5*time.Minute + 4*time.Hour + 15*time.Minute},
		{day("09:00", "09:00", "10:00", "10:00"), 0},
		{day("00:00", "11:59", "12:00", "23:59"), 11*time.Hour + 59*time.Minute + 11*time.Hour + 59*time.Minute},
		{day("6:05", "10:10", "11:10", "15:15"), 4*time.Hour + 5*time.Minute + 4*time.Hour + 5*time.Minute},
	}
	for _, tt := range tests {
		e := newEngine(t, newFileStore(t))
		res, err := e.Register(tt.p)
		require.NoError(t, err, "%+v", tt.p)
		assert.Equal(t, tt.want, res.Worked, "%+v", tt.p)
		assert.Equal(t, FormatDuration(tt.want), res.Record.Worked, "%+v", tt.p)
		assert.Equal(t, Minutes(tt.want-DefaultExpected)-Minutes(res.LunchOverage), res.Balance, "%+v", tt.p)
	}
}

func TestRegister_OutOfOrderSpansAccepted(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	res, err := e.Register(day("12:00", "08:00", "13:00", "17:00"))
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, 0*time.Hour, res.Worked)
	assert.Equal(t, "0:00:00", res.Record.Worked)
	// 5h lunch from 08:00 to 13:00 is charged as well.
	assert.Equal(t, 4*time.Hour, res.LunchOverage)
	assert.Equal(t, int64(-510-240), res.Balance)
}

func TestRegister_CustomExpectedAndBreak(t *testing.T) {
	e := newEngine(t, newFileStore(t), WithExpected(8*time.Hour), WithMinBreak(30*time.Minute))

	res, err := e.Register(day("08:00", "12:00", "13:00", "17:00"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), res.Delta)
	assert.Equal(t, 30*time.Minute, res.LunchOverage)
	assert.Equal(t, int64(-30), res.Balance)
	assert.Equal(t, 8*time.Hour, e.Expected())
}

func TestRegister_WorksWithSQLiteStore(t *testing.T) {
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	e := newEngine(t, s)
	_, err = e.Register(day("08:00", "12:00", "13:00", "18:00"))
	require.NoError(t, err)

	saved := reload(t, s)
	assert.Equal(t, int64(30), saved.BalanceMinutes)
	require.Len(t, saved.Records, 1)
	assert.Equal(t, "9:00:00", saved.Records[0].Worked)
}

// --- Register: partial days ---

func TestRegister_PartialSaveDoesNotTouchBalance(t *testing.T) {
	s := newFileStore(t)
	require.NoError(t, s.Save(&store.Ledger{BalanceMinutes: 42, Records: []store.DailyRecord{}}))
	e := newEngine(t, s)

	res, err := e.Register(Punches{MorningIn: "08:00"})
	require.NoError(t, err)

	assert.False(t, res.Complete)
	assert.Equal(t, int64(42), res.Balance)

	saved := reload(t, s)
	require.Len(t, saved.Records, 1)
	assert.Equal(t, store.DailyRecord{Date: testToday, MorningIn: "08:00"}, saved.Records[0])
	assert.Equal(t, int64(42), saved.BalanceMinutes)
}

func TestRegister_PunchesAccumulateAcrossCalls(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	res, err := e.Register(Punches{MorningIn: "08:00"})
	require.NoError(t, err)
	require.False(t, res.Complete)

	res, err = e.Register(Punches{MorningOut: "12:00", AfternoonIn: "13:00"})
	require.NoError(t, err)
	require.False(t, res.Complete)

	res, err = e.Register(Punches{AfternoonOut: "18:00"})
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, int64(30), res.Balance)
	assert.Equal(t, day("08:00", "12:00", "13:00", "18:00"), PunchesOf(res.Record))
}

func TestRegister_NonEmptyOverwritesField(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	_, err := e.Register(Punches{MorningIn: "08:00"})
	require.NoError(t, err)
	res, err := e.Register(Punches{MorningIn: "07:30"})
	require.NoError(t, err)
	assert.Equal(t, "07:30", res.Record.MorningIn)
}

func TestRegister_BlankLeavesFieldUntouched(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	_, err := e.Register(Punches{MorningIn: "08:00"})
	require.NoError(t, err)
	res, err := e.Register(Punches{MorningIn: "   ", MorningOut: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, "08:00", res.Record.MorningIn)
	assert.Equal(t, "12:00", res.Record.MorningOut)
}

func TestRegister_ExistingRecordIsReused(t *testing.T) {
	s := newFileStore(t)
	require.NoError(t, s.Save(&store.Ledger{Records: []store.DailyRecord{
		{Date: "2026-10-17", MorningIn: "08:00"},
		{Date: testToday, MorningIn: "08:05", MorningOut: "12:00"},
	}}))
	e := newEngine(t, s)

	assert.Equal(t, "08:05", e.Today().MorningIn)

	_, err := e.Register(Punches{AfternoonIn: "13:00"})
	require.NoError(t, err)

	saved := reload(t, s)
	require.Len(t, saved.Records, 2)
	assert.Equal(t, "2026-10-17", saved.Records[0].Date)
	assert.Equal(t, store.DailyRecord{Date: testToday, MorningIn: "08:05", MorningOut: "12:00", AfternoonIn: "13:00"}, saved.Records[1])
}

// --- Register: errors ---

func TestRegister_FormatErrorKeepsPartialSave(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	res, err := e.Register(day("08:00", "12h", "13:00", "17:30"))
	require.Error(t, err)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldMorningOut, fe.Field)
	assert.Equal(t, "12h", fe.Value)
	assert.True(t, errors.Is(err, ErrInvalidTime))
	assert.False(t, res.Complete)

	saved := reload(t, s)
	require.Len(t, saved.Records, 1)
	assert.Equal(t, "12h", saved.Records[0].MorningOut)
	assert.Empty(t, saved.Records[0].Worked)
	assert.Equal(t, int64(0), saved.BalanceMinutes)
}

func TestRegister_FormatErrorCanBeCorrected(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	_, err := e.Register(day("08:00", "25:00", "13:00", "18:00"))
	require.ErrorIs(t, err, ErrInvalidTime)

	res, err := e.Register(Punches{MorningOut: "12:00"})
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, int64(30), res.Balance)
}

func TestRegister_FormatErrorClearsPreviousWorked(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	_, err := e.Register(day("08:00", "12:00", "13:00", "18:00"))
	require.NoError(t, err)

	res, err := e.Register(Punches{MorningIn: "8h"})
	require.ErrorIs(t, err, ErrInvalidTime)
	assert.Empty(t, res.Record.Worked)
	assert.Empty(t, e.Today().Worked)

	saved := reload(t, s)
	assert.Equal(t, "8h", saved.Records[0].MorningIn)
	assert.Empty(t, saved.Records[0].Worked)
	assert.Equal(t, int64(30), saved.BalanceMinutes)
}

func TestRegister_SaveFailure(t *testing.T) {
	e := newEngine(t, &failingStore{})

	_, err := e.Register(Punches{MorningIn: "08:00"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRegister_FinalSaveFailure(t *testing.T) {
	fs := &failingStore{okSaves: 1}
	e := newEngine(t, fs)

	_, err := e.Register(day("08:00", "12:00", "13:00", "18:00"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save balance")
	assert.Equal(t, 2, fs.saves)
}

func TestNew_LoadFailure(t *testing.T) {
	_, err := New(&failingStore{loadErr: errors.New("permission denied")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

// --- Flush ---

func TestFlush_SavesWithoutAccounting(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	require.NoError(t, e.Flush(day("08:00", "12:00", "13:00", "18:00")))

	saved := reload(t, s)
	require.Len(t, saved.Records, 1)
	assert.Equal(t, "18:00", saved.Records[0].AfternoonOut)
	assert.Empty(t, saved.Records[0].Worked)
	assert.Equal(t, int64(0), saved.BalanceMinutes)
}

func TestFlush_PartialCreatesRecord(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	require.NoError(t, e.Flush(Punches{MorningIn: "08:00"}))
	assert.Equal(t, "08:00", reload(t, s).Records[0].MorningIn)
}

func TestFlush_KeepsAccountedDay(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)
	p := day("08:00", "12:00", "13:00", "18:00")

	_, err := e.Register(p)
	require.NoError(t, err)
	require.NoError(t, e.Flush(p))

	saved := reload(t, s)
	assert.Equal(t, "9:00:00", saved.Records[0].Worked)
	assert.Equal(t, int64(30), saved.BalanceMinutes)
}

func TestFlush_ChangedPunchDropsWorked(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	_, err := e.Register(day("08:00", "12:00", "13:00", "18:00"))
	require.NoError(t, err)
	require.NoError(t, e.Flush(Punches{AfternoonOut: "19:00"}))

	saved := reload(t, s)
	assert.Equal(t, "19:00", saved.Records[0].AfternoonOut)
	assert.Empty(t, saved.Records[0].Worked)
}

func TestFlush_SaveFailure(t *testing.T) {
	e := newEngine(t, &failingStore{})
	assert.Error(t, e.Flush(Punches{MorningIn: "08:00"}))
}

// --- Reset ---

func TestEvaluateReset(t *testing.T) {
	tests := []struct {
		name      string
		reset     *time.Time
		wantReset bool
	}{
		{"no schedule", nil, false},
		{"yesterday", ptr(testNow.AddDate(0, 0, -1)), true},
		{"last month", ptr(testNow.AddDate(0, -1, 0)), true},
		{"today", ptr(store.Day(testNow)), true},
		{"tomorrow", ptr(store.Day(testNow.AddDate(0, 0, 1))), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFileStore(t)
			var reset *time.Time
			if tt.reset != nil {
				d := store.Day(*tt.reset)
				reset = &d
			}
			require.NoError(t, s.Save(&store.Ledger{BalanceMinutes: 125, Records: []store.DailyRecord{}, ResetDate: reset}))

			e := newEngine(t, s)
			did, err := e.EvaluateReset()
			require.NoError(t, err)
			assert.Equal(t, tt.wantReset, did)

			saved := reload(t, s)
			if tt.wantReset {
				assert.Equal(t, int64(0), e.Balance())
				assert.Equal(t, int64(0), saved.BalanceMinutes)
				assert.Nil(t, saved.ResetDate)
				_, ok := e.ResetDate()
				assert.False(t, ok)
			} else {
				assert.Equal(t, int64(125), e.Balance())
				assert.Equal(t, int64(125), saved.BalanceMinutes)
				assert.Equal(t, tt.reset != nil, saved.ResetDate != nil)
			}
		})
	}
}

func TestEvaluateReset_KeepsRecords(t *testing.T) {
	s := newFileStore(t)
	yesterday := store.Day(testNow.AddDate(0, 0, -1))
	require.NoError(t, s.Save(&store.Ledger{
		BalanceMinutes: -60,
		Records:        []store.DailyRecord{{Date: "2026-10-17", MorningIn: "08:00"}},
		ResetDate:      &yesterday,
	}))

	e := newEngine(t, s)
	_, err := e.EvaluateReset()
	require.NoError(t, err)
	assert.Len(t, reload(t, s).Records, 1)
}

func TestSetResetDate(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	require.NoError(t, e.SetResetDate(time.Date(2026, 12, 31, 15, 4, 0, 0, time.Local)))

	got, ok := e.ResetDate()
	require.True(t, ok)
	assert.Equal(t, "2026-12-31", got.Format(store.DateLayout))

	saved := reload(t, s)
	require.NotNil(t, saved.ResetDate)
	assert.Equal(t, "2026-12-31", saved.ResetDate.Format(store.DateLayout))

	// Overwrites unconditionally.
	require.NoError(t, e.SetResetDate(time.Date(2026, 11, 1, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "2026-11-01", reload(t, s).ResetDate.Format(store.DateLayout))
}

func TestClearResetDate(t *testing.T) {
	s := newFileStore(t)
	e := newEngine(t, s)

	require.NoError(t, e.SetResetDate(testNow.AddDate(0, 1, 0)))
	require.NoError(t, e.ClearResetDate())
	assert.Nil(t, reload(t, s).ResetDate)
}

func TestSetResetDate_SaveFailure(t *testing.T) {
	e := newEngine(t, &failingStore{})
	assert.Error(t, e.SetResetDate(testNow))
}

// --- Read-only views ---

func TestToday_DoesNotCreateRecord(t *testing.T) {
	e := newEngine(t, newFileStore(t))

	r := e.Today()
	assert.Equal(t, testToday, r.Date)
	assert.False(t, r.Complete())
	assert.Empty(t, e.Snapshot().Records)
}

func TestSnapshot_IsACopy(t *testing.T) {
	e := newEngine(t, newFileStore(t))
	_, err := e.Register(Punches{MorningIn: "08:00"})
	require.NoError(t, err)

	snap := e.Snapshot()
	snap.Records[0].MorningIn = "99:99"
	snap.BalanceMinutes = 1000

	assert.Equal(t, "08:00", e.Today().MorningIn)
	assert.Equal(t, int64(0), e.Balance())
}

func TestDayRollsOverWithClock(t *testing.T) {
	s := newFileStore(t)
	now := testNow
	e := newEngine(t, s, WithClock(func() time.Time { return now }))

	_, err := e.Register(Punches{MorningIn: "08:00"})
	require.NoError(t, err)

	now = now.AddDate(0, 0, 1)
	assert.Empty(t, e.Today().MorningIn)
	_, err = e.Register(Punches{MorningIn: "08:30"})
	require.NoError(t, err)

	saved := reload(t, s)
	require.Len(t, saved.Records, 2)
	assert.Equal(t, "2026-10-19", saved.Records[1].Date)
}

func ptr(t time.Time) *time.Time { return &t }
