package bank

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/ponto/internal/store"
)

// Punches are the four wall-clock entries of a day as typed by the user.
// An empty value means "not entered".
type Punches struct {
	MorningIn    string
	MorningOut   string
	AfternoonIn  string
	AfternoonOut string
}

// PunchesOf returns the punches stored on r.
func PunchesOf(r store.DailyRecord) Punches {
	return Punches{
		MorningIn:    r.MorningIn,
		MorningOut:   r.MorningOut,
		AfternoonIn:  r.AfternoonIn,
		AfternoonOut: r.AfternoonOut,
	}
}

// mergeInto overwrites every field of r for which p carries a value.
func (p Punches) mergeInto(r *store.DailyRecord) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&r.MorningIn, p.MorningIn)
	set(&r.MorningOut, p.MorningOut)
	set(&r.AfternoonIn, p.AfternoonIn)
	set(&r.AfternoonOut, p.AfternoonOut)
}

// Accounting is the result of computing one complete day.
type Accounting struct {
	Morning      time.Duration
	Afternoon    time.Duration
	Worked       time.Duration
	Break        time.Duration
	LunchOverage time.Duration // zero unless Break exceeds the minimum
}

// Compute parses the four punches and derives the worked time and the lunch
// overage. Spans are not required to be positive.
func Compute(p Punches, minBreak time.Duration) (Accounting, error) {
	fields := []struct {
		name  string
		value string
	}{
		{FieldMorningIn, p.MorningIn},
		{FieldMorningOut, p.MorningOut},
		{FieldAfternoonIn, p.AfternoonIn},
		{FieldAfternoonOut, p.AfternoonOut},
	}

	var t [4]time.Time
	for i, f := range fields {
		v, err := ParseTimeOfDay(f.value)
		if err != nil {
			return Accounting{}, &FormatError{Field: f.name, Value: f.value, Err: err}
		}
		t[i] = v
	}

	a := Accounting{
		Morning:   t[1].Sub(t[0]),
		Afternoon: t[3].Sub(t[2]),
		Break:     t[2].Sub(t[1]),
	}
	a.Worked = a.Morning + a.Afternoon
	if a.Break > minBreak {
		a.LunchOverage = a.Break - minBreak
	}
	return a, nil
}

// ParseTimeOfDay parses an HH:MM punch.
func ParseTimeOfDay(s string) (time.Time, error) {
	return time.Parse(store.TimeLayout, strings.TrimSpace(s))
}

// Minutes truncates d to whole minutes, toward zero.
func Minutes(d time.Duration) int64 {
	return int64(d / time.Minute)
}

// FormatDuration renders d as H:MM:SS, with a leading minus when negative.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int64(d / time.Hour)
	m := int64(d%time.Hour) / int64(time.Minute)
	s := int64(d%time.Minute) / int64(time.Second)
	return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
}

// FormatBalance renders a signed minute count as +H:MM / -H:MM.
func FormatBalance(minutes int64) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}
