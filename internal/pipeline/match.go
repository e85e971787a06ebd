package pipeline

import (
	"strconv"
	"strings"

	"shift-triage-go/internal/model"
)

const minutesPerDay = 24 * 60

// Matcher finds at most one available nurse per extracted shift. The
// claimed set is scoped to a single batch run and stops one nurse from
// being handed two different shifts in the same run. It offers no
// protection across concurrent runs.
type Matcher struct {
	store    Store
	tenantID string
	claimed  map[uint]struct{}
}

func newMatcher(store Store, tenantID string) *Matcher {
	return &Matcher{
		store:    store,
		tenantID: tenantID,
		claimed:  make(map[uint]struct{}),
	}
}

// Match returns the first compatible unclaimed slot for the shift, or
// nil when none qualifies. Absence of a match is a normal outcome; the
// only error here is a store failure.
func (m *Matcher) Match(shift model.ShiftRequest) (*model.NurseAvailability, error) {
	slots, err := m.store.AvailabilityForDate(m.tenantID, strings.TrimSpace(shift.Date))
	if err != nil {
		return nil, err
	}

	for i := range slots {
		slot := slots[i]
		if _, taken := m.claimed[slot.NurseID]; taken {
			continue
		}
		if !unitCompatible(slot.Unit, shift.Unit) {
			continue
		}
		timeOK := timeWindowCovers(slot.StartTime, slot.EndTime, shift.StartTime, shift.EndTime)
		gradeOK := gradeCompatible(slot.Grade, shift.Grade)
		if !timeOK && !gradeOK {
			continue
		}

		m.claimed[slot.NurseID] = struct{}{}
		return &slot, nil
	}

	return nil, nil
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// unitCompatible accepts case-insensitive equality or substring
// containment in either direction. The unit field is free text from
// two independent sources, so exact equality is too strict.
func unitCompatible(a, b string) bool {
	return looselyEqual(a, b)
}

// gradeCompatible uses the same bidirectional containment rule as
// units ("Band 5" matches "Band 5 RN").
func gradeCompatible(a, b string) bool {
	return looselyEqual(a, b)
}

func looselyEqual(a, b string) bool {
	a, b = normalizeField(a), normalizeField(b)
	if a == "" && b == "" {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// timeWindowCovers reports whether the candidate window fully covers
// the requested window. Windows ending at or before their start are
// treated as wrapping past midnight.
func timeWindowCovers(candStart, candEnd, reqStart, reqEnd string) bool {
	cs, ok1 := minuteOfDay(candStart)
	ce, ok2 := minuteOfDay(candEnd)
	rs, ok3 := minuteOfDay(reqStart)
	re, ok4 := minuteOfDay(reqEnd)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}

	if ce <= cs {
		ce += minutesPerDay
	}
	if re <= rs {
		re += minutesPerDay
	}

	return cs <= rs && ce >= re
}

// minuteOfDay parses "HH:MM" (seconds tolerated and ignored) into
// minutes since midnight.
func minuteOfDay(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}
