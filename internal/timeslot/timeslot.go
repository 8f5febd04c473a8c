package timeslot

import (
	"fmt"
	"strings"
	"time"
)

// Slot is an enumerated time-of-day bucket.
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
	SlotEvening   Slot = "evening"
)

// ParseSlot normalizes and validates a slot string.
func ParseSlot(raw string) (Slot, error) {
	s := Slot(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return s, nil
	}
	return "", fmt.Errorf("unrecognized time slot: %q", raw)
}

// Range is an explicit start/end time-of-day pair, kept in "HH:MM" form.
type Range struct {
	Start string
	End   string
}

const clockLayout = "15:04"

// ParseRange validates an explicit start/end pair. Both must be well-formed
// 24-hour clock values and start must be strictly before end.
func ParseRange(start, end string) (Range, error) {
	st, err := time.Parse(clockLayout, start)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start time %q: expected HH:MM", start)
	}
	et, err := time.Parse(clockLayout, end)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end time %q: expected HH:MM", end)
	}
	if !st.Before(et) {
		return Range{}, fmt.Errorf("start time %q must be before end time %q", start, end)
	}
	return Range{Start: st.Format(clockLayout), End: et.Format(clockLayout)}, nil
}
