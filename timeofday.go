package gtfsjson

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is an hour and minute as written in stop_times.txt. Hours past 23
// are kept as is.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay reads "H:MM" or "HH:MM", ignoring any seconds component.
// Components that are missing or not numbers are read as zero and ok is false.
func ParseTimeOfDay(s string) (t TimeOfDay, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	ok = len(parts) >= 2
	var err error
	if t.Hour, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		t.Hour, ok = 0, false
	}
	if len(parts) >= 2 {
		if t.Minute, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
			t.Minute, ok = 0, false
		}
	}
	return t, ok
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// truncateTime keeps the hour and minute parts of a stop_times.txt time.
func truncateTime(s string) string {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return s
	}
	return parts[0] + ":" + parts[1]
}
