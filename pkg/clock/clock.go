// Package clock converts between the 12-hour wall-clock strings stored in
// availability and booking documents ("09:30 AM") and minutes since midnight,
// the representation all scheduling arithmetic runs on.
package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var clockRegex = regexp.MustCompile(`^(0?[1-9]|1[0-2]):([0-5][0-9]) (AM|PM)$`)

// ToMinutes parses "H:MM AM|PM" into minutes since midnight.
// 12 AM maps to hour 0, 12 PM stays 12. Anything outside the fixed format is
// a data error: stored slots and bookings are written by this service, so a
// parse failure means corrupt data, not user input.
func ToMinutes(s string) (int, error) {
	m := clockRegex.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("invalid clock time %q: want H:MM AM|PM", s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	if m[3] == "PM" && hour != 12 {
		hour += 12
	}
	if m[3] == "AM" && hour == 12 {
		hour = 0
	}

	return hour*60 + minute, nil
}

// FromMinutes formats minutes since midnight as "HH:MM AM|PM", wrapping at
// 24 hours. Inverse of ToMinutes for all values in [0, 1440).
func FromMinutes(total int) string {
	total %= minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}

	hour24 := total / 60
	minute := total % 60

	meridiem := "AM"
	if hour24 >= 12 {
		meridiem = "PM"
	}

	hour12 := hour24 % 12
	if hour12 == 0 {
		hour12 = 12
	}

	return fmt.Sprintf("%02d:%02d %s", hour12, minute, meridiem)
}

// Valid reports whether s is a well-formed 12-hour clock string.
func Valid(s string) bool {
	_, err := ToMinutes(s)
	return err == nil
}
