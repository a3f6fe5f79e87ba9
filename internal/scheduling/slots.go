// Package scheduling holds the slot derivation and conflict detection
// rules shared by the availability and booking services. Everything here
// is pure: callers fetch the day's data, these functions decide.
package scheduling

import (
	"fmt"
	"sort"

	"gleam/pkg/clock"
	"gleam/pkg/model"
)

// Business rules, fixed. A service takes 2 hours and occupies a trailing
// 30-minute buffer, so offering a start time requires 5 consecutive
// half-hour admin slots.
const (
	ServiceDurationMin = 120
	BufferMin          = 30
	SlotGranularityMin = 30

	RequiredConsecutiveSlots = (ServiceDurationMin + BufferMin) / SlotGranularityMin

	// OccupiedWindowMin is the full exclusion zone of one booking.
	OccupiedWindowMin = ServiceDurationMin + BufferMin
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. All values are minutes since midnight.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// occupiedWindow returns a booking's exclusion zone [start, serviceEnd+buffer)
// in minutes since midnight.
func occupiedWindow(b *model.Booking) (int, int, error) {
	start, err := clock.ToMinutes(b.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("booking %s start time: %w", b.ID, err)
	}
	end, err := clock.ToMinutes(b.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("booking %s end time: %w", b.ID, err)
	}
	return start, end + BufferMin, nil
}

type window struct {
	start, end int
}

// activeWindows collects the occupied windows of all non-cancelled bookings.
func activeWindows(bookings []model.Booking) ([]window, error) {
	windows := make([]window, 0, len(bookings))
	for i := range bookings {
		if bookings[i].Status == model.StatusCancelled {
			continue
		}
		start, end, err := occupiedWindow(&bookings[i])
		if err != nil {
			return nil, err
		}
		windows = append(windows, window{start: start, end: end})
	}
	return windows, nil
}

// DeriveBookableSlots turns one day's admin slot grid and its non-cancelled
// bookings into the ordered list of offerable service start times.
//
// The 5-slot window slides positionally over the sorted, deduplicated entries:
// a missing half-hour mark breaks contiguity exactly like an unavailable one,
// and conversely duplicate or clock-adjacent entries are never inferred. Only
// declared slots count.
func DeriveBookableSlots(slots []model.TimeSlot, bookings []model.Booking) ([]model.BookableSlot, error) {
	type mark struct {
		minutes   int
		available bool
	}

	marks := make([]mark, 0, len(slots))
	for i := range slots {
		minutes, err := clock.ToMinutes(slots[i].Time)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", slots[i].ID, err)
		}
		marks = append(marks, mark{minutes: minutes, available: slots[i].Available})
	}

	sort.SliceStable(marks, func(i, j int) bool {
		return marks[i].minutes < marks[j].minutes
	})

	deduped := marks[:0]
	for _, m := range marks {
		if len(deduped) > 0 && deduped[len(deduped)-1].minutes == m.minutes {
			continue
		}
		deduped = append(deduped, m)
	}

	windows, err := activeWindows(bookings)
	if err != nil {
		return nil, err
	}

	result := make([]model.BookableSlot, 0)
	for i := 0; i+RequiredConsecutiveSlots <= len(deduped); i++ {
		open := true
		for j := i; j < i+RequiredConsecutiveSlots; j++ {
			if !deduped[j].available {
				open = false
				break
			}
		}
		if !open {
			continue
		}

		start := deduped[i].minutes
		serviceEnd := start + ServiceDurationMin
		blockEnd := serviceEnd + BufferMin

		conflict := false
		for _, w := range windows {
			if Overlaps(start, blockEnd, w.start, w.end) {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}

		result = append(result, model.BookableSlot{
			StartTime:   clock.FromMinutes(start),
			DisplayTime: fmt.Sprintf("%s - %s", clock.FromMinutes(start), clock.FromMinutes(serviceEnd)),
		})
	}

	return result, nil
}

// BlockTimes lists the half-hour marks a booking starting at startTime
// requires, covering the service and its trailing buffer.
func BlockTimes(startTime string) ([]string, error) {
	start, err := clock.ToMinutes(startTime)
	if err != nil {
		return nil, err
	}
	times := make([]string, 0, RequiredConsecutiveSlots)
	for offset := 0; offset < OccupiedWindowMin; offset += SlotGranularityMin {
		times = append(times, clock.FromMinutes(start+offset))
	}
	return times, nil
}

// HasOpenBlock reports whether every half-hour mark required by a booking
// starting at startTime exists in the day's slots and is available. A mark
// the admin never declared fails the check.
func HasOpenBlock(slots []model.TimeSlot, startTime string) (bool, error) {
	required, err := BlockTimes(startTime)
	if err != nil {
		return false, err
	}

	available := make(map[int]bool, len(slots))
	for i := range slots {
		minutes, err := clock.ToMinutes(slots[i].Time)
		if err != nil {
			return false, fmt.Errorf("slot %s: %w", slots[i].ID, err)
		}
		if slots[i].Available {
			available[minutes] = true
		}
	}

	for _, t := range required {
		minutes, _ := clock.ToMinutes(t)
		if !available[minutes] {
			return false, nil
		}
	}
	return true, nil
}

// ConflictsWithBookings reports whether a booking starting at startTime would
// overlap any non-cancelled booking's occupied window.
func ConflictsWithBookings(startTime string, bookings []model.Booking) (bool, error) {
	start, err := clock.ToMinutes(startTime)
	if err != nil {
		return false, err
	}
	blockEnd := start + OccupiedWindowMin

	windows, err := activeWindows(bookings)
	if err != nil {
		return false, err
	}
	for _, w := range windows {
		if Overlaps(start, blockEnd, w.start, w.end) {
			return true, nil
		}
	}
	return false, nil
}

// SlotStatus returns the status of the booking occupying the given half-hour
// mark, if any. Pure read-side helper for the admin dashboard.
func SlotStatus(slotTime string, bookings []model.Booking) (model.BookingStatus, bool, error) {
	minutes, err := clock.ToMinutes(slotTime)
	if err != nil {
		return "", false, err
	}
	for i := range bookings {
		if bookings[i].Status == model.StatusCancelled {
			continue
		}
		start, err := clock.ToMinutes(bookings[i].StartTime)
		if err != nil {
			return "", false, fmt.Errorf("booking %s start time: %w", bookings[i].ID, err)
		}
		if minutes >= start && minutes < start+OccupiedWindowMin {
			return bookings[i].Status, true, nil
		}
	}
	return "", false, nil
}

// ServiceEnd computes a booking's endTime from its startTime.
func ServiceEnd(startTime string) (string, error) {
	start, err := clock.ToMinutes(startTime)
	if err != nil {
		return "", err
	}
	return clock.FromMinutes(start + ServiceDurationMin), nil
}
