package reservation

import "fmt"

const (
	firstSlotHour = 7
	lastSlotHour  = 22

	// MaxEndOffset is how many half-hour slots an end may lie after its start (2 hours).
	MaxEndOffset = 4
)

// TimeSlots is the half-hour grid offered for booking: 07:00, 07:30 ... 22:00, 22:30.
var TimeSlots = buildSlots()

func buildSlots() []string {
	out := make([]string, 0, (lastSlotHour-firstSlotHour+1)*2)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		out = append(out, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	return out
}

// SlotIndex returns the position of slot in TimeSlots, or -1.
func SlotIndex(slot string) int {
	for i, s := range TimeSlots {
		if s == slot {
			return i
		}
	}
	return -1
}

// IsSlot reports whether slot belongs to the grid.
func IsSlot(slot string) bool { return SlotIndex(slot) >= 0 }

// ValidEnd reports whether end may close a range opened at start.
func ValidEnd(start, end string) bool {
	si, ei := SlotIndex(start), SlotIndex(end)
	if si < 0 || ei < 0 {
		return false
	}
	d := ei - si
	return d > 0 && d <= MaxEndOffset
}

// SlotDisabled reports whether slot is unselectable given the current start/end picks.
// Only the "start chosen, end pending" state disables anything.
func SlotDisabled(start, end, slot string) bool {
	if start == "" || end != "" {
		return false
	}
	si, ci := SlotIndex(start), SlotIndex(slot)
	return ci < si || ci > si+MaxEndOffset
}
