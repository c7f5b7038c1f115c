package reservation_test

import (
	"testing"

	"github.com/example/salto-club/internal/domain/reservation"
)

func TestTimeSlotsGrid(t *testing.T) {
	got := reservation.TimeSlots
	if len(got) != 32 || got[0] != "07:00" || got[1] != "07:30" || got[len(got)-1] != "22:30" {
		t.Errorf("grid = %v", got)
	}
}

func TestValidEndOverGrid(t *testing.T) {
	for si, start := range reservation.TimeSlots {
		for ei, end := range reservation.TimeSlots {
			d := ei - si
			want := d > 0 && d <= 4
			if got := reservation.ValidEnd(start, end); got != want {
				t.Errorf("ValidEnd(%s, %s) = %v, want %v", start, end, got, want)
			}
		}
	}
	if reservation.ValidEnd("10:00", "10:15") || reservation.ValidEnd("06:30", "07:00") {
		t.Error("off-grid slot accepted")
	}
}
