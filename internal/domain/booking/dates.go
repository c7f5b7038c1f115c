package booking

import (
	"fmt"
	"strconv"
	"time"
)

// DaysAhead is how many calendar days the date strip offers, today included.
const DaysAhead = 7

var monthAbbr = [...]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// DateOption is one entry of the date strip.
type DateOption struct {
	Label   string // "28 Dez"
	Caption string // "Hoje" for today, the year otherwise
	Date    time.Time
}

// DateLabel renders t as the stored date label.
func DateLabel(t time.Time) string {
	return fmt.Sprintf("%02d %s", t.Day(), monthAbbr[t.Month()-1])
}

// DateStrip returns today plus the next DaysAhead-1 days.
func DateStrip(now time.Time) []DateOption {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	out := make([]DateOption, 0, DaysAhead)
	for i := 0; i < DaysAhead; i++ {
		day := today.AddDate(0, 0, i)
		caption := strconv.Itoa(day.Year())
		if i == 0 {
			caption = "Hoje"
		}
		out = append(out, DateOption{Label: DateLabel(day), Caption: caption, Date: day})
	}
	return out
}
