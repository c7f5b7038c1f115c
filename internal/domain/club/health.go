package club

// StressHighlight is the level above which a stress bar is highlighted.
const StressHighlight = 75

type Widget struct {
	Label string
	Value string
	Unit  string
}

type HealthSummary struct {
	SyncedAgo    string
	Recovery     int // percent
	WeeklyLoad   string
	Widgets      []Widget
	StressSeries []int
	SeriesTicks  []string
	Trend        string
}

// Health is the biometric snapshot shown on the Health tab.
var Health = HealthSummary{
	SyncedAgo:  "5 min",
	Recovery:   76,
	WeeklyLoad: "Optimal",
	Widgets: []Widget{
		{"Em Quadra", "12h", "esta semana"},
		{"Batimentos", "58", "bpm repouso"},
		{"Sono", "7h 45m", "qualidade alta"},
	},
	StressSeries: []int{30, 45, 80, 50, 40, 75, 90, 60, 40, 35, 55, 76},
	SeriesTicks:  []string{"07:00", "12:00", "17:00", "22:00"},
	Trend:        "Estável",
}

// StressBar is one point of the stress series ready for display.
type StressBar struct {
	Level     int
	Highlight bool
}

func (h HealthSummary) Bars() []StressBar {
	out := make([]StressBar, len(h.StressSeries))
	for i, v := range h.StressSeries {
		out[i] = StressBar{Level: v, Highlight: v > StressHighlight}
	}
	return out
}
