package booking

import "fmt"

// Step is the screen the booking flow is on.
type Step int

const (
	StepMenu Step = iota
	StepCategory
	StepDateTime
	StepCourts
	StepConfirm
	StepViewReservations
)

var stepNames = map[Step]string{
	StepMenu:             "menu",
	StepCategory:         "category",
	StepDateTime:         "datetime",
	StepCourts:           "courts",
	StepConfirm:          "confirm",
	StepViewReservations: "view_reservations",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

func ParseStep(name string) (Step, error) {
	for s, n := range stepNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown booking step %q", name)
}
