package shell

import (
	"fmt"

	"github.com/example/salto-club/internal/domain/booking"
	"github.com/example/salto-club/internal/domain/club"
	"github.com/example/salto-club/internal/domain/reservation"
)

type Tab int

const (
	TabHome Tab = iota
	TabTournaments
	TabLessons
	TabSocial
	TabHealth
	TabProfile
)

// Tabs is the navigation bar order.
var Tabs = []Tab{TabHome, TabTournaments, TabLessons, TabSocial, TabHealth, TabProfile}

var tabNames = [...]string{"home", "tournaments", "lessons", "social", "health", "profile"}
var tabTitles = [...]string{"Home", "Torneios", "Aulas", "Social", "Analytics", "Performance"}

func (t Tab) valid() bool { return t >= TabHome && t <= TabProfile }

func (t Tab) String() string {
	if !t.valid() {
		return fmt.Sprintf("Tab(%d)", int(t))
	}
	return tabNames[t]
}

// Title is the page heading shown for the tab.
func (t Tab) Title() string {
	if !t.valid() {
		return ""
	}
	return tabTitles[t]
}

func ParseTab(name string) (Tab, error) {
	for i, n := range tabNames {
		if n == name {
			return Tab(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tab %q", name)
}

type AlertKind string

const (
	AlertInfo  AlertKind = "info"
	AlertError AlertKind = "error"
)

// Alert is a one-shot message for the member.
type Alert struct {
	Kind    AlertKind
	Message string
}

// State is everything one member's screen is rendered from.
type State struct {
	LoggedIn    bool
	DisplayName string
	SignUpMode  bool

	Tab          Tab
	Wizard       booking.Wizard
	Reservations []reservation.Reservation
	Favorites    club.Favorites

	LessonLevel  string
	BracketView  bool
	BulletinTag  string
	Confirmation bool

	Alerts []Alert
}

func newState(today string) State {
	return State{
		Tab:         TabHome,
		Wizard:      *booking.New(today),
		LessonLevel: club.LevelAll,
	}
}

// HasSavedItems reports whether "My Reservations" has anything to show.
func (s State) HasSavedItems() bool {
	return len(s.Reservations) > 0 || s.Favorites.Len() > 0
}

func (s State) clone() State {
	out := s
	out.Reservations = append([]reservation.Reservation(nil), s.Reservations...)
	out.Favorites = s.Favorites.Clone()
	out.Wizard.Sel.Partners = append([]string(nil), s.Wizard.Sel.Partners...)
	out.Alerts = append([]Alert(nil), s.Alerts...)
	return out
}

// signedOut keeps only what belongs to the device, not the member.
func (s *State) signedOut(today string) {
	mode := s.SignUpMode
	*s = newState(today)
	s.SignUpMode = mode
}
