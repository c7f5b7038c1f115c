package shell

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/salto-club/internal/domain/booking"
	"github.com/example/salto-club/internal/domain/club"
)

var (
	ErrNotSignedIn       = errors.New("sign in first")
	ErrUnknownAction     = errors.New("unknown action")
	ErrUnknownTab        = errors.New("unknown tab")
	ErrUnknownMatch      = errors.New("unknown spectator match")
	ErrUnknownLevel      = errors.New("unknown lesson level")
	ErrUnknownInstructor = errors.New("unknown instructor")
)

// Action is a member interaction that only touches local state.
type Action interface{ action() }

type (
	SelectTab        struct{ Tab Tab }
	ToggleSignUpMode struct{}

	SelectService    struct{ Service booking.Service }
	SelectCategory   struct{ Category string }
	SelectDate       struct{ Date string }
	ClickSlot        struct{ Slot string }
	ContinueBooking  struct{}
	SelectUnit       struct{ Unit int }
	Back             struct{}
	SetGuestName     struct{ Name string }
	AddPartner       struct{}
	RemovePartner    struct{ Index int }
	ViewReservations struct{}

	JoinTournament  struct{}
	SetBracketView  struct{ Show bool }
	ToggleFavorite  struct{ Match string }
	FilterLessons   struct{ Level string }
	BookLesson      struct{ Instructor string }
	FilterBulletins struct{ Tag string }

	DismissConfirmation struct{}
)

func (SelectTab) action()           {}
func (ToggleSignUpMode) action()    {}
func (SelectService) action()       {}
func (SelectCategory) action()      {}
func (SelectDate) action()          {}
func (ClickSlot) action()           {}
func (ContinueBooking) action()     {}
func (SelectUnit) action()          {}
func (Back) action()                {}
func (SetGuestName) action()        {}
func (AddPartner) action()          {}
func (RemovePartner) action()       {}
func (ViewReservations) action()    {}
func (JoinTournament) action()      {}
func (SetBracketView) action()      {}
func (ToggleFavorite) action()      {}
func (FilterLessons) action()       {}
func (BookLesson) action()          {}
func (FilterBulletins) action()     {}
func (DismissConfirmation) action() {}

// Reduce applies a to s. now decides the date strip and the label preselected
// when the wizard resets. On error s is left as it was.
func Reduce(s *State, a Action, now time.Time) error {
	today := booking.DateLabel(now)
	if _, ok := a.(ToggleSignUpMode); ok {
		if s.LoggedIn {
			return fmt.Errorf("toggle sign-up mode: %w", ErrUnknownAction)
		}
		s.SignUpMode = !s.SignUpMode
		return nil
	}
	if !s.LoggedIn {
		return ErrNotSignedIn
	}

	w := &s.Wizard
	switch a := a.(type) {
	case SelectTab:
		if !a.Tab.valid() {
			return fmt.Errorf("%v: %w", a.Tab, ErrUnknownTab)
		}
		s.Tab = a.Tab
		if a.Tab == TabHome {
			w.Reset(today)
		}
		if a.Tab == TabTournaments {
			s.BracketView = false
		}
	case SelectService:
		return w.SelectService(a.Service)
	case SelectCategory:
		return w.SelectCategory(a.Category)
	case SelectDate:
		return w.SelectDate(a.Date, booking.DateStrip(now))
	case ClickSlot:
		return w.ClickSlot(a.Slot)
	case ContinueBooking:
		return w.Continue()
	case SelectUnit:
		return w.SelectUnit(a.Unit)
	case Back:
		return w.Back()
	case SetGuestName:
		w.SetGuestName(a.Name)
	case AddPartner:
		return w.AddPartner()
	case RemovePartner:
		return w.RemovePartner(a.Index)
	case ViewReservations:
		return w.ViewReservations(s.HasSavedItems())
	case JoinTournament:
		w.StartTournament()
		s.Tab = TabHome
	case SetBracketView:
		s.BracketView = a.Show
	case ToggleFavorite:
		m, ok := club.FindSpectatorMatch(a.Match)
		if !ok {
			return fmt.Errorf("%q: %w", a.Match, ErrUnknownMatch)
		}
		s.Favorites.Toggle(m.Name, m.Time)
	case FilterLessons:
		if !club.ValidLevel(a.Level) {
			return fmt.Errorf("%q: %w", a.Level, ErrUnknownLevel)
		}
		s.LessonLevel = a.Level
	case BookLesson:
		in, ok := club.FindInstructor(a.Instructor)
		if !ok {
			return fmt.Errorf("%q: %w", a.Instructor, ErrUnknownInstructor)
		}
		w.StartLesson(in.Name, today)
		s.Tab = TabHome
	case FilterBulletins:
		s.BulletinTag = a.Tag
	case DismissConfirmation:
		s.Confirmation = false
		w.Reset(today)
		s.Tab = TabHome
	default:
		return fmt.Errorf("%T: %w", a, ErrUnknownAction)
	}
	return nil
}
