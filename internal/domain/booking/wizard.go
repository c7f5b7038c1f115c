package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/salto-club/internal/domain/reservation"
)

var (
	ErrInvalidTransition = errors.New("action not allowed at this step")
	ErrUnknownService    = errors.New("service cannot be picked from the menu")
	ErrUnknownCategory   = errors.New("category does not belong to the selected service")
	ErrUnknownSlot       = errors.New("time is not on the slot grid")
	ErrSlotDisabled      = errors.New("slot is outside the selectable window")
	ErrRangeIncomplete   = errors.New("start and end must both be selected")
	ErrUnknownUnit       = errors.New("unit does not exist for this category")
	ErrRosterFull        = errors.New("roster is full")
	ErrEmptyGuestName    = errors.New("guest name is empty")
	ErrNoSavedItems      = errors.New("no reservations or favorites to show")
	ErrPartnerIndex      = errors.New("no partner at that position")
	ErrUnknownDate       = errors.New("date is not on the date strip")
)

const (
	// TournamentEvent is the open registration offered on the Tournaments tab.
	TournamentEvent = "Copa Salto de Verão"
	TournamentStart = "08:00"
	TournamentDate  = "15 Jan"
)

// Selection is what the member has picked so far.
type Selection struct {
	Service   Service
	Category  string
	Date      string
	Start     string
	End       string
	Unit      int
	GuestName string
	Partners  []string
}

// Wizard walks a member from the service menu to a reservation draft.
// The zero value sits at StepMenu with nothing picked.
type Wizard struct {
	Step Step
	Sel  Selection
}

// New returns a wizard at the menu with defaultDate preselected.
func New(defaultDate string) *Wizard {
	return &Wizard{Step: StepMenu, Sel: Selection{Date: defaultDate}}
}

func (w *Wizard) expect(action string, steps ...Step) error {
	for _, s := range steps {
		if w.Step == s {
			return nil
		}
	}
	return fmt.Errorf("%s at %s: %w", action, w.Step, ErrInvalidTransition)
}

// SelectService picks one of the menu services and moves to the category list.
// Only the date survives from any earlier flow.
func (w *Wizard) SelectService(s Service) error {
	if err := w.expect("select service", StepMenu); err != nil {
		return err
	}
	if !s.Selectable() {
		return fmt.Errorf("%q: %w", s, ErrUnknownService)
	}
	w.Sel = Selection{Service: s, Date: w.Sel.Date}
	w.Step = StepCategory
	return nil
}

func (w *Wizard) SelectCategory(category string) error {
	if err := w.expect("select category", StepCategory); err != nil {
		return err
	}
	if !hasCategory(w.Sel.Service, category) {
		return fmt.Errorf("%q for %s: %w", category, w.Sel.Service, ErrUnknownCategory)
	}
	w.Sel.Category = category
	w.Step = StepDateTime
	return nil
}

// SelectDate picks one of the labels offered by strip.
func (w *Wizard) SelectDate(label string, strip []DateOption) error {
	if err := w.expect("select date", StepDateTime); err != nil {
		return err
	}
	if strings.TrimSpace(label) == "" {
		return reservation.ErrMissingDate
	}
	for _, o := range strip {
		if o.Label == label {
			w.Sel.Date = label
			return nil
		}
	}
	return fmt.Errorf("%q: %w", label, ErrUnknownDate)
}

// SlotDisabled reports whether slot is currently unselectable.
func (w *Wizard) SlotDisabled(slot string) bool {
	return reservation.SlotDisabled(w.Sel.Start, w.Sel.End, slot)
}

// ClickSlot applies the start/end selection rule. A disabled slot leaves the
// selection untouched and returns ErrSlotDisabled.
func (w *Wizard) ClickSlot(slot string) error {
	if err := w.expect("click slot", StepDateTime); err != nil {
		return err
	}
	if !reservation.IsSlot(slot) {
		return fmt.Errorf("%q: %w", slot, ErrUnknownSlot)
	}
	if w.SlotDisabled(slot) {
		return fmt.Errorf("%q: %w", slot, ErrSlotDisabled)
	}
	switch {
	case w.Sel.Start == "" || w.Sel.End != "":
		w.Sel.Start, w.Sel.End = slot, ""
	case reservation.ValidEnd(w.Sel.Start, slot):
		w.Sel.End = slot
	default:
		w.Sel.Start, w.Sel.End = slot, ""
	}
	return nil
}

// Continue leaves the date/time step once a full range is chosen.
func (w *Wizard) Continue() error {
	if err := w.expect("continue", StepDateTime); err != nil {
		return err
	}
	if w.Sel.Start == "" || w.Sel.End == "" {
		return ErrRangeIncomplete
	}
	if w.Sel.Service == ServiceCourts {
		w.Step = StepCourts
	} else {
		w.Step = StepConfirm
	}
	return nil
}

func (w *Wizard) SelectUnit(unit int) error {
	if err := w.expect("select unit", StepCourts); err != nil {
		return err
	}
	if unit < 1 || unit > CourtCount(w.Sel.Category) {
		return fmt.Errorf("unit %d of %q: %w", unit, w.Sel.Category, ErrUnknownUnit)
	}
	w.Sel.Unit = unit
	w.Step = StepConfirm
	return nil
}

// Back retreats one step. Reaching the menu abandons the flow, so the
// selection is cleared. The menu has nowhere to go back to.
func (w *Wizard) Back() error {
	switch w.Step {
	case StepCategory, StepViewReservations:
		w.Sel = Selection{Date: w.Sel.Date}
		w.Step = StepMenu
	case StepDateTime:
		w.Step = StepCategory
	case StepCourts:
		w.Step = StepDateTime
	case StepConfirm:
		if w.Sel.Service == ServiceCourts {
			w.Step = StepCourts
		} else {
			w.Step = StepDateTime
		}
	default:
		return fmt.Errorf("back at %s: %w", w.Step, ErrInvalidTransition)
	}
	return nil
}

// SetGuestName updates the guest input buffer.
func (w *Wizard) SetGuestName(name string) {
	w.Sel.GuestName = name
}

// CanAddPartner reports whether the roster still has a free seat.
func (w *Wizard) CanAddPartner() bool {
	return len(w.Sel.Partners) < reservation.MaxPartners
}

// AddPartner moves the trimmed guest buffer onto the roster.
func (w *Wizard) AddPartner() error {
	if err := w.expect("add partner", StepConfirm); err != nil {
		return err
	}
	if !w.CanAddPartner() {
		return ErrRosterFull
	}
	name := strings.TrimSpace(w.Sel.GuestName)
	if name == "" {
		return ErrEmptyGuestName
	}
	w.Sel.Partners = append(w.Sel.Partners, name)
	w.Sel.GuestName = ""
	return nil
}

func (w *Wizard) RemovePartner(idx int) error {
	if err := w.expect("remove partner", StepConfirm); err != nil {
		return err
	}
	if idx < 0 || idx >= len(w.Sel.Partners) {
		return fmt.Errorf("partner %d: %w", idx, ErrPartnerIndex)
	}
	partners := make([]string, 0, len(w.Sel.Partners)-1)
	partners = append(partners, w.Sel.Partners[:idx]...)
	w.Sel.Partners = append(partners, w.Sel.Partners[idx+1:]...)
	return nil
}

// StartTournament jumps straight to confirmation for the open tournament.
// Any step may be left for it, as the Tournaments tab sits outside the flow.
func (w *Wizard) StartTournament() {
	w.Sel = Selection{
		Service:  ServiceTournament,
		Category: TournamentEvent,
		Date:     TournamentDate,
		Start:    TournamentStart,
	}
	w.Step = StepConfirm
}

// StartLesson seeds the date/time step with an instructor category.
func (w *Wizard) StartLesson(instructor, defaultDate string) {
	w.Sel = Selection{
		Service:  ServiceLesson,
		Category: "Aula com " + instructor,
		Date:     defaultDate,
	}
	w.Step = StepDateTime
}

// ViewReservations opens the saved list; there must be something to show.
func (w *Wizard) ViewReservations(hasSavedItems bool) error {
	if err := w.expect("view reservations", StepMenu); err != nil {
		return err
	}
	if !hasSavedItems {
		return ErrNoSavedItems
	}
	w.Step = StepViewReservations
	return nil
}

// Reset clears the selection and returns to the menu. It runs after a
// submission and whenever the member leaves the flow for the Home tab.
func (w *Wizard) Reset(defaultDate string) {
	w.Sel = Selection{Date: defaultDate}
	w.Step = StepMenu
}

// Draft builds the insert payload. Only valid at the confirm step.
func (w *Wizard) Draft() (reservation.Draft, error) {
	if err := w.expect("submit", StepConfirm); err != nil {
		return reservation.Draft{}, err
	}
	d := reservation.Draft{
		Service:  string(w.Sel.Service),
		Category: w.Sel.Category,
		Date:     w.Sel.Date,
		Time:     reservation.TimeRange{Start: w.Sel.Start, End: w.Sel.End},
		Unit:     w.Sel.Unit,
		Partners: append([]string(nil), w.Sel.Partners...),
	}
	return d, d.Validate()
}
