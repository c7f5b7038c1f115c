package shell_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/example/salto-club/internal/application/shell"
	"github.com/example/salto-club/internal/application/usecases"
	"github.com/example/salto-club/internal/domain/booking"
	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/domain/user"
	"github.com/example/salto-club/internal/internaltypes"
)

var dec28 = time.Date(2026, time.December, 28, 9, 30, 0, 0, time.UTC)

type fakeAuth struct {
	mu        sync.Mutex
	current   *user.Session
	listeners map[int]user.Listener
	next      int
	calls     int
	signInErr error
}

func (f *fakeAuth) CurrentSession(context.Context) (*user.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeAuth) OnSessionChange(l user.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listeners == nil {
		f.listeners = map[int]user.Listener{}
	}
	id := f.next
	f.next++
	f.listeners[id] = l
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeAuth) emit(e user.AuthEvent, s *user.Session) {
	f.mu.Lock()
	f.current = s
	ls := make([]user.Listener, 0, len(f.listeners))
	for _, l := range f.listeners {
		ls = append(ls, l)
	}
	f.mu.Unlock()
	for _, l := range ls {
		l(e, s)
	}
}

func (f *fakeAuth) SignUp(context.Context, string, string, user.SignUpOptions) (user.User, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return user.User{ID: "u-1"}, nil
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, _ string) (*user.Session, error) {
	f.mu.Lock()
	f.calls++
	err := f.signInErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s := &user.Session{AccessToken: "tok", User: user.User{ID: "u-1", Email: email}}
	f.emit(user.EventSignedIn, s)
	return s, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.emit(user.EventSignedOut, nil)
	return nil
}

func (f *fakeAuth) ExchangeCode(context.Context, string) (*user.Session, error) {
	return nil, user.ErrInvalidCode
}

type fakeStore struct {
	mu      sync.Mutex
	rows    []reservation.Reservation
	seq     int
	lists   int
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeStore) List(context.Context) ([]reservation.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return append([]reservation.Reservation(nil), f.rows...), nil
}

func (f *fakeStore) Insert(_ context.Context, d reservation.Draft) (reservation.Reservation, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	row := d.Row()
	r := reservation.Reservation{
		ID:          reservation.ID(strconv.Itoa(100 + f.seq)),
		Service:     row.Service,
		Category:    row.Category,
		Date:        row.Date,
		Time:        row.Time,
		CourtNumber: row.CourtNumber,
		Partners:    row.Partners,
		CreatedAt:   dec28.Add(time.Duration(f.seq) * time.Minute),
	}
	f.rows = append([]reservation.Reservation{r}, f.rows...)
	return r, nil
}

func (f *fakeStore) Delete(_ context.Context, id reservation.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", id, reservation.ErrNotFound)
}

func newController(t *testing.T, auth *fakeAuth, store *fakeStore) *shell.Controller {
	t.Helper()
	c := shell.New(shell.Deps{Auth: auth, Store: store, Now: func() time.Time { return dec28 }})
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(c.Stop)
	return c
}

func signedIn(t *testing.T, store *fakeStore) (*shell.Controller, *fakeAuth) {
	t.Helper()
	auth := &fakeAuth{current: &user.Session{AccessToken: "tok", User: user.User{ID: "u-1", Email: "ana@club.com"}}}
	return newController(t, auth, store), auth
}

func dispatchAll(t *testing.T, c *shell.Controller, actions ...shell.Action) {
	t.Helper()
	for _, a := range actions {
		if err := c.Dispatch(a); err != nil {
			t.Fatalf("Dispatch(%T%+v): %v", a, a, err)
		}
	}
}

func padelBooking() []shell.Action {
	return []shell.Action{
		shell.SelectService{Service: booking.ServiceCourts},
		shell.SelectCategory{Category: "Padel"},
		shell.SelectDate{Date: "28 Dez"},
		shell.ClickSlot{Slot: "10:00"},
		shell.ClickSlot{Slot: "11:00"},
		shell.ContinueBooking{},
		shell.SelectUnit{Unit: 2},
		shell.SetGuestName{Name: "Carlos"},
		shell.AddPartner{},
	}
}

func TestRestoredSessionShowsShell(t *testing.T) {
	store := &fakeStore{rows: []reservation.Reservation{{ID: "1", Service: "Courts"}}}
	c, _ := signedIn(t, store)
	s := c.Snapshot()
	if !s.LoggedIn {
		t.Fatal("LoggedIn = false with restored session")
	}
	if s.DisplayName != "ana" {
		t.Errorf("DisplayName = %q", s.DisplayName)
	}
	if len(s.Reservations) != 1 || store.lists != 1 {
		t.Errorf("reservations = %d, lists = %d", len(s.Reservations), store.lists)
	}
}

func TestBookingRoundTrip(t *testing.T) {
	store := &fakeStore{rows: []reservation.Reservation{{ID: "1", Service: "Wellness", CreatedAt: dec28.Add(-time.Hour)}}}
	c, _ := signedIn(t, store)
	dispatchAll(t, c, padelBooking()...)

	if err := c.ConfirmBooking(context.Background()); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	s := c.Snapshot()
	if len(s.Reservations) != 2 {
		t.Fatalf("reservations = %d, want 2", len(s.Reservations))
	}
	got := s.Reservations[0]
	if got.ID != "101" || got.Service != "Courts" || got.Category != "Padel" || got.Date != "28 Dez" || got.Time != "10:00 - 11:00" {
		t.Errorf("first reservation = %+v", got)
	}
	if got.CourtNumber == nil || *got.CourtNumber != "2" {
		t.Errorf("court_number = %v", got.CourtNumber)
	}
	if !reflect.DeepEqual(got.Partners, []string{"Carlos"}) {
		t.Errorf("partners = %v", got.Partners)
	}
	if s.Wizard.Step != booking.StepMenu {
		t.Errorf("wizard step = %v, want menu", s.Wizard.Step)
	}
	if s.Wizard.Sel.Start != "" || s.Wizard.Sel.Unit != 0 || len(s.Wizard.Sel.Partners) != 0 {
		t.Errorf("selection not reset: %+v", s.Wizard.Sel)
	}
	if !s.Confirmation {
		t.Error("confirmation overlay not shown")
	}
}

func TestDoubleSubmitRejected(t *testing.T) {
	store := &fakeStore{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	c, _ := signedIn(t, store)
	dispatchAll(t, c, padelBooking()...)

	done := make(chan error, 1)
	go func() { done <- c.ConfirmBooking(context.Background()) }()
	<-store.entered

	if err := c.ConfirmBooking(context.Background()); !errors.Is(err, internaltypes.ErrInFlight) {
		t.Errorf("second submit err = %v, want ErrInFlight", err)
	}
	close(store.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if n := len(c.Snapshot().Reservations); n != 1 {
		t.Errorf("reservations = %d, want 1", n)
	}
}

func TestCancelReservation(t *testing.T) {
	rows := []reservation.Reservation{{ID: "3"}, {ID: "2"}, {ID: "1"}}
	store := &fakeStore{rows: append([]reservation.Reservation(nil), rows...)}
	c, _ := signedIn(t, store)

	if err := c.CancelReservation(context.Background(), "2"); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	s := c.Snapshot()
	if len(s.Reservations) != 2 || s.Reservations[0].ID != "3" || s.Reservations[1].ID != "1" {
		t.Errorf("reservations = %+v", s.Reservations)
	}

	before := c.Snapshot().Reservations
	err := c.CancelReservation(context.Background(), "999")
	if !errors.Is(err, reservation.ErrNotFound) {
		t.Fatalf("missing id err = %v", err)
	}
	v := c.View()
	if !reflect.DeepEqual(v.Reservations, before) {
		t.Errorf("list changed on failure: %+v", v.Reservations)
	}
	if len(v.Alerts) != 1 || v.Alerts[0].Kind != shell.AlertError {
		t.Fatalf("alerts = %+v", v.Alerts)
	}
	if len(c.View().Alerts) != 0 {
		t.Error("alerts not consumed by View")
	}
}

func TestViewReservationsNeedsSavedItems(t *testing.T) {
	c, _ := signedIn(t, &fakeStore{})
	if err := c.Dispatch(shell.ViewReservations{}); !errors.Is(err, booking.ErrNoSavedItems) {
		t.Fatalf("err = %v", err)
	}
	dispatchAll(t, c,
		shell.ToggleFavorite{Match: "Exibição Pro: Alexandre vs. Luís"},
		shell.ViewReservations{},
	)
	if got := c.Snapshot().Wizard.Step; got != booking.StepViewReservations {
		t.Errorf("step = %v", got)
	}
}

func TestSignInFlow(t *testing.T) {
	auth := &fakeAuth{}
	store := &fakeStore{rows: []reservation.Reservation{{ID: "7"}}}
	c := newController(t, auth, store)
	if c.Snapshot().LoggedIn {
		t.Fatal("logged in before sign-in")
	}
	if err := c.Dispatch(shell.SelectTab{Tab: shell.TabLessons}); !errors.Is(err, shell.ErrNotSignedIn) {
		t.Errorf("Dispatch before sign-in err = %v", err)
	}

	if err := c.SignIn(context.Background(), "ana@club.com", ""); err == nil {
		t.Fatal("SignIn with empty password succeeded")
	}
	if auth.calls != 0 {
		t.Errorf("backend calls = %d", auth.calls)
	}
	if a := c.View().Alerts; len(a) != 1 || a[0].Message != usecases.MsgSignInMissingFields {
		t.Errorf("alerts = %+v", a)
	}

	if err := c.SignIn(context.Background(), " Ana@Club.com", "secret"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	s := c.Snapshot()
	if !s.LoggedIn || len(s.Reservations) != 1 {
		t.Fatalf("after sign-in: logged=%v reservations=%d", s.LoggedIn, len(s.Reservations))
	}

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	s = c.Snapshot()
	if s.LoggedIn || len(s.Reservations) != 0 {
		t.Errorf("after sign-out: logged=%v reservations=%d", s.LoggedIn, len(s.Reservations))
	}
}

func TestSignUpTellsMemberToCheckInbox(t *testing.T) {
	c := newController(t, &fakeAuth{}, &fakeStore{})
	dispatchAll(t, c, shell.ToggleSignUpMode{})
	if err := c.SignUp(context.Background(), "bia@club.com", "secret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	v := c.View()
	if v.SignUpMode {
		t.Error("still in sign-up mode")
	}
	if len(v.Alerts) != 1 || v.Alerts[0].Message != usecases.MsgCheckInbox {
		t.Errorf("alerts = %+v", v.Alerts)
	}
}

func TestShortcutsSwitchToHome(t *testing.T) {
	c, _ := signedIn(t, &fakeStore{})
	dispatchAll(t, c, shell.SelectTab{Tab: shell.TabLessons}, shell.FilterLessons{Level: "Iniciante"}, shell.BookLesson{Instructor: "Ana Paula"})
	s := c.Snapshot()
	if s.Tab != shell.TabHome || s.Wizard.Step != booking.StepDateTime || s.Wizard.Sel.Category != "Aula com Ana Paula" {
		t.Errorf("after lesson: tab=%v step=%v sel=%+v", s.Tab, s.Wizard.Step, s.Wizard.Sel)
	}
	if s.Wizard.Sel.Date != "28 Dez" {
		t.Errorf("lesson date = %q, want today", s.Wizard.Sel.Date)
	}
	if err := c.Dispatch(shell.FilterLessons{Level: "Pro"}); !errors.Is(err, shell.ErrUnknownLevel) {
		t.Errorf("FilterLessons(Pro) err = %v", err)
	}

	dispatchAll(t, c, shell.SelectTab{Tab: shell.TabTournaments}, shell.JoinTournament{})
	s = c.Snapshot()
	if s.Tab != shell.TabHome || s.Wizard.Step != booking.StepConfirm {
		t.Errorf("after tournament: tab=%v step=%v", s.Tab, s.Wizard.Step)
	}
	dispatchAll(t, c, shell.SelectTab{Tab: shell.TabHome})
	if got := c.Snapshot().Wizard.Step; got != booking.StepMenu {
		t.Errorf("home tab step = %v", got)
	}
}

func TestHomeTabDropsAbandonedSelection(t *testing.T) {
	c, _ := signedIn(t, &fakeStore{})
	dispatchAll(t, c, padelBooking()...)
	dispatchAll(t, c,
		shell.SelectTab{Tab: shell.TabSocial},
		shell.SelectTab{Tab: shell.TabHome},
		shell.SelectService{Service: booking.ServiceWellness},
		shell.SelectCategory{Category: "Massagem"},
	)
	if err := c.Dispatch(shell.ContinueBooking{}); !errors.Is(err, booking.ErrRangeIncomplete) {
		t.Fatalf("Continue without a time = %v", err)
	}
	sel := c.Snapshot().Wizard.Sel
	if sel.Unit != 0 || len(sel.Partners) != 0 || sel.Start != "" || sel.Date != "28 Dez" {
		t.Errorf("selection after leaving = %+v", sel)
	}
}

func TestSelectDateOutsideStripRejected(t *testing.T) {
	c, _ := signedIn(t, &fakeStore{})
	dispatchAll(t, c, shell.SelectService{Service: booking.ServiceDining}, shell.SelectCategory{Category: "Mesa Salão"})
	if err := c.Dispatch(shell.SelectDate{Date: "10 Jan"}); !errors.Is(err, booking.ErrUnknownDate) {
		t.Errorf("SelectDate(10 Jan) err = %v", err)
	}
	dispatchAll(t, c, shell.SelectDate{Date: "03 Jan"})
	if got := c.Snapshot().Wizard.Sel.Date; got != "03 Jan" {
		t.Errorf("date = %q", got)
	}
}
