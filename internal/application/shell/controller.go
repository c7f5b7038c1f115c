package shell

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/example/salto-club/internal/application/session"
	"github.com/example/salto-club/internal/application/usecases"
	"github.com/example/salto-club/internal/domain/booking"
	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/domain/user"
	"github.com/example/salto-club/internal/internaltypes"
)

const (
	opSignIn      = "sign_in"
	opSignUp      = "sign_up"
	opSignOut     = "sign_out"
	opConfirm     = "confirm_booking"
	opList        = "list_reservations"
	opConfirmLink = "complete_sign_in"
)

// listTimeout bounds the reservation fetch triggered by a sign-in event, which
// has no request context of its own.
const listTimeout = 15 * time.Second

// Deps are the backend capabilities one member's controller talks to.
type Deps struct {
	Auth     user.AuthProvider
	Profiles user.ProfileStore
	Store    reservation.Store
	// RedirectTo is where sign-up confirmation links send the member.
	RedirectTo string
	Now        func() time.Time
}

// Controller owns one member's State. Local interactions go through Dispatch;
// the methods that reach the backend never hold the lock across the call.
type Controller struct {
	auth         usecases.AuthService
	reservations usecases.ReservationService
	gate         *session.Gate
	now          func() time.Time

	mu       sync.Mutex
	state    State
	inFlight map[string]bool
}

func New(d Deps) *Controller {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		auth:         usecases.AuthService{Auth: d.Auth, Profiles: d.Profiles, RedirectTo: d.RedirectTo, Now: now},
		reservations: usecases.ReservationService{Store: d.Store},
		now:          now,
		inFlight:     map[string]bool{},
	}
	c.state = newState(c.today())
	c.gate = &session.Gate{Auth: d.Auth, OnChange: c.onAuthChange}
	return c
}

func (c *Controller) today() string { return booking.DateLabel(c.now()) }

// Start restores the session, if any, and begins following auth changes.
func (c *Controller) Start(ctx context.Context) error { return c.gate.Start(ctx) }

// Stop ends the auth subscription.
func (c *Controller) Stop() { c.gate.Stop() }

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// View returns a copy of the state and consumes its pending alerts.
func (c *Controller) View() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.state.clone()
	c.state.Alerts = nil
	return out
}

func (c *Controller) Dispatch(a Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Reduce(&c.state, a, c.now())
}

func (c *Controller) onAuthChange(event user.AuthEvent, s *user.Session) {
	c.mu.Lock()
	was := c.state.LoggedIn
	if s == nil {
		if was {
			c.state.signedOut(c.today())
		}
	} else {
		c.state.LoggedIn = true
		c.state.DisplayName = user.DisplayNameFromEmail(s.User.Email)
	}
	c.mu.Unlock()

	if !was && s != nil {
		slog.Info("auth_event", "event", "session_started", "trigger", string(event), "user_id", s.User.ID)
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()
		_ = c.RefreshReservations(ctx)
	}
}

// begin marks op as pending. Callers hold c.mu.
func (c *Controller) begin(op string) error {
	if c.inFlight[op] {
		return internaltypes.ErrInFlight
	}
	c.inFlight[op] = true
	return nil
}

func (c *Controller) end(op string) {
	c.mu.Lock()
	delete(c.inFlight, op)
	c.mu.Unlock()
}

// start takes the lock just long enough to claim op.
func (c *Controller) start(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.begin(op)
}

func (c *Controller) alert(kind AlertKind, msg string) {
	c.mu.Lock()
	c.state.Alerts = append(c.state.Alerts, Alert{Kind: kind, Message: msg})
	c.mu.Unlock()
}

func (c *Controller) fail(err error, fallback string) error {
	c.alert(AlertError, internaltypes.UserMessage(err, fallback))
	return err
}

func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	if err := c.start(opSignIn); err != nil {
		return err
	}
	defer c.end(opSignIn)
	if _, err := c.auth.SignIn(ctx, email, password); err != nil {
		return c.fail(err, usecases.MsgInvalidCredentials)
	}
	return nil
}

func (c *Controller) SignUp(ctx context.Context, email, password string) error {
	if err := c.start(opSignUp); err != nil {
		return err
	}
	defer c.end(opSignUp)
	if _, err := c.auth.SignUp(ctx, email, password); err != nil {
		return c.fail(err, usecases.MsgSignUpFailed)
	}
	c.mu.Lock()
	c.state.SignUpMode = false
	c.mu.Unlock()
	c.alert(AlertInfo, usecases.MsgCheckInbox)
	return nil
}

// SignOut drops the member's local state at once, then tells the backend.
func (c *Controller) SignOut(ctx context.Context) error {
	if err := c.start(opSignOut); err != nil {
		return err
	}
	defer c.end(opSignOut)
	c.gate.MarkSignedOut()
	c.mu.Lock()
	c.state.signedOut(c.today())
	c.mu.Unlock()
	if err := c.auth.SignOut(ctx); err != nil {
		slog.Warn("sign out did not reach backend", "err", err)
	}
	return nil
}

// CompleteSignIn finishes the sign-in started by a confirmation e-mail link.
func (c *Controller) CompleteSignIn(ctx context.Context, code string) error {
	if err := c.start(opConfirmLink); err != nil {
		return err
	}
	defer c.end(opConfirmLink)
	if _, err := c.auth.CompleteSignIn(ctx, code); err != nil {
		return c.fail(err, usecases.MsgConfirmLinkInvalid)
	}
	return nil
}

// RefreshReservations replaces the local list with what the store holds.
func (c *Controller) RefreshReservations(ctx context.Context) error {
	if err := c.start(opList); err != nil {
		return err
	}
	defer c.end(opList)
	rs, err := c.reservations.List(ctx)
	if err != nil {
		return c.fail(err, usecases.MsgListFailed+err.Error())
	}
	c.mu.Lock()
	if c.state.LoggedIn {
		c.state.Reservations = rs
	}
	c.mu.Unlock()
	return nil
}

// ConfirmBooking submits the wizard's selection. On success the new row is
// listed first, the confirmation overlay shows and the wizard starts over.
func (c *Controller) ConfirmBooking(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.LoggedIn {
		c.mu.Unlock()
		return ErrNotSignedIn
	}
	d, err := c.state.Wizard.Draft()
	if err == nil {
		err = c.begin(opConfirm)
	}
	c.mu.Unlock()
	if err != nil {
		if errors.Is(err, internaltypes.ErrInFlight) {
			return err
		}
		return c.fail(internaltypes.NewUserError(usecases.MsgInvalidDraft, err), usecases.MsgInvalidDraft)
	}
	defer c.end(opConfirm)

	r, err := c.reservations.Create(ctx, d)
	if err != nil {
		return c.fail(err, usecases.MsgCreateFailed+err.Error())
	}
	c.mu.Lock()
	c.state.Reservations = append([]reservation.Reservation{r}, c.state.Reservations...)
	c.state.Confirmation = true
	c.state.Wizard.Reset(c.today())
	c.mu.Unlock()
	return nil
}

// CancelReservation deletes one row. The local list only changes once the store agrees.
func (c *Controller) CancelReservation(ctx context.Context, id reservation.ID) error {
	op := "cancel:" + id.String()
	c.mu.Lock()
	err := ErrNotSignedIn
	if c.state.LoggedIn {
		err = c.begin(op)
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	defer c.end(op)
	if err := c.reservations.Delete(ctx, id); err != nil {
		return c.fail(err, usecases.MsgDeleteFailed+err.Error())
	}
	c.mu.Lock()
	kept := make([]reservation.Reservation, 0, len(c.state.Reservations))
	for _, r := range c.state.Reservations {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	c.state.Reservations = kept
	c.mu.Unlock()
	return nil
}
