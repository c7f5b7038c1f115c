package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/salto-club/internal/application/shell"
	"github.com/example/salto-club/internal/domain/booking"
	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/domain/user"
)

const cliTimeout = 30 * time.Second

type memberFlags struct {
	email    string
	password string
}

func (m *memberFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&m.email, "email", "", "member e-mail")
	cmd.PersistentFlags().StringVar(&m.password, "password", "", "member password")
	_ = cmd.MarkPersistentFlagRequired("email")
	_ = cmd.MarkPersistentFlagRequired("password")
}

// signedIn starts a controller for the member the way a browser would and signs it in.
func (m *memberFlags) signedIn(ctx context.Context) (*shell.Controller, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	backend, closeBackend, err := openBackend(ctx, cfg, false)
	if err != nil {
		return nil, nil, err
	}
	ctrl := shell.New(backend.Connect(user.NewMemoryStorage(nil, nil)))
	cleanup := func() {
		ctrl.Stop()
		closeBackend()
	}
	if err := ctrl.Start(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := ctrl.SignIn(ctx, m.email, m.password); err != nil {
		cleanup()
		return nil, nil, err
	}
	return ctrl, cleanup, nil
}

func NewReservationCmd() *cobra.Command {
	var member memberFlags
	cmd := &cobra.Command{
		Use:   "reservation",
		Short: "List, book and cancel reservations as a member",
	}
	member.register(cmd)
	cmd.AddCommand(newReservationListCmd(&member))
	cmd.AddCommand(newReservationCreateCmd(&member))
	cmd.AddCommand(newReservationCancelCmd(&member))
	return cmd
}

func newReservationListCmd(member *memberFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your reservations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			ctrl, cleanup, err := member.signedIn(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			return listReservations(ctx, ctrl, cmd.OutOrStdout())
		},
	}
}

// listReservations fetches the rows itself so a store failure becomes the
// command's error instead of an alert nobody reads.
func listReservations(ctx context.Context, ctrl *shell.Controller, w io.Writer) error {
	if err := ctrl.RefreshReservations(ctx); err != nil {
		return err
	}
	return printReservations(w, ctrl.Snapshot().Reservations)
}

// bookingOptions are the create flags. Exactly one of Service, Lesson or
// Tournament starts the flow.
type bookingOptions struct {
	Service    string
	Category   string
	Lesson     string
	Tournament bool
	Date       string
	Start      string
	End        string
	Unit       int
	Partners   []string
}

// actions replays the flags as the clicks a member would make in the wizard.
func (o bookingOptions) actions() ([]shell.Action, error) {
	var out []shell.Action
	pickTime := func() {
		if o.Date != "" {
			out = append(out, shell.SelectDate{Date: o.Date})
		}
		out = append(out, shell.ClickSlot{Slot: o.Start}, shell.ClickSlot{Slot: o.End}, shell.ContinueBooking{})
	}
	switch {
	case o.Tournament:
		out = append(out, shell.JoinTournament{})
	case o.Lesson != "":
		out = append(out, shell.BookLesson{Instructor: o.Lesson})
		pickTime()
	case o.Service != "":
		svc := booking.Service(o.Service)
		out = append(out, shell.SelectService{Service: svc}, shell.SelectCategory{Category: o.Category})
		pickTime()
		if svc == booking.ServiceCourts {
			unit := o.Unit
			if unit == 0 {
				unit = 1
			}
			out = append(out, shell.SelectUnit{Unit: unit})
		}
	default:
		return nil, fmt.Errorf("one of --service, --lesson or --tournament is required")
	}
	for _, p := range o.Partners {
		out = append(out, shell.SetGuestName{Name: p}, shell.AddPartner{})
	}
	return out, nil
}

func newReservationCreateCmd(member *memberFlags) *cobra.Command {
	var o bookingOptions
	c := &cobra.Command{
		Use:   "create",
		Short: "Book through the same steps as the Home screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := o.actions()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			ctrl, cleanup, err := member.signedIn(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := ctrl.Dispatch(shell.SelectTab{Tab: shell.TabHome}); err != nil {
				return err
			}
			for _, a := range actions {
				if err := ctrl.Dispatch(a); err != nil {
					return fmt.Errorf("%T: %w", a, err)
				}
			}
			if err := ctrl.ConfirmBooking(ctx); err != nil {
				return err
			}
			return printReservations(cmd.OutOrStdout(), ctrl.Snapshot().Reservations[:1])
		},
	}
	f := c.Flags()
	f.StringVar(&o.Service, "service", "", "Courts, Wellness, Dining or Equipment")
	f.StringVar(&o.Category, "category", "", "category within the service, e.g. Padel")
	f.StringVar(&o.Lesson, "lesson", "", "book a lesson with this instructor")
	f.BoolVar(&o.Tournament, "tournament", false, "register for the open tournament")
	f.StringVar(&o.Date, "date", "", `date label from the next 7 days, such as "28 Dez" (default today)`)
	f.StringVar(&o.Start, "start", "", "start slot, e.g. 10:00")
	f.StringVar(&o.End, "end", "", "end slot, at most 2 hours after start")
	f.IntVar(&o.Unit, "unit", 0, "court number (Courts only)")
	f.StringSliceVar(&o.Partners, "partner", nil, "guest name; repeat for up to 3")
	c.MarkFlagsMutuallyExclusive("service", "lesson", "tournament")
	return c
}

func newReservationCancelCmd(member *memberFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel one of your reservations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			ctrl, cleanup, err := member.signedIn(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := ctrl.CancelReservation(ctx, reservation.ID(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cancelled", args[0])
			return nil
		},
	}
}

func printReservations(w io.Writer, rs []reservation.Reservation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSERVICE\tCATEGORY\tDATE\tTIME\tCOURT\tPARTNERS")
	for _, r := range rs {
		court := "-"
		if r.CourtNumber != nil {
			court = *r.CourtNumber
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Service, r.Category, r.Date, r.Time, court, strings.Join(r.Partners, ", "))
	}
	return tw.Flush()
}
