package reservation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxPartners is the number of guests allowed besides the owning member.
const MaxPartners = 3

var (
	ErrNotFound         = errors.New("reservation not found")
	ErrMissingService   = errors.New("service is required")
	ErrMissingDate      = errors.New("date is required")
	ErrMissingStart     = errors.New("start time is required")
	ErrInvalidStart     = errors.New("start time is not a bookable slot")
	ErrInvalidEnd       = errors.New("end time must be after start and within 2 hours")
	ErrTooManyPartners  = errors.New("at most 3 partners may join a reservation")
	ErrInvalidCourtUnit = errors.New("court unit must be positive")
)

// ID is the store-assigned identifier. Stores may hand out numbers or strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("reservation id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Reservation is a persisted booking row. It is never mutated after creation.
type Reservation struct {
	ID          ID        `json:"id"`
	Service     string    `json:"service"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	CourtNumber *string   `json:"court_number"`
	Partners    []string  `json:"partners"`
	CreatedAt   time.Time `json:"created_at"`
}

// DayLabel is the leading token of the date label ("28" for "28 Dez").
func (r Reservation) DayLabel() string {
	if i := strings.IndexByte(r.Date, ' '); i > 0 {
		return r.Date[:i]
	}
	return r.Date
}

// TimeRange is a start slot with an optional end slot.
type TimeRange struct {
	Start string
	End   string
}

// Label renders the range the way it is stored: "10:00 - 11:00", or just "08:00".
func (t TimeRange) Label() string {
	if t.End == "" {
		return t.Start
	}
	return t.Start + " - " + t.End
}

func (t TimeRange) Validate() error {
	if t.Start == "" {
		return ErrMissingStart
	}
	if !IsSlot(t.Start) {
		return ErrInvalidStart
	}
	if t.End != "" && !ValidEnd(t.Start, t.End) {
		return ErrInvalidEnd
	}
	return nil
}

// Draft is what gets inserted; the store fills in ID and CreatedAt.
type Draft struct {
	Service  string
	Category string
	Date     string
	Time     TimeRange
	Unit     int // 0 when the service has no numbered units
	Partners []string
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Service) == "" {
		return ErrMissingService
	}
	if strings.TrimSpace(d.Date) == "" {
		return ErrMissingDate
	}
	if err := d.Time.Validate(); err != nil {
		return err
	}
	if d.Unit < 0 {
		return ErrInvalidCourtUnit
	}
	if len(d.Partners) > MaxPartners {
		return ErrTooManyPartners
	}
	return nil
}

// CategoryOrService falls back to the service when no category was picked.
func (d Draft) CategoryOrService() string {
	if d.Category == "" {
		return d.Service
	}
	return d.Category
}

// CourtNumber renders the unit as text, or nil when absent.
func (d Draft) CourtNumber() *string {
	if d.Unit <= 0 {
		return nil
	}
	s := strconv.Itoa(d.Unit)
	return &s
}

// Row is the insert payload shared by the row-store adapters.
type Row struct {
	Service     string   `json:"service"`
	Category    string   `json:"category"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	CourtNumber *string  `json:"court_number"`
	Partners    []string `json:"partners"`
}

func (d Draft) Row() Row {
	partners := d.Partners
	if partners == nil {
		partners = []string{}
	}
	return Row{
		Service:     d.Service,
		Category:    d.CategoryOrService(),
		Date:        d.Date,
		Time:        d.Time.Label(),
		CourtNumber: d.CourtNumber(),
		Partners:    partners,
	}
}
