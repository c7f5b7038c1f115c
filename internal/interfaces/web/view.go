package web

import (
	"html/template"
	"time"

	"github.com/example/salto-club/internal/application/shell"
	"github.com/example/salto-club/internal/domain/booking"
	"github.com/example/salto-club/internal/domain/club"
	"github.com/example/salto-club/internal/domain/reservation"
)

type tabLink struct {
	Name   string
	Title  string
	Active bool
}

type slotView struct {
	Label    string
	Disabled bool
	Selected bool
	InRange  bool
}

type spectatorView struct {
	club.SpectatorMatch
	Favorite bool
}

type page struct {
	Title     string
	CSRFField template.HTML
	State     shell.State
	Tab       string
	Tabs      []tabLink
	// NotificationDot lights up when there is anything under "My Reservations".
	NotificationDot bool

	Step          string
	Services      []booking.ServiceCard
	Categories    []string
	Dates         []booking.DateOption
	Slots         []slotView
	Units         []int
	TimeLabel     string
	CanAddPartner bool
	Favorites     []club.FavoriteMatch
	BulletinTags  []string
	Bulletins     []club.Bulletin

	Tournaments []club.Tournament
	Bracket     []club.BracketRound
	Spectators  []spectatorView

	Levels      []string
	Instructors []club.Instructor

	OnSite   []club.OnSite
	Requests []club.PartnerRequest

	Health club.HealthSummary
	Bars   []club.StressBar
}

func slotViews(w booking.Wizard) []slotView {
	si, ei := reservation.SlotIndex(w.Sel.Start), reservation.SlotIndex(w.Sel.End)
	out := make([]slotView, len(reservation.TimeSlots))
	for i, s := range reservation.TimeSlots {
		out[i] = slotView{
			Label:    s,
			Disabled: w.SlotDisabled(s),
			Selected: s == w.Sel.Start || s == w.Sel.End,
			InRange:  si >= 0 && ei > si && i > si && i < ei,
		}
	}
	return out
}

func shellPage(st shell.State, now time.Time, csrfField template.HTML) *page {
	w := st.Wizard
	p := &page{
		Title:           st.Tab.Title(),
		CSRFField:       csrfField,
		State:           st,
		Tab:             st.Tab.String(),
		NotificationDot: st.HasSavedItems(),
		Step:            w.Step.String(),
		TimeLabel:       reservation.TimeRange{Start: w.Sel.Start, End: w.Sel.End}.Label(),
		CanAddPartner:   w.CanAddPartner(),
		Favorites:       st.Favorites.Items(),
	}
	for _, t := range shell.Tabs {
		p.Tabs = append(p.Tabs, tabLink{Name: t.String(), Title: t.Title(), Active: t == st.Tab})
	}

	switch st.Tab {
	case shell.TabHome:
		switch w.Step {
		case booking.StepMenu:
			p.Services = booking.MenuServices
			p.BulletinTags = club.BulletinTags()
			p.Bulletins = club.Bulletins(st.BulletinTag)
		case booking.StepCategory:
			p.Categories = booking.Categories(w.Sel.Service)
		case booking.StepDateTime:
			p.Dates = booking.DateStrip(now)
			p.Slots = slotViews(w)
		case booking.StepCourts:
			p.Units = booking.Units(w.Sel.Category)
		}
	case shell.TabTournaments:
		p.Tournaments = club.OpenTournaments
		p.Bracket = club.Bracket
		for _, m := range club.SpectatorMatches {
			p.Spectators = append(p.Spectators, spectatorView{SpectatorMatch: m, Favorite: st.Favorites.Contains(m.Name)})
		}
	case shell.TabLessons:
		p.Levels = club.Levels
		p.Instructors = club.Instructors(st.LessonLevel)
	case shell.TabSocial:
		p.OnSite = club.MembersOnSite
		p.Requests = club.PartnerRequests
	case shell.TabHealth:
		p.Health = club.Health
		p.Bars = club.Health.Bars()
	}
	return p
}
