package events

import (
	"fmt"
	"sort"
	"time"

	"github.com/morozRed/lineage/internal/family"
)

const (
	TypeBirthday = "birthday"

	// DefaultWindowDays is the look-ahead used when no window is given.
	DefaultWindowDays = 30

	dateLayout = "2006-01-02"
)

// Event is a recurring family date derived from member records.
type Event struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Date       string `json:"date"`
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Recurring  bool   `json:"recurring"`
}

// Occurrence is an event placed on its next calendar day.
type Occurrence struct {
	Event
	Next      string `json:"next"`
	DaysUntil int    `json:"daysUntil"`
	// Turning is the age reached on Next.
	Turning int `json:"turning"`

	next time.Time
}

// BirthdayEvents builds one recurring birthday per member with a parseable
// date of birth, in member order.
func BirthdayEvents(members []family.Person) []Event {
	out := make([]Event, 0, len(members))
	for _, member := range members {
		if member.DateOfBirth == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, member.DateOfBirth); err != nil {
			continue
		}
		out = append(out, Event{
			ID:         "birthday-" + member.ID,
			Title:      fmt.Sprintf("%s's Birthday", member.Name),
			Type:       TypeBirthday,
			Date:       member.DateOfBirth,
			MemberID:   member.ID,
			MemberName: member.Name,
			Recurring:  true,
		})
	}
	return out
}

// NextOccurrence returns the first anniversary of date on or after the
// calendar day of from. A Feb 29 date lands on Mar 1 in non-leap years.
func NextOccurrence(date, from time.Time) time.Time {
	today := truncateDay(from)
	next := time.Date(today.Year(), date.Month(), date.Day(), 0, 0, 0, 0, today.Location())
	if next.Before(today) {
		next = time.Date(today.Year()+1, date.Month(), date.Day(), 0, 0, 0, 0, today.Location())
	}
	return next
}

// Upcoming returns the events whose next occurrence falls within
// [today, today+days], ordered by occurrence then id. A non-positive window
// uses DefaultWindowDays.
func Upcoming(events []Event, now time.Time, days int) []Occurrence {
	if days <= 0 {
		days = DefaultWindowDays
	}
	today := truncateDay(now)
	limit := today.AddDate(0, 0, days)

	out := make([]Occurrence, 0)
	for _, event := range events {
		birth, err := time.ParseInLocation(dateLayout, event.Date, today.Location())
		if err != nil {
			continue
		}
		next := NextOccurrence(birth, today)
		if next.After(limit) {
			continue
		}
		out = append(out, Occurrence{
			Event:     event,
			Next:      next.Format(dateLayout),
			DaysUntil: daysBetween(today, next),
			Turning:   next.Year() - birth.Year(),
			next:      next,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].next.Equal(out[j].next) {
			return out[i].next.Before(out[j].next)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days, immune to DST-shortened days.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
