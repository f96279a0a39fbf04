// Package calendar renders a venue's confirmed bookings as an iCalendar feed.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"campusevents/internal/domain"
	"campusevents/internal/schedule"
)

// ErrNoBookings is returned when a venue has no confirmed booking to put in the feed.
// An iCalendar object must hold at least one component.
var ErrNoBookings = errors.New("no bookings to export")

const productID = "-//campusevents//venue bookings//EN"

// floatingLayout is an RFC 5545 local time without zone; bookings carry no timezone.
const floatingLayout = "20060102T150405"

// EncodeVenue writes the confirmed bookings of venue as VEVENTs. Bookings whose date or
// time does not parse are left out; their count is returned.
func EncodeVenue(w io.Writer, venue *domain.Venue, now time.Time) (skipped int, err error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", venue.Name)

	for _, b := range venue.Bookings {
		if b.Status != domain.BookingConfirmed {
			continue
		}
		iv, err := schedule.NewInterval(b.Date, b.StartTime, b.EndTime)
		if err != nil {
			skipped++
			continue
		}
		cal.Children = append(cal.Children, toEvent(venue, b, iv, now))
	}

	if len(cal.Children) == 0 {
		return skipped, ErrNoBookings
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return skipped, fmt.Errorf("encode calendar: %w", err)
	}
	return skipped, nil
}

func toEvent(venue *domain.Venue, b domain.Booking, iv schedule.Interval, now time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, fmt.Sprintf("%s@%s", b.EventID, venue.ID))
	ve.Props.SetText(ical.PropSummary, b.EventName)
	stamp := b.CreatedAt
	if stamp.IsZero() {
		stamp = now
	}
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.Set(floating(ical.PropDateTimeStart, iv.Start))
	ve.Props.Set(floating(ical.PropDateTimeEnd, iv.End))
	location := venue.Name
	if venue.Location != "" {
		location = venue.Name + ", " + venue.Location
	}
	ve.Props.SetText(ical.PropLocation, location)
	return ve
}

func floating(name string, t time.Time) *ical.Prop {
	p := ical.NewProp(name)
	p.Value = t.Format(floatingLayout)
	return p
}
