// Package places answers "is this establishment open at time T" from a live
// places lookup with a durable cache, degrading to "unknown" whenever the
// vendor is slow, down or unconfigured.
package places

import (
	"context"
	"errors"
	"time"
)

// Status is the tri-state answer to an open-at query.
type Status string

const (
	// StatusOpen means the establishment is open at the queried time.
	StatusOpen Status = "open"
	// StatusClosed means the establishment is closed at the queried time.
	StatusClosed Status = "closed"
	// StatusUnknown means no reliable schedule is available. Callers treat
	// unknown as "assume open" and surface it as a scheduling risk.
	StatusUnknown Status = "unknown"
)

// ErrProviderUnavailable indicates the live places service is unreachable.
var ErrProviderUnavailable = errors.New("places provider unavailable")

// Error carries provider-level detail for a failed lookup.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind classifies the establishments visited during the survey.
type Kind string

const (
	KindPrefeitura Kind = "prefeitura"
	KindEmpresa    Kind = "empresa"
	KindAutarquia  Kind = "autarquia"
)

// PlaceRef identifies an establishment for a business-hours lookup.
// The live vendor is queried by name and municipality; the durable cache is
// keyed by municipality and kind, since establishments of the same kind in
// the same municipality share office hours.
type PlaceRef struct {
	Name         string
	Municipality string
	Kind         Kind
}

// Oracle reports whether an establishment is open at a given time.
// Implementations must never block beyond a bounded timeout: on any
// failure they return StatusUnknown rather than an error.
type Oracle interface {
	IsOpenAt(ctx context.Context, ref PlaceRef, at time.Time) Status
	// Name returns the oracle identifier for logging and health tracking.
	Name() string
}

// DayHours is an open/close window for one weekday, in minutes since
// midnight local time. A zero DayHours with Closed=true means closed all day.
type DayHours struct {
	OpenMinute  int  `json:"open"`
	CloseMinute int  `json:"close"`
	Closed      bool `json:"closed"`
}

// WeekSchedule holds opening hours indexed by time.Weekday (Sunday = 0).
type WeekSchedule struct {
	Days [7]DayHours `json:"days"`
}

// StatusAt evaluates the schedule at the given local time.
func (s *WeekSchedule) StatusAt(at time.Time) Status {
	day := s.Days[int(at.Weekday())]
	if day.Closed {
		return StatusClosed
	}
	minute := at.Hour()*60 + at.Minute()
	if minute >= day.OpenMinute && minute < day.CloseMinute {
		return StatusOpen
	}
	return StatusClosed
}

// HoursSource fetches a weekly schedule for an establishment.
type HoursSource interface {
	OpeningHours(ctx context.Context, ref PlaceRef) (*WeekSchedule, error)
	// Name returns the identifier the source registers its health under.
	Name() string
}

// DefaultKindHours returns the conventional office hours for an
// establishment kind, used to seed the cache when the live lookup has
// nothing better.
func DefaultKindHours(kind Kind) *WeekSchedule {
	open, close := 8*60, 17*60
	switch kind {
	case KindEmpresa:
		close = 18 * 60
	case KindAutarquia:
		close = 16 * 60
	}

	var schedule WeekSchedule
	for day := range schedule.Days {
		if day == int(time.Sunday) || day == int(time.Saturday) {
			schedule.Days[day] = DayHours{Closed: true}
			continue
		}
		schedule.Days[day] = DayHours{OpenMinute: open, CloseMinute: close}
	}
	return &schedule
}
