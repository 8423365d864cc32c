// Package model defines the core domain types for the event registration system.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Layouts used for the wire representation of an event's calendar day and
// wall-clock times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Person is someone who can register to events. The name is the natural key.
type Person struct {
	Name string `json:"name"`
}

// Event is a scheduled event identified by its name.
// Date holds the calendar day (UTC midnight); StartTime and EndTime only
// carry a time of day.
type Event struct {
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Registration links a Person to an Event. Neither side is owned by it.
type Registration struct {
	ID     string `json:"id"`
	Person Person `json:"person"`
	Event  Event  `json:"event"`
}

// registrationNamespace scopes the name-based registration ids.
var registrationNamespace = uuid.MustParse("6f1c1a52-3f7e-4d52-9c2e-5d8b0c7f4a11")

// RegistrationID derives the key of the registration of person to event.
// The two names are joined with a NUL byte so that distinct pairs never
// encode to the same input.
func RegistrationID(personName, eventName string) string {
	key := make([]byte, 0, len(personName)+len(eventName)+1)
	key = append(key, personName...)
	key = append(key, 0)
	key = append(key, eventName...)
	return uuid.NewSHA1(registrationNamespace, key).String()
}

// NewRegistration builds the registration of p to e with its derived id.
func NewRegistration(p Person, e Event) *Registration {
	return &Registration{
		ID:     RegistrationID(p.Name, e.Name),
		Person: p,
		Event:  e,
	}
}

// ClockOf returns the time of day of t as an offset from midnight,
// truncated to the microsecond precision of a stored TIME value.
func ClockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	d := time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
	return d.Truncate(time.Microsecond)
}

// TimeOfDay places a clock offset on the reference day used for StartTime
// and EndTime values.
func TimeOfDay(d time.Duration) time.Time {
	return time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).Add(d)
}

// CreatePersonRequest is the payload for creating a new person.
type CreatePersonRequest struct {
	Name string `json:"name"`
}

// CreateEventRequest is the payload for creating a new event.
// Date is "YYYY-MM-DD"; times are "HH:MM" (24h).
type CreateEventRequest struct {
	Name      string  `json:"name"`
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// RegisterRequest is the payload for registering a person to an event.
type RegisterRequest struct {
	Person string `json:"person"`
	Event  string `json:"event"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
