package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistrationID(t *testing.T) {
	id := RegistrationID("Alice", "Talk")
	require.Equal(t, id, RegistrationID("Alice", "Talk"))
	require.NotEqual(t, id, RegistrationID("Talk", "Alice"))
	require.NotEqual(t, RegistrationID("ab", "c"), RegistrationID("a", "bc"))
	require.Len(t, id, 36)
}

func TestNewRegistration(t *testing.T) {
	r := NewRegistration(Person{Name: "Alice"}, Event{Name: "Talk"})
	require.Equal(t, RegistrationID("Alice", "Talk"), r.ID)
	require.Equal(t, "Alice", r.Person.Name)
	require.Equal(t, "Talk", r.Event.Name)
}

func TestClockOf(t *testing.T) {
	d := 9*time.Hour + 30*time.Minute
	require.Equal(t, d, ClockOf(TimeOfDay(d)))
	require.Equal(t, d, ClockOf(time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)))
	require.Equal(t, "09:30", TimeOfDay(d).Format(TimeLayout))
}

func TestInvalidArgumentError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", InvalidArgument("bad"))
	require.True(t, errors.Is(err, ErrInvalidArgument))

	var iae *InvalidArgumentError
	require.True(t, errors.As(err, &iae))
	require.Equal(t, "bad", iae.Msg)
}

func TestClockOf_TruncatesToMicroseconds(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 0, 0, 1999, time.UTC)
	require.Equal(t, 9*time.Hour+time.Microsecond, ClockOf(at))
}
