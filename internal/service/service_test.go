package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository/memory"
)

func newTestService(t *testing.T) *RegistrationService {
	t.Helper()
	store := memory.NewStore()
	return NewRegistrationService(store, store.Persons(), store.Events(), store.Registrations())
}

func ptr[T any](v T) *T { return &v }

func clock(h, m int) *time.Time {
	return ptr(model.TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute))
}

var jan1 = ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

func mustCreateEvent(t *testing.T, svc *RegistrationService, name string) *model.Event {
	t.Helper()
	e, err := svc.CreateEvent(context.Background(), name, jan1, clock(9, 0), clock(10, 0))
	require.NoError(t, err)
	return e
}

func mustCreatePerson(t *testing.T, svc *RegistrationService, name string) *model.Person {
	t.Helper()
	p, err := svc.CreatePerson(context.Background(), name)
	require.NoError(t, err)
	return p
}

func requireInvalid(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, model.ErrInvalidArgument)
	require.Equal(t, msg, err.Error())
}

func TestCreatePerson(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreatePerson(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", p.Name)

	got, err := svc.GetPerson(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestCreatePerson_NameTaken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustCreatePerson(t, svc, "Alice")
	_, err := svc.CreatePerson(ctx, "Alice")
	requireInvalid(t, err, "Person name taken!")

	all, err := svc.GetAllPersons(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCreatePerson_BlankNameProperty(t *testing.T) {
	svc := newTestService(t)
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringOfN(rapid.SampledFrom([]rune{' ', '\t', '\n', '\r', '\v', '\f'}), 0, 10, -1).Draw(rt, "name")
		_, err := svc.CreatePerson(context.Background(), name)
		if !errors.Is(err, model.ErrInvalidArgument) {
			rt.Fatalf("expected invalid argument for %q, got %v", name, err)
		}
	})

	all, err := svc.GetAllPersons(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestGetPerson(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetPerson(ctx, "  ")
	requireInvalid(t, err, "Person name cannot be empty!")

	got, err := svc.GetPerson(ctx, "Nobody")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCreateEvent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, "Talk", jan1, clock(9, 0), clock(10, 0))
	require.NoError(t, err)
	require.Equal(t, "Talk", e.Name)

	got, err := svc.GetEvent(ctx, "Talk")
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestCreateEvent_EndBeforeStart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, "Talk", jan1, clock(10, 0), clock(9, 0))
	requireInvalid(t, err, "Event end time cannot be before event start time!")

	got, err := svc.GetEvent(ctx, "Talk")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCreateEvent_DuplicateNameAllowed(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustCreateEvent(t, svc, "Talk")
	_, err := svc.CreateEvent(ctx, "Talk", jan1, clock(13, 0), clock(14, 0))
	require.NoError(t, err)

	got, err := svc.GetEvent(ctx, "Talk")
	require.NoError(t, err)
	require.Equal(t, *clock(13, 0), got.StartTime)
}

func TestGetEvent_BlankName(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetEvent(context.Background(), "")
	requireInvalid(t, err, "Event name cannot be empty!")
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := mustCreatePerson(t, svc, "Alice")
	e := mustCreateEvent(t, svc, "Talk")

	reg, err := svc.Register(ctx, p, e)
	require.NoError(t, err)
	require.Equal(t, model.RegistrationID("Alice", "Talk"), reg.ID)
	require.Equal(t, *p, reg.Person)
	require.Equal(t, *e, reg.Event)
}

func TestRegister_Twice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := mustCreatePerson(t, svc, "Alice")
	e := mustCreateEvent(t, svc, "Talk")

	_, err := svc.Register(ctx, p, e)
	require.NoError(t, err)
	_, err = svc.Register(ctx, p, e)
	requireInvalid(t, err, "Person is already registered to this event!")
}

func TestRegister_AccumulatesErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := mustCreatePerson(t, svc, "Alice")
	e := mustCreateEvent(t, svc, "Talk")

	tests := []struct {
		name   string
		person *model.Person
		event  *model.Event
		msg    string
	}{
		{"nil person", nil, e, "Person needs to be selected for registration!"},
		{"nil event", p, nil, "Event needs to be selected for registration!"},
		{"both nil", nil, nil, "Person needs to be selected for registration! Event needs to be selected for registration!"},
		{"unknown person", &model.Person{Name: "Ghost"}, e, "Person does not exist!"},
		{"unknown event", p, &model.Event{Name: "Nowhere"}, "Event does not exist!"},
		{"both unknown", &model.Person{Name: "Ghost"}, &model.Event{Name: "Nowhere"}, "Person does not exist! Event does not exist!"},
		{"nil person unknown event", nil, &model.Event{Name: "Nowhere"}, "Person needs to be selected for registration! Event does not exist!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.person, tt.event)
			requireInvalid(t, err, tt.msg)
		})
	}
}

func TestGetEventsAttendedByPerson(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := mustCreatePerson(t, svc, "Alice")
	other := mustCreatePerson(t, svc, "Bob")
	e1 := mustCreateEvent(t, svc, "Talk")
	e2 := mustCreateEvent(t, svc, "Lab")
	e3 := mustCreateEvent(t, svc, "Party")

	for _, e := range []*model.Event{e1, e2} {
		_, err := svc.Register(ctx, p, e)
		require.NoError(t, err)
	}
	_, err := svc.Register(ctx, other, e3)
	require.NoError(t, err)

	events, err := svc.GetEventsAttendedByPerson(ctx, p)
	require.NoError(t, err)
	require.ElementsMatch(t, []model.Event{*e1, *e2}, events)

	_, err = svc.GetEventsAttendedByPerson(ctx, nil)
	requireInvalid(t, err, "Person cannot be null!")
}

func TestGetAll_Idempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustCreatePerson(t, svc, "Alice")
	mustCreatePerson(t, svc, "Bob")
	mustCreateEvent(t, svc, "Talk")

	p1, err := svc.GetAllPersons(ctx)
	require.NoError(t, err)
	p2, err := svc.GetAllPersons(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, p1, p2)

	e1, err := svc.GetAllEvents(ctx)
	require.NoError(t, err)
	e2, err := svc.GetAllEvents(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, e1, e2)
	require.Len(t, e1, 1)
}

func TestListRegistrations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := mustCreatePerson(t, svc, "Alice")
	e := mustCreateEvent(t, svc, "Talk")
	_, err := svc.Register(ctx, p, e)
	require.NoError(t, err)

	regs, err := svc.ListRegistrations(ctx, "Talk")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	require.Equal(t, "Alice", regs[0].Person.Name)

	_, err = svc.ListRegistrations(ctx, "Nowhere")
	requireInvalid(t, err, "Event does not exist!")
}

type failingRegistrations struct {
	RegistrationStore
	err error
}

func (f failingRegistrations) Save(context.Context, model.Registration) (*model.Registration, error) {
	return nil, f.err
}

func TestRegister_StorageErrorPropagates(t *testing.T) {
	store := memory.NewStore()
	storageErr := errors.New("disk on fire")
	svc := NewRegistrationService(store, store.Persons(), store.Events(),
		failingRegistrations{RegistrationStore: store.Registrations(), err: storageErr})
	ctx := context.Background()

	p := mustCreatePerson(t, svc, "Alice")
	e := mustCreateEvent(t, svc, "Talk")

	_, err := svc.Register(ctx, p, e)
	require.ErrorIs(t, err, storageErr)
	require.NotErrorIs(t, err, model.ErrInvalidArgument)
}

func TestCreateEvent_StoresMicrosecondTimes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	start := ptr(model.TimeOfDay(9*time.Hour + 1500*time.Nanosecond))
	_, err := svc.CreateEvent(ctx, "Talk", jan1, start, clock(10, 0))
	require.NoError(t, err)

	got, err := svc.GetEvent(ctx, "Talk")
	require.NoError(t, err)
	require.Equal(t, model.TimeOfDay(9*time.Hour+time.Microsecond), got.StartTime)

	_, err = svc.CreateEvent(ctx, "Blip", jan1,
		ptr(model.TimeOfDay(9*time.Hour+100*time.Nanosecond)),
		ptr(model.TimeOfDay(9*time.Hour+900*time.Nanosecond)))
	requireInvalid(t, err, "Event end time cannot be before event start time!")
}
