// Package service implements the registration business rules: validation,
// uniqueness and referential checks, and orchestration of the storage
// collaborators.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/validator"
)

// PersonStore persists people keyed by name.
// FindByName returns (nil, nil) when no person has that name.
type PersonStore interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindByName(ctx context.Context, name string) (*model.Person, error)
	FindAll(ctx context.Context) ([]model.Person, error)
	Save(ctx context.Context, p model.Person) (*model.Person, error)
}

// EventStore persists events keyed by name.
// FindByName returns (nil, nil) when no event has that name.
type EventStore interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindByName(ctx context.Context, name string) (*model.Event, error)
	FindAll(ctx context.Context) ([]model.Event, error)
	Save(ctx context.Context, e model.Event) (*model.Event, error)
}

// RegistrationStore persists registrations.
type RegistrationStore interface {
	ExistsByPersonAndEvent(ctx context.Context, personName, eventName string) (bool, error)
	FindByPerson(ctx context.Context, personName string) ([]model.Registration, error)
	FindByEvent(ctx context.Context, eventName string) ([]model.Registration, error)
	Save(ctx context.Context, r model.Registration) (*model.Registration, error)
}

// Transactor runs fn atomically: every write made through ctx inside fn
// commits, or none does.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RegistrationService orchestrates people, events and registrations.
type RegistrationService struct {
	tx            Transactor
	persons       PersonStore
	events        EventStore
	registrations RegistrationStore
}

// NewRegistrationService constructs a RegistrationService with its dependencies.
func NewRegistrationService(
	tx Transactor,
	persons PersonStore,
	events EventStore,
	registrations RegistrationStore,
) *RegistrationService {
	return &RegistrationService{
		tx:            tx,
		persons:       persons,
		events:        events,
		registrations: registrations,
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CreatePerson persists a new person. Names must be non-blank and unique.
func (s *RegistrationService) CreatePerson(ctx context.Context, name string) (*model.Person, error) {
	if isBlank(name) {
		return nil, model.InvalidArgument("Person name cannot be empty!")
	}

	var person *model.Person
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.persons.ExistsByName(ctx, name)
		if err != nil {
			return fmt.Errorf("check person: %w", err)
		}
		if exists {
			return model.InvalidArgument("Person name taken!")
		}
		person, err = s.persons.Save(ctx, model.Person{Name: name})
		if err != nil {
			return fmt.Errorf("save person: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return person, nil
}

// GetPerson returns the person with the given name, or nil if there is none.
func (s *RegistrationService) GetPerson(ctx context.Context, name string) (*model.Person, error) {
	if isBlank(name) {
		return nil, model.InvalidArgument("Person name cannot be empty!")
	}

	var person *model.Person
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		person, err = s.persons.FindByName(ctx, name)
		if err != nil {
			return fmt.Errorf("get person: %w", err)
		}
		return nil
	})
	return person, err
}

// GetAllPersons returns every person in storage order.
func (s *RegistrationService) GetAllPersons(ctx context.Context) ([]model.Person, error) {
	var persons []model.Person
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		persons, err = s.persons.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("list persons: %w", err)
		}
		return nil
	})
	return persons, err
}

// GetEvent returns the event with the given name, or nil if there is none.
func (s *RegistrationService) GetEvent(ctx context.Context, name string) (*model.Event, error) {
	if isBlank(name) {
		return nil, model.InvalidArgument("Event name cannot be empty!")
	}

	var event *model.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.events.FindByName(ctx, name)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		return nil
	})
	return event, err
}

// CreateEvent validates the fields and persists a new event.
// Event names are not checked for uniqueness here, unlike person names.
func (s *RegistrationService) CreateEvent(ctx context.Context, name string, date, startTime, endTime *time.Time) (*model.Event, error) {
	if err := validator.ValidateCreateEvent(name, date, startTime, endTime); err != nil {
		return nil, err
	}

	var event *model.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.events.Save(ctx, model.Event{
			Name:      name,
			Date:      *date,
			StartTime: model.TimeOfDay(model.ClockOf(*startTime)),
			EndTime:   model.TimeOfDay(model.ClockOf(*endTime)),
		})
		if err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Register records that person attends event. All failed checks are
// reported together in one InvalidArgumentError.
func (s *RegistrationService) Register(ctx context.Context, person *model.Person, event *model.Event) (*model.Registration, error) {
	var reg *model.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var msg strings.Builder

		if person == nil {
			msg.WriteString("Person needs to be selected for registration! ")
		} else {
			exists, err := s.persons.ExistsByName(ctx, person.Name)
			if err != nil {
				return fmt.Errorf("check person: %w", err)
			}
			if !exists {
				msg.WriteString("Person does not exist! ")
			}
		}

		if event == nil {
			msg.WriteString("Event needs to be selected for registration! ")
		} else {
			exists, err := s.events.ExistsByName(ctx, event.Name)
			if err != nil {
				return fmt.Errorf("check event: %w", err)
			}
			if !exists {
				msg.WriteString("Event does not exist! ")
			}
		}

		if person != nil && event != nil {
			exists, err := s.registrations.ExistsByPersonAndEvent(ctx, person.Name, event.Name)
			if err != nil {
				return fmt.Errorf("check registration: %w", err)
			}
			if exists {
				msg.WriteString("Person is already registered to this event!")
			}
		}

		if errMsg := strings.TrimSpace(msg.String()); errMsg != "" {
			return model.InvalidArgument(errMsg)
		}

		var err error
		reg, err = s.registrations.Save(ctx, *model.NewRegistration(*person, *event))
		if err != nil {
			return fmt.Errorf("save registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// GetEventsAttendedByPerson returns the events person is registered to, in
// storage order.
func (s *RegistrationService) GetEventsAttendedByPerson(ctx context.Context, person *model.Person) ([]model.Event, error) {
	if person == nil {
		return nil, model.InvalidArgument("Person cannot be null!")
	}

	var events []model.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		regs, err := s.registrations.FindByPerson(ctx, person.Name)
		if err != nil {
			return fmt.Errorf("list registrations: %w", err)
		}
		events = make([]model.Event, 0, len(regs))
		for _, r := range regs {
			events = append(events, r.Event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetAllEvents returns every event in storage order.
func (s *RegistrationService) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		events, err = s.events.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		return nil
	})
	return events, err
}

// ListRegistrations returns the registrations for the named event.
// It fails with an InvalidArgumentError when the event does not exist.
func (s *RegistrationService) ListRegistrations(ctx context.Context, eventName string) ([]model.Registration, error) {
	if isBlank(eventName) {
		return nil, model.InvalidArgument("Event name cannot be empty!")
	}

	var regs []model.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.events.ExistsByName(ctx, eventName)
		if err != nil {
			return fmt.Errorf("check event: %w", err)
		}
		if !exists {
			return model.InvalidArgument("Event does not exist!")
		}
		regs, err = s.registrations.FindByEvent(ctx, eventName)
		if err != nil {
			return fmt.Errorf("list registrations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return regs, nil
}
