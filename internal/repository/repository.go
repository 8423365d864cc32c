// Package repository implements the storage collaborators on PostgreSQL.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
)

// PersonRepository handles persistence for people.
type PersonRepository struct {
	db *pgxpool.Pool
}

// NewPersonRepository constructs a PersonRepository.
func NewPersonRepository(db *pgxpool.Pool) *PersonRepository {
	return &PersonRepository{db: db}
}

// ExistsByName reports whether a person with the given name is stored.
func (r *PersonRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM persons WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check person: %w", err)
	}
	return exists, nil
}

// FindByName returns the person or nil when absent.
func (r *PersonRepository) FindByName(ctx context.Context, name string) (*model.Person, error) {
	var p model.Person
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT name FROM persons WHERE name = $1`, name,
	).Scan(&p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	return &p, nil
}

// FindAll returns all people ordered by creation time.
func (r *PersonRepository) FindAll(ctx context.Context) ([]model.Person, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT name FROM persons ORDER BY created_at ASC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var persons []model.Person
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.Name); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// Save inserts a new person.
func (r *PersonRepository) Save(ctx context.Context, p model.Person) (*model.Person, error) {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO persons (name) VALUES ($1)`, p.Name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert person: %w", err)
	}
	return &p, nil
}

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `name, event_date, start_time, end_time`

func scanEvent(row pgx.Row) (model.Event, error) {
	var (
		e          model.Event
		start, end pgtype.Time
	)
	if err := row.Scan(&e.Name, &e.Date, &start, &end); err != nil {
		return model.Event{}, err
	}
	e.Date = e.Date.UTC()
	e.StartTime = fromPgTime(start)
	e.EndTime = fromPgTime(end)
	return e, nil
}

// ExistsByName reports whether an event with the given name is stored.
func (r *EventRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return exists, nil
}

// FindByName returns the event or nil when absent.
func (r *EventRepository) FindByName(ctx context.Context, name string) (*model.Event, error) {
	e, err := scanEvent(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE name = $1`, name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// FindAll returns all events ordered by creation time.
func (r *EventRepository) FindAll(ctx context.Context) ([]model.Event, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at ASC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Save stores an event. Saving a name that already exists replaces that
// event's schedule and keeps its original position in FindAll.
func (r *EventRepository) Save(ctx context.Context, e model.Event) (*model.Event, error) {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO events (name, event_date, start_time, end_time)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE
		 SET event_date = EXCLUDED.event_date,
		     start_time = EXCLUDED.start_time,
		     end_time   = EXCLUDED.end_time`,
		e.Name, pgDate(e.Date), toPgTime(e.StartTime), toPgTime(e.EndTime),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert event: %w", err)
	}
	return &e, nil
}

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationQuery = `
SELECT r.id::text, r.person_name, e.name, e.event_date, e.start_time, e.end_time
FROM registrations r
JOIN events e ON e.name = r.event_name`

func scanRegistration(row pgx.Row) (model.Registration, error) {
	var (
		reg        model.Registration
		start, end pgtype.Time
	)
	err := row.Scan(
		&reg.ID, &reg.Person.Name,
		&reg.Event.Name, &reg.Event.Date, &start, &end,
	)
	if err != nil {
		return model.Registration{}, err
	}
	reg.Event.Date = reg.Event.Date.UTC()
	reg.Event.StartTime = fromPgTime(start)
	reg.Event.EndTime = fromPgTime(end)
	return reg, nil
}

// ExistsByPersonAndEvent reports whether the pair is already registered.
func (r *RegistrationRepository) ExistsByPersonAndEvent(ctx context.Context, personName, eventName string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE person_name = $1 AND event_name = $2)`,
		personName, eventName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

// FindByPerson returns the registrations of a person, oldest first.
func (r *RegistrationRepository) FindByPerson(ctx context.Context, personName string) ([]model.Registration, error) {
	return r.list(ctx, registrationQuery+`
WHERE r.person_name = $1
ORDER BY r.created_at ASC`, personName)
}

// FindByEvent returns the registrations for an event, oldest first.
func (r *RegistrationRepository) FindByEvent(ctx context.Context, eventName string) ([]model.Registration, error) {
	return r.list(ctx, registrationQuery+`
WHERE r.event_name = $1
ORDER BY r.created_at ASC`, eventName)
}

func (r *RegistrationRepository) list(ctx context.Context, query string, arg string) ([]model.Registration, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// Save inserts a registration.
func (r *RegistrationRepository) Save(ctx context.Context, reg model.Registration) (*model.Registration, error) {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO registrations (id, person_name, event_name) VALUES ($1, $2, $3)`,
		reg.ID, reg.Person.Name, reg.Event.Name,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, ErrDuplicate
		case isForeignKeyViolation(err):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return &reg, nil
}

func pgDate(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func toPgTime(t time.Time) pgtype.Time {
	return pgtype.Time{Microseconds: model.ClockOf(t).Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) time.Time {
	return model.TimeOfDay(time.Duration(t.Microseconds) * time.Microsecond)
}
