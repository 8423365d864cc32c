// Package memory provides in-process storage collaborators for the
// registration service. Data lives only as long as the Store.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
)

type txKey struct{}

type registrationKey struct {
	person, event string
}

// Store keeps people, events and registrations in insertion order.
type Store struct {
	txMu sync.Mutex // serialises WithinTx callers

	mu            sync.RWMutex
	persons       map[string]model.Person
	personOrder   []string
	events        map[string]model.Event
	eventOrder    []string
	registrations map[registrationKey]model.Registration
	regOrder      []registrationKey
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		persons:       map[string]model.Person{},
		events:        map[string]model.Event{},
		registrations: map[registrationKey]model.Registration{},
	}
}

// WithinTx runs fn while holding the store's transaction lock, so the
// checks and the writes inside fn see no interleaved writers. If fn fails
// or panics the store is restored to its state before the call. Nested
// calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, s))
}

// state is a copy of everything the store holds.
type state struct {
	persons       map[string]model.Person
	personOrder   []string
	events        map[string]model.Event
	eventOrder    []string
	registrations map[registrationKey]model.Registration
	regOrder      []registrationKey
}

func (s *Store) snapshot() state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return state{
		persons:       maps.Clone(s.persons),
		personOrder:   slices.Clone(s.personOrder),
		events:        maps.Clone(s.events),
		eventOrder:    slices.Clone(s.eventOrder),
		registrations: maps.Clone(s.registrations),
		regOrder:      slices.Clone(s.regOrder),
	}
}

func (s *Store) restore(st state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons, s.personOrder = st.persons, st.personOrder
	s.events, s.eventOrder = st.events, st.eventOrder
	s.registrations, s.regOrder = st.registrations, st.regOrder
}

// Persons returns the person collaborator backed by s.
func (s *Store) Persons() *PersonStore { return &PersonStore{s: s} }

// Events returns the event collaborator backed by s.
func (s *Store) Events() *EventStore { return &EventStore{s: s} }

// Registrations returns the registration collaborator backed by s.
func (s *Store) Registrations() *RegistrationStore { return &RegistrationStore{s: s} }

// PersonStore is the in-memory person collaborator.
type PersonStore struct{ s *Store }

// ExistsByName reports whether a person with the given name is stored.
func (p *PersonStore) ExistsByName(_ context.Context, name string) (bool, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	_, ok := p.s.persons[name]
	return ok, nil
}

// FindByName returns the person or nil when absent.
func (p *PersonStore) FindByName(_ context.Context, name string) (*model.Person, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	person, ok := p.s.persons[name]
	if !ok {
		return nil, nil
	}
	return &person, nil
}

// FindAll returns all people in insertion order.
func (p *PersonStore) FindAll(_ context.Context) ([]model.Person, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	out := make([]model.Person, 0, len(p.s.personOrder))
	for _, name := range p.s.personOrder {
		out = append(out, p.s.persons[name])
	}
	return out, nil
}

// Save stores person, replacing any person with the same name in place.
func (p *PersonStore) Save(_ context.Context, person model.Person) (*model.Person, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.persons[person.Name]; !ok {
		p.s.personOrder = append(p.s.personOrder, person.Name)
	}
	p.s.persons[person.Name] = person
	return &person, nil
}

// EventStore is the in-memory event collaborator.
type EventStore struct{ s *Store }

// ExistsByName reports whether an event with the given name is stored.
func (e *EventStore) ExistsByName(_ context.Context, name string) (bool, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	_, ok := e.s.events[name]
	return ok, nil
}

// FindByName returns the event or nil when absent.
func (e *EventStore) FindByName(_ context.Context, name string) (*model.Event, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	event, ok := e.s.events[name]
	if !ok {
		return nil, nil
	}
	return &event, nil
}

// FindAll returns all events in insertion order.
func (e *EventStore) FindAll(_ context.Context) ([]model.Event, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	out := make([]model.Event, 0, len(e.s.eventOrder))
	for _, name := range e.s.eventOrder {
		out = append(out, e.s.events[name])
	}
	return out, nil
}

// Save stores event, replacing any event with the same name in place.
func (e *EventStore) Save(_ context.Context, event model.Event) (*model.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if _, ok := e.s.events[event.Name]; !ok {
		e.s.eventOrder = append(e.s.eventOrder, event.Name)
	}
	e.s.events[event.Name] = event
	return &event, nil
}

// RegistrationStore is the in-memory registration collaborator.
type RegistrationStore struct{ s *Store }

// ExistsByPersonAndEvent reports whether the pair is already registered.
func (r *RegistrationStore) ExistsByPersonAndEvent(_ context.Context, personName, eventName string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.registrations[registrationKey{personName, eventName}]
	return ok, nil
}

// FindByPerson returns the registrations of a person, oldest first.
func (r *RegistrationStore) FindByPerson(_ context.Context, personName string) ([]model.Registration, error) {
	return r.filter(func(k registrationKey) bool { return k.person == personName }), nil
}

// FindByEvent returns the registrations for an event, oldest first.
func (r *RegistrationStore) FindByEvent(_ context.Context, eventName string) ([]model.Registration, error) {
	return r.filter(func(k registrationKey) bool { return k.event == eventName }), nil
}

// filter returns matching registrations with the current version of their
// event, as a join on the event table would.
func (r *RegistrationStore) filter(match func(registrationKey) bool) []model.Registration {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.Registration
	for _, k := range r.s.regOrder {
		if !match(k) {
			continue
		}
		reg := r.s.registrations[k]
		if e, ok := r.s.events[k.event]; ok {
			reg.Event = e
		}
		out = append(out, reg)
	}
	return out
}

// Save stores a registration keyed by its (person, event) pair.
func (r *RegistrationStore) Save(_ context.Context, reg model.Registration) (*model.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := registrationKey{reg.Person.Name, reg.Event.Name}
	if _, ok := r.s.registrations[k]; !ok {
		r.s.regOrder = append(r.s.regOrder, k)
	}
	r.s.registrations[k] = reg
	return &reg, nil
}
