// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/service"
)

// RegistrationHandler holds all HTTP handlers for the registration API.
type RegistrationHandler struct {
	svc *service.RegistrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Routes builds the router with the global middleware stack and API routes.
func (h *RegistrationHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)
	r.Use(CORS)

	r.Get("/health", HealthCheck)

	r.Route("/persons", func(r chi.Router) {
		r.Post("/", h.CreatePerson)
		r.Get("/", h.ListPersons)
		r.Get("/{name}", h.GetPerson)
		r.Get("/{name}/events", h.ListEventsAttended)
	})
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/{name}", h.GetEvent)
		r.Get("/{name}/registrations", h.ListRegistrations)
	})
	r.Post("/registrations", h.Register)

	return r
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

// eventResponse renders an event with wire-format date and times.
type eventResponse struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type registrationResponse struct {
	ID     string        `json:"id"`
	Person model.Person  `json:"person"`
	Event  eventResponse `json:"event"`
}

func toEventResponse(e model.Event) eventResponse {
	return eventResponse{
		Name:      e.Name,
		Date:      e.Date.Format(model.DateLayout),
		StartTime: e.StartTime.Format(model.TimeLayout),
		EndTime:   e.EndTime.Format(model.TimeLayout),
	}
}

func toEventResponses(events []model.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

func toRegistrationResponse(r model.Registration) registrationResponse {
	return registrationResponse{ID: r.ID, Person: r.Person, Event: toEventResponse(r.Event)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// writeServiceError maps a service error onto a status code. Anything other
// than an invalid argument is logged and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, model.ErrInvalidArgument) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Printf("request_id=%s error=%q", chimiddleware.GetReqID(r.Context()), err)
	writeError(w, http.StatusInternalServerError, fallback)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// nameParam returns the decoded {name} path segment. chi matches on the
// escaped path when one is present, so names containing '/' or other
// reserved characters arrive percent-encoded.
func nameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, true
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid name: "+err.Error())
		return "", false
	}
	return decoded, true
}

// parseOptional parses s with layout, keeping nil for an absent value.
func parseOptional(layout string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(layout, strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ─── Persons ──────────────────────────────────────────────────────────────────

// CreatePerson handles POST /persons
func (h *RegistrationHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePersonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	person, err := h.svc.CreatePerson(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err, "failed to create person")
		return
	}

	writeJSON(w, http.StatusCreated, person)
}

// ListPersons handles GET /persons
func (h *RegistrationHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.svc.GetAllPersons(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list persons")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if persons == nil {
		persons = []model.Person{}
	}

	writeJSON(w, http.StatusOK, persons)
}

// GetPerson handles GET /persons/{name}
func (h *RegistrationHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}
	person, err := h.svc.GetPerson(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err, "failed to get person")
		return
	}
	if person == nil {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}

	writeJSON(w, http.StatusOK, person)
}

// ListEventsAttended handles GET /persons/{name}/events
func (h *RegistrationHandler) ListEventsAttended(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}
	person, err := h.svc.GetPerson(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err, "failed to get person")
		return
	}
	if person == nil {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}

	events, err := h.svc.GetEventsAttendedByPerson(r.Context(), person)
	if err != nil {
		writeServiceError(w, r, err, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, toEventResponses(events))
}

// ─── Events ───────────────────────────────────────────────────────────────────

// CreateEvent handles POST /events
// Dates are "YYYY-MM-DD"; start and end times are "HH:MM".
func (h *RegistrationHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	date, err := parseOptional(model.DateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}
	start, err := parseOptional(model.TimeLayout, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_time: "+err.Error())
		return
	}
	end, err := parseOptional(model.TimeLayout, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_time: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req.Name, date, start, end)
	if err != nil {
		writeServiceError(w, r, err, "failed to create event")
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(*event))
}

// ListEvents handles GET /events
func (h *RegistrationHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.GetAllEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, toEventResponses(events))
}

// GetEvent handles GET /events/{name}
func (h *RegistrationHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}
	event, err := h.svc.GetEvent(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err, "failed to get event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

// ListRegistrations handles GET /events/{name}/registrations
func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}
	regs, err := h.svc.ListRegistrations(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err, "failed to list registrations")
		return
	}

	out := make([]registrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, toRegistrationResponse(reg))
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Registrations ────────────────────────────────────────────────────────────

// Register handles POST /registrations
// Blank names are passed on as missing references so the service reports
// every problem with the request at once.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var (
		person *model.Person
		event  *model.Event
	)
	if strings.TrimSpace(req.Person) != "" {
		person = &model.Person{Name: req.Person}
	}
	if strings.TrimSpace(req.Event) != "" {
		event = &model.Event{Name: req.Event}
		found, err := h.svc.GetEvent(r.Context(), req.Event)
		if err != nil {
			writeServiceError(w, r, err, "failed to get event")
			return
		}
		if found != nil {
			event = found
		}
	}

	reg, err := h.svc.Register(r.Context(), person, event)
	if err != nil {
		writeServiceError(w, r, err, "failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, toRegistrationResponse(*reg))
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
