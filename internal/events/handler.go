package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sunderlandtech/backend/internal/auth"
	"github.com/sunderlandtech/backend/internal/instrumentation"
	"github.com/sunderlandtech/backend/internal/telemetry/tracing"
	"github.com/sunderlandtech/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=events_test

type eventsRepo interface {
	Add(ctx context.Context, event *Event) (*Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Event, error)
}

type eventRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

type eventResponse struct {
	Message string `json:"message"`
	Event   *Event `json:"event"`
}

type Handler struct {
	repo  eventsRepo
	guard *auth.Guard
	cache *Cache
	instr *instrumentation.Instrumentation
}

func NewHandler(
	repo eventsRepo,
	guard *auth.Guard,
	cache *Cache,
	instr *instrumentation.Instrumentation,
) *Handler {
	return &Handler{
		repo:  repo,
		guard: guard,
		cache: cache,
		instr: instr,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/events", handler.handleListPublic).
		Methods("GET").Name("public-events")

	adminRouter := router.PathPrefix("/api/admin/events").Subrouter()
	adminRouter.HandleFunc("", handler.guard.Protect(handler.handleList)).
		Methods("GET").Name("admin-list-events")
	adminRouter.HandleFunc("", handler.guard.Protect(handler.handleCreate)).
		Methods("POST", "OPTIONS").Name("admin-new-event")
	adminRouter.HandleFunc("/{id}", handler.guard.Protect(handler.handleGet)).
		Methods("GET").Name("admin-get-event")
	adminRouter.HandleFunc("/{id}", handler.guard.Protect(handler.handleUpdate)).
		Methods("PUT", "OPTIONS").Name("admin-update-event")
	adminRouter.HandleFunc("/{id}", handler.guard.Protect(handler.handleDelete)).
		Methods("DELETE", "OPTIONS").Name("admin-delete-event")
}

func (handler *Handler) handleListPublic(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "eventsHandler.listPublic")
	defer span.End()

	if handler.cache != nil {
		if cached, ok := handler.cache.Get(ctx); ok {
			span.SetAttributes(attribute.Bool("events.from-cache", true))
			pkg.WriteJSONBytesResponse(w, cached, http.StatusOK)
			return
		}
	}

	events, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("list public events error: %s", err)
		span.SetStatus(codes.Error, "list-err")
		pkg.WriteJSONMessage(w, "Failed to fetch events.", http.StatusInternalServerError)
		return
	}

	publicEvents := make([]Event, 0, len(events))
	for _, event := range events {
		publicEvents = append(publicEvents, event.PublicView())
	}

	eventsJson, err := json.Marshal(publicEvents)
	if err != nil {
		log.Errorf("marshal public events error: %s", err)
		span.SetStatus(codes.Error, "marshal-err")
		pkg.WriteJSONMessage(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if handler.cache != nil {
		handler.cache.Set(ctx, eventsJson)
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONBytesResponse(w, eventsJson, http.StatusOK)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	events, err := handler.repo.List(r.Context())
	if err != nil {
		log.Errorf("list events error: %s", err)
		pkg.WriteJSONMessage(w, "Failed to fetch events.", http.StatusInternalServerError)
		return
	}

	if len(events) == 0 {
		events = []Event{}
	}

	eventsJson, err := json.Marshal(events)
	if err != nil {
		log.Errorf("marshal events error: %s", err)
		pkg.WriteJSONMessage(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONBytesResponse(w, eventsJson, http.StatusOK)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "eventsHandler.create")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	eventReq, ok := handler.decodeAndValidate(w, r)
	if !ok {
		span.SetStatus(codes.Error, "invalid-event")
		return
	}

	admin, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		// the guard always sets the principal, a miss means a wiring bug
		log.Errorf("create event: no principal in context")
		pkg.WriteJSONMessage(w, "internal server error", http.StatusInternalServerError)
		span.SetStatus(codes.Error, "no-principal")
		return
	}

	newEvent := &Event{
		Name:        eventReq.Name,
		Date:        eventReq.Date,
		Time:        eventReq.Time,
		Location:    eventReq.Location,
		Description: eventReq.Description,
		Link:        eventReq.Link,
		Category:    eventReq.Category,
		Image:       eventReq.Image,
		AdminID:     admin.ID,
	}

	addedEvent, err := handler.repo.Add(ctx, newEvent)
	if err != nil {
		log.Errorf("failed to add new event [%s]: %s", newEvent.Name, err)
		pkg.WriteJSONMessage(w, "Failed to create event.", http.StatusInternalServerError)
		span.SetStatus(codes.Error, "add-err")
		span.RecordError(err)
		return
	}

	if handler.cache != nil {
		handler.cache.Invalidate(ctx)
	}
	handler.instr.CounterEventsCreated.Inc()

	log.Tracef("new event added: [%s] by [%s]: %s", addedEvent.Name, admin.Username, addedEvent.ID)
	span.SetStatus(codes.Ok, "ok")
	handler.writeEventResponse(w, "Event created successfully!", addedEvent, http.StatusCreated)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id := vars["id"]
	if id == "" {
		pkg.WriteJSONMessage(w, "Event ID is missing.", http.StatusBadRequest)
		return
	}

	event, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			pkg.WriteJSONMessage(w, "Event not found.", http.StatusNotFound)
			return
		}
		log.Errorf("get event %s: %s", id, err)
		pkg.WriteJSONMessage(w, "Failed to fetch event details.", http.StatusInternalServerError)
		return
	}

	eventJson, err := json.Marshal(event)
	if err != nil {
		log.Errorf("marshal event error: %s", err)
		pkg.WriteJSONMessage(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONBytesResponse(w, eventJson, http.StatusOK)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "eventsHandler.update")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		pkg.WriteJSONMessage(w, "Event ID is missing.", http.StatusBadRequest)
		span.SetStatus(codes.Error, "missing-id")
		return
	}

	eventReq, ok := handler.decodeAndValidate(w, r)
	if !ok {
		span.SetStatus(codes.Error, "invalid-event")
		return
	}

	updatedEvent := &Event{
		ID:          id,
		Name:        eventReq.Name,
		Date:        eventReq.Date,
		Time:        eventReq.Time,
		Location:    eventReq.Location,
		Description: eventReq.Description,
		Link:        eventReq.Link,
		Category:    eventReq.Category,
		Image:       eventReq.Image,
	}

	if err := handler.repo.Update(ctx, updatedEvent); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			pkg.WriteJSONMessage(w, "Event not found.", http.StatusNotFound)
			span.SetStatus(codes.Error, "not-found")
			return
		}
		log.Errorf("failed to update event %s: %s", id, err)
		pkg.WriteJSONMessage(w, "Failed to update event.", http.StatusInternalServerError)
		span.SetStatus(codes.Error, "update-err")
		span.RecordError(err)
		return
	}

	if handler.cache != nil {
		handler.cache.Invalidate(ctx)
	}

	log.Tracef("event updated: [%s]: %s", updatedEvent.Name, updatedEvent.ID)
	span.SetStatus(codes.Ok, "ok")
	handler.writeEventResponse(w, "Event updated successfully!", updatedEvent, http.StatusOK)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "eventsHandler.delete")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		pkg.WriteJSONMessage(w, "Event ID is missing.", http.StatusBadRequest)
		span.SetStatus(codes.Error, "missing-id")
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			pkg.WriteJSONMessage(w, "Event not found.", http.StatusNotFound)
			span.SetStatus(codes.Error, "not-found")
			return
		}
		log.Errorf("failed to delete event %s: %s", id, err)
		pkg.WriteJSONMessage(w, "Failed to delete event.", http.StatusInternalServerError)
		span.SetStatus(codes.Error, "delete-err")
		return
	}

	if handler.cache != nil {
		handler.cache.Invalidate(ctx)
	}

	log.Tracef("event deleted: %s", id)
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteJSONMessage(w, "Event deleted successfully!", http.StatusOK)
}

// decodeAndValidate parses the request body and checks the required fields.
// Nothing is persisted when validation fails.
func (handler *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request) (*eventRequest, bool) {
	var eventReq eventRequest
	if err := json.NewDecoder(r.Body).Decode(&eventReq); err != nil {
		log.Errorf("event request, unmarshal json params: %s", err)
		pkg.WriteJSONMessage(w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}

	if eventReq.Name == "" || eventReq.Date == "" || eventReq.Location == "" ||
		eventReq.Description == "" || eventReq.Category == "" {
		pkg.WriteJSONMessage(w, "Required fields are missing.", http.StatusBadRequest)
		return nil, false
	}

	return &eventReq, true
}

func (handler *Handler) writeEventResponse(w http.ResponseWriter, message string, event *Event, statusCode int) {
	respBytes, err := json.Marshal(eventResponse{
		Message: message,
		Event:   event,
	})
	if err != nil {
		log.Errorf("marshal event response: %s", err)
		pkg.WriteJSONMessage(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONBytesResponse(w, respBytes, statusCode)
}
