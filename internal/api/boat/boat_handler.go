package boat

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/owt-boats/internal/api"
	"github.com/FACorreiaa/owt-boats/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListBoatsHandler(w http.ResponseWriter, r *http.Request)
	GetBoatHandler(w http.ResponseWriter, r *http.Request)
	CreateBoatHandler(w http.ResponseWriter, r *http.Request)
	UpdateBoatHandler(w http.ResponseWriter, r *http.Request)
	DeleteBoatHandler(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

// Routes mounts the boat endpoints. The caller applies the authorization gate.
func (h *HandlerImpl) Routes(r chi.Router) {
	r.Get("/", h.ListBoatsHandler)
	r.Post("/", h.CreateBoatHandler)
	r.Get("/{id}", h.GetBoatHandler)
	r.Put("/{id}", h.UpdateBoatHandler)
	r.Delete("/{id}", h.DeleteBoatHandler)
}

// boatID parses the {id} URL parameter. An id that is not a positive
// integer cannot name a boat.
func boatID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeServiceError maps service errors to responses. Not found carries no body.
func (h *HandlerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.EmptyResponse(w, http.StatusNotFound)
	case errors.Is(err, types.ErrValidation):
		var verrs types.ValidationErrors
		if errors.As(err, &verrs) {
			api.ErrorResponse(w, r, http.StatusBadRequest, verrs.Error())
			return
		}
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid boat")
	default:
		l.ErrorContext(r.Context(), "Boat operation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *HandlerImpl) ListBoatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BoatHandler").Start(r.Context(), "ListBoats")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ListBoatsHandler"))

	boats, err := h.service.ListBoats(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to list boats")
		h.writeServiceError(w, r, l, err)
		return
	}
	span.SetStatus(codes.Ok, "Boats listed")
	api.WriteJSONResponse(w, r, http.StatusOK, boats)
}

func (h *HandlerImpl) GetBoatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BoatHandler").Start(r.Context(), "GetBoat")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetBoatHandler"))

	id, ok := boatID(r)
	if !ok {
		span.SetStatus(codes.Error, "Invalid boat id")
		api.EmptyResponse(w, http.StatusNotFound)
		return
	}
	span.SetAttributes(attribute.Int64("boat.id", id))

	boat, err := h.service.GetBoat(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to get boat")
		h.writeServiceError(w, r, l, err)
		return
	}
	span.SetStatus(codes.Ok, "Boat found")
	api.WriteJSONResponse(w, r, http.StatusOK, boat)
}

func (h *HandlerImpl) CreateBoatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BoatHandler").Start(r.Context(), "CreateBoat")
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreateBoatHandler"))

	var in types.BoatInput
	if err := api.DecodeJSONBody(w, r, &in); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	boat, err := h.service.CreateBoat(ctx, in)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to create boat")
		h.writeServiceError(w, r, l, err)
		return
	}
	span.SetAttributes(attribute.Int64("boat.id", boat.ID))
	span.SetStatus(codes.Ok, "Boat created")
	api.WriteJSONResponse(w, r, http.StatusCreated, boat)
}

func (h *HandlerImpl) UpdateBoatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BoatHandler").Start(r.Context(), "UpdateBoat")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdateBoatHandler"))

	id, ok := boatID(r)
	if !ok {
		span.SetStatus(codes.Error, "Invalid boat id")
		api.EmptyResponse(w, http.StatusNotFound)
		return
	}
	span.SetAttributes(attribute.Int64("boat.id", id))

	var in types.BoatInput
	if err := api.DecodeJSONBody(w, r, &in); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	boat, err := h.service.UpdateBoat(ctx, id, in)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to update boat")
		h.writeServiceError(w, r, l, err)
		return
	}
	span.SetStatus(codes.Ok, "Boat updated")
	api.WriteJSONResponse(w, r, http.StatusOK, boat)
}

func (h *HandlerImpl) DeleteBoatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BoatHandler").Start(r.Context(), "DeleteBoat")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteBoatHandler"))

	id, ok := boatID(r)
	if !ok {
		span.SetStatus(codes.Error, "Invalid boat id")
		api.EmptyResponse(w, http.StatusNotFound)
		return
	}
	span.SetAttributes(attribute.Int64("boat.id", id))

	if err := h.service.DeleteBoat(ctx, id); err != nil {
		span.SetStatus(codes.Error, "Failed to delete boat")
		h.writeServiceError(w, r, l, err)
		return
	}
	span.SetStatus(codes.Ok, "Boat deleted")
	api.EmptyResponse(w, http.StatusNoContent)
}
