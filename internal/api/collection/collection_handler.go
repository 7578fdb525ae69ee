package collection

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/budget"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

// CreateCollection godoc
// @Summary      Create a trip
// @Description  Validates the trip, creates one blank plan for day 1 and attaches the weather forecast
// @Tags         Collections
// @Accept       json
// @Produce      json
// @Param        request body types.CreateCollectionRequest true "Trip details"
// @Success      201 {object} types.CreateCollectionResponse
// @Failure      422 {object} api.Response "Validation failed"
// @Failure      503 {object} api.Response "Persistence unavailable"
// @Router       /collections [post]
func (h *HandlerImpl) CreateCollection(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CollectionHandler").Start(r.Context(), "CreateCollection", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/collections"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateCollection"))

	var req types.CreateCollectionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Create(ctx, req)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

// ListCollections godoc
// @Summary      List trips
// @Tags         Collections
// @Produce      json
// @Success      200 {array} types.CollectionSummary
// @Router       /collections [get]
func (h *HandlerImpl) ListCollections(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CollectionHandler").Start(r.Context(), "ListCollections")
	defer span.End()

	summaries, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list collections", slog.Any("error", err))
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summaries)
}

// GetCollection godoc
// @Summary      Get a trip
// @Tags         Collections
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Success      200 {object} types.Collection
// @Failure      404 {object} api.Response "Not found"
// @Router       /collections/{collectionID} [get]
func (h *HandlerImpl) GetCollection(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CollectionHandler").Start(r.Context(), "GetCollection")
	defer span.End()

	id, err := api.URLParamUUID(r, "collectionID")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	c, err := h.service.Get(ctx, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, c)
}

// SaveCollection godoc
// @Summary      Replace a trip
// @Description  Full-object write. The revision must match the stored one.
// @Tags         Collections
// @Accept       json
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        request body types.Collection true "Collection"
// @Success      200 {object} types.Collection
// @Failure      409 {object} api.Response "Stale revision"
// @Failure      422 {object} api.Response "Validation failed"
// @Router       /collections/{collectionID} [put]
func (h *HandlerImpl) SaveCollection(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CollectionHandler").Start(r.Context(), "SaveCollection")
	defer span.End()

	l := h.logger.With(slog.String("handler", "SaveCollection"))

	id, err := api.URLParamUUID(r, "collectionID")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	var c types.Collection
	if err = api.DecodeJSONBody(w, r, &c); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if c.ID != id {
		api.ErrorResponse(w, r, http.StatusBadRequest, "collection id in body does not match the URL")
		return
	}

	saved, err := h.service.Save(ctx, &c)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, saved)
}

// DeleteCollection godoc
// @Summary      Delete a trip
// @Tags         Collections
// @Param        collectionID path string true "Collection ID"
// @Success      204
// @Failure      404 {object} api.Response "Not found"
// @Router       /collections/{collectionID} [delete]
func (h *HandlerImpl) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CollectionHandler").Start(r.Context(), "DeleteCollection")
	defer span.End()

	id, err := api.URLParamUUID(r, "collectionID")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	if err = h.service.Delete(ctx, id); err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// AddNewDay godoc
// @Summary      Append a day
// @Description  Appends an empty plan numbered max(day)+1
// @Tags         Collections
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Success      201 {object} types.Plan
// @Router       /collections/{collectionID}/days [post]
func (h *HandlerImpl) AddNewDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CollectionHandler").Start(r.Context(), "AddNewDay")
	defer span.End()

	id, err := api.URLParamUUID(r, "collectionID")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	plan, err := h.service.AddNewDay(ctx, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, plan)
}

// GetBudget godoc
// @Summary      Budget summary
// @Description  Total spend, remaining budget and per-day spend. Over budget is reported as a status.
// @Tags         Collections
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Success      200 {object} types.BudgetSummary
// @Router       /collections/{collectionID}/budget [get]
func (h *HandlerImpl) GetBudget(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CollectionHandler").Start(r.Context(), "GetBudget")
	defer span.End()

	id, err := api.URLParamUUID(r, "collectionID")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	c, err := h.service.Get(ctx, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, budget.Summarize(c))
}
