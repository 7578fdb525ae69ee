package plan

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/itinerary"
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

// dayParams reads the collection id and day number from the URL. It writes
// the error response itself and reports false on failure.
func dayParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, bool) {
	id, err := api.URLParamUUID(r, "collectionID")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return uuid.Nil, 0, false
	}
	day, err := api.URLParamInt(r, "day")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return uuid.Nil, 0, false
	}
	return id, day, true
}

func (h *HandlerImpl) writePlan(w http.ResponseWriter, r *http.Request, p *types.Plan, err error) {
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// GetDay godoc
// @Summary      Get a day
// @Description  The plan with its status, stop durations, weather and spend
// @Tags         Plans
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Success      200 {object} types.DayView
// @Failure      404 {object} api.Response "Collection or day not found"
// @Router       /collections/{collectionID}/days/{day} [get]
func (h *HandlerImpl) GetDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "GetDay")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetDay(ctx, id, day)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, view)
}

// AddStop godoc
// @Summary      Append a stop
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        request body api.AddStopRequest true "Stop"
// @Success      200 {object} types.Plan
// @Failure      422 {object} api.Response "Invalid time"
// @Router       /collections/{collectionID}/days/{day}/stops [post]
func (h *HandlerImpl) AddStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "AddStop")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var req api.AddStopRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.AddStop(ctx, id, day, types.Stop{
		Name:        req.Name,
		TimeStart:   req.TimeStart,
		TimeEnd:     req.TimeEnd,
		Description: req.Description,
	})
	h.writePlan(w, r, p, err)
}

// ReplaceStops godoc
// @Summary      Replace the stop list
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        request body api.ReplaceStopsRequest true "Ordered stops"
// @Success      200 {object} types.Plan
// @Router       /collections/{collectionID}/days/{day}/stops [put]
func (h *HandlerImpl) ReplaceStops(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "ReplaceStops")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var req api.ReplaceStopsRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.ReplaceStops(ctx, id, day, req.Stops)
	h.writePlan(w, r, p, err)
}

// RemoveStop godoc
// @Summary      Remove a stop
// @Tags         Plans
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        index path int true "Stop position"
// @Success      200 {object} types.Plan
// @Failure      422 {object} api.Response "Index out of range"
// @Router       /collections/{collectionID}/days/{day}/stops/{index} [delete]
func (h *HandlerImpl) RemoveStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "RemoveStop")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	index, err := api.URLParamInt(r, "index")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	p, err := h.service.RemoveStop(ctx, id, day, index)
	h.writePlan(w, r, p, err)
}

// UpdateStopField godoc
// @Summary      Edit one field of a stop
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        index path int true "Stop position"
// @Param        request body api.UpdateStopFieldRequest true "Field and value"
// @Success      200 {object} types.Plan
// @Router       /collections/{collectionID}/days/{day}/stops/{index} [patch]
func (h *HandlerImpl) UpdateStopField(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "UpdateStopField")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	index, err := api.URLParamInt(r, "index")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	var req api.UpdateStopFieldRequest
	if err = api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.UpdateStopField(ctx, id, day, index, itinerary.StopField(req.Field), req.Value)
	h.writePlan(w, r, p, err)
}

// UpdateTransportation godoc
// @Summary      Edit start, end and transport
// @Description  A blank endLocationOverride keeps the end location equal to the last stop
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        request body api.TransportationRequest true "Transport tab"
// @Success      200 {object} types.Plan
// @Router       /collections/{collectionID}/days/{day}/transportation [put]
func (h *HandlerImpl) UpdateTransportation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "UpdateTransportation")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var req api.TransportationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.UpdateTransportation(ctx, id, day, req.StartLocation, req.EndLocationOverride, req.Transportation)
	h.writePlan(w, r, p, err)
}

// UpdateAccommodation godoc
// @Summary      Set the accommodation
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        request body api.AccommodationRequest true "Accommodation"
// @Success      200 {object} types.Plan
// @Router       /collections/{collectionID}/days/{day}/accommodation [put]
func (h *HandlerImpl) UpdateAccommodation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "UpdateAccommodation")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var req api.AccommodationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.UpdateAccommodation(ctx, id, day, req.Accommodation)
	h.writePlan(w, r, p, err)
}

// UpdateActivities godoc
// @Summary      Replace the activities
// @Description  Activities without a date are dated today
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        request body api.ActivitiesRequest true "Activities"
// @Success      200 {object} types.Plan
// @Failure      422 {object} api.Response "Invalid activity"
// @Router       /collections/{collectionID}/days/{day}/activities [put]
func (h *HandlerImpl) UpdateActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "UpdateActivities")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var req api.ActivitiesRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode activities", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.UpdateActivities(ctx, id, day, req.Activities)
	h.writePlan(w, r, p, err)
}
