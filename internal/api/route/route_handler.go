package route

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api"
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

// SetStartLocation godoc
// @Summary      Set the start location
// @Description  Free text. Accommodation-like text is cleared when the plan is saved.
// @Tags         Routes
// @Accept       json
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        request body api.StartLocationRequest true "Start location"
// @Success      200 {object} types.Plan
// @Failure      404 {object} api.Response "Day not found"
// @Router       /collections/{collectionID}/days/{day}/start [put]
func (h *HandlerImpl) SetStartLocation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RouteHandler").Start(r.Context(), "SetStartLocation")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var req api.StartLocationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.SetStartLocation(ctx, id, day, req.Location)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// SetStartFromCoordinates godoc
// @Summary      Start from the current position
// @Description  Reverse geocodes the coordinates. On provider failure the start location is unchanged.
// @Tags         Routes
// @Accept       json
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        request body api.CoordinatesRequest true "Current position"
// @Success      200 {object} types.Plan
// @Failure      502 {object} api.Response "Geocoding failed"
// @Router       /collections/{collectionID}/days/{day}/start/current [post]
func (h *HandlerImpl) SetStartFromCoordinates(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RouteHandler").Start(r.Context(), "SetStartFromCoordinates")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var req api.CoordinatesRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.SetStartFromCoordinates(ctx, id, day, types.LatLng{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// GetRoute godoc
// @Summary      Compute the day's route
// @Description  Legs from the start location through every named stop. Failed legs are reported as warnings.
// @Tags         Routes
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Success      200 {object} types.RouteResult
// @Router       /collections/{collectionID}/days/{day}/route [get]
func (h *HandlerImpl) GetRoute(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RouteHandler").Start(r.Context(), "GetRoute")
	defer span.End()

	id, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	res, err := h.service.RecomputeRouteSegments(ctx, id, day)
	if err != nil {
		h.logger.WarnContext(ctx, "Route computation failed", slog.Any("error", err))
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, res)
}

// DisplaySegment godoc
// @Summary      Focus one route segment
// @Tags         Routes
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Param        index path int true "Segment index"
// @Success      200 {object} types.RouteSegment
// @Failure      404 {object} api.Response "No such segment"
// @Router       /collections/{collectionID}/days/{day}/route/{index} [get]
func (h *HandlerImpl) DisplaySegment(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RouteHandler").Start(r.Context(), "DisplaySegment")
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
	seg, err := h.service.DisplaySegment(ctx, id, day, index)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, seg)
}
