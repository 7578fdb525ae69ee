package weather

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

type HandlerImpl struct {
	logger      *slog.Logger
	service     Service
	collections collection.Service
}

func NewHandlerImpl(service Service, collections collection.Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:      logger,
		service:     service,
		collections: collections,
	}
}

// GetForecast godoc
// @Summary      Forecast for a date range
// @Description  Up to five daily entries for Khon Kaen, labelled from the start date
// @Tags         Weather
// @Produce      json
// @Param        start query string true "Start date (YYYY-MM-DD)"
// @Param        end   query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} types.ForecastResult
// @Failure      422 {object} api.Response "Invalid dates"
// @Router       /weather [get]
func (h *HandlerImpl) GetForecast(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("WeatherHandler").Start(r.Context(), "GetForecast")
	defer span.End()

	start, errStart := types.ParseDate(r.URL.Query().Get("start"))
	end, errEnd := types.ParseDate(r.URL.Query().Get("end"))
	if errStart != nil || errEnd != nil || end.Before(start.Time) {
		api.ServiceErrorResponse(w, r, &types.ValidationError{Problems: []string{"start and end must be dates with start <= end"}})
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.service.Forecast(ctx, start, end))
}

// RefreshForecast godoc
// @Summary      Refresh a trip's forecast
// @Tags         Weather
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Success      200 {object} types.Collection
// @Failure      404 {object} api.Response "Not found"
// @Router       /collections/{collectionID}/weather [post]
func (h *HandlerImpl) RefreshForecast(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("WeatherHandler").Start(r.Context(), "RefreshForecast")
	defer span.End()

	id, err := api.URLParamUUID(r, "collectionID")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	c, err := Refresh(ctx, h.service, h.collections, id)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to refresh forecast", slog.Any("error", err))
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, c)
}

// GetDayWeather godoc
// @Summary      Weather for one trip day
// @Tags         Weather
// @Produce      json
// @Param        collectionID path string true "Collection ID"
// @Param        day path int true "Day number"
// @Success      200 {object} types.WeatherSnapshot
// @Failure      404 {object} api.Response "No forecast for that day"
// @Router       /collections/{collectionID}/days/{day}/weather [get]
func (h *HandlerImpl) GetDayWeather(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("WeatherHandler").Start(r.Context(), "GetDayWeather")
	defer span.End()

	id, err := api.URLParamUUID(r, "collectionID")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	day, err := api.URLParamInt(r, "day")
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	span.SetAttributes(attribute.Int("day", day))

	c, err := h.collections.Get(ctx, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	snap, ok := WeatherFor(c, day)
	if !ok {
		span.AddEvent("no forecast for day", trace.WithAttributes(attribute.Int("day", day)))
		api.ErrorResponse(w, r, http.StatusNotFound, "no forecast for this day")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, snap)
}
