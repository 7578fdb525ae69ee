package places

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
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

// SearchPlaces godoc
// @Summary      Search places
// @Description  Autocomplete suggestions within 50 km of Khon Kaen. Provider outages return an empty list with a notice.
// @Tags         Places
// @Produce      json
// @Param        q query string true "Search text"
// @Success      200 {object} types.PlaceSearchResult
// @Router       /places/search [get]
func (h *HandlerImpl) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "SearchPlaces")
	defer span.End()

	res, err := h.service.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, res)
}

// GetPlaceDetails godoc
// @Summary      Place details
// @Tags         Places
// @Produce      json
// @Param        placeID path string true "Provider place id"
// @Success      200 {object} types.PlaceDetails
// @Failure      404 {object} api.Response "Unknown place"
// @Router       /places/{placeID} [get]
func (h *HandlerImpl) GetPlaceDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "GetPlaceDetails")
	defer span.End()

	d, err := h.service.Details(ctx, chi.URLParam(r, "placeID"))
	if err != nil {
		h.logger.WarnContext(ctx, "Place details failed", slog.Any("error", err))
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, d)
}

// Nearby godoc
// @Summary      Nearby attractions or restaurants
// @Description  Sorted by straight-line distance from the given position
// @Tags         Places
// @Produce      json
// @Param        kind   query string  true  "tourist_attraction or restaurant"
// @Param        lat    query number  true  "Latitude"
// @Param        lng    query number  true  "Longitude"
// @Param        radius query integer false "Radius in meters"
// @Success      200 {object} types.NearbyResult
// @Failure      422 {object} api.Response "Invalid parameters"
// @Router       /places/nearby [get]
func (h *HandlerImpl) Nearby(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Nearby")
	defer span.End()

	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		api.ServiceErrorResponse(w, r, &types.ValidationError{Problems: []string{"lat and lng must be numbers"}})
		return
	}
	radius := 0
	if raw := q.Get("radius"); raw != "" {
		var err error
		if radius, err = strconv.Atoi(raw); err != nil {
			api.ServiceErrorResponse(w, r, &types.ValidationError{Problems: []string{"radius must be an integer"}})
			return
		}
	}

	res, err := h.service.Nearby(ctx, types.NearbyKind(q.Get("kind")), types.LatLng{Lat: lat, Lng: lng}, radius)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, res)
}
