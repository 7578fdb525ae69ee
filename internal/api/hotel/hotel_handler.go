package hotel

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

// SearchHotels godoc
// @Summary      Search hotel destinations
// @Tags         Hotels
// @Produce      json
// @Param        q query string true "Search text, e.g. khon kaen hotel"
// @Success      200 {array} types.HotelDestination
// @Failure      502 {object} api.Response "Provider failure"
// @Router       /hotels/search [get]
func (h *HandlerImpl) SearchHotels(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HotelHandler").Start(r.Context(), "SearchHotels")
	defer span.End()

	found, err := h.service.SearchDestinations(ctx, r.URL.Query().Get("q"))
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, found)
}

// GetHotelSummary godoc
// @Summary      Hotel summary
// @Description  Name, address, top facilities, first room and nightly price. Falls back to manual entry when the hotel cannot be loaded.
// @Tags         Hotels
// @Produce      json
// @Param        hotelID  path  string  true  "Hotel ID"
// @Param        checkin  query string  false "YYYY-MM-DD"
// @Param        checkout query string  false "YYYY-MM-DD"
// @Param        adults   query integer false "Adults"
// @Success      200 {object} types.HotelSummary
// @Router       /hotels/{hotelID} [get]
func (h *HandlerImpl) GetHotelSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HotelHandler").Start(r.Context(), "GetHotelSummary")
	defer span.End()

	q := types.HotelQuery{ID: chi.URLParam(r, "hotelID")}
	var problems []string
	query := r.URL.Query()
	if raw := query.Get("checkin"); raw != "" {
		d, err := types.ParseDate(raw)
		if err != nil {
			problems = append(problems, "checkin must be YYYY-MM-DD")
		}
		q.CheckIn = d
	}
	if raw := query.Get("checkout"); raw != "" {
		d, err := types.ParseDate(raw)
		if err != nil {
			problems = append(problems, "checkout must be YYYY-MM-DD")
		}
		q.CheckOut = d
	}
	if raw := query.Get("adults"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, "adults must be an integer")
		}
		q.Adults = n
	}
	if len(problems) > 0 {
		api.ServiceErrorResponse(w, r, &types.ValidationError{Problems: problems})
		return
	}

	sum, err := h.service.Summary(ctx, q)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, sum)
}
