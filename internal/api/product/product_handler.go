package product

import (
	"log/slog"
	"net/http"
	"strconv"

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

// SearchProducts godoc
// @Summary      Search travel products
// @Tags         Products
// @Produce      json
// @Param        q    query string  true  "Keywords"
// @Param        page query integer false "Page, starting at 1"
// @Param        sort query string  false "pop, price_asc or price_desc"
// @Success      200 {array} types.Product
// @Failure      422 {object} api.Response "Invalid query"
// @Failure      502 {object} api.Response "Provider failure"
// @Router       /products/search [get]
func (h *HandlerImpl) SearchProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProductHandler").Start(r.Context(), "SearchProducts")
	defer span.End()

	query := r.URL.Query()
	page := 1
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			api.ServiceErrorResponse(w, r, &types.ValidationError{Problems: []string{"page must be an integer"}})
			return
		}
		page = n
	}

	products, err := h.service.Search(ctx, query.Get("q"), page, types.ProductSort(query.Get("sort")))
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, products)
}

// GetProductIdeas godoc
// @Summary      Suggested product keywords
// @Tags         Products
// @Produce      json
// @Success      200 {array} string
// @Router       /products/ideas [get]
func (h *HandlerImpl) GetProductIdeas(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProductHandler").Start(r.Context(), "GetProductIdeas")
	defer span.End()

	api.WriteJSONResponse(w, r, http.StatusOK, h.service.Ideas(ctx))
}
