package collection

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

func setupHandlerTest() (*chi.Mux, *ServiceImpl) {
	service, _ := setupServiceTest(nil)
	h := NewHandlerImpl(service, testLogger())
	r := chi.NewRouter()
	r.Post("/collections", h.CreateCollection)
	r.Get("/collections", h.ListCollections)
	r.Get("/collections/{collectionID}", h.GetCollection)
	r.Put("/collections/{collectionID}", h.SaveCollection)
	r.Delete("/collections/{collectionID}", h.DeleteCollection)
	r.Post("/collections/{collectionID}/days", h.AddNewDay)
	r.Get("/collections/{collectionID}/budget", h.GetBudget)
	return r, service
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandler_CollectionLifecycle(t *testing.T) {
	router, _ := setupHandlerTest()

	rr := doJSON(t, router, http.MethodPost, "/collections", map[string]any{
		"name":      "Couple getaway",
		"category":  "couple",
		"startDate": "2025-06-01",
		"endDate":   "2025-06-03",
		"budget":    12000,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created types.CreateCollectionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	id := created.Collection.ID.String()

	rr = doJSON(t, router, http.MethodPost, "/collections/"+id+"/days", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var plan types.Plan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plan))
	assert.Equal(t, 2, plan.Day)

	rr = doJSON(t, router, http.MethodGet, "/collections/"+id+"/budget", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary types.BudgetSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, types.WithinBudget, summary.Status)
	assert.Equal(t, 12000.0, summary.Remaining)

	rr = doJSON(t, router, http.MethodGet, "/collections", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []types.CollectionSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Days)

	rr = doJSON(t, router, http.MethodDelete, "/collections/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/collections/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_CreateValidation(t *testing.T) {
	router, _ := setupHandlerTest()

	rr := doJSON(t, router, http.MethodPost, "/collections", map[string]any{
		"name":      "Too long",
		"category":  "solo",
		"startDate": "2025-06-01",
		"endDate":   "2025-06-20",
		"budget":    100,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "longer than 7 days")

	rr = doJSON(t, router, http.MethodPost, "/collections", map[string]any{
		"name":      "Bad date",
		"category":  "solo",
		"startDate": "01/06/2025",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_SaveConflict(t *testing.T) {
	router, service := setupHandlerTest()
	resp, err := service.Create(t.Context(), validRequest())
	require.NoError(t, err)
	c := *resp.Collection
	c.Revision = 99

	rr := doJSON(t, router, http.MethodPut, "/collections/"+c.ID.String(), c)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = doJSON(t, router, http.MethodPut, "/collections/"+uuid.NewString(), c)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/collections/not-a-uuid", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
