package plan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

func newPlanRouter(h *HandlerImpl) http.Handler {
	r := chi.NewRouter()
	r.Route("/collections/{collectionID}/days/{day}", func(r chi.Router) {
		r.Get("/", h.GetDay)
		r.Post("/stops", h.AddStop)
		r.Put("/stops", h.ReplaceStops)
		r.Delete("/stops/{index}", h.RemoveStop)
		r.Patch("/stops/{index}", h.UpdateStopField)
		r.Put("/transportation", h.UpdateTransportation)
		r.Put("/accommodation", h.UpdateAccommodation)
		r.Put("/activities", h.UpdateActivities)
	})
	return r
}

func TestHandlerImpl_DayEditing(t *testing.T) {
	svc, _, _, id := setupPlanTest(t)
	router := newPlanRouter(NewHandlerImpl(svc, testLogger()))
	base := "/collections/" + id.String() + "/days/1"

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, base+"/stops", `{"name":"Wat Nong Wang","timeStart":"09:00","timeEnd":"10:00"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var p types.Plan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, "Wat Nong Wang", p.EndLocation)

	rr = do(http.MethodPatch, base+"/stops/0", `{"field":"timeEnd","value":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(http.MethodDelete, base+"/stops/5", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(http.MethodPut, base+"/transportation", `{"startLocation":"Bus Terminal 3","transportation":"Songthaew"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(http.MethodGet, base+"/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var view types.DayView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, types.PlanPartial, view.Status)
	assert.Equal(t, "Bus Terminal 3", view.Plan.StartLocation)
	assert.Equal(t, []string{"1 hour"}, view.StopDurations)

	rr = do(http.MethodGet, "/collections/"+id.String()+"/days/abc/", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(http.MethodPut, base+"/activities", `{"activities":[{"title":"x","cost":-5}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(http.MethodPut, base+"/accommodation", `{"bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
