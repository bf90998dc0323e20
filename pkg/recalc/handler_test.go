package recalc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/hourglass-hq/hourglass/internal/utils"
	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(f *fixture, clock utils.Clock) *mux.Router {
	handler := NewHandler(f.engine, rate.NewResolver(f.store), clock)
	r := mux.NewRouter()
	r.HandleFunc("/api/rates/resolve", handler.ResolvePreview).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/rates/recalculate", handler.RecalculateProject).Methods("POST")
	return r
}

func TestRecalculateProjectEndpoint(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, &utils.MockClock{})
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	f.addEntry(t, staleEntry(day))

	req := httptest.NewRequest("POST", "/api/project/1/rates/recalculate?dryRun=true", nil)
	req = req.WithContext(testCtx())
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var result Result
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&result))
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.TotalEntries)
	assert.Equal(t, 1, result.WouldChange)
}

func TestRecalculateProjectEndpointRejectsBadDryRun(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, &utils.MockClock{})

	req := httptest.NewRequest("POST", "/api/project/1/rates/recalculate?dryRun=maybe", nil)
	req = req.WithContext(testCtx())
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRecalculateUnknownProjectReturns404(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, &utils.MockClock{})

	req := httptest.NewRequest("POST", "/api/project/999/rates/recalculate", nil)
	req = req.WithContext(testCtx())
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestResolvePreviewUsesClockWhenDateOmitted(t *testing.T) {
	f := newFixture(t)
	// The schedule only applies from March; the clock's "today" is in April.
	f.store.SchedulesByPerson[10] = []rate.Override{
		{Id: 1, SubjectKind: rate.SubjectPerson, SubjectId: 10, BillingRate: rateOf("150"),
			EffectiveStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}
	clock := &utils.MockClock{FixedNow: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)}
	router := newTestRouter(f, clock)

	req := httptest.NewRequest("GET", "/api/rates/resolve?subjectKind=person&personId=10", nil)
	req = req.WithContext(testCtx())
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var dto struct {
		BillingRate       *string `json:"billingRate"`
		BillingRateSource string  `json:"billingRateSource"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&dto))
	require.NotNil(t, dto.BillingRate)
	assert.Equal(t, "150", *dto.BillingRate)
	assert.Equal(t, string(rate.TierPersonSchedule), dto.BillingRateSource)
}

func TestResolvePreviewRejectsUnknownSubjectKind(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, &utils.MockClock{})

	req := httptest.NewRequest("GET", "/api/rates/resolve?subjectKind=team", nil)
	req = req.WithContext(testCtx())
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
