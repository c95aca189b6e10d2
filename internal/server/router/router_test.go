package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pigfarm/internal/repository/memory"
	"github.com/mamadbah2/pigfarm/internal/server/handlers"
	"github.com/mamadbah2/pigfarm/internal/service/activity"
	"github.com/mamadbah2/pigfarm/internal/service/cleanup"
	"github.com/mamadbah2/pigfarm/internal/service/records"
	"github.com/mamadbah2/pigfarm/internal/service/reporting"
	"github.com/mamadbah2/pigfarm/internal/telemetry"
)

type exported struct {
	sheet  string
	header []string
	rows   [][]any
}

func (e *exported) ExportRows(_ context.Context, sheet string, header []string, rows [][]any) (int, error) {
	e.sheet, e.header, e.rows = sheet, header, rows
	return len(rows), nil
}

type api struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T, exporter *exported) *api {
	t.Helper()
	store := memory.New()
	tm := telemetry.New()
	rec := activity.NewWriter(store, nil)

	svc := records.NewService(records.Deps{Store: store, Recorder: rec, Telemetry: tm})
	cln := cleanup.NewService(store, rec, nil, tm, nil)
	_, err := cln.EnsureDefault(context.Background(), 90)
	require.NoError(t, err)

	deps := Deps{
		Records: svc,
		Farm:    handlers.NewFarmHandler(svc, reporting.NewService(store, nil, nil), cln, nil),
		Metrics: tm,
	}
	if exporter != nil {
		deps.Exporter = exporter
	}
	return &api{t: t, engine: New(deps, nil)}
}

func (a *api) do(method, path string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handlers.ActorHeader, "tester")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

func (a *api) create(path string, body any) map[string]any {
	a.t.Helper()
	code, out := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, code, "%v", out)
	return out
}

func errorKind(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	kind, _ := e["kind"].(string)
	return kind
}

const birth = "2023-01-10T00:00:00Z"

func TestHealthz(t *testing.T) {
	code, out := newAPI(t, nil).do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", out["status"])
}

func TestErrorStatusMapping(t *testing.T) {
	a := newAPI(t, nil)
	sow := a.create("/api/v1/sows", map[string]any{"tagNumber": "S-1", "breed": "Landrace", "birthDate": birth})
	boar := a.create("/api/v1/boars", map[string]any{"tagNumber": "B-1", "breed": "Duroc", "birthDate": birth})

	code, out := a.do(http.MethodPost, "/api/v1/sows", map[string]any{"breed": "Landrace"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "validation", errorKind(out))

	code, out = a.do(http.MethodPost, "/api/v1/sows", map[string]any{"tagNumber": "S-1", "breed": "Landrace", "birthDate": birth})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", errorKind(out))

	code, out = a.do(http.MethodPost, "/api/v1/breedings", map[string]any{"sowId": "ghost", "boarId": boar["id"], "breedingDate": birth})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "reference", errorKind(out))

	code, _ = a.do(http.MethodGet, "/api/v1/sows/ghost", nil)
	assert.Equal(t, http.StatusNotFound, code)

	sow["status"] = "LACTATING"
	code, out = a.do(http.MethodPut, "/api/v1/sows/"+sow["id"].(string), sow)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "state", errorKind(out))

	code, out = a.do(http.MethodPost, "/api/v1/sows", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "bad_request", errorKind(out))
}

func TestListParams(t *testing.T) {
	a := newAPI(t, nil)
	for _, tag := range []string{"S-2", "S-1", "S-3"} {
		a.create("/api/v1/sows", map[string]any{"tagNumber": tag, "breed": "Landrace", "birthDate": birth})
	}

	code, out := a.do(http.MethodGet, "/api/v1/sows?sort=-tagNumber&pageSize=2&page=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, out["total"])
	assert.EqualValues(t, 2, out["totalPages"])
	items := out["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "S-3", items[0].(map[string]any)["tagNumber"])

	code, _ = a.do(http.MethodGet, "/api/v1/sows?page=0", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = a.do(http.MethodGet, "/api/v1/sows?pageSize=501", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = a.do(http.MethodGet, "/api/v1/sows?sort=colour", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestFarrowingWithGeneratedPiglets(t *testing.T) {
	a := newAPI(t, nil)
	sow := a.create("/api/v1/sows", map[string]any{"tagNumber": "S-7", "breed": "Landrace", "birthDate": birth, "status": "PREGNANT"})
	boar := a.create("/api/v1/boars", map[string]any{"tagNumber": "B-1", "breed": "Duroc", "birthDate": birth})
	breeding := a.create("/api/v1/breedings", map[string]any{"sowId": sow["id"], "boarId": boar["id"], "breedingDate": "2025-01-01T00:00:00Z"})
	assert.Equal(t, "2025-04-25T00:00:00Z", breeding["expectedFarrowDate"])

	code, out := a.do(http.MethodGet, "/api/v1/breedings/eligible", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["items"], 1)

	payload := map[string]any{
		"sowId":         sow["id"],
		"breedingId":    breeding["id"],
		"farrowingDate": "2025-04-24T00:00:00Z",
		"totalBorn":     9,
		"bornAlive":     8,
	}
	out = a.create("/api/v1/farrowings?generatePiglets=true", payload)
	assert.EqualValues(t, 8, out["pigletsCreated"])
	farrowing := out["farrowing"].(map[string]any)

	code, out = a.do(http.MethodPost, "/api/v1/farrowings", payload)
	assert.Equal(t, http.StatusConflict, code, "%v", out)

	code, out = a.do(http.MethodGet, "/api/v1/piglets?q=S-7-20250424", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 8, out["total"])

	code, out = a.do(http.MethodGet, "/api/v1/sows/"+sow["id"].(string)+"/stats", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 8, out["bornAlive"])

	code, _ = a.do(http.MethodGet, "/api/v1/sows/ghost/stats", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, out = a.do(http.MethodDelete, "/api/v1/farrowings/"+farrowing["id"].(string), nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 9, out["deletedCount"])
}

func TestRetentionAndPurge(t *testing.T) {
	a := newAPI(t, nil)

	code, out := a.do(http.MethodGet, "/api/v1/settings/retention", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 90, out["retentionDays"])

	code, _ = a.do(http.MethodPut, "/api/v1/settings/retention", map[string]any{"retentionDays": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = a.do(http.MethodPut, "/api/v1/settings/retention", map[string]any{"retentionDays": 3651})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = a.do(http.MethodPut, "/api/v1/settings/retention", map[string]any{"retentionDays": 30})
	require.Equal(t, http.StatusOK, code)
	_, out = a.do(http.MethodGet, "/api/v1/settings/retention", nil)
	assert.EqualValues(t, 30, out["retentionDays"])

	code, out = a.do(http.MethodPost, "/api/v1/activity-logs/purge", nil)
	require.Equal(t, http.StatusOK, code, "%v", out)
	assert.EqualValues(t, 30, out["retentionDays"])
	assert.EqualValues(t, 0, out["deletedCount"])

	code, _ = a.do(http.MethodPost, "/api/v1/activity-logs/purge", map[string]any{"retentionDays": -2})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, out = a.do(http.MethodGet, "/api/v1/activity-logs", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["total"], "only the settings update is logged")

	code, out = a.do(http.MethodGet, "/api/v1/activity-logs/stats", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["total"])
}

func TestDashboardAndOccupancy(t *testing.T) {
	a := newAPI(t, nil)
	a.create("/api/v1/pens", map[string]any{"penNumber": "P-1", "penType": "NURSERY", "capacity": 10, "currentCount": 9})

	code, out := a.do(http.MethodGet, "/api/v1/pens/occupancy", nil)
	require.Equal(t, http.StatusOK, code)
	rows := out["items"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "critical", rows[0].(map[string]any)["level"])

	code, out = a.do(http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, out, "herd")
	assert.Contains(t, out, "occupancy")
}

func TestExport(t *testing.T) {
	code, _ := newAPI(t, nil).do(http.MethodPost, "/api/v1/sows/export", nil)
	assert.Equal(t, http.StatusNotImplemented, code)

	sink := &exported{}
	a := newAPI(t, sink)
	for _, tag := range []string{"S-2", "S-1"} {
		a.create("/api/v1/sows", map[string]any{"tagNumber": tag, "breed": "Landrace", "birthDate": birth})
	}

	code, out := a.do(http.MethodPost, "/api/v1/sows/export?sort=tagNumber", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "sows", out["sheet"])
	assert.EqualValues(t, 2, out["exportedRows"])
	assert.Equal(t, "sows", sink.sheet)
	require.Len(t, sink.rows, 2)
	assert.Equal(t, "S-1", sink.rows[0][0])
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t, nil)
	a.do(http.MethodGet, "/healthz", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pigfarm_http_request_duration_seconds")
}
