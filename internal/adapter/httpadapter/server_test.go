package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotv/coordinate-validator/internal/adapter/httpadapter"
	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/report"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockReports struct {
	rep report.Report
	ok  bool
}

func (m *mockReports) LastReport() (report.Report, bool) { return m.rep, m.ok }

func newTestServer(readyErr error, reports *mockReports) *httpadapter.Server {
	if reports == nil {
		reports = &mockReports{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, reports, logger)
}

func serve(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(t, newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(t, newTestServer(nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzNotOKBeforeFirstRun(t *testing.T) {
	rec := serve(t, newTestServer(errors.New("no validation run has completed yet"), nil), "/readyz")
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, newTestServer(nil, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSummaryReturns404WithoutReport(t *testing.T) {
	rec := serve(t, newTestServer(nil, nil), "/summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummaryReturnsCountsAndFlaggedRows(t *testing.T) {
	rep := report.Report{
		RunID: "run-1",
		Rows: []report.Row{
			{Name: "Boston Store", Latitude: "41.2630", Longitude: "-81.5599", Status: domain.StatusOK},
			{Name: "Hale Farm", Status: domain.StatusMissing, Issues: []string{"No coordinates"}},
		},
		Summary: report.Summary{Total: 2, OK: 1, Missing: 1},
	}
	rec := serve(t, newTestServer(nil, &mockReports{rep: rep, ok: true}), "/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		RunID   string         `json:"run_id"`
		Summary report.Summary `json:"summary"`
		Flagged []report.Row   `json:"flagged"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, rep.Summary, body.Summary)
	require.Len(t, body.Flagged, 1)
	assert.Equal(t, "Hale Farm", body.Flagged[0].Name)
}
