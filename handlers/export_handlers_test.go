package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"incarts/exports/middleware"
	"incarts/exports/models"
)

type recordedCall struct {
	Where  string
	Params []models.QueryParameter
}

type fakeOutOfStockStore struct {
	calls         []recordedCall
	summary       models.OutOfStockSummary
	daily         []models.DailyOutOfStock
	states        []models.StateOutOfStock
	substitutions []models.SubstitutionDetail
	err           error
}

func (f *fakeOutOfStockStore) record(where string, params []models.QueryParameter) {
	f.calls = append(f.calls, recordedCall{Where: where, Params: params})
}

func (f *fakeOutOfStockStore) GetSummaryMetrics(_ context.Context, where string, params []models.QueryParameter) (models.OutOfStockSummary, error) {
	f.record(where, params)
	return f.summary, f.err
}

func (f *fakeOutOfStockStore) GetOutOfStockByDate(_ context.Context, where string, params []models.QueryParameter) ([]models.DailyOutOfStock, error) {
	f.record(where, params)
	return f.daily, f.err
}

func (f *fakeOutOfStockStore) GetOutOfStockByState(_ context.Context, where string, params []models.QueryParameter) ([]models.StateOutOfStock, error) {
	f.record(where, params)
	return f.states, f.err
}

func (f *fakeOutOfStockStore) GetSubstitutionDetails(_ context.Context, where string, params []models.QueryParameter) ([]models.SubstitutionDetail, error) {
	f.record(where, params)
	return f.substitutions, f.err
}

type fakePageAnalyticsStore struct {
	calls   []recordedCall
	summary models.PageAnalyticsSummary
	clicks  []models.ClickDetail
	err     error
}

func (f *fakePageAnalyticsStore) record(where string, params []models.QueryParameter) {
	f.calls = append(f.calls, recordedCall{Where: where, Params: params})
}

func (f *fakePageAnalyticsStore) GetSummaryMetrics(_ context.Context, where string, params []models.QueryParameter) (models.PageAnalyticsSummary, error) {
	f.record(where, params)
	return f.summary, f.err
}

func (f *fakePageAnalyticsStore) GetDailyBreakdown(_ context.Context, where string, params []models.QueryParameter) ([]models.DailyPageMetrics, error) {
	f.record(where, params)
	return nil, f.err
}

func (f *fakePageAnalyticsStore) GetPagePerformance(_ context.Context, where string, params []models.QueryParameter) ([]models.PagePerformance, error) {
	f.record(where, params)
	return nil, f.err
}

func (f *fakePageAnalyticsStore) GetTrafficSources(_ context.Context, where string, params []models.QueryParameter) ([]models.TrafficSource, error) {
	f.record(where, params)
	return nil, f.err
}

func (f *fakePageAnalyticsStore) GetGeographicData(_ context.Context, where string, params []models.QueryParameter) ([]models.GeoDistribution, error) {
	f.record(where, params)
	return nil, f.err
}

func (f *fakePageAnalyticsStore) GetDeviceBreakdown(_ context.Context, where string, params []models.QueryParameter) ([]models.DeviceMetrics, error) {
	f.record(where, params)
	return nil, f.err
}

func (f *fakePageAnalyticsStore) GetClickDetails(_ context.Context, where string, params []models.QueryParameter) ([]models.ClickDetail, error) {
	f.record(where, params)
	return f.clicks, f.err
}

func newTestRouter(oos OutOfStockStore, pages PageAnalyticsStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestID())
	h := NewExportHandlers(oos, pages)
	r.GET("/api/export/out-of-stock", h.ExportOutOfStock)
	r.GET("/api/export/page-analytics", h.ExportPageAnalytics)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func openResponseWorkbook(t *testing.T, w *httptest.ResponseRecorder) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExportOutOfStock(t *testing.T) {
	t.Run("should return 400 listing exactly the missing parameters", func(t *testing.T) {
		r := newTestRouter(&fakeOutOfStockStore{}, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/out-of-stock?start_date=2025-05-01&project_id=p1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeErrorBody(t, w)
		assert.Equal(t, "Missing required parameters", body["error"])
		assert.Equal(t, []any{"end_date"}, body["missing"])
		assert.NotEmpty(t, body["example"])
	})

	t.Run("should return 400 for malformed dates", func(t *testing.T) {
		r := newTestRouter(&fakeOutOfStockStore{}, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/out-of-stock?start_date=2025-13-01&end_date=2025-05-31&project_id=p1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeErrorBody(t, w)["error"], "Invalid date format")
	})

	t.Run("should return 400 for an inverted range regardless of other parameters", func(t *testing.T) {
		r := newTestRouter(&fakeOutOfStockStore{}, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/out-of-stock?start_date=2025-06-01&end_date=2025-05-01&project_id=p1&link_name=x&slug=y")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "start_date cannot be after end_date", decodeErrorBody(t, w)["error"])
	})

	t.Run("should stream a four-sheet workbook on success", func(t *testing.T) {
		oos := &fakeOutOfStockStore{
			summary: models.OutOfStockSummary{OutOfStockCount: 42, StatesAffected: 5, ZipCodesAffected: 9, ProjectName: "Acme"},
			daily:   []models.DailyOutOfStock{{Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), Count: 3}},
		}
		r := newTestRouter(oos, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/out-of-stock?start_date=2025-05-01&end_date=2025-05-31&project_id=p1")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			w.Header().Get("Content-Type"))
		assert.Equal(t,
			"attachment; filename=out_of_stock_analytics_p1_2025-05-01_to_2025-05-31.xlsx",
			w.Header().Get("Content-Disposition"))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

		f := openResponseWorkbook(t, w)
		assert.Equal(t,
			[]string{"Summary", "Out of Stock by Date", "Out of Stock by State", "Substitution Details"},
			f.GetSheetList())
	})

	t.Run("should share one predicate across all report queries", func(t *testing.T) {
		oos := &fakeOutOfStockStore{}
		r := newTestRouter(oos, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/out-of-stock?start_date=2025-05-01&end_date=2025-05-31&project_id=p1&link_name=hero")

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, oos.calls, 4)
		for _, call := range oos.calls[1:] {
			assert.Equal(t, oos.calls[0].Where, call.Where)
			assert.Equal(t, oos.calls[0].Params, call.Params)
		}
	})

	t.Run("should return mandatory sheets header-only for an unknown project", func(t *testing.T) {
		r := newTestRouter(&fakeOutOfStockStore{}, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/out-of-stock?start_date=2025-01-01&end_date=2025-01-01&project_id=missing-project")

		require.Equal(t, http.StatusOK, w.Code)
		f := openResponseWorkbook(t, w)
		assert.Len(t, f.GetSheetList(), 4)
		v, err := f.GetCellValue("Out of Stock by Date", "A2")
		require.NoError(t, err)
		assert.Empty(t, v)
	})

	t.Run("should return 500 with a JSON body when a query fails", func(t *testing.T) {
		oos := &fakeOutOfStockStore{err: errors.New("warehouse unreachable")}
		r := newTestRouter(oos, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/out-of-stock?start_date=2025-05-01&end_date=2025-05-31&project_id=p1")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, decodeErrorBody(t, w)["error"], "warehouse unreachable")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("should short-circuit preflight with 204", func(t *testing.T) {
		r := newTestRouter(&fakeOutOfStockStore{}, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodOptions, "/api/export/out-of-stock")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})
}

func TestExportPageAnalytics(t *testing.T) {
	t.Run("should require only the date range", func(t *testing.T) {
		r := newTestRouter(&fakeOutOfStockStore{}, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/page-analytics?end_date=2025-01-31")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []any{"start_date"}, decodeErrorBody(t, w)["missing"])
	})

	t.Run("should omit the click sheet when no clicks matched", func(t *testing.T) {
		r := newTestRouter(&fakeOutOfStockStore{}, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/page-analytics?start_date=2025-01-01&end_date=2025-01-31")

		require.Equal(t, http.StatusOK, w.Code)
		f := openResponseWorkbook(t, w)
		assert.NotContains(t, f.GetSheetList(), "Click Details")
		assert.Len(t, f.GetSheetList(), 6)
	})

	t.Run("should include the click sheet when clicks matched", func(t *testing.T) {
		pages := &fakePageAnalyticsStore{
			clicks: []models.ClickDetail{{PageSlug: "landing", DestinationURL: "https://x", EventName: "click", Clicks: 2}},
		}
		r := newTestRouter(&fakeOutOfStockStore{}, pages)

		w := doRequest(t, r, http.MethodGet, "/api/export/page-analytics?start_date=2025-01-01&end_date=2025-01-31")

		require.Equal(t, http.StatusOK, w.Code)
		f := openResponseWorkbook(t, w)
		assert.Contains(t, f.GetSheetList(), "Click Details")
	})

	t.Run("should default the filename project token when none supplied", func(t *testing.T) {
		r := newTestRouter(&fakeOutOfStockStore{}, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/page-analytics?start_date=2025-01-01&end_date=2025-01-31")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t,
			"attachment; filename=page_analytics_all_2025-01-01_to_2025-01-31.xlsx",
			w.Header().Get("Content-Disposition"))
	})

	t.Run("should encode the project id in the filename when supplied", func(t *testing.T) {
		r := newTestRouter(&fakeOutOfStockStore{}, &fakePageAnalyticsStore{})

		w := doRequest(t, r, http.MethodGet, "/api/export/page-analytics?start_date=2025-01-01&end_date=2025-01-31&project_id=p1")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t,
			"attachment; filename=page_analytics_p1_2025-01-01_to_2025-01-31.xlsx",
			w.Header().Get("Content-Disposition"))
	})

	t.Run("should share one predicate across all seven queries", func(t *testing.T) {
		pages := &fakePageAnalyticsStore{}
		r := newTestRouter(&fakeOutOfStockStore{}, pages)

		w := doRequest(t, r, http.MethodGet, "/api/export/page-analytics?start_date=2025-01-01&end_date=2025-01-31&source=google")

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, pages.calls, 7)
		for _, call := range pages.calls[1:] {
			assert.Equal(t, pages.calls[0].Where, call.Where)
			assert.Equal(t, pages.calls[0].Params, call.Params)
		}
	})

	t.Run("should return 500 with a JSON body when a query fails", func(t *testing.T) {
		pages := &fakePageAnalyticsStore{err: errors.New("query exploded")}
		r := newTestRouter(&fakeOutOfStockStore{}, pages)

		w := doRequest(t, r, http.MethodGet, "/api/export/page-analytics?start_date=2025-01-01&end_date=2025-01-31")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, decodeErrorBody(t, w)["error"], "query exploded")
	})
}
