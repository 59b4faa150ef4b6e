package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"incarts/exports/models"
	"incarts/exports/report"
	"incarts/exports/store"
	"incarts/exports/utils"
)

const workbookMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportTimeout bounds the whole query-and-render span of one request.
const exportTimeout = 60 * time.Second

const (
	outOfStockExample    = "/api/export/out-of-stock?start_date=2025-05-01&end_date=2025-05-31&project_id=your-project-id"
	pageAnalyticsExample = "/api/export/page-analytics?start_date=2025-01-01&end_date=2025-12-31"
)

// OutOfStockStore is the query set behind the out-of-stock report.
type OutOfStockStore interface {
	GetSummaryMetrics(ctx context.Context, where string, params []models.QueryParameter) (models.OutOfStockSummary, error)
	GetOutOfStockByDate(ctx context.Context, where string, params []models.QueryParameter) ([]models.DailyOutOfStock, error)
	GetOutOfStockByState(ctx context.Context, where string, params []models.QueryParameter) ([]models.StateOutOfStock, error)
	GetSubstitutionDetails(ctx context.Context, where string, params []models.QueryParameter) ([]models.SubstitutionDetail, error)
}

// PageAnalyticsStore is the query set behind the page-analytics report.
type PageAnalyticsStore interface {
	GetSummaryMetrics(ctx context.Context, where string, params []models.QueryParameter) (models.PageAnalyticsSummary, error)
	GetDailyBreakdown(ctx context.Context, where string, params []models.QueryParameter) ([]models.DailyPageMetrics, error)
	GetPagePerformance(ctx context.Context, where string, params []models.QueryParameter) ([]models.PagePerformance, error)
	GetTrafficSources(ctx context.Context, where string, params []models.QueryParameter) ([]models.TrafficSource, error)
	GetGeographicData(ctx context.Context, where string, params []models.QueryParameter) ([]models.GeoDistribution, error)
	GetDeviceBreakdown(ctx context.Context, where string, params []models.QueryParameter) ([]models.DeviceMetrics, error)
	GetClickDetails(ctx context.Context, where string, params []models.QueryParameter) ([]models.ClickDetail, error)
}

type ExportHandlers struct {
	OutOfStock OutOfStockStore
	Pages      PageAnalyticsStore
}

func NewExportHandlers(outOfStock OutOfStockStore, pages PageAnalyticsStore) *ExportHandlers {
	return &ExportHandlers{
		OutOfStock: outOfStock,
		Pages:      pages,
	}
}

// ExportOutOfStock handles GET /api/export/out-of-stock. Validation, the
// four report queries, and the workbook render all run sequentially; any
// failure aborts the request with a JSON error and no partial file.
func (h *ExportHandlers) ExportOutOfStock(c *gin.Context) {
	filter, err := models.NewOutOfStockFilter(
		c.Query("start_date"),
		c.Query("end_date"),
		c.Query("project_id"),
		c.Query("link_name"),
		c.Query("slug"),
	)
	if err != nil {
		respondValidationError(c, err, outOfStockExample)
		return
	}

	where, params := store.BuildOutOfStockFilters(filter)

	ctx, cancel := context.WithTimeout(c.Request.Context(), exportTimeout)
	defer cancel()

	summary, err := h.OutOfStock.GetSummaryMetrics(ctx, where, params)
	if err != nil {
		respondQueryError(c, "out-of-stock summary", err)
		return
	}
	daily, err := h.OutOfStock.GetOutOfStockByDate(ctx, where, params)
	if err != nil {
		respondQueryError(c, "out-of-stock by date", err)
		return
	}
	states, err := h.OutOfStock.GetOutOfStockByState(ctx, where, params)
	if err != nil {
		respondQueryError(c, "out-of-stock by state", err)
		return
	}
	substitutions, err := h.OutOfStock.GetSubstitutionDetails(ctx, where, params)
	if err != nil {
		respondQueryError(c, "substitution details", err)
		return
	}

	buf, err := report.BuildOutOfStock(filter, summary, daily, states, substitutions)
	if err != nil {
		respondRenderError(c, "out-of-stock", err)
		return
	}

	respondWorkbook(c, "out_of_stock_analytics", filter.ProjectID, filter.StartDate, filter.EndDate, buf.Bytes())
}

// ExportPageAnalytics handles GET /api/export/page-analytics.
func (h *ExportHandlers) ExportPageAnalytics(c *gin.Context) {
	filter, err := models.NewPageAnalyticsFilter(
		c.Query("start_date"),
		c.Query("end_date"),
		c.Query("project_id"),
		c.Query("page_slug"),
		c.Query("source"),
		c.Query("medium"),
	)
	if err != nil {
		respondValidationError(c, err, pageAnalyticsExample)
		return
	}

	where, params := store.BuildPageAnalyticsFilters(filter)

	ctx, cancel := context.WithTimeout(c.Request.Context(), exportTimeout)
	defer cancel()

	var data report.PageAnalyticsData
	data.Summary, err = h.Pages.GetSummaryMetrics(ctx, where, params)
	if err != nil {
		respondQueryError(c, "page analytics summary", err)
		return
	}
	data.Daily, err = h.Pages.GetDailyBreakdown(ctx, where, params)
	if err != nil {
		respondQueryError(c, "daily breakdown", err)
		return
	}
	data.Pages, err = h.Pages.GetPagePerformance(ctx, where, params)
	if err != nil {
		respondQueryError(c, "page performance", err)
		return
	}
	data.Traffic, err = h.Pages.GetTrafficSources(ctx, where, params)
	if err != nil {
		respondQueryError(c, "traffic sources", err)
		return
	}
	data.Geographic, err = h.Pages.GetGeographicData(ctx, where, params)
	if err != nil {
		respondQueryError(c, "geographic distribution", err)
		return
	}
	data.Devices, err = h.Pages.GetDeviceBreakdown(ctx, where, params)
	if err != nil {
		respondQueryError(c, "device breakdown", err)
		return
	}
	data.ClickDetail, err = h.Pages.GetClickDetails(ctx, where, params)
	if err != nil {
		respondQueryError(c, "click details", err)
		return
	}

	buf, err := report.BuildPageAnalytics(filter, data)
	if err != nil {
		respondRenderError(c, "page-analytics", err)
		return
	}

	projectToken := filter.ProjectID
	if projectToken == "" {
		projectToken = "all"
	}
	respondWorkbook(c, "page_analytics", projectToken, filter.StartDate, filter.EndDate, buf.Bytes())
}

func respondWorkbook(c *gin.Context, reportName, projectToken string, start, end time.Time, body []byte) {
	filename := fmt.Sprintf("%s_%s_%s_to_%s.xlsx",
		reportName,
		utils.SanitizeFilenameToken(projectToken),
		start.Format(models.DateFormat),
		end.Format(models.DateFormat),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, workbookMIMEType, body)
}

func respondValidationError(c *gin.Context, err error, example string) {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		log.Printf("Unexpected validation failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(verr.Missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required parameters",
			"missing": verr.Missing,
			"example": example,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": verr.Detail})
}

func respondQueryError(c *gin.Context, query string, err error) {
	qerr := &models.QueryError{Query: query, Err: err}
	log.Printf("Export query failed: %v", qerr)
	c.JSON(http.StatusInternalServerError, gin.H{"error": qerr.Error()})
}

func respondRenderError(c *gin.Context, reportName string, err error) {
	rerr := &models.RenderError{Report: reportName, Err: err}
	log.Printf("Export render failed: %v", rerr)
	c.JSON(http.StatusInternalServerError, gin.H{"error": rerr.Error()})
}
