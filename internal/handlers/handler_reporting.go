package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
)

// reportingHandler handles read-only budget report requests.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers the reporting routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/budget", h.budgetReport)
		reports.GET("/envelope/:name", h.envelopeReport)
	}
}

// budgetReport returns the structured report, plus a rendered text block
// when ?format=text is requested.
func (h *reportingHandler) budgetReport(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	report, err := h.reportingService.BudgetReport(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondServiceError(c, err, "Failed to build budget report")
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, h.reportingService.FormatBudgetReport(report))
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) envelopeReport(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	report, err := h.reportingService.EnvelopeReport(c.Request.Context(), c.Param("name"), userID, time.Now())
	if err != nil {
		respondServiceError(c, err, "Failed to build envelope report")
		return
	}

	c.JSON(http.StatusOK, report)
}
