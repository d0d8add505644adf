package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
)

// rolloverHandler handles HTTP requests for the month-boundary update.
type rolloverHandler struct {
	rolloverService portssvc.RolloverSvcFacade
}

func newRolloverHandler(rs portssvc.RolloverSvcFacade) *rolloverHandler {
	return &rolloverHandler{rolloverService: rs}
}

// registerRolloverRoutes registers routes for the monthly update.
func registerRolloverRoutes(rg *gin.RouterGroup, rolloverService portssvc.RolloverSvcFacade) {
	h := newRolloverHandler(rolloverService)

	rollover := rg.Group("/rollover")
	{
		rollover.GET("/status", h.status)
		rollover.POST("/run", h.run)
	}
}

func (h *rolloverHandler) status(c *gin.Context) {
	now := time.Now()

	needed, err := h.rolloverService.IsRolloverNeeded(c.Request.Context(), now)
	if err != nil {
		respondServiceError(c, err, "Failed to check rollover status")
		return
	}

	lastRun, err := h.rolloverService.LastRolloverDate(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to read last rollover date")
		return
	}

	c.JSON(http.StatusOK, dto.RolloverStatusResponse{
		Needed:      needed,
		LastRunDate: lastRun,
		CheckedAt:   now,
	})
}

// run triggers the monthly update. A same-month call, including losing a
// concurrent race, answers 200 with processed=false.
func (h *rolloverHandler) run(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	result, err := h.rolloverService.ProcessMonthlyUpdate(c.Request.Context(), time.Now())
	if err != nil {
		respondServiceError(c, err, "Failed to process monthly update")
		return
	}

	if result == nil {
		logger.Info("Monthly update already processed this month")
		c.JSON(http.StatusOK, dto.ToMonthlyUpdateResponse(nil, ""))
		return
	}

	summary := h.rolloverService.FormatRolloverSummary(result)
	logger.Info("Monthly update processed",
		slog.Int("envelopes", result.TotalEnvelopesProcessed),
		slog.Int("rollover_count", result.RolloverCount),
		slog.Int("reset_count", result.ResetCount))
	c.JSON(http.StatusOK, dto.ToMonthlyUpdateResponse(result, summary))
}
