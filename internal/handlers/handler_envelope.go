package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
)

// envelopeHandler handles HTTP requests related to envelopes.
type envelopeHandler struct {
	envelopeService portssvc.EnvelopeSvcFacade
}

func newEnvelopeHandler(es portssvc.EnvelopeSvcFacade) *envelopeHandler {
	return &envelopeHandler{envelopeService: es}
}

// registerEnvelopeRoutes registers routes related to envelopes.
func registerEnvelopeRoutes(rg *gin.RouterGroup, envelopeService portssvc.EnvelopeSvcFacade) {
	h := newEnvelopeHandler(envelopeService)

	envelopes := rg.Group("/envelopes")
	{
		envelopes.POST("", h.createEnvelope)
		envelopes.GET("", h.listEnvelopes)
		envelopes.GET("/categories", h.listCategories)
		envelopes.GET("/:id", h.getEnvelope)
		envelopes.PUT("/:id", h.updateEnvelope)
		envelopes.DELETE("", h.deleteEnvelope)
	}
}

func (h *envelopeHandler) createEnvelope(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEnvelopeRequest
	if !bindJSON(c, &req) {
		return
	}

	logger.Info("Received request to create envelope", slog.String("envelope_name", req.Name))

	env, err := h.envelopeService.CreateOrReenableEnvelope(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create envelope")
		return
	}

	logger.Info("Envelope created", slog.Int64("envelope_id", env.ID))
	c.JSON(http.StatusCreated, dto.ToEnvelopeResponse(env))
}

func (h *envelopeHandler) getEnvelope(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid envelope ID"})
		return
	}

	env, err := h.envelopeService.GetEnvelopeByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch envelope")
		return
	}

	c.JSON(http.StatusOK, dto.ToEnvelopeResponse(env))
}

func (h *envelopeHandler) listEnvelopes(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	envelopes, err := h.envelopeService.ListEnvelopes(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list envelopes")
		return
	}

	c.JSON(http.StatusOK, dto.ToListEnvelopeResponse(envelopes))
}

func (h *envelopeHandler) listCategories(c *gin.Context) {
	categories, err := h.envelopeService.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *envelopeHandler) updateEnvelope(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid envelope ID"})
		return
	}

	var req dto.UpdateEnvelopeRequest
	if !bindJSON(c, &req) {
		return
	}

	env, err := h.envelopeService.UpdateEnvelope(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update envelope")
		return
	}

	logger.Info("Envelope updated", slog.Int64("envelope_id", env.ID))
	c.JSON(http.StatusOK, dto.ToEnvelopeResponse(env))
}

// deleteEnvelope soft-deletes the envelope named in the query string. The
// envelope is addressed by name, matching how users refer to envelopes in
// every other write operation.
func (h *envelopeHandler) deleteEnvelope(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name query parameter required"})
		return
	}

	deleted, err := h.envelopeService.DeleteEnvelope(c.Request.Context(), name, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to delete envelope")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no deletable envelope named " + name})
		return
	}

	logger.Info("Envelope deleted", slog.String("envelope_name", name))
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}
