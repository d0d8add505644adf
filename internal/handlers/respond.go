package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondServiceError maps service-layer errors to HTTP responses and logs
// them on the request-scoped logger. fallback is the message written for
// unrecognized errors.
func respondServiceError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var appErr *apperrors.AppError
	var insufficient *apperrors.InsufficientFundsError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.As(err, &insufficient):
		logger.Warn("Insufficient funds", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		logger.Warn("Insufficient funds", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidAmount):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.As(err, &appErr):
		logger.Error("Service error", slog.Int("code", appErr.Code), slog.String("error", appErr.Error()))
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}

// bindJSON binds the request body into req, writing a 400 on failure.
// Returns false when the request has already been answered.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind JSON", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindErrorMessage(err)})
		return false
	}
	return true
}

// bindErrorMessage renders validator field errors per field, and falls back
// to the raw binding error otherwise.
func bindErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "Invalid request format: " + err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()))
	}
	return "Invalid request: " + strings.Join(parts, "; ")
}

// actingUser fetches the user stored by RequireUser, writing a 401 when the
// context has none. Returns ok=false when the request has been answered.
func actingUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Acting user not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}
