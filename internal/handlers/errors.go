package handlers

import (
	"context"
	"errors"
	"net/http"

	"reflow_predictor/internal/predictor"
	"reflow_predictor/internal/service"
	"reflow_predictor/internal/wizard"

	"github.com/gin-gonic/gin"
)

const (
	errStartSession     = "failed to start wizard session"
	errSessionNotFound  = "wizard session not found"
	errWindowNotOpen    = "window is not open"
	errSubmitInFlight   = "a prediction is already in progress"
	errWindowClosed     = "window was closed before the prediction arrived"
	errFetchPredictions = "Error fetching predictions. Please try again."
	errMissingData      = "prediction could not be displayed"
	errInvalidBodyPref  = "invalid body: "
	errInternal         = "internal error"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// wizardError maps wizard and predictor failures to HTTP responses. Every
// failure is terminal to the request only; the session stays usable.
func (h *Handler) wizardError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	var (
		verr *wizard.ValidationError
		merr *wizard.MissingDataError
		nerr *predictor.NetworkError
		derr *predictor.DecodeError
	)
	switch {
	case errors.As(err, &verr):
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"field", verr.Field, "err", err}, kv...)...)
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": verr.Message,
			"field": verr.Field,
			"label": verr.Label,
		})
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, wizard.ErrClosed):
		h.logRefused(logKey, err, kv)
		c.JSON(http.StatusNotFound, gin.H{"error": errSessionNotFound})
	case errors.Is(err, wizard.ErrSubmitInFlight):
		h.logRefused(logKey, err, kv)
		c.JSON(http.StatusConflict, gin.H{"error": errSubmitInFlight})
	case errors.Is(err, wizard.ErrWindowNotOpen):
		h.logRefused(logKey, err, kv)
		c.JSON(http.StatusConflict, gin.H{"error": errWindowNotOpen})
	case errors.Is(err, wizard.ErrWindowClosed):
		h.logRefused(logKey, err, kv)
		c.JSON(http.StatusConflict, gin.H{"error": errWindowClosed})
	case errors.As(err, &merr):
		h.logAndJSONError(c, http.StatusConflict, errMissingData, logKey, err, kv...)
	case errors.As(err, &nerr):
		h.logAndJSONError(c, http.StatusBadGateway, errFetchPredictions, logKey, err, kv...)
	case errors.As(err, &derr):
		h.logAndJSONError(c, http.StatusBadGateway, errFetchPredictions, logKey, err, kv...)
	case errors.Is(err, context.Canceled):
		// client went away
		h.logRefused(logKey, err, kv)
		c.Status(499)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, kv...)
	}
}

// logRefused records a request the wizard turned down without failing.
func (h *Handler) logRefused(logKey string, err error, kv []interface{}) {
	if h.log != nil {
		h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
	}
}
