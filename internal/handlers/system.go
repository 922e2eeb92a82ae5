package handlers

import (
	"errors"
	"net/http"

	"reflow_predictor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errGetStatus       = "failed to load backend status"
	errOpenSpreadsheet = "failed to open spreadsheet"
	statusOpened       = "opened"
)

// @Summary      Predictor backend status
// @Tags         system
// @Produce      json
// @Success      200  {object}  models.BackendStatus
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/backend/status [get]
// @Security     BearerAuth
func (h *Handler) getBackendStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "backend_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Open the PCB data spreadsheet
// @Description  Starts the configured helper on the spreadsheet file and returns without waiting for it.
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string  "status, path"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/spreadsheet/open [post]
// @Security     BearerAuth
func (h *Handler) openSpreadsheet(c *gin.Context) {
	operatorID, _ := currentOperator(c)
	path, err := h.services.Spreadsheet.Open(c.Request.Context(), operatorID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": statusOpened, "path": path})
	case errors.Is(err, service.ErrSpreadsheetNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSpreadsheetMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errOpenSpreadsheet, "spreadsheet_open_failed", err)
	}
}
