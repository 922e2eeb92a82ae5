package handlers

import (
	"net/http"

	"reflow_predictor/internal/wizard"

	"github.com/gin-gonic/gin"
)

const (
	statusOK      = "ok"
	statusEnded   = "ended"
	statusClosed  = "closed"
	statusStage1  = "board"
	sessionIDPath = "id"
)

// BoardRequest is an exported model for Swagger docs of the board form payload.
type BoardRequest struct {
	Length          string `json:"length" example:"100"`
	Width           string `json:"width" example:"50"`
	Thickness       string `json:"thickness" example:"1.6"`
	Layers          string `json:"layers" example:"4"`
	CuOuter         string `json:"cuOuter" example:"35"`
	CuInner         string `json:"cuInner" example:"18"`
	SolderPasteType string `json:"solderPasteType" example:"Koki S3X58-M406-3"`
}

// ProcessRequest is an exported model for Swagger docs of the process form payload.
type ProcessRequest struct {
	T1            string `json:"t1" example:"110"`
	T2            string `json:"t2" example:"130"`
	T3            string `json:"t3" example:"150"`
	T4            string `json:"t4" example:"165"`
	T5            string `json:"t5" example:"175"`
	T6            string `json:"t6" example:"185"`
	T7            string `json:"t7" example:"200"`
	T8            string `json:"t8" example:"235"`
	T9            string `json:"t9" example:"245"`
	T10           string `json:"t10" example:"240"`
	ConveyorSpeed string `json:"conveyorSpeed" example:"800"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": statusOK}
	if st, err := h.services.Monitoring.GetStatus(c.Request.Context()); err == nil {
		resp["backend"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Start a wizard session
// @Description  Opens the board parameters window. The session's journal entries are attributed to the signed-in operator.
// @Tags         sessions
// @Produce      json
// @Success      201  {object}  service.SessionInfo
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sessions [post]
// @Security     BearerAuth
func (h *Handler) startSession(c *gin.Context) {
	operatorID, _ := currentOperator(c)
	info, err := h.services.Wizard.Start(c.Request.Context(), operatorID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStartSession, "wizard_session_start_failed", err, "operator_id", operatorID)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// @Summary      Get open windows
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  wizard.Snapshot
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/sessions/{id} [get]
// @Security     BearerAuth
func (h *Handler) getSession(c *gin.Context) {
	id := c.Param(sessionIDPath)
	snap, err := h.services.Wizard.Snapshot(c.Request.Context(), id)
	if err != nil {
		h.wizardError(c, "wizard_snapshot_failed", err, "session_id", id)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      End a wizard session
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/sessions/{id} [delete]
// @Security     BearerAuth
func (h *Handler) endSession(c *gin.Context) {
	id := c.Param(sessionIDPath)
	if err := h.services.Wizard.End(c.Request.Context(), id); err != nil {
		h.wizardError(c, "wizard_session_end_failed", err, "session_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusEnded})
}

// @Summary      Submit board parameters
// @Description  Validates the board form in field order. On success the process window opens seeded with the record.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Session ID"
// @Param        body  body      BoardRequest  true  "Board form"
// @Success      200   {object}  map[string]interface{}  "board, snapshot"
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string  "error, field, label"
// @Router       /api/v1/sessions/{id}/board [post]
// @Security     BearerAuth
func (h *Handler) submitBoard(c *gin.Context) {
	var in wizard.BoardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id := c.Param(sessionIDPath)
	ctx := c.Request.Context()

	rec, err := h.services.Wizard.SubmitBoard(ctx, id, in)
	if err != nil {
		h.wizardError(c, "wizard_board_rejected", err, "session_id", id)
		return
	}
	resp := gin.H{"board": rec}
	if snap, err := h.services.Wizard.Snapshot(ctx, id); err == nil {
		resp["snapshot"] = snap
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Submit process parameters
// @Description  Validates t1..t10 and conveyorSpeed, calls the predictor and renders the result.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Session ID"
// @Param        body  body      ProcessRequest  true  "Process form"
// @Success      200   {object}  wizard.View
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string  "error, field, label"
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/sessions/{id}/process [post]
// @Security     BearerAuth
func (h *Handler) submitProcess(c *gin.Context) {
	var in wizard.ProcessInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id := c.Param(sessionIDPath)

	view, err := h.services.Wizard.SubmitProcess(c.Request.Context(), id, in)
	if err != nil {
		h.wizardError(c, "wizard_prediction_failed", err, "session_id", id)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Back to board parameters
// @Description  Opens a fresh board window and closes the process window.
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/sessions/{id}/back [post]
// @Security     BearerAuth
func (h *Handler) back(c *gin.Context) {
	id := c.Param(sessionIDPath)
	ctx := c.Request.Context()
	if err := h.services.Wizard.Back(ctx, id); err != nil {
		h.wizardError(c, "wizard_back_failed", err, "session_id", id)
		return
	}
	resp := gin.H{"status": statusStage1}
	if snap, err := h.services.Wizard.Snapshot(ctx, id); err == nil {
		resp["snapshot"] = snap
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Close a window
// @Description  Discards the window and any prediction it is waiting for. Closing the last window ends the session.
// @Tags         sessions
// @Produce      json
// @Param        id     path      string  true  "Session ID"
// @Param        stage  path      string  true  "Window"  Enums(board,process,prediction)
// @Success      200    {object}  map[string]interface{}  "status, open_windows"
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Router       /api/v1/sessions/{id}/windows/{stage} [delete]
// @Security     BearerAuth
func (h *Handler) closeWindow(c *gin.Context) {
	st, ok := wizard.ParseStage(c.Param("stage"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown window: " + c.Param("stage")})
		return
	}
	id := c.Param(sessionIDPath)

	left, err := h.services.Wizard.CloseWindow(c.Request.Context(), id, st)
	if err != nil {
		h.wizardError(c, "wizard_close_window_failed", err, "session_id", id, "stage", st)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusClosed, "open_windows": left})
}
