package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rmtl/internal/domain"
	"rmtl/internal/service"
)

// WorkspaceHandler exposes batch-entry workspaces over HTTP. Row positions in
// paths are 0-based.
type WorkspaceHandler struct {
	workspaces service.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaces service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// PickRequest selects assignments from the device picker.
type PickRequest struct {
	AssignmentIDs []int64 `json:"assignment_ids" binding:"required"`
}

// SerialRequest carries a typed serial number.
type SerialRequest struct {
	Serial string `json:"serial"`
}

// ValidateResponse is returned when a batch passes validation.
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// Open handles POST /api/v1/workspaces
func (h *WorkspaceHandler) Open(c *gin.Context) {
	var req service.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	snap, err := h.workspaces.Open(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, snap)
}

// Get handles GET /api/v1/workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return
	}
	h.respondSnapshot(c)(h.workspaces.Get(c.Request.Context(), id))
}

// Close handles DELETE /api/v1/workspaces/:id
func (h *WorkspaceHandler) Close(c *gin.Context) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return
	}
	if err := h.workspaces.Close(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "workspace closed"})
}

// Reload handles POST /api/v1/workspaces/:id/reload
func (h *WorkspaceHandler) Reload(c *gin.Context) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return
	}
	h.respondSnapshot(c)(h.workspaces.Reload(c.Request.Context(), id))
}

// SetHeader handles PUT /api/v1/workspaces/:id/header
func (h *WorkspaceHandler) SetHeader(c *gin.Context) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return
	}
	var header domain.BatchHeader
	if err := c.ShouldBindJSON(&header); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	h.respondSnapshot(c)(h.workspaces.SetHeader(c.Request.Context(), id, header))
}

// AppendRow handles POST /api/v1/workspaces/:id/rows
func (h *WorkspaceHandler) AppendRow(c *gin.Context) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return
	}
	h.respondSnapshot(c)(h.workspaces.AppendRow(c.Request.Context(), id))
}

// Pick handles POST /api/v1/workspaces/:id/rows/pick
func (h *WorkspaceHandler) Pick(c *gin.Context) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return
	}
	var req PickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	h.respondSnapshot(c)(h.workspaces.Pick(c.Request.Context(), id, req.AssignmentIDs))
}

// GetRow handles GET /api/v1/workspaces/:id/rows/:pos
func (h *WorkspaceHandler) GetRow(c *gin.Context) {
	id, pos, ok := parseRowPath(c)
	if !ok {
		return
	}
	row, err := h.workspaces.GetRow(c.Request.Context(), id, pos)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, row)
}

// UpdateRow handles PUT /api/v1/workspaces/:id/rows/:pos
func (h *WorkspaceHandler) UpdateRow(c *gin.Context) {
	id, pos, ok := parseRowPath(c)
	if !ok {
		return
	}
	var edit domain.RowEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	h.respondSnapshot(c)(h.workspaces.UpdateRow(c.Request.Context(), id, pos, edit))
}

// SetSerial handles PUT /api/v1/workspaces/:id/rows/:pos/serial
func (h *WorkspaceHandler) SetSerial(c *gin.Context) {
	id, pos, ok := parseRowPath(c)
	if !ok {
		return
	}
	var req SerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	h.respondSnapshot(c)(h.workspaces.SetSerial(c.Request.Context(), id, pos, req.Serial))
}

// RemoveRow handles DELETE /api/v1/workspaces/:id/rows/:pos
func (h *WorkspaceHandler) RemoveRow(c *gin.Context) {
	id, pos, ok := parseRowPath(c)
	if !ok {
		return
	}
	h.respondSnapshot(c)(h.workspaces.RemoveRow(c.Request.Context(), id, pos))
}

// Validate handles POST /api/v1/workspaces/:id/validate
func (h *WorkspaceHandler) Validate(c *gin.Context) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return
	}
	if err := h.workspaces.Validate(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ValidateResponse{Valid: true})
}

// Clear handles POST /api/v1/workspaces/:id/clear
func (h *WorkspaceHandler) Clear(c *gin.Context) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return
	}
	h.respondSnapshot(c)(h.workspaces.Clear(c.Request.Context(), id))
}

// Submit handles POST /api/v1/workspaces/:id/submit
func (h *WorkspaceHandler) Submit(c *gin.Context) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return
	}
	res, err := h.workspaces.Submit(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}

func (h *WorkspaceHandler) respondSnapshot(c *gin.Context) func(*service.Snapshot, error) {
	return func(snap *service.Snapshot, err error) {
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondOK(c, snap)
	}
}

func parseWorkspaceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid workspace ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseRowPath(c *gin.Context) (uuid.UUID, int, bool) {
	id, ok := parseWorkspaceID(c)
	if !ok {
		return uuid.Nil, 0, false
	}
	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil || pos < 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_POSITION", "row position must be a non-negative integer")
		return uuid.Nil, 0, false
	}
	return id, pos, true
}
