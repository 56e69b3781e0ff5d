package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/giua-dev/scrutini-api/internal/service"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
	"github.com/giua-dev/scrutini-api/pkg/response"
)

// ArchiveHandler wires HTTP endpoints to the archive service.
type ArchiveHandler struct {
	service *service.ArchiveService
}

// NewArchiveHandler creates a new handler.
func NewArchiveHandler(svc *service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{service: svc}
}

// Transcript godoc
// @Summary Get student transcript
// @Tags Archive
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *ArchiveHandler) Transcript(c *gin.Context) {
	transcript, err := h.service.Transcript(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transcript, nil)
}

// Snapshot godoc
// @Summary Archive student result
// @Description Takes the immutable transcript snapshot from a closed session
// @Tags Archive
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body object{session_id=string} true "Snapshot payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /students/{id}/transcript [post]
func (h *ArchiveHandler) Snapshot(c *gin.Context) {
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid snapshot payload"))
		return
	}
	transcript, err := h.service.Snapshot(c.Request.Context(), payload.SessionID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, transcript)
}

// CorrectOutcome godoc
// @Summary Correct archived outcome
// @Tags Archive
// @Accept json
// @Produce json
// @Param id path string true "Archived outcome ID"
// @Param payload body service.OutcomeCorrection true "Correction payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /archive/outcomes/{id} [put]
func (h *ArchiveHandler) CorrectOutcome(c *gin.Context) {
	var req service.OutcomeCorrection
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid correction payload"))
		return
	}
	outcome, err := h.service.CorrectOutcome(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// CorrectGrade godoc
// @Summary Correct archived grade
// @Tags Archive
// @Accept json
// @Produce json
// @Param id path string true "Archived grade ID"
// @Param payload body service.GradeCorrection true "Correction payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /archive/grades/{id} [put]
func (h *ArchiveHandler) CorrectGrade(c *gin.Context) {
	var req service.GradeCorrection
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid correction payload"))
		return
	}
	grade, err := h.service.CorrectGrade(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}
