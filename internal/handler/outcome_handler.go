package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/giua-dev/scrutini-api/internal/service"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
	"github.com/giua-dev/scrutini-api/pkg/response"
)

// OutcomeHandler wires HTTP endpoints to the outcome service.
type OutcomeHandler struct {
	service *service.OutcomeService
}

// NewOutcomeHandler creates a new handler.
func NewOutcomeHandler(svc *service.OutcomeService) *OutcomeHandler {
	return &OutcomeHandler{service: svc}
}

// ListBySession godoc
// @Summary List session outcomes
// @Tags Outcomes
// @Produce json
// @Param id path string true "Session ID"
// @Param student_id query string false "Student ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/outcomes [get]
func (h *OutcomeHandler) ListBySession(c *gin.Context) {
	sessionID := c.Param("id")
	if studentID := c.Query("student_id"); studentID != "" {
		outcome, err := h.service.GetByStudent(c.Request.Context(), sessionID, studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, outcome, nil)
		return
	}
	outcomes, err := h.service.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcomes, nil)
}

// Record godoc
// @Summary Record student outcome
// @Tags Outcomes
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.OutcomeRequest true "Outcome payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /sessions/{id}/outcomes [post]
func (h *OutcomeHandler) Record(c *gin.Context) {
	var req service.OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid outcome payload"))
		return
	}
	outcome, err := h.service.Record(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, outcome)
}

// Update godoc
// @Summary Update student outcome
// @Tags Outcomes
// @Accept json
// @Produce json
// @Param id path string true "Outcome ID"
// @Param payload body service.OutcomeRequest true "Outcome payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /outcomes/{id} [put]
func (h *OutcomeHandler) Update(c *gin.Context) {
	var req service.OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid outcome payload"))
		return
	}
	outcome, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}
