package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/giua-dev/scrutini-api/internal/models"
	"github.com/giua-dev/scrutini-api/internal/service"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
	"github.com/giua-dev/scrutini-api/pkg/response"
)

// GradeHandler wires HTTP endpoints to the grade service.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// ListProposals godoc
// @Summary List grade proposals
// @Tags Proposals
// @Produce json
// @Param period query string false "Period code"
// @Param class_id query string false "Class ID"
// @Param student_id query string false "Student ID"
// @Param subject_id query string false "Subject ID"
// @Param teacher_id query string false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /proposals [get]
func (h *GradeHandler) ListProposals(c *gin.Context) {
	filter := models.ProposalFilter{
		Period:    models.PeriodCode(c.Query("period")),
		ClassID:   c.Query("class_id"),
		StudentID: c.Query("student_id"),
		SubjectID: c.Query("subject_id"),
		TeacherID: c.Query("teacher_id"),
	}
	proposals, err := h.service.ListProposals(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposals, nil)
}

// GetProposal godoc
// @Summary Get grade proposal
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /proposals/{id} [get]
func (h *GradeHandler) GetProposal(c *gin.Context) {
	proposal, err := h.service.GetProposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// SubmitProposal godoc
// @Summary Submit grade proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param payload body service.ProposalRequest true "Proposal payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /proposals [post]
func (h *GradeHandler) SubmitProposal(c *gin.Context) {
	var req service.ProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proposal payload"))
		return
	}
	proposal, err := h.service.SubmitProposal(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, proposal)
}

// UpdateProposal godoc
// @Summary Update grade proposal marks
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body service.MarksRequest true "Marks payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /proposals/{id} [put]
func (h *GradeHandler) UpdateProposal(c *gin.Context) {
	var req service.MarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marks payload"))
		return
	}
	proposal, err := h.service.UpdateProposal(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// ListSessionGrades godoc
// @Summary List session grades
// @Tags Grades
// @Produce json
// @Param id path string true "Session ID"
// @Param student_id query string false "Student ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/grades [get]
func (h *GradeHandler) ListSessionGrades(c *gin.Context) {
	sessionID := c.Param("id")
	if studentID := c.Query("student_id"); studentID != "" {
		grades, err := h.service.ListStudentGrades(c.Request.Context(), sessionID, studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, grades, nil)
		return
	}
	grades, err := h.service.ListSessionGrades(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// RecordGrade godoc
// @Summary Record finalized grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.GradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /sessions/{id}/grades [post]
func (h *GradeHandler) RecordGrade(c *gin.Context) {
	var req service.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}
	grade, err := h.service.RecordGrade(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// UpdateGrade godoc
// @Summary Update finalized grade marks
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Grade ID"
// @Param payload body service.MarksRequest true "Marks payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	var req service.MarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marks payload"))
		return
	}
	grade, err := h.service.UpdateGrade(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// PromoteProposals godoc
// @Summary Promote proposals into session grades
// @Description Seeds the session's grades from the teachers' proposals
// @Tags Grades
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /sessions/{id}/grades/promote [post]
func (h *GradeHandler) PromoteProposals(c *gin.Context) {
	grades, err := h.service.PromoteProposals(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}
