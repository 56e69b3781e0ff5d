package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/giua-dev/scrutini-api/internal/models"
	"github.com/giua-dev/scrutini-api/internal/service"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
	"github.com/giua-dev/scrutini-api/pkg/response"
)

// DefinitionHandler wires HTTP endpoints to the definition service.
type DefinitionHandler struct {
	service *service.DefinitionService
}

// NewDefinitionHandler creates a new handler.
func NewDefinitionHandler(svc *service.DefinitionService) *DefinitionHandler {
	return &DefinitionHandler{service: svc}
}

// List godoc
// @Summary List period definitions
// @Tags Definitions
// @Produce json
// @Param period query string false "Period code"
// @Success 200 {object} response.Envelope
// @Router /definitions [get]
func (h *DefinitionHandler) List(c *gin.Context) {
	filter := models.DefinitionFilter{Period: models.PeriodCode(c.Query("period"))}
	defs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, defs, nil)
}

// Get godoc
// @Summary Get period definition
// @Tags Definitions
// @Produce json
// @Param id path string true "Definition ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /definitions/{id} [get]
func (h *DefinitionHandler) Get(c *gin.Context) {
	def, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, def, nil)
}

// Create godoc
// @Summary Create period definition
// @Tags Definitions
// @Accept json
// @Produce json
// @Param payload body service.DefinitionRequest true "Definition payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /definitions [post]
func (h *DefinitionHandler) Create(c *gin.Context) {
	var req service.DefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid definition payload"))
		return
	}
	def, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, def)
}

// Update godoc
// @Summary Update period definition
// @Tags Definitions
// @Accept json
// @Produce json
// @Param id path string true "Definition ID"
// @Param payload body service.DefinitionRequest true "Definition payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /definitions/{id} [put]
func (h *DefinitionHandler) Update(c *gin.Context) {
	var req service.DefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid definition payload"))
		return
	}
	def, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, def, nil)
}
