package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/giua-dev/scrutini-api/internal/middleware"
	"github.com/giua-dev/scrutini-api/internal/models"
	"github.com/giua-dev/scrutini-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Definition *DefinitionHandler
	Session    *SessionHandler
	Grade      *GradeHandler
	Outcome    *OutcomeHandler
	Archive    *ArchiveHandler
}

// RegisterRoutes mounts all API routes under the prefix. Login and the
// published class results are public; everything else requires a valid
// access token, with definition management and archive corrections
// restricted to admin and staff roles.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.GET("/classes/:id/results", h.Session.PublishedResults)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))

	secured.GET("/auth/me", h.Auth.Me)

	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)

	secured.GET("/definitions", h.Definition.List)
	secured.GET("/definitions/:id", h.Definition.Get)
	secured.POST("/definitions", staffOnly, h.Definition.Create)
	secured.PUT("/definitions/:id", staffOnly, h.Definition.Update)

	secured.GET("/sessions", h.Session.List)
	secured.GET("/sessions/:id", h.Session.Get)
	secured.POST("/sessions", staffOnly, h.Session.Create)
	secured.PUT("/sessions/:id/state", staffOnly, h.Session.UpdateState)
	secured.PUT("/sessions/:id/visibility", staffOnly, h.Session.SetVisibility)
	secured.PUT("/sessions/:id/sync", staffOnly, h.Session.UpdateSync)
	secured.GET("/sessions/:id/export", h.Session.Export)

	secured.GET("/proposals", h.Grade.ListProposals)
	secured.GET("/proposals/:id", h.Grade.GetProposal)
	secured.POST("/proposals", h.Grade.SubmitProposal)
	secured.PUT("/proposals/:id", h.Grade.UpdateProposal)

	secured.GET("/sessions/:id/grades", h.Grade.ListSessionGrades)
	secured.POST("/sessions/:id/grades", h.Grade.RecordGrade)
	secured.POST("/sessions/:id/grades/promote", staffOnly, h.Grade.PromoteProposals)
	secured.PUT("/grades/:id", h.Grade.UpdateGrade)

	secured.GET("/sessions/:id/outcomes", h.Outcome.ListBySession)
	secured.POST("/sessions/:id/outcomes", h.Outcome.Record)
	secured.PUT("/outcomes/:id", h.Outcome.Update)

	secured.GET("/students/:id/transcript", h.Archive.Transcript)
	secured.POST("/students/:id/transcript", staffOnly, h.Archive.Snapshot)
	secured.PUT("/archive/outcomes/:id", staffOnly, h.Archive.CorrectOutcome)
	secured.PUT("/archive/grades/:id", staffOnly, h.Archive.CorrectGrade)
}
