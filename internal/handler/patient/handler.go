package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/care-portal/internal/handler"
	"github.com/jwalitptl/care-portal/internal/middleware"
	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/service/caregraph"
	"github.com/jwalitptl/care-portal/internal/service/prescription"
	"github.com/jwalitptl/care-portal/pkg/httputil"
)

type Handler struct {
	caregraph     *caregraph.Service
	prescriptions *prescription.Service
}

func NewHandler(caregraph *caregraph.Service, prescriptions *prescription.Service) *Handler {
	return &Handler{caregraph: caregraph, prescriptions: prescriptions}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/care-team", auth.RequireRole(model.RolePatient), h.ListCareTeam)
	r.GET("/prescriptions", auth.RequireRole(model.RolePatient, model.RoleClinician), h.ListPrescriptions)
}

func (h *Handler) ListCareTeam(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	team, err := h.caregraph.CareTeam(c.Request.Context(), caller.SubjectID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, team)
}

// ListPrescriptions serves both sides: a patient's prescriptions or the ones a
// clinician has written.
func (h *Handler) ListPrescriptions(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	prescriptions, err := h.prescriptions.ListFor(c.Request.Context(), caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, prescriptions)
}
