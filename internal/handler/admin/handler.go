package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/care-portal/internal/handler"
	"github.com/jwalitptl/care-portal/internal/middleware"
	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/service/account"
	"github.com/jwalitptl/care-portal/internal/service/caregraph"
	"github.com/jwalitptl/care-portal/pkg/httputil"
)

type Handler struct {
	accounts  *account.Service
	caregraph *caregraph.Service
}

func NewHandler(accounts *account.Service, caregraph *caregraph.Service) *Handler {
	return &Handler{accounts: accounts, caregraph: caregraph}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	admin := r.Group("/admin")
	admin.Use(auth.RequireRole(model.RoleAdmin))
	{
		admin.GET("/overview", h.Overview)
		admin.GET("/patient-overview", h.PatientOverview)
		admin.POST("/clinicians", h.ProvisionClinician)
		admin.POST("/admins", h.ProvisionAdmin)
	}
}

func (h *Handler) Overview(c *gin.Context) {
	counts, err := h.caregraph.OverviewCounts(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, counts)
}

func (h *Handler) PatientOverview(c *gin.Context) {
	counts, err := h.caregraph.PatientOverview(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, counts)
}

func (h *Handler) ProvisionClinician(c *gin.Context) {
	var req model.ProvisionClinicianRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	clinician, err := h.accounts.ProvisionClinician(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, clinician)
}

func (h *Handler) ProvisionAdmin(c *gin.Context) {
	var req model.ProvisionAdminRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	admin, err := h.accounts.ProvisionAdmin(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, admin)
}
