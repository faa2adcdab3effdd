package clinician

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/care-portal/internal/handler"
	"github.com/jwalitptl/care-portal/internal/middleware"
	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/service/account"
	"github.com/jwalitptl/care-portal/internal/service/availability"
	"github.com/jwalitptl/care-portal/internal/service/caregraph"
	"github.com/jwalitptl/care-portal/pkg/errors"
	"github.com/jwalitptl/care-portal/pkg/httputil"
)

type Handler struct {
	accounts     *account.Service
	availability *availability.Service
	caregraph    *caregraph.Service
}

func NewHandler(accounts *account.Service, availability *availability.Service, caregraph *caregraph.Service) *Handler {
	return &Handler{accounts: accounts, availability: availability, caregraph: caregraph}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	clinicians := r.Group("/clinicians")
	{
		clinicians.GET("", h.ListClinicians)
		clinicians.GET("/:id/slots", auth.RequireRole(model.RolePatient, model.RoleClinician), h.GetFreeSlots)
	}

	r.GET("/roster", auth.RequireRole(model.RoleClinician), h.ListRoster)
}

func (h *Handler) ListClinicians(c *gin.Context) {
	clinicians, err := h.accounts.ListClinicians(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, clinicians)
}

func (h *Handler) GetFreeSlots(c *gin.Context) {
	clinicianID, ok := handler.ParamID(c, "id", "clinician")
	if !ok {
		return
	}

	raw := c.Query("date")
	if raw == "" {
		httputil.RespondWithError(c, errors.InvalidInput("date query parameter is required", nil))
		return
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		httputil.RespondWithError(c, errors.InvalidInput("date must be YYYY-MM-DD", err))
		return
	}

	free, err := h.availability.FreeSlots(c.Request.Context(), clinicianID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, free)
}

func (h *Handler) ListRoster(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	roster, err := h.caregraph.Roster(c.Request.Context(), caller.SubjectID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, roster)
}
