package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/care-portal/internal/handler"
	"github.com/jwalitptl/care-portal/internal/middleware"
	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/service/booking"
	"github.com/jwalitptl/care-portal/internal/service/caregraph"
	"github.com/jwalitptl/care-portal/pkg/httputil"
)

type Handler struct {
	booking   *booking.Service
	caregraph *caregraph.Service
}

func NewHandler(booking *booking.Service, caregraph *caregraph.Service) *Handler {
	return &Handler{booking: booking, caregraph: caregraph}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments")
	appointments.Use(auth.RequireRole(model.RolePatient, model.RoleClinician))
	{
		appointments.POST("", h.BookAppointment)
		appointments.GET("/today", h.ListTodaysAppointments)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	var req model.BookAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	cmd, err := booking.Resolve(caller, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appointment, err := h.booking.Book(c.Request.Context(), cmd)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, appointment)
}

func (h *Handler) ListTodaysAppointments(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	date, appointments, err := h.caregraph.TodaysAppointments(c.Request.Context(), caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{
		"date":         date,
		"appointments": appointments,
	})
}
