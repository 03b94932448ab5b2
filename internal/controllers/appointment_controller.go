package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/middleware"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/services"
)

type AppointmentController struct {
	appointments *services.AppointmentService
}

func NewAppointmentController(appointments *services.AppointmentService) *AppointmentController {
	return &AppointmentController{appointments: appointments}
}

// GetAppointments lists appointments. date selects one calendar day in the
// server's time zone.
func (ac *AppointmentController) GetAppointments(c *gin.Context) {
	query := services.AppointmentQuery{
		Status:   models.AppointmentStatus(c.Query("status")),
		ClientID: c.Query("clientId"),
		StaffID:  c.Query("staffId"),
		CaseID:   c.Query("caseId"),
		Date:     c.Query("date"),
	}

	appointments, err := ac.appointments.List(c.Request.Context(), middleware.CurrentActor(c), query)
	if err != nil {
		respondError(c, err, "appointment_controller")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

func (ac *AppointmentController) GetAppointment(c *gin.Context) {
	view, err := ac.appointments.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "appointment_controller")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (ac *AppointmentController) CreateAppointment(c *gin.Context) {
	var req services.AppointmentInput
	if !bindJSON(c, &req) {
		return
	}

	view, err := ac.appointments.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "appointment_controller")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (ac *AppointmentController) UpdateAppointment(c *gin.Context) {
	var req services.AppointmentUpdate
	if !bindJSON(c, &req) {
		return
	}

	view, err := ac.appointments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "appointment_controller")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (ac *AppointmentController) DeleteAppointment(c *gin.Context) {
	if err := ac.appointments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "appointment_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}
