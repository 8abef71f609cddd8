package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meditrack/clinic-api/internal/handler"
	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository"
	"github.com/meditrack/clinic-api/internal/service/scheduling"
	apperrors "github.com/meditrack/clinic-api/pkg/errors"
)

type Handler struct {
	service *scheduling.Service
}

func NewHandler(service *scheduling.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/appointments", h.Book)
	r.GET("/appointments", h.ListAppointments)
	r.GET("/appointments/:id", h.GetAppointment)
	r.POST("/appointments/:id/cancel", h.Cancel)
	r.POST("/appointments/:id/complete", h.Complete)
	r.GET("/providers/:id/slots", h.OpenSlots)
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrSlotUnavailable):
			// The caller needs the specific reason, not a generic failure.
			handler.RespondWithError(c, apperrors.NewConflict("slot is already booked", err))
		case errors.Is(err, repository.ErrPatientNotFound):
			handler.RespondWithError(c, apperrors.NewNotFound("patient", err))
		default:
			handler.RespondWithError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	view, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			handler.RespondWithError(c, apperrors.NewNotFound("appointment", err))
			return
		}
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	providerID, err := uuid.Parse(c.Query("provider_id"))
	if err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid provider ID", err))
		return
	}

	filters := &model.AppointmentFilters{}
	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			handler.RespondWithError(c, apperrors.NewBadRequest("invalid patient ID", err))
			return
		}
		filters.PatientID = patientID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}
	if date := c.Query("start_date"); date != "" {
		start, err := time.Parse("2006-01-02", date)
		if err != nil {
			handler.RespondWithError(c, apperrors.NewBadRequest("invalid start date", err))
			return
		}
		filters.StartDate = start
	}
	if date := c.Query("end_date"); date != "" {
		end, err := time.Parse("2006-01-02", date)
		if err != nil {
			handler.RespondWithError(c, apperrors.NewBadRequest("invalid end date", err))
			return
		}
		filters.EndDate = end
	}

	views, err := h.service.List(c.Request.Context(), providerID, filters)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(views))
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, scheduling.ErrCannotCancel):
			handler.RespondWithError(c, apperrors.NewConflict("appointment is already past, completed or cancelled", err))
		case errors.Is(err, repository.ErrAppointmentNotFound):
			handler.RespondWithError(c, apperrors.NewNotFound("appointment", err))
		default:
			handler.RespondWithError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	if err := h.service.Complete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, scheduling.ErrCannotComplete):
			handler.RespondWithError(c, apperrors.NewConflict("appointment cannot be completed", err))
		case errors.Is(err, repository.ErrAppointmentNotFound):
			handler.RespondWithError(c, apperrors.NewNotFound("appointment", err))
		default:
			handler.RespondWithError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) OpenSlots(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid provider ID", err))
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid date", err))
		return
	}

	slots, err := h.service.OpenSlots(c.Request.Context(), providerID, date)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			handler.RespondWithError(c, apperrors.NewNotFound("provider", err))
			return
		}
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}
