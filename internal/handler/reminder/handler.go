package reminder

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meditrack/clinic-api/internal/handler"
	"github.com/meditrack/clinic-api/internal/repository"
	"github.com/meditrack/clinic-api/internal/service/reminder"
	apperrors "github.com/meditrack/clinic-api/pkg/errors"
)

type Handler struct {
	service *reminder.Service

	// Defaults applied when the caller does not override them.
	template  string
	leadHours int
}

func NewHandler(service *reminder.Service, template string, leadHours int) *Handler {
	return &Handler{service: service, template: template, leadHours: leadHours}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/providers/:id/reminders", h.Worklist)
	r.POST("/appointments/:id/reminder-sent", h.MarkSent)
}

func (h *Handler) Worklist(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid provider ID", err))
		return
	}

	template := h.template
	if t := c.Query("template"); t != "" {
		template = t
	}

	leadHours := h.leadHours
	if v := c.Query("lead_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handler.RespondWithError(c, apperrors.NewBadRequest("invalid lead hours", err))
			return
		}
		leadHours = n
	}

	items, err := h.service.Worklist(c.Request.Context(), providerID, template, leadHours)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) MarkSent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	if err := h.service.MarkSent(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			handler.RespondWithError(c, apperrors.NewNotFound("appointment", err))
			return
		}
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
