package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meditrack/clinic-api/internal/handler"
	"github.com/meditrack/clinic-api/internal/service/billing"
	apperrors "github.com/meditrack/clinic-api/pkg/errors"
)

type Handler struct {
	service *billing.Service
}

func NewHandler(service *billing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/providers/:id/reconcile", h.Reconcile)
}

// Reconcile runs a billing pass for the provider. Safe to trigger on
// every dashboard load; a pass over an up-to-date schedule creates
// nothing.
func (h *Handler) Reconcile(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid provider ID", err))
		return
	}

	created, err := h.service.Reconcile(c.Request.Context(), providerID)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"payments_created": created}))
}
