package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// ServiceHandler handles the provider service catalogue.
type ServiceHandler struct {
	catalog *core.CatalogService
	logger  *zap.Logger
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(catalog *core.CatalogService, logger *zap.Logger) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, logger: logger}
}

// ListServices handles GET /services?provider_id=&provider_name=
func (h *ServiceHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListServices(c.Request.Context(), c.Query("provider_id"), c.Query("provider_name"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toServiceResponses(services))
}

// GetService handles GET /services/:id
func (h *ServiceHandler) GetService(c *gin.Context) {
	svc, err := h.catalog.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toServiceResponse(svc))
}

// CreateService handles POST /services
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req models.CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.catalog.CreateService(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toServiceResponse(svc))
}

// DeleteService handles DELETE /services/:id
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	if err := h.catalog.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Service deleted"})
}
