package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// PetHandler handles the pet endpoints.
type PetHandler struct {
	pets   *core.PetService
	logger *zap.Logger
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(pets *core.PetService, logger *zap.Logger) *PetHandler {
	return &PetHandler{pets: pets, logger: logger}
}

// ListPets handles GET /pets?owner_id=
func (h *PetHandler) ListPets(c *gin.Context) {
	pets, err := h.pets.ListPets(c.Request.Context(), c.Query("owner_id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	resp := make([]PetResponse, 0, len(pets))
	for _, p := range pets {
		resp = append(resp, toPetResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// GetPet handles GET /pets/:id
func (h *PetHandler) GetPet(c *gin.Context) {
	pet, err := h.pets.GetPet(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toPetResponse(pet))
}

// CreatePet handles POST /pets
func (h *PetHandler) CreatePet(c *gin.Context) {
	var req models.PetRequest
	if !bindJSON(c, &req) {
		return
	}
	pet, err := h.pets.CreatePet(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toPetResponse(pet))
}

// UpdatePet handles PUT /pets/:id
func (h *PetHandler) UpdatePet(c *gin.Context) {
	var req models.PetRequest
	if !bindJSON(c, &req) {
		return
	}
	pet, err := h.pets.UpdatePet(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toPetResponse(pet))
}

// DeletePet handles DELETE /pets/:id
func (h *PetHandler) DeletePet(c *gin.Context) {
	if err := h.pets.DeletePet(c.Request.Context(), c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Pet deleted"})
}
