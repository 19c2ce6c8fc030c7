package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// UserHandler handles registration, login and provider profiles.
type UserHandler struct {
	users     *core.UserService
	providers *core.ProviderService
	logger    *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *core.UserService, providers *core.ProviderService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, providers: providers, logger: logger}
}

// Register handles POST /users
func (h *UserHandler) Register(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /login
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type fcmTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// UpdateFCMToken handles PUT /users/:id/fcm-token
func (h *UserHandler) UpdateFCMToken(c *gin.Context) {
	var req fcmTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.users.UpdateFCMToken(c.Request.Context(), c.Param("id"), req.Token); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "FCM token updated"})
}

// GetProviderProfile handles GET /providers/:id/profile
func (h *UserHandler) GetProviderProfile(c *gin.Context) {
	provider, err := h.providers.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProviderResponse(provider))
}

// UpdateProviderProfile handles PUT /providers/:id/profile
func (h *UserHandler) UpdateProviderProfile(c *gin.Context) {
	var req models.UpdateProviderProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	provider, err := h.providers.UpdateProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProviderResponse(provider))
}

// NearbyProviders handles GET /providers?lat=&lon=&radius=
func (h *UserHandler) NearbyProviders(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lon query parameters are required"})
		return
	}
	radius := core.DefaultSearchRadiusKm
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "radius must be a number"})
			return
		}
		radius = r
	}

	nearby, err := h.providers.Nearby(c.Request.Context(), lat, lon, radius)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	resp := make([]ProviderResponse, 0, len(nearby))
	for _, p := range nearby {
		resp = append(resp, toNearbyResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}
