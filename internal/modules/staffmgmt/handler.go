package staffmgmt

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"carmarket/internal/domain"
	"carmarket/internal/pkg/response"
	"carmarket/internal/repository"
)

type Handler struct {
	service *Service
	users   *repository.UserRepository
}

func NewHandler(service *Service, users *repository.UserRepository) *Handler {
	return &Handler{service: service, users: users}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/staff", h.CreateStaff)
	rg.GET("/staff", h.ListStaff)
	rg.GET("/staff/:id", h.GetStaff)
	rg.PATCH("/staff/:id/capabilities", h.UpdateCapabilities)
}

func (h *Handler) CreateStaff(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	st, err := h.service.CreateStaff(c.Request.Context(), user, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"staff": st})
}

func (h *Handler) ListStaff(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	staff, err := h.service.ListStaff(c.Request.Context(), user)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"staff": staff})
}

func (h *Handler) GetStaff(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID")
		return
	}

	st, err := h.service.GetStaff(c.Request.Context(), user, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"staff": st})
}

func (h *Handler) UpdateCapabilities(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID")
		return
	}

	var req CapabilitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	st, err := h.service.UpdateCapabilities(c.Request.Context(), user, id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"staff": st})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed to manage staff")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Staff member not found")
	case errors.Is(err, ErrUsernameTaken):
		response.Error(c, http.StatusConflict, "USERNAME_TAKEN", "Username already taken")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}

func (h *Handler) currentUser(c *gin.Context) (*domain.User, bool) {
	userID := c.GetInt64("user_id")
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unknown user")
		} else {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user")
		}
		return nil, false
	}
	return user, true
}
