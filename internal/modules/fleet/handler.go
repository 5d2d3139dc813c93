package fleet

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
	rg.GET("/cars", h.ListCars)
	rg.GET("/cars/:id", h.GetCar)
	rg.POST("/cars", h.AddCar)
	rg.PATCH("/cars/:id", h.UpdateCar)
	rg.DELETE("/cars/:id", h.DeleteCar)
	rg.POST("/cars/:id/repair", h.ReportRepair)
	rg.POST("/cars/:id/renter", h.AssignRenter)
	rg.POST("/cars/:id/owner", h.TransferOwner)
}

func (h *Handler) ListCars(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	cars, err := h.service.ListForActor(c.Request.Context(), user)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cars": cars})
}

func (h *Handler) GetCar(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	id, ok := h.carID(c)
	if !ok {
		return
	}

	car, err := h.service.GetCar(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": car})
}

func (h *Handler) AddCar(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var in AddCarInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	car, err := h.service.AddCar(c.Request.Context(), user, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"car": car})
}

func (h *Handler) UpdateCar(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, ok := h.carID(c)
	if !ok {
		return
	}

	var in UpdateCarInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	car, err := h.service.UpdatePrice(c.Request.Context(), user, id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": car})
}

func (h *Handler) DeleteCar(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, ok := h.carID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCar(c.Request.Context(), user, id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) ReportRepair(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, ok := h.carID(c)
	if !ok {
		return
	}

	var in ReportRepairInput
	if err := c.ShouldBindJSON(&in); err != nil || in.NeedsRepair == nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	car, err := h.service.ReportRepair(c.Request.Context(), user, id, *in.NeedsRepair)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": car})
}

func (h *Handler) AssignRenter(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, ok := h.carID(c)
	if !ok {
		return
	}

	var in AssignRenterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	car, err := h.service.AssignRenter(c.Request.Context(), user, id, in.RenterID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": car})
}

func (h *Handler) TransferOwner(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, ok := h.carID(c)
	if !ok {
		return
	}

	var in TransferOwnerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	car, err := h.service.TransferOwner(c.Request.Context(), user, id, in.ExhibitionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": car})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Car not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed to manage this car")
	case errors.Is(err, ErrCarRented):
		response.Error(c, http.StatusConflict, "CAR_RENTED", "Car is currently rented")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}

func (h *Handler) carID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid car ID")
		return 0, false
	}
	return id, true
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
