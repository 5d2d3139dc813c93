package rental

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
	staff   *repository.StaffRepository
}

func NewHandler(service *Service, users *repository.UserRepository, staff *repository.StaffRepository) *Handler {
	return &Handler{service: service, users: users, staff: staff}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cars/:id/requests", h.CreateRequest)
	rg.GET("/requests", h.ListRequests)
	rg.POST("/requests/:id/accept", h.AcceptRequest)
	rg.POST("/requests/:id/reject", h.RejectRequest)
	rg.POST("/requests/answers", h.AnswerRequests)
}

func (h *Handler) CreateRequest(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	carID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid car ID")
		return
	}

	var in CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	req, err := h.service.CreateRequest(c.Request.Context(), user, carID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid rental time range")
		case errors.Is(err, ErrCarNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Car not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Staff accounts cannot file rent requests")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create rent request")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"request": req})
}

func (h *Handler) ListRequests(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if user.IsStaff() {
		st, err := h.staff.GetByUserID(c.Request.Context(), user.ID)
		if err != nil {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "No staff record for this account")
			return
		}
		reqs, err := h.service.ListPendingForExhibition(c.Request.Context(), st.ExhibitionID)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list requests")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"requests": reqs})
		return
	}

	reqs, err := h.service.ListForRequester(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list requests")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"requests": reqs})
}

func (h *Handler) AcceptRequest(c *gin.Context) {
	h.resolveRequest(c, true)
}

func (h *Handler) RejectRequest(c *gin.Context) {
	h.resolveRequest(c, false)
}

func (h *Handler) resolveRequest(c *gin.Context, accept bool) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}

	var req *domain.RentRequest
	if accept {
		req, err = h.service.Accept(c.Request.Context(), user, id)
	} else {
		req, err = h.service.Reject(c.Request.Context(), user, id)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrCarUnavailable):
			// The request was auto-rejected; surface the conflict with the
			// rejected request so the caller sees what happened.
			response.ErrorWithDetails(c, http.StatusConflict, "CAR_UNAVAILABLE",
				"Car is already rented for an overlapping period; request was rejected", gin.H{"request": req})
		case errors.Is(err, ErrAlreadyResolved):
			response.Error(c, http.StatusConflict, "ALREADY_RESOLVED", "Rent request is already resolved")
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Rent request not found")
		case errors.Is(err, ErrCarNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Car no longer exists")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed to answer this request")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve rent request")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": req})
}

func (h *Handler) AnswerRequests(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var answers BatchAnswers
	if err := c.ShouldBindJSON(&answers); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	outcomes := h.service.AnswerBatch(c.Request.Context(), user, answers)
	response.Success(c, http.StatusOK, gin.H{"outcomes": outcomes})
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
