package ledger

import (
	"errors"
	"net/http"

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
	rg.GET("/credit", h.GetBalance)
	rg.POST("/credit", h.ChangeCredit)
	rg.GET("/credit/entries", h.ListEntries)
}

type changeCreditRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

func (h *Handler) GetBalance(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	acct, balance, err := h.service.Balance(c.Request.Context(), user)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load balance")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"account_type": acct.Type,
		"account_id":   acct.ID,
		"balance":      balance,
	})
}

func (h *Handler) ChangeCredit(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req changeCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	// Staff need the credit-access capability; renters manage their own balance.
	if user.IsStaff() {
		st, err := h.staff.GetByUserID(c.Request.Context(), user.ID)
		if err != nil || !st.Has(domain.CapCreditAccess) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Credit access capability required")
			return
		}
	}

	acct, balance, err := h.service.ChangeCredit(c.Request.Context(), user, req.Delta)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to change credit")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"account_type": acct.Type,
		"account_id":   acct.ID,
		"balance":      balance,
	})
}

func (h *Handler) ListEntries(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	entries, err := h.service.Entries(c.Request.Context(), user)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load credit entries")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"entries": entries})
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
