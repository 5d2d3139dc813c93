package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"carmarket/internal/domain"
	"carmarket/internal/middleware"
	"carmarket/internal/modules/auth"
	"carmarket/internal/modules/fleet"
	"carmarket/internal/modules/ledger"
	"carmarket/internal/modules/rental"
	"carmarket/internal/modules/staffmgmt"
	jwtsvc "carmarket/internal/pkg/jwt"
	"carmarket/internal/repository"
)

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type suite struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Exhibition{}, &domain.Staff{},
		&domain.Car{}, &domain.RentRequest{}, &ledger.CreditEntry{},
	))

	userRepo := repository.NewUserRepository(db)
	staffRepo := repository.NewStaffRepository(db)

	j := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	authHandler := auth.NewHandler(auth.NewService(db, userRepo, staffRepo, j))
	rentalHandler := rental.NewHandler(rental.NewService(db, nil), userRepo, staffRepo)
	fleetHandler := fleet.NewHandler(fleet.NewService(db), userRepo)
	ledgerHandler := ledger.NewHandler(ledger.NewService(db), userRepo, staffRepo)
	staffHandler := staffmgmt.NewHandler(staffmgmt.NewService(db, userRepo, staffRepo), userRepo)

	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			rentalHandler.RegisterRoutes(protected)
			fleetHandler.RegisterRoutes(protected)
			ledgerHandler.RegisterRoutes(protected)

			staffOnly := protected.Group("/")
			staffOnly.Use(middleware.StaffOnly())
			{
				staffHandler.RegisterRoutes(staffOnly)
			}
		}
	}

	return &suite{router: r, db: db}
}

func (s *suite) request(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, TestResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var parsed TestResponse
	_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	return w, parsed
}

func (s *suite) signupAndLogin(t *testing.T, username, userType string) string {
	t.Helper()

	w, _ := s.request(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"username":  username,
		"password":  "secret99",
		"user_type": userType,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := s.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": "secret99",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestFullRentalJourney(t *testing.T) {
	s := setupSuite(t)

	ownerToken := s.signupAndLogin(t, "exhibition_owner", "exhibition")
	renterToken := s.signupAndLogin(t, "weekend_driver", "renter")

	// Renter tops up, owner lists a car.
	w, _ := s.request(t, http.MethodPost, "/api/v1/credit", renterToken, gin.H{"delta": 5000})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := s.request(t, http.MethodPost, "/api/v1/cars", ownerToken, gin.H{
		"car_type":       "Sedan",
		"plate":          "AA111BB",
		"price_per_hour": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	car := resp.Data["car"].(map[string]interface{})
	carID := int64(car["id"].(float64))

	// Renter sees the car and requests a 10-hour rental.
	w, resp = s.request(t, http.MethodGet, "/api/v1/cars", renterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data["cars"], 1)

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	w, resp = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/cars/%d/requests", carID), renterToken, gin.H{
		"rent_start_time": start.Format(time.RFC3339),
		"rent_end_time":   start.Add(10 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	reqData := resp.Data["request"].(map[string]interface{})
	requestID := int64(reqData["id"].(float64))

	// Owner sees it pending and accepts.
	w, resp = s.request(t, http.MethodGet, "/api/v1/requests", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data["requests"], 1)

	w, resp = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/accept", requestID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accepted := resp.Data["request"].(map[string]interface{})
	assert.Equal(t, float64(1000), accepted["price"])
	assert.Equal(t, true, accepted["is_accepted"])

	// Settlement happened exactly once.
	w, resp = s.request(t, http.MethodGet, "/api/v1/credit", renterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4000), resp.Data["balance"])

	w, resp = s.request(t, http.MethodGet, "/api/v1/credit", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1000), resp.Data["balance"])
	assert.Equal(t, "exhibition", resp.Data["account_type"])

	// A second resolution attempt conflicts.
	w, _ = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/reject", requestID), ownerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The rented car disappears from the renter's listing.
	w, resp = s.request(t, http.MethodGet, "/api/v1/cars", renterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data["cars"], 0)
}

func TestOverlappingAcceptRejectsSecondRequest(t *testing.T) {
	s := setupSuite(t)

	ownerToken := s.signupAndLogin(t, "exhibition_owner", "exhibition")
	renterToken := s.signupAndLogin(t, "weekend_driver", "renter")

	w, resp := s.request(t, http.MethodPost, "/api/v1/cars", ownerToken, gin.H{
		"car_type":       "SUV",
		"plate":          "CC222DD",
		"price_per_hour": 150,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	carID := int64(resp.Data["car"].(map[string]interface{})["id"].(float64))

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	var requestIDs []int64
	for i := 0; i < 2; i++ {
		w, resp = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/cars/%d/requests", carID), renterToken, gin.H{
			"rent_start_time": start.Format(time.RFC3339),
			"rent_end_time":   start.Add(4 * time.Hour).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, w.Code)
		requestIDs = append(requestIDs, int64(resp.Data["request"].(map[string]interface{})["id"].(float64)))
	}

	w, _ = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/accept", requestIDs[0]), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Accepting the second request is refused and auto-rejects it.
	w, _ = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/accept", requestIDs[1]), ownerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var second domain.RentRequest
	require.NoError(t, s.db.First(&second, requestIDs[1]).Error)
	assert.True(t, second.HasResult)
	assert.False(t, second.IsAccepted)
}

func TestBatchAnswersEndpoint(t *testing.T) {
	s := setupSuite(t)

	ownerToken := s.signupAndLogin(t, "exhibition_owner", "exhibition")
	renterToken := s.signupAndLogin(t, "weekend_driver", "renter")

	w, resp := s.request(t, http.MethodPost, "/api/v1/cars", ownerToken, gin.H{
		"car_type":       "Hatchback",
		"plate":          "EE333FF",
		"price_per_hour": 80,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	carID := int64(resp.Data["car"].(map[string]interface{})["id"].(float64))

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	w, resp = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/cars/%d/requests", carID), renterToken, gin.H{
		"rent_start_time": start.Format(time.RFC3339),
		"rent_end_time":   start.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	requestID := int64(resp.Data["request"].(map[string]interface{})["id"].(float64))

	w, resp = s.request(t, http.MethodPost, "/api/v1/requests/answers", ownerToken, map[string]string{
		fmt.Sprintf("%d", requestID): "no",
		"garbage":                    "yes",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data["outcomes"], 1)

	var rejected domain.RentRequest
	require.NoError(t, s.db.First(&rejected, requestID).Error)
	assert.True(t, rejected.HasResult)
	assert.False(t, rejected.IsAccepted)
}

func TestRepairFlowOverHTTP(t *testing.T) {
	s := setupSuite(t)

	ownerToken := s.signupAndLogin(t, "exhibition_owner", "exhibition")
	renterToken := s.signupAndLogin(t, "weekend_driver", "renter")

	w, resp := s.request(t, http.MethodPost, "/api/v1/cars", ownerToken, gin.H{
		"car_type":       "Sedan",
		"plate":          "AA111BB",
		"price_per_hour": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	carID := int64(resp.Data["car"].(map[string]interface{})["id"].(float64))

	// Make the renter the current renter via acceptance.
	w, _ = s.request(t, http.MethodPost, "/api/v1/credit", renterToken, gin.H{"delta": 1000})
	require.Equal(t, http.StatusOK, w.Code)

	start := time.Now().Add(time.Minute).UTC().Truncate(time.Second)
	w, resp = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/cars/%d/requests", carID), renterToken, gin.H{
		"rent_start_time": start.Format(time.RFC3339),
		"rent_end_time":   start.Add(2 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	requestID := int64(resp.Data["request"].(map[string]interface{})["id"].(float64))

	w, _ = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/accept", requestID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Staff flags the car; the value persists literally.
	w, resp = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/cars/%d/repair", carID), ownerToken, gin.H{"needs_repair": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp.Data["car"].(map[string]interface{})["needs_repair"])

	// Renter acknowledges: flag clears, 100 moves exhibition -> renter.
	w, resp = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/cars/%d/repair", carID), renterToken, gin.H{"needs_repair": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp.Data["car"].(map[string]interface{})["needs_repair"])

	w, resp = s.request(t, http.MethodGet, "/api/v1/credit", renterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	// 1000 top-up - 200 rental + 100 compensation
	assert.Equal(t, float64(900), resp.Data["balance"])

	w, resp = s.request(t, http.MethodGet, "/api/v1/credit", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), resp.Data["balance"])
}

func TestStaffManagementEndpoints(t *testing.T) {
	s := setupSuite(t)

	ownerToken := s.signupAndLogin(t, "exhibition_owner", "exhibition")
	renterToken := s.signupAndLogin(t, "weekend_driver", "renter")

	// Renters are locked out of staff management entirely.
	w, _ := s.request(t, http.MethodGet, "/api/v1/staff", renterToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := s.request(t, http.MethodPost, "/api/v1/staff", ownerToken, gin.H{
		"username": "front_desk",
		"password": "secret99",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	staffID := int64(resp.Data["staff"].(map[string]interface{})["id"].(float64))

	w, resp = s.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/staff/%d/capabilities", staffID), ownerToken, gin.H{
		"can_answer_requests": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp.Data["staff"].(map[string]interface{})["can_answer_requests"])

	w, resp = s.request(t, http.MethodGet, "/api/v1/staff", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data["staff"], 2)
}
