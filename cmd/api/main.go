package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"carmarket/internal/config"
	"carmarket/internal/database"
	"carmarket/internal/middleware"
	"carmarket/internal/modules/auth"
	"carmarket/internal/modules/fleet"
	"carmarket/internal/modules/ledger"
	"carmarket/internal/modules/notify"
	"carmarket/internal/modules/rental"
	"carmarket/internal/modules/staffmgmt"
	jwtsvc "carmarket/internal/pkg/jwt"
	"carmarket/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	staffRepo := repository.NewStaffRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := notify.NewHub()
	defer hub.Close()
	publisher := notify.NewPublisher(hub, staffRepo)
	wsHandler := notify.NewWSHandler(hub, j)

	authService := auth.NewService(db, userRepo, staffRepo, j)
	authHandler := auth.NewHandler(authService)

	rentalService := rental.NewService(db, publisher)
	rentalHandler := rental.NewHandler(rentalService, userRepo, staffRepo)

	fleetService := fleet.NewService(db)
	fleetHandler := fleet.NewHandler(fleetService, userRepo)

	ledgerService := ledger.NewService(db)
	ledgerHandler := ledger.NewHandler(ledgerService, userRepo, staffRepo)

	staffService := staffmgmt.NewService(db, userRepo, staffRepo)
	staffHandler := staffmgmt.NewHandler(staffService, userRepo)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		v1.GET("/ws", wsHandler.HandleWebSocket)

		// protected
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

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
