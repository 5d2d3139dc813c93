package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"carmarket/internal/config"
	"carmarket/internal/database"
	"carmarket/internal/domain"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM credit_entries")
	db.Exec("DELETE FROM rent_requests")
	db.Exec("DELETE FROM cars")
	db.Exec("DELETE FROM staff")
	db.Exec("DELETE FROM exhibitions")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	ownerHash, _ := bcrypt.GenerateFromPassword([]byte("owner123"), bcrypt.DefaultCost)
	owner := domain.User{
		Username:     "exhibition_owner",
		PasswordHash: string(ownerHash),
		Role:         domain.RoleExhibition,
	}
	db.Create(&owner)

	exhibition := domain.Exhibition{Name: "Downtown Motors", Credit: 5000}
	db.Create(&exhibition)

	senior := domain.Staff{
		UserID:       owner.ID,
		ExhibitionID: exhibition.ID,
		IsSenior:     true,
	}
	db.Create(&senior)

	clerkHash, _ := bcrypt.GenerateFromPassword([]byte("clerk123"), bcrypt.DefaultCost)
	clerkUser := domain.User{
		Username:     "front_desk",
		PasswordHash: string(clerkHash),
		Role:         domain.RoleExhibition,
	}
	db.Create(&clerkUser)
	clerk := domain.Staff{
		UserID:            clerkUser.ID,
		ExhibitionID:      exhibition.ID,
		CanAnswerRequests: true,
		CanManageCars:     true,
	}
	db.Create(&clerk)

	renterHash, _ := bcrypt.GenerateFromPassword([]byte("renter123"), bcrypt.DefaultCost)
	renter := domain.User{
		Username:     "weekend_driver",
		PasswordHash: string(renterHash),
		Role:         domain.RoleRenter,
		Credit:       2000,
	}
	db.Create(&renter)

	log.Println("Creating cars...")
	cars := []domain.Car{
		{ExhibitionID: exhibition.ID, CarType: "Sedan", Plate: "AA111BB", PricePerHour: 100},
		{ExhibitionID: exhibition.ID, CarType: "SUV", Plate: "CC222DD", PricePerHour: 150},
		{ExhibitionID: exhibition.ID, CarType: "Hatchback", Plate: "EE333FF", PricePerHour: 80, NeedsRepair: true},
	}
	for i := range cars {
		db.Create(&cars[i])
	}

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(10 * time.Hour)
	request := domain.RentRequest{
		CarID:         &cars[0].ID,
		RequesterID:   renter.ID,
		RentStartTime: start,
		RentEndTime:   end,
	}
	db.Create(&request)

	log.Println("Seed complete.")
	log.Println("  staff:  exhibition_owner / owner123, front_desk / clerk123")
	log.Println("  renter: weekend_driver / renter123")
}
