package fleet

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"carmarket/internal/domain"
	"carmarket/internal/modules/ledger"
)

type fixtures struct {
	exhibition domain.Exhibition
	staffUser  domain.User
	renter     domain.User
	car        domain.Car
}

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:fleet_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Exhibition{}, &domain.Staff{},
		&domain.Car{}, &domain.RentRequest{}, &ledger.CreditEntry{},
	))
	return NewService(db), db
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()
	f := fixtures{}

	f.exhibition = domain.Exhibition{Name: "Downtown Motors", Credit: 1000}
	require.NoError(t, db.Create(&f.exhibition).Error)

	f.staffUser = domain.User{Username: "clerk", PasswordHash: "x", Role: domain.RoleExhibition}
	require.NoError(t, db.Create(&f.staffUser).Error)
	require.NoError(t, db.Create(&domain.Staff{
		UserID:        f.staffUser.ID,
		ExhibitionID:  f.exhibition.ID,
		CanManageCars: true,
	}).Error)

	f.renter = domain.User{Username: "driver", PasswordHash: "x", Role: domain.RoleRenter, Credit: 500}
	require.NoError(t, db.Create(&f.renter).Error)

	f.car = domain.Car{ExhibitionID: f.exhibition.ID, CarType: "Sedan", Plate: "AA111BB", PricePerHour: 100}
	require.NoError(t, db.Create(&f.car).Error)

	return f
}

func rentOut(t *testing.T, db *gorm.DB, f *fixtures) {
	t.Helper()
	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(10 * time.Hour)
	require.NoError(t, db.Model(&domain.Car{}).Where("id = ?", f.car.ID).Updates(map[string]any{
		"renter_id":       f.renter.ID,
		"rent_start_time": start,
		"rent_end_time":   end,
	}).Error)
}

func TestRenterAcknowledgmentClearsFlagAndCompensates(t *testing.T) {
	svc, db := setupTestService(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	rentOut(t, db, &f)
	require.NoError(t, db.Model(&domain.Car{}).Where("id = ?", f.car.ID).Update("needs_repair", true).Error)

	// The submitted value is irrelevant for renters: the flag always clears.
	car, err := svc.ReportRepair(ctx, &f.renter, f.car.ID, true)
	require.NoError(t, err)
	assert.False(t, car.NeedsRepair)

	var renter domain.User
	db.First(&renter, f.renter.ID)
	assert.Equal(t, int64(500+RepairCompensation), renter.Credit)

	var ex domain.Exhibition
	db.First(&ex, f.exhibition.ID)
	assert.Equal(t, int64(1000-RepairCompensation), ex.Credit)

	var count int64
	db.Model(&ledger.CreditEntry{}).Where("kind = ?", ledger.EntryRepair).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestRenterAcknowledgmentWithoutPriorFlagMovesNoMoney(t *testing.T) {
	svc, db := setupTestService(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	rentOut(t, db, &f)

	car, err := svc.ReportRepair(ctx, &f.renter, f.car.ID, true)
	require.NoError(t, err)
	assert.False(t, car.NeedsRepair)

	var renter domain.User
	db.First(&renter, f.renter.ID)
	assert.Equal(t, int64(500), renter.Credit)

	var ex domain.Exhibition
	db.First(&ex, f.exhibition.ID)
	assert.Equal(t, int64(1000), ex.Credit)
}

func TestStaffRepairReportPersistsLiterally(t *testing.T) {
	svc, db := setupTestService(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	car, err := svc.ReportRepair(ctx, &f.staffUser, f.car.ID, true)
	require.NoError(t, err)
	assert.True(t, car.NeedsRepair)

	// No settlement for staff reports.
	var ex domain.Exhibition
	db.First(&ex, f.exhibition.ID)
	assert.Equal(t, int64(1000), ex.Credit)

	car, err = svc.ReportRepair(ctx, &f.staffUser, f.car.ID, false)
	require.NoError(t, err)
	assert.False(t, car.NeedsRepair)
}

func TestRepairReportForbiddenForStrangers(t *testing.T) {
	svc, db := setupTestService(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	// A renter who is not the current renter of this car.
	stranger := domain.User{Username: "stranger", PasswordHash: "x", Role: domain.RoleRenter}
	require.NoError(t, db.Create(&stranger).Error)

	_, err := svc.ReportRepair(ctx, &stranger, f.car.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListForActor(t *testing.T) {
	svc, db := setupTestService(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	flagged := domain.Car{ExhibitionID: f.exhibition.ID, CarType: "SUV", Plate: "CC222DD", PricePerHour: 150, NeedsRepair: true}
	require.NoError(t, db.Create(&flagged).Error)
	rentOut(t, db, &f)

	// Staff see the whole fleet.
	cars, err := svc.ListForActor(ctx, &f.staffUser)
	require.NoError(t, err)
	assert.Len(t, cars, 2)

	// Renters see neither the rented car nor the flagged one.
	cars, err = svc.ListForActor(ctx, &f.renter)
	require.NoError(t, err)
	assert.Len(t, cars, 0)
}

func TestUpdatePriceGuards(t *testing.T) {
	svc, db := setupTestService(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	car, err := svc.UpdatePrice(ctx, &f.staffUser, f.car.ID, UpdateCarInput{PricePerHour: 250})
	require.NoError(t, err)
	assert.Equal(t, int64(250), car.PricePerHour)

	// Rented cars cannot be repriced.
	rentOut(t, db, &f)
	_, err = svc.UpdatePrice(ctx, &f.staffUser, f.car.ID, UpdateCarInput{PricePerHour: 300})
	assert.ErrorIs(t, err, ErrCarRented)

	// Renters cannot manage cars at all.
	_, err = svc.UpdatePrice(ctx, &f.renter, f.car.ID, UpdateCarInput{PricePerHour: 300})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteCarKeepsRequestHistory(t *testing.T) {
	svc, db := setupTestService(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	req := domain.RentRequest{
		CarID:         &f.car.ID,
		RequesterID:   f.renter.ID,
		RentStartTime: start,
		RentEndTime:   start.Add(time.Hour),
	}
	require.NoError(t, db.Create(&req).Error)

	require.NoError(t, svc.DeleteCar(ctx, &f.staffUser, f.car.ID))

	var gone int64
	db.Model(&domain.Car{}).Where("id = ?", f.car.ID).Count(&gone)
	assert.Zero(t, gone)

	var kept domain.RentRequest
	require.NoError(t, db.First(&kept, req.ID).Error)
	assert.Nil(t, kept.CarID)
}

func TestAddCarRequiresCapability(t *testing.T) {
	svc, db := setupTestService(t)
	f := seedFixtures(t, db)
	ctx := context.Background()

	in := AddCarInput{CarType: "Coupe", Plate: "GG444HH", PricePerHour: 120}

	car, err := svc.AddCar(ctx, &f.staffUser, in)
	require.NoError(t, err)
	assert.Equal(t, f.exhibition.ID, car.ExhibitionID)

	noCap := domain.User{Username: "intern", PasswordHash: "x", Role: domain.RoleExhibition}
	require.NoError(t, db.Create(&noCap).Error)
	require.NoError(t, db.Create(&domain.Staff{UserID: noCap.ID, ExhibitionID: f.exhibition.ID}).Error)

	_, err = svc.AddCar(ctx, &noCap, in)
	assert.ErrorIs(t, err, ErrForbidden)
}
