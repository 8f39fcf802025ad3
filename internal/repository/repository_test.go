package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Dormitory{},
		&models.StaffReservation{},
		&models.VisitorReservation{},
		&models.Occupancy{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return d
}

func TestFreeSlots(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	dorm := models.Dormitory{Number: "101", Capacity: 4, Status: models.DormitoryStatusActive}
	require.NoError(t, db.Create(&dorm).Error)

	res := models.StaffReservation{
		FullName:  "Ana Souza",
		Document:  "11122233344",
		StartDate: day(t, "2026-03-01"),
		EndDate:   day(t, "2026-03-05"),
		Status:    models.ReservationStatusApproved,
	}
	require.NoError(t, db.Create(&res).Error)

	occ := models.Occupancy{
		DormitoryID:     dorm.ID,
		Slot:            2,
		ReservationKind: models.ReservationKindStaff,
		ReservationID:   res.ID,
		Status:          models.OccupancyStatusOccupied,
		CheckinAt:       time.Now(),
		CheckinBy:       1,
	}
	require.NoError(t, db.Create(&occ).Error)

	free, err := FreeSlots(db, &dorm)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4}, free)

	next, ok, err := NextFreeSlot(db, &dorm)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, next)
}

func TestFreeSlotsIgnoresReleased(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	dorm := models.Dormitory{Number: "102", Capacity: 2, Status: models.DormitoryStatusActive}
	require.NoError(t, db.Create(&dorm).Error)

	checkout := time.Now()
	occ := models.Occupancy{
		DormitoryID:     dorm.ID,
		Slot:            1,
		ReservationKind: models.ReservationKindVisitor,
		ReservationID:   77,
		Status:          models.OccupancyStatusReleased,
		CheckinAt:       time.Now().Add(-48 * time.Hour),
		CheckinBy:       1,
		CheckoutAt:      &checkout,
	}
	require.NoError(t, db.Create(&occ).Error)

	free, err := FreeSlots(db, &dorm)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, free)
}

func TestRecomputeOccupiedCount(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	dorm := models.Dormitory{Number: "103", Capacity: 3, Status: models.DormitoryStatusActive, OccupiedCount: 99}
	require.NoError(t, db.Create(&dorm).Error)

	for slot := 1; slot <= 2; slot++ {
		occ := models.Occupancy{
			DormitoryID:     dorm.ID,
			Slot:            slot,
			ReservationKind: models.ReservationKindStaff,
			ReservationID:   uint(slot),
			Status:          models.OccupancyStatusOccupied,
			CheckinAt:       time.Now(),
			CheckinBy:       1,
		}
		require.NoError(t, db.Create(&occ).Error)
	}

	count, err := RecomputeOccupiedCount(db, dorm.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var reloaded models.Dormitory
	require.NoError(t, db.First(&reloaded, dorm.ID).Error)
	assert.Equal(t, 2, reloaded.OccupiedCount)
	assert.Equal(t, 1, reloaded.Vacancy())
}

func TestOccupancyUniquePerReservation(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	dorm := models.Dormitory{Number: "104", Capacity: 4, Status: models.DormitoryStatusActive}
	require.NoError(t, db.Create(&dorm).Error)

	first := models.Occupancy{
		DormitoryID:     dorm.ID,
		Slot:            1,
		ReservationKind: models.ReservationKindStaff,
		ReservationID:   5,
		Status:          models.OccupancyStatusOccupied,
		CheckinAt:       time.Now(),
		CheckinBy:       1,
	}
	require.NoError(t, db.Create(&first).Error)

	checkout := time.Now()
	first.Status = models.OccupancyStatusReleased
	first.CheckoutAt = &checkout
	require.NoError(t, db.Save(&first).Error)

	// Released rows still pin the reservation: a second check-in for the
	// same reservation must be rejected by the unique index.
	second := models.Occupancy{
		DormitoryID:     dorm.ID,
		Slot:            2,
		ReservationKind: models.ReservationKindStaff,
		ReservationID:   5,
		Status:          models.OccupancyStatusOccupied,
		CheckinAt:       time.Now(),
		CheckinBy:       1,
	}
	assert.Error(t, db.Create(&second).Error)
}

func TestFindByDocumentSpansBothKinds(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	staff := models.StaffReservation{
		FullName:  "Bruno Lima",
		Document:  "55566677788",
		StartDate: day(t, "2026-04-01"),
		EndDate:   day(t, "2026-04-03"),
		Status:    models.ReservationStatusApproved,
	}
	require.NoError(t, repo.CreateStaff(ctx, &staff))

	visitor := models.VisitorReservation{
		FullName:  "Bruno Lima",
		Document:  "55566677788",
		Agency:    "PRF",
		StartDate: day(t, "2026-05-10"),
		EndDate:   day(t, "2026-05-12"),
		Status:    models.ReservationStatusPending,
	}
	require.NoError(t, repo.CreateVisitor(ctx, &visitor))

	found, err := repo.FindByDocument(ctx, "55566677788")
	require.NoError(t, err)
	require.Len(t, found, 2)

	kinds := map[models.ReservationKind]bool{}
	for _, r := range found {
		kinds[r.Ref().Kind] = true
	}
	assert.True(t, kinds[models.ReservationKindStaff])
	assert.True(t, kinds[models.ReservationKindVisitor])
}

func TestSearchEligible(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	today := day(t, "2026-06-10")
	clock := ReservationClock{Today: today, Deadline: today.AddDate(0, 0, models.CheckinGraceDays)}

	inWindow := models.StaffReservation{
		FullName:  "Carla Mendes",
		Document:  "10120230340",
		StartDate: day(t, "2026-06-11"),
		EndDate:   day(t, "2026-06-15"),
		Status:    models.ReservationStatusApproved,
	}
	require.NoError(t, repo.CreateStaff(ctx, &inWindow))

	tooEarly := models.StaffReservation{
		FullName:  "Carla Mendes",
		Document:  "10120230340",
		StartDate: day(t, "2026-06-20"),
		EndDate:   day(t, "2026-06-25"),
		Status:    models.ReservationStatusApproved,
	}
	require.NoError(t, repo.CreateStaff(ctx, &tooEarly))

	stillPending := models.VisitorReservation{
		FullName:  "Carla Mendes",
		Document:  "10120230340",
		Agency:    "PF",
		StartDate: day(t, "2026-06-09"),
		EndDate:   day(t, "2026-06-12"),
		Status:    models.ReservationStatusPending,
	}
	require.NoError(t, repo.CreateVisitor(ctx, &stillPending))

	results, err := repo.SearchEligible(ctx, "carla", clock)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, inWindow.ID, results[0].Ref().ID)
	assert.Equal(t, models.ReservationKindStaff, results[0].Ref().Kind)
}

func TestSearchEligibleSkipsConsumedReservations(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	dorm := models.Dormitory{Number: "105", Capacity: 2, Status: models.DormitoryStatusActive}
	require.NoError(t, db.Create(&dorm).Error)

	today := day(t, "2026-07-01")
	clock := ReservationClock{Today: today, Deadline: today.AddDate(0, 0, models.CheckinGraceDays)}

	res := models.StaffReservation{
		FullName:  "Diego Farias",
		Document:  "90080070060",
		StartDate: day(t, "2026-06-30"),
		EndDate:   day(t, "2026-07-05"),
		Status:    models.ReservationStatusApproved,
	}
	require.NoError(t, repo.CreateStaff(ctx, &res))

	occ := models.Occupancy{
		DormitoryID:     dorm.ID,
		Slot:            1,
		ReservationKind: models.ReservationKindStaff,
		ReservationID:   res.ID,
		Status:          models.OccupancyStatusOccupied,
		CheckinAt:       time.Now(),
		CheckinBy:       1,
	}
	require.NoError(t, db.Create(&occ).Error)

	results, err := repo.SearchEligible(ctx, "diego", clock)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDormitoryRepositoryNotFound(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewDormitoryRepository(db)

	_, err := repo.GetByID(context.Background(), 9999)
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestListEligibleDormitories(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewDormitoryRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Dormitory{Number: "201", Capacity: 2, Status: models.DormitoryStatusActive}).Error)
	require.NoError(t, db.Create(&models.Dormitory{Number: "202", Capacity: 2, OccupiedCount: 2, Status: models.DormitoryStatusActive}).Error)
	require.NoError(t, db.Create(&models.Dormitory{Number: "203", Capacity: 2, Status: models.DormitoryStatusMaintenance}).Error)

	eligible, err := repo.ListEligible(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "201", eligible[0].Number)
}
