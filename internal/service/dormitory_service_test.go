package service

import (
	"context"
	"testing"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/cache"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func cacheClientSwap(c *redis.Client) *redis.Client {
	previous := cache.GetClient()
	cache.SetClient(c)
	return previous
}

func newDormitoryService(db *gorm.DB) *DormitoryService {
	return NewDormitoryService(
		repository.NewDormitoryRepository(db),
		repository.NewOccupancyRepository(db),
	)
}

func TestDormitoryService_Create(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newDormitoryService(db)
	ctx := context.Background()

	dorm, err := svc.CreateDormitory(ctx, CreateDormitoryInput{Number: " 501 ", Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, "501", dorm.Number)
	assert.Equal(t, models.DormitoryStatusActive, dorm.Status)

	t.Run("duplicate number", func(t *testing.T) {
		_, err := svc.CreateDormitory(ctx, CreateDormitoryInput{Number: "501", Capacity: 2})
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("zero capacity", func(t *testing.T) {
		_, err := svc.CreateDormitory(ctx, CreateDormitoryInput{Number: "502", Capacity: 0})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := svc.CreateDormitory(ctx, CreateDormitoryInput{Number: "503", Capacity: 2, Status: "demolished"})
		assertAppErrorCode(t, err, models.CodeValidation)
	})
}

func TestDormitoryService_SetStatus(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newDormitoryService(db)
	ctx := context.Background()

	dorm, err := svc.CreateDormitory(ctx, CreateDormitoryInput{Number: "504", Capacity: 2})
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, dorm.ID, models.DormitoryStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, models.DormitoryStatusMaintenance, updated.Status)
	assert.False(t, updated.EligibleForCheckin())

	_, err = svc.SetStatus(ctx, 9999, models.DormitoryStatusActive)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestDormitoryService_VacancyBoard(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newDormitoryService(db)
	ctx := context.Background()

	dorm, err := svc.CreateDormitory(ctx, CreateDormitoryInput{Number: "505", Capacity: 3})
	require.NoError(t, err)

	res := createApprovedStaff(t, db, "11122233344", "2026-03-01", "2026-03-05")
	require.NoError(t, db.Create(&models.Occupancy{
		DormitoryID:     dorm.ID,
		Slot:            2,
		ReservationKind: models.ReservationKindStaff,
		ReservationID:   res.ID,
		Status:          models.OccupancyStatusOccupied,
		CheckinAt:       time.Now(),
		CheckinBy:       1,
	}).Error)
	_, err = repository.RecomputeOccupiedCount(db, dorm.ID)
	require.NoError(t, err)

	board, err := svc.VacancyBoard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "505", board[0].Number)
	assert.Equal(t, 1, board[0].Occupied)
	assert.Equal(t, 2, board[0].Vacancy)
	assert.Equal(t, []int{1, 3}, board[0].FreeSlots)
}

func TestDormitoryService_VacancyBoardUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	// cache client is package state shared with other tests
	previous := cacheClientSwap(client)
	defer cacheClientSwap(previous)

	db := setupServiceTestDB(t)
	svc := newDormitoryService(db)
	ctx := context.Background()

	dorm, err := svc.CreateDormitory(ctx, CreateDormitoryInput{Number: "506", Capacity: 2})
	require.NoError(t, err)

	first, err := svc.VacancyBoard(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 2, first[0].Vacancy)

	// Mutate behind the board's back; the cached snapshot must still serve.
	require.NoError(t, db.Model(&models.Dormitory{}).Where("id = ?", dorm.ID).
		Update("occupied_count", 1).Error)

	cached, err := svc.VacancyBoard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cached[0].Vacancy)

	// Status changes invalidate; the next read sees fresh state.
	_, err = svc.SetStatus(ctx, dorm.ID, models.DormitoryStatusStandby)
	require.NoError(t, err)

	fresh, err := svc.VacancyBoard(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DormitoryStatusStandby, fresh[0].Status)
	assert.Equal(t, 1, fresh[0].Vacancy)
}
