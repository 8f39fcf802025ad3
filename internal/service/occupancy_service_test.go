package service

import (
	"context"
	"testing"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOccupancyService(t *testing.T, db *gorm.DB, onDay string) (*OccupancyService, *publisherStub) {
	t.Helper()
	pub := &publisherStub{}
	svc := NewOccupancyService(db, repository.NewOccupancyRepository(db), pub)
	svc.now = func() time.Time { return mustDay(t, onDay).Add(14 * time.Hour) }
	return svc, pub
}

func createApprovedStaff(t *testing.T, db *gorm.DB, document, start, end string) *models.StaffReservation {
	t.Helper()
	res := &models.StaffReservation{
		FullName:  "Ana Souza",
		Document:  document,
		StartDate: mustDay(t, start),
		EndDate:   mustDay(t, end),
		Status:    models.ReservationStatusApproved,
	}
	require.NoError(t, db.Create(res).Error)
	return res
}

func TestOccupancyService_CheckinAutoSlot(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc, pub := newOccupancyService(t, db, "2026-03-01")
	dorm := createActiveDormitory(t, db, "401", 3)
	res := createApprovedStaff(t, db, "11122233344", "2026-03-01", "2026-03-05")

	occupancy, err := svc.Checkin(context.Background(), CheckinInput{
		Ref:         res.Ref(),
		DormitoryID: dorm.ID,
		OperatorID:  7,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, occupancy.Slot)
	assert.Equal(t, models.OccupancyStatusOccupied, occupancy.Status)

	var reloaded models.Dormitory
	require.NoError(t, db.First(&reloaded, dorm.ID).Error)
	assert.Equal(t, 1, reloaded.OccupiedCount)

	require.Len(t, pub.occupancies, 1)
	assert.Equal(t, "checkin", pub.occupancies[0].Action)
	assert.Equal(t, 2, pub.occupancies[0].Vacancy)
}

func TestOccupancyService_CheckinSpecificSlot(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc, _ := newOccupancyService(t, db, "2026-03-01")
	dorm := createActiveDormitory(t, db, "402", 3)
	first := createApprovedStaff(t, db, "11122233344", "2026-03-01", "2026-03-05")
	second := createApprovedStaff(t, db, "55566677788", "2026-03-01", "2026-03-05")

	occupancy, err := svc.Checkin(context.Background(), CheckinInput{
		Ref: first.Ref(), DormitoryID: dorm.ID, Slot: 2, OperatorID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, occupancy.Slot)

	// The same slot again loses to the first occupant.
	_, err = svc.Checkin(context.Background(), CheckinInput{
		Ref: second.Ref(), DormitoryID: dorm.ID, Slot: 2, OperatorID: 7,
	})
	assertAppErrorCode(t, err, models.CodeConflict)

	t.Run("slot out of range", func(t *testing.T) {
		_, err := svc.Checkin(context.Background(), CheckinInput{
			Ref: second.Ref(), DormitoryID: dorm.ID, Slot: 4, OperatorID: 7,
		})
		assertAppErrorCode(t, err, models.CodeCapacity)
	})
}

func TestOccupancyService_CheckinDormitoryStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		status   models.DormitoryStatus
		wantCode string
	}{
		// A standby dormitory refuses check-ins as a capacity condition even
		// with every slot free.
		{"standby", models.DormitoryStatusStandby, models.CodeCapacity},
		{"maintenance", models.DormitoryStatusMaintenance, models.CodeState},
		{"inactive", models.DormitoryStatusInactive, models.CodeState},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			db := setupServiceTestDB(t)
			svc, _ := newOccupancyService(t, db, "2026-03-01")
			dorm := &models.Dormitory{Number: "405-" + tc.name, Capacity: 2, Status: tc.status}
			require.NoError(t, db.Create(dorm).Error)
			res := createApprovedStaff(t, db, "11122233344", "2026-03-01", "2026-03-05")

			_, err := svc.Checkin(context.Background(), CheckinInput{
				Ref: res.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
			})
			assertAppErrorCode(t, err, tc.wantCode)
		})
	}
}

func TestOccupancyService_CheckinWindow(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		onDay   string
		wantErr bool
	}{
		{"two days before start", "2026-03-08", true},
		{"grace day before start", "2026-03-09", false},
		{"start day", "2026-03-10", false},
		{"last day", "2026-03-14", false},
		{"day after end", "2026-03-15", true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			db := setupServiceTestDB(t)
			svc, _ := newOccupancyService(t, db, tc.onDay)
			dorm := createActiveDormitory(t, db, "403", 2)
			res := createApprovedStaff(t, db, "11122233344", "2026-03-10", "2026-03-14")

			_, err := svc.Checkin(context.Background(), CheckinInput{
				Ref: res.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
			})
			if tc.wantErr {
				assertAppErrorCode(t, err, models.CodeState)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOccupancyService_CheckinRequiresApproved(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc, _ := newOccupancyService(t, db, "2026-03-01")
	dorm := createActiveDormitory(t, db, "404", 2)
	res := createPendingStaff(t, db, "2026-03-01", "2026-03-05")

	_, err := svc.Checkin(context.Background(), CheckinInput{
		Ref: res.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
	})
	assertAppErrorCode(t, err, models.CodeState)
}

func TestOccupancyService_CheckinInactiveDormitory(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc, _ := newOccupancyService(t, db, "2026-03-01")
	dorm := &models.Dormitory{Number: "405", Capacity: 2, Status: models.DormitoryStatusMaintenance}
	require.NoError(t, db.Create(dorm).Error)
	res := createApprovedStaff(t, db, "11122233344", "2026-03-01", "2026-03-05")

	_, err := svc.Checkin(context.Background(), CheckinInput{
		Ref: res.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
	})
	assertAppErrorCode(t, err, models.CodeState)
}

func TestOccupancyService_CheckinFullDormitory(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc, _ := newOccupancyService(t, db, "2026-03-01")
	dorm := createActiveDormitory(t, db, "406", 1)
	first := createApprovedStaff(t, db, "11122233344", "2026-03-01", "2026-03-05")
	second := createApprovedStaff(t, db, "55566677788", "2026-03-01", "2026-03-05")

	_, err := svc.Checkin(context.Background(), CheckinInput{
		Ref: first.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
	})
	require.NoError(t, err)

	_, err = svc.Checkin(context.Background(), CheckinInput{
		Ref: second.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
	})
	assertAppErrorCode(t, err, models.CodeCapacity)
}

func TestOccupancyService_ReservationIsOneShot(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc, pub := newOccupancyService(t, db, "2026-03-01")
	dorm := createActiveDormitory(t, db, "407", 2)
	res := createApprovedStaff(t, db, "11122233344", "2026-03-01", "2026-03-05")

	occupancy, err := svc.Checkin(context.Background(), CheckinInput{
		Ref: res.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
	})
	require.NoError(t, err)

	released, err := svc.Checkout(context.Background(), CheckoutInput{
		OccupancyID: occupancy.ID, OperatorID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OccupancyStatusReleased, released.Status)
	require.NotNil(t, released.CheckoutAt)

	var reloaded models.Dormitory
	require.NoError(t, db.First(&reloaded, dorm.ID).Error)
	assert.Equal(t, 0, reloaded.OccupiedCount)

	// The released occupancy still consumes the reservation.
	_, err = svc.Checkin(context.Background(), CheckinInput{
		Ref: res.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
	})
	assertAppErrorCode(t, err, models.CodeState)

	require.Len(t, pub.occupancies, 2)
	assert.Equal(t, "checkout", pub.occupancies[1].Action)
}

func TestOccupancyService_CheckoutTwice(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc, _ := newOccupancyService(t, db, "2026-03-01")
	dorm := createActiveDormitory(t, db, "408", 2)
	res := createApprovedStaff(t, db, "11122233344", "2026-03-01", "2026-03-05")

	occupancy, err := svc.Checkin(context.Background(), CheckinInput{
		Ref: res.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
	})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), CheckoutInput{OccupancyID: occupancy.ID, OperatorID: 7})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), CheckoutInput{OccupancyID: occupancy.ID, OperatorID: 7})
	assertAppErrorCode(t, err, models.CodeState)

	t.Run("unknown occupancy", func(t *testing.T) {
		_, err := svc.Checkout(context.Background(), CheckoutInput{OccupancyID: 9999, OperatorID: 7})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestOccupancyService_SlotReusedAfterCheckout(t *testing.T) {
	t.Parallel()

	db := setupServiceTestDB(t)
	svc, _ := newOccupancyService(t, db, "2026-03-01")
	dorm := createActiveDormitory(t, db, "409", 1)
	first := createApprovedStaff(t, db, "11122233344", "2026-03-01", "2026-03-05")
	second := createApprovedStaff(t, db, "55566677788", "2026-03-01", "2026-03-05")

	occupancy, err := svc.Checkin(context.Background(), CheckinInput{
		Ref: first.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, occupancy.Slot)

	_, err = svc.Checkout(context.Background(), CheckoutInput{OccupancyID: occupancy.ID, OperatorID: 7})
	require.NoError(t, err)

	next, err := svc.Checkin(context.Background(), CheckinInput{
		Ref: second.Ref(), DormitoryID: dorm.ID, OperatorID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, next.Slot)
}
