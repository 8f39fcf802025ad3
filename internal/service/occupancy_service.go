package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/cache"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/notifications"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/observability"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/repository"

	"gorm.io/gorm"
)

// EventPublisher pushes allocation events to interested listeners. Delivery
// is best effort and never blocks the state change that triggered it.
type EventPublisher interface {
	PublishDecision(ctx context.Context, event notifications.DecisionEvent) error
	PublishOccupancy(ctx context.Context, event notifications.OccupancyEvent) error
}

// OccupancyService drives the check-in and check-out state machine.
type OccupancyService struct {
	db            *gorm.DB
	occupancyRepo repository.OccupancyRepository
	publisher     EventPublisher
	now           func() time.Time
}

// CheckinInput carries a check-in command. Slot zero requests automatic
// assignment of the lowest free slot.
type CheckinInput struct {
	Ref         models.ReservationRef
	DormitoryID uint
	Slot        int
	OperatorID  uint
	Notes       string
}

// CheckoutInput carries a check-out command.
type CheckoutInput struct {
	OccupancyID uint
	OperatorID  uint
	Notes       string
}

// NewOccupancyService creates a new occupancy service
func NewOccupancyService(db *gorm.DB, occupancyRepo repository.OccupancyRepository, publisher EventPublisher) *OccupancyService {
	return &OccupancyService{
		db:            db,
		occupancyRepo: occupancyRepo,
		publisher:     publisher,
		now:           time.Now,
	}
}

// Checkin places an approved reservation into a dormitory slot. The whole
// operation runs in one transaction holding the dormitory row lock, so two
// concurrent check-ins against the same dormitory serialize and the loser
// re-reads slot state already containing the winner's row.
func (s *OccupancyService) Checkin(ctx context.Context, in CheckinInput) (*models.Occupancy, error) {
	var occupancy *models.Occupancy
	var dormitory *models.Dormitory

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := lockReservation(tx, in.Ref)
		if err != nil {
			return err
		}
		occupancy, dormitory, err = performCheckin(tx, reservation, in, s.now())
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	observability.RecordCheckin(dormitory.Number, dormitory.OccupiedCount)
	cache.InvalidateDormitory(ctx, dormitory.ID)
	s.publishOccupancy(ctx, "checkin", occupancy, dormitory, in.OperatorID)

	return occupancy, nil
}

// Checkout releases an active occupancy and frees its slot.
func (s *OccupancyService) Checkout(ctx context.Context, in CheckoutInput) (*models.Occupancy, error) {
	var occupancy models.Occupancy
	var dormitory *models.Dormitory

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&occupancy, in.OccupancyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Occupancy", in.OccupancyID)
			}
			return models.NewInternalError(err)
		}
		if !occupancy.Active() {
			return models.NewStateError("occupancy is already released")
		}

		var err error
		dormitory, err = repository.LockDormitory(tx, occupancy.DormitoryID)
		if err != nil {
			return err
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":      models.OccupancyStatusReleased,
			"checkout_at": now,
			"checkout_by": in.OperatorID,
		}
		if in.Notes != "" {
			updates["notes"] = in.Notes
		}
		if err := tx.Model(&occupancy).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}

		count, err := repository.RecomputeOccupiedCount(tx, dormitory.ID)
		if err != nil {
			return err
		}
		dormitory.OccupiedCount = count
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	observability.RecordCheckout(dormitory.Number, dormitory.OccupiedCount)
	cache.InvalidateDormitory(ctx, dormitory.ID)
	s.publishOccupancy(ctx, "checkout", &occupancy, dormitory, in.OperatorID)

	return &occupancy, nil
}

// GetOccupancy loads an occupancy with its dormitory.
func (s *OccupancyService) GetOccupancy(ctx context.Context, id uint) (*models.Occupancy, error) {
	return s.occupancyRepo.GetByID(ctx, id)
}

// GetByReservation loads the occupancy consumed by a reservation, if any.
func (s *OccupancyService) GetByReservation(ctx context.Context, ref models.ReservationRef) (*models.Occupancy, error) {
	return s.occupancyRepo.GetByReservation(ctx, ref)
}

// ListActive returns the active occupancies of a dormitory ordered by slot.
func (s *OccupancyService) ListActive(ctx context.Context, dormitoryID uint) ([]models.Occupancy, error) {
	return s.occupancyRepo.ListActiveByDormitory(ctx, dormitoryID)
}

func (s *OccupancyService) publishOccupancy(ctx context.Context, action string, occupancy *models.Occupancy, dormitory *models.Dormitory, operatorID uint) {
	if s.publisher == nil {
		return
	}
	event := notifications.OccupancyEvent{
		Action:      action,
		OccupancyID: occupancy.ID,
		DormitoryID: dormitory.ID,
		Slot:        occupancy.Slot,
		Ref:         occupancy.Ref(),
		Vacancy:     dormitory.Vacancy(),
		OperatorID:  operatorID,
		At:          s.now(),
	}
	if err := s.publisher.PublishOccupancy(ctx, event); err != nil {
		logWarn(ctx, "publish occupancy event failed", err)
	}
}

// performCheckin executes the check-in preconditions and writes inside an
// open transaction. The caller has already loaded the reservation under lock.
// Preconditions, in order:
//
//  1. reservation approved
//  2. check-in window open (one day of grace before the start date)
//  3. reservation never consumed before, active or released
//  4. dormitory active with vacancy, checked under its row lock
//  5. requested slot in range and currently free
func performCheckin(tx *gorm.DB, reservation models.Reservable, in CheckinInput, now time.Time) (*models.Occupancy, *models.Dormitory, error) {
	if reservation.CurrentStatus() != models.ReservationStatusApproved {
		return nil, nil, models.NewStateError(
			fmt.Sprintf("reservation is %s, only approved reservations can check in", reservation.CurrentStatus()))
	}
	if !reservation.Stay().WindowOpen(now) {
		return nil, nil, models.NewStateError("check-in window is not open for this reservation")
	}

	consumed, err := repository.OccupancyExistsForReservation(tx, reservation.Ref())
	if err != nil {
		return nil, nil, err
	}
	if consumed {
		return nil, nil, models.NewStateError("reservation has already been used for a check-in")
	}

	dormitory, err := repository.LockDormitory(tx, in.DormitoryID)
	if err != nil {
		return nil, nil, err
	}
	if dormitory.Status == models.DormitoryStatusStandby {
		// Standby dormitories are held back from allocation entirely, so the
		// refusal is a capacity condition even when slots are free.
		return nil, nil, models.NewCapacityError(
			fmt.Sprintf("dormitory %s is reserved on standby and cannot receive check-ins", dormitory.Number))
	}
	if dormitory.Status != models.DormitoryStatusActive {
		return nil, nil, models.NewStateError(
			fmt.Sprintf("dormitory %s is %s and cannot receive check-ins", dormitory.Number, dormitory.Status))
	}

	slot := in.Slot
	if slot == 0 {
		next, ok, err := repository.NextFreeSlot(tx, dormitory)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, models.NewCapacityError(
				fmt.Sprintf("dormitory %s is at full capacity", dormitory.Number))
		}
		slot = next
	} else {
		if slot < 1 || slot > dormitory.Capacity {
			return nil, nil, models.NewCapacityError(
				fmt.Sprintf("slot must be between 1 and %d", dormitory.Capacity))
		}
		holder, err := repository.ActiveOccupancyBySlot(tx, dormitory.ID, slot)
		if err != nil {
			return nil, nil, err
		}
		if holder != nil {
			observability.SlotConflictsTotal.Inc()
			return nil, nil, models.NewConflictError(
				fmt.Sprintf("slot %d of dormitory %s is already occupied", slot, dormitory.Number))
		}
	}

	occupancy := &models.Occupancy{
		DormitoryID:     dormitory.ID,
		Slot:            slot,
		ReservationKind: reservation.Ref().Kind,
		ReservationID:   reservation.Ref().ID,
		Status:          models.OccupancyStatusOccupied,
		CheckinAt:       now,
		CheckinBy:       in.OperatorID,
		Notes:           in.Notes,
	}
	if err := tx.Create(occupancy).Error; err != nil {
		return nil, nil, models.NewInternalError(err)
	}

	count, err := repository.RecomputeOccupiedCount(tx, dormitory.ID)
	if err != nil {
		return nil, nil, err
	}
	if count > dormitory.Capacity {
		return nil, nil, models.NewCapacityError(
			fmt.Sprintf("dormitory %s would exceed its capacity of %d", dormitory.Number, dormitory.Capacity))
	}
	dormitory.OccupiedCount = count

	return occupancy, dormitory, nil
}
