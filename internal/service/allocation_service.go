package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/cache"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/middleware"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/notifications"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/observability"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllocationService decides pending reservations. A decision is terminal:
// once approved or rejected a reservation never returns to pending.
type AllocationService struct {
	db        *gorm.DB
	publisher EventPublisher
	now       func() time.Time
}

// DecideInput carries an approval or rejection of a pending reservation.
// Checkin, when set on an approval, bundles an immediate check-in into the
// same transaction; if the check-in fails the approval rolls back with it
// and the reservation stays pending.
type DecideInput struct {
	Ref        models.ReservationRef
	Approve    bool
	Reason     string
	OperatorID uint
	Checkin    *DecisionCheckin
}

// DecisionCheckin is the optional check-in bundled with an approval.
type DecisionCheckin struct {
	DormitoryID uint
	Slot        int
	Notes       string
}

// DecisionResult reports the outcome of a decision.
type DecisionResult struct {
	Reservation models.Reservable `json:"reservation"`
	Occupancy   *models.Occupancy `json:"occupancy,omitempty"`
}

// NewAllocationService creates a new allocation service
func NewAllocationService(db *gorm.DB, publisher EventPublisher) *AllocationService {
	return &AllocationService{
		db:        db,
		publisher: publisher,
		now:       time.Now,
	}
}

// Decide approves or rejects a pending reservation. The reservation row is
// locked for the whole transaction, so two operators racing on the same
// reservation serialize and the second sees a non-pending status.
func (s *AllocationService) Decide(ctx context.Context, in DecideInput) (*DecisionResult, error) {
	if !in.Approve {
		if err := validation.ValidateRejectReason(in.Reason); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	if in.Approve && in.Reason != "" {
		return nil, models.NewValidationError("a reason is only accepted when rejecting")
	}
	if !in.Approve && in.Checkin != nil {
		return nil, models.NewValidationError("a check-in cannot be bundled with a rejection")
	}

	result := &DecisionResult{}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := lockReservation(tx, in.Ref)
		if err != nil {
			return err
		}
		if reservation.CurrentStatus() != models.ReservationStatusPending {
			return models.NewStateError(
				fmt.Sprintf("reservation is already %s", reservation.CurrentStatus()))
		}

		updates := map[string]interface{}{}
		if in.Approve {
			updates["status"] = models.ReservationStatusApproved
		} else {
			updates["status"] = models.ReservationStatusRejected
			updates["reject_reason"] = in.Reason
		}
		if err := tx.Model(reservation).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}

		if in.Approve && in.Checkin != nil {
			reloaded, err := loadReservation(tx, in.Ref)
			if err != nil {
				return err
			}
			checkinInput := CheckinInput{
				Ref:         in.Ref,
				DormitoryID: in.Checkin.DormitoryID,
				Slot:        in.Checkin.Slot,
				OperatorID:  in.OperatorID,
				Notes:       in.Checkin.Notes,
			}
			occupancy, _, err := performCheckin(tx, reloaded, checkinInput, s.now())
			if err != nil {
				return err
			}
			result.Occupancy = occupancy
		}

		result.Reservation, err = loadReservation(tx, in.Ref)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	decision := "rejected"
	if in.Approve {
		decision = "approved"
	}
	observability.RecordDecision(string(in.Ref.Kind), decision)
	cache.InvalidateReservation(ctx, string(in.Ref.Kind), in.Ref.ID)
	if result.Occupancy != nil {
		cache.InvalidateDormitory(ctx, result.Occupancy.DormitoryID)
	}
	s.publishDecision(ctx, result.Reservation, in)

	return result, nil
}

func (s *AllocationService) publishDecision(ctx context.Context, reservation models.Reservable, in DecideInput) {
	if s.publisher == nil {
		return
	}
	event := notifications.DecisionEvent{
		Ref:          reservation.Ref(),
		Protocol:     reservation.ProtocolID(),
		Status:       reservation.CurrentStatus(),
		RejectReason: in.Reason,
		OperatorID:   in.OperatorID,
		At:           s.now(),
	}
	if err := s.publisher.PublishDecision(ctx, event); err != nil {
		logWarn(ctx, "publish decision event failed", err)
	}
}

// lockReservation loads a reservation row under a FOR UPDATE lock inside an
// open transaction.
func lockReservation(tx *gorm.DB, ref models.ReservationRef) (models.Reservable, error) {
	locked := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	return loadWith(locked, ref)
}

// loadReservation re-reads a reservation inside an open transaction.
func loadReservation(tx *gorm.DB, ref models.ReservationRef) (models.Reservable, error) {
	return loadWith(tx, ref)
}

func loadWith(tx *gorm.DB, ref models.ReservationRef) (models.Reservable, error) {
	switch ref.Kind {
	case models.ReservationKindStaff:
		var reservation models.StaffReservation
		if err := tx.First(&reservation, ref.ID).Error; err != nil {
			return nil, reservationLoadError(err, ref)
		}
		return &reservation, nil
	case models.ReservationKindVisitor:
		var reservation models.VisitorReservation
		if err := tx.First(&reservation, ref.ID).Error; err != nil {
			return nil, reservationLoadError(err, ref)
		}
		return &reservation, nil
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown reservation kind %q", ref.Kind))
	}
}

func reservationLoadError(err error, ref models.ReservationRef) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Reservation", ref.ID)
	}
	return models.NewInternalError(err)
}

func logWarn(ctx context.Context, msg string, err error) {
	if middleware.Logger == nil {
		return
	}
	middleware.Logger.WarnContext(ctx, msg, "error", err)
}
