// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"gorm.io/gorm"
)

// ReservationRepository defines the interface for reservation data operations.
// It fronts both concrete variants (staff, visitor) behind models.Reservable;
// call sites never branch on the concrete kind.
type ReservationRepository interface {
	CreateStaff(ctx context.Context, reservation *models.StaffReservation) error
	CreateVisitor(ctx context.Context, reservation *models.VisitorReservation) error
	GetStaff(ctx context.Context, id uint) (*models.StaffReservation, error)
	GetVisitor(ctx context.Context, id uint) (*models.VisitorReservation, error)
	GetByRef(ctx context.Context, ref models.ReservationRef) (models.Reservable, error)
	List(ctx context.Context, kind models.ReservationKind, status models.ReservationStatus, limit, offset int) ([]models.Reservable, error)
	FindByDocument(ctx context.Context, document string) ([]models.Reservable, error)
	SearchEligible(ctx context.Context, term string, clock ReservationClock) ([]models.Reservable, error)
}

// ReservationClock carries the query instant for eligibility searches.
// Today and Deadline are midnight-UTC dates: a reservation is inside the
// check-in window when start_date <= Deadline and end_date >= Today.
type ReservationClock struct {
	Today    time.Time
	Deadline time.Time
}

// reservationRepository implements ReservationRepository
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) CreateStaff(ctx context.Context, reservation *models.StaffReservation) error {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reservationRepository) CreateVisitor(ctx context.Context, reservation *models.VisitorReservation) error {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reservationRepository) GetStaff(ctx context.Context, id uint) (*models.StaffReservation, error) {
	var reservation models.StaffReservation
	if err := r.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reservation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &reservation, nil
}

func (r *reservationRepository) GetVisitor(ctx context.Context, id uint) (*models.VisitorReservation, error) {
	var reservation models.VisitorReservation
	if err := r.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reservation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &reservation, nil
}

func (r *reservationRepository) GetByRef(ctx context.Context, ref models.ReservationRef) (models.Reservable, error) {
	switch ref.Kind {
	case models.ReservationKindStaff:
		return r.GetStaff(ctx, ref.ID)
	case models.ReservationKindVisitor:
		return r.GetVisitor(ctx, ref.ID)
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown reservation kind %q", ref.Kind))
	}
}

func (r *reservationRepository) List(ctx context.Context, kind models.ReservationKind, status models.ReservationStatus, limit, offset int) ([]models.Reservable, error) {
	var out []models.Reservable

	appendStaff := func() error {
		var rows []models.StaffReservation
		q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
		if status != "" {
			q = q.Where("status = ?", status)
		}
		if err := q.Find(&rows).Error; err != nil {
			return models.NewInternalError(err)
		}
		for i := range rows {
			out = append(out, &rows[i])
		}
		return nil
	}
	appendVisitor := func() error {
		var rows []models.VisitorReservation
		q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
		if status != "" {
			q = q.Where("status = ?", status)
		}
		if err := q.Find(&rows).Error; err != nil {
			return models.NewInternalError(err)
		}
		for i := range rows {
			out = append(out, &rows[i])
		}
		return nil
	}

	switch kind {
	case models.ReservationKindStaff:
		if err := appendStaff(); err != nil {
			return nil, err
		}
	case models.ReservationKindVisitor:
		if err := appendVisitor(); err != nil {
			return nil, err
		}
	default:
		if err := appendStaff(); err != nil {
			return nil, err
		}
		if err := appendVisitor(); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (r *reservationRepository) FindByDocument(ctx context.Context, document string) ([]models.Reservable, error) {
	var staff []models.StaffReservation
	if err := r.db.WithContext(ctx).Where("document = ?", document).Find(&staff).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var visitors []models.VisitorReservation
	if err := r.db.WithContext(ctx).Where("document = ?", document).Find(&visitors).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	out := make([]models.Reservable, 0, len(staff)+len(visitors))
	for i := range staff {
		out = append(out, &staff[i])
	}
	for i := range visitors {
		out = append(out, &visitors[i])
	}
	return out, nil
}

func (r *reservationRepository) SearchEligible(ctx context.Context, term string, clock ReservationClock) ([]models.Reservable, error) {
	like := "%" + term + "%"

	var staff []models.StaffReservation
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.ReservationStatusApproved).
		Where("start_date <= ? AND end_date >= ?", clock.Deadline, clock.Today).
		Where("NOT EXISTS (SELECT 1 FROM occupancies o WHERE o.reservation_kind = ? AND o.reservation_id = staff_reservations.id)",
			models.ReservationKindStaff).
		Where("LOWER(full_name) LIKE LOWER(?) OR document LIKE ? OR protocol = ?", like, like, term).
		Order("start_date ASC").
		Find(&staff).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var visitors []models.VisitorReservation
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.ReservationStatusApproved).
		Where("start_date <= ? AND end_date >= ?", clock.Deadline, clock.Today).
		Where("NOT EXISTS (SELECT 1 FROM occupancies o WHERE o.reservation_kind = ? AND o.reservation_id = visitor_reservations.id)",
			models.ReservationKindVisitor).
		Where("LOWER(full_name) LIKE LOWER(?) OR document LIKE ? OR protocol = ?", like, like, term).
		Order("start_date ASC").
		Find(&visitors).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	out := make([]models.Reservable, 0, len(staff)+len(visitors))
	for i := range staff {
		out = append(out, &staff[i])
	}
	for i := range visitors {
		out = append(out, &visitors[i])
	}
	return out, nil
}
