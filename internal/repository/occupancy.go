package repository

import (
	"context"
	"errors"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"gorm.io/gorm"
)

// OccupancyRepository defines the interface for occupancy data operations
type OccupancyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Occupancy, error)
	GetByReservation(ctx context.Context, ref models.ReservationRef) (*models.Occupancy, error)
	ListActiveByDormitory(ctx context.Context, dormitoryID uint) ([]models.Occupancy, error)
	ListByDormitory(ctx context.Context, dormitoryID uint, limit, offset int) ([]models.Occupancy, error)
}

type occupancyRepository struct {
	db *gorm.DB
}

// NewOccupancyRepository creates a new occupancy repository
func NewOccupancyRepository(db *gorm.DB) OccupancyRepository {
	return &occupancyRepository{db: db}
}

func (r *occupancyRepository) GetByID(ctx context.Context, id uint) (*models.Occupancy, error) {
	var occupancy models.Occupancy
	if err := r.db.WithContext(ctx).Preload("Dormitory").First(&occupancy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Occupancy", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &occupancy, nil
}

func (r *occupancyRepository) GetByReservation(ctx context.Context, ref models.ReservationRef) (*models.Occupancy, error) {
	var occupancy models.Occupancy
	if err := r.db.WithContext(ctx).Preload("Dormitory").
		Where("reservation_kind = ? AND reservation_id = ?", ref.Kind, ref.ID).
		First(&occupancy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Occupancy", ref.ID)
		}
		return nil, models.NewInternalError(err)
	}
	return &occupancy, nil
}

func (r *occupancyRepository) ListActiveByDormitory(ctx context.Context, dormitoryID uint) ([]models.Occupancy, error) {
	var occupancies []models.Occupancy
	if err := r.db.WithContext(ctx).
		Where("dormitory_id = ? AND status = ?", dormitoryID, models.OccupancyStatusOccupied).
		Order("slot ASC").
		Find(&occupancies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return occupancies, nil
}

func (r *occupancyRepository) ListByDormitory(ctx context.Context, dormitoryID uint, limit, offset int) ([]models.Occupancy, error) {
	var occupancies []models.Occupancy
	if err := r.db.WithContext(ctx).
		Where("dormitory_id = ?", dormitoryID).
		Order("checkin_at DESC").
		Limit(limit).Offset(offset).
		Find(&occupancies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return occupancies, nil
}

// ActiveOccupancyBySlot returns the active occupancy holding the slot, or nil
// when the slot is free. Meant for use inside a transaction holding the
// dormitory row lock.
func ActiveOccupancyBySlot(tx *gorm.DB, dormitoryID uint, slot int) (*models.Occupancy, error) {
	var occupancy models.Occupancy
	err := tx.Where("dormitory_id = ? AND slot = ? AND status = ?",
		dormitoryID, slot, models.OccupancyStatusOccupied).
		First(&occupancy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &occupancy, nil
}

// OccupancyExistsForReservation reports whether the reservation has ever been
// consumed by a check-in, active or released.
func OccupancyExistsForReservation(tx *gorm.DB, ref models.ReservationRef) (bool, error) {
	var count int64
	if err := tx.Model(&models.Occupancy{}).
		Where("reservation_kind = ? AND reservation_id = ?", ref.Kind, ref.ID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
