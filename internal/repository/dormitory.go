package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DormitoryRepository defines the interface for dormitory data operations
type DormitoryRepository interface {
	Create(ctx context.Context, dormitory *models.Dormitory) error
	GetByID(ctx context.Context, id uint) (*models.Dormitory, error)
	GetByNumber(ctx context.Context, number string) (*models.Dormitory, error)
	List(ctx context.Context) ([]models.Dormitory, error)
	ListEligible(ctx context.Context) ([]models.Dormitory, error)
	UpdateStatus(ctx context.Context, id uint, status models.DormitoryStatus) error
	FreeSlots(ctx context.Context, id uint) ([]int, error)
}

type dormitoryRepository struct {
	db *gorm.DB
}

// NewDormitoryRepository creates a new dormitory repository
func NewDormitoryRepository(db *gorm.DB) DormitoryRepository {
	return &dormitoryRepository{db: db}
}

func (r *dormitoryRepository) Create(ctx context.Context, dormitory *models.Dormitory) error {
	if err := r.db.WithContext(ctx).Create(dormitory).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *dormitoryRepository) GetByID(ctx context.Context, id uint) (*models.Dormitory, error) {
	var dormitory models.Dormitory
	if err := r.db.WithContext(ctx).First(&dormitory, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Dormitory", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &dormitory, nil
}

func (r *dormitoryRepository) GetByNumber(ctx context.Context, number string) (*models.Dormitory, error) {
	var dormitory models.Dormitory
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&dormitory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Dormitory", number)
		}
		return nil, models.NewInternalError(err)
	}
	return &dormitory, nil
}

func (r *dormitoryRepository) List(ctx context.Context) ([]models.Dormitory, error) {
	var dormitories []models.Dormitory
	if err := r.db.WithContext(ctx).Order("number ASC").Find(&dormitories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return dormitories, nil
}

func (r *dormitoryRepository) ListEligible(ctx context.Context) ([]models.Dormitory, error) {
	var dormitories []models.Dormitory
	if err := r.db.WithContext(ctx).
		Where("status = ? AND occupied_count < capacity", models.DormitoryStatusActive).
		Order("number ASC").
		Find(&dormitories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return dormitories, nil
}

func (r *dormitoryRepository) UpdateStatus(ctx context.Context, id uint, status models.DormitoryStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Dormitory{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Dormitory", id)
	}
	return nil
}

func (r *dormitoryRepository) FreeSlots(ctx context.Context, id uint) ([]int, error) {
	dormitory, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FreeSlots(r.db.WithContext(ctx), dormitory)
}

// LockDormitory loads the dormitory row under a FOR UPDATE lock. It must be
// called inside a transaction; the lock serializes concurrent check-ins and
// check-outs against the same dormitory.
func LockDormitory(tx *gorm.DB, id uint) (*models.Dormitory, error) {
	var dormitory models.Dormitory
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&dormitory, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Dormitory", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &dormitory, nil
}

// FreeSlots returns the slot numbers of the dormitory with no active
// occupancy, ascending. Slots are numbered 1..Capacity.
func FreeSlots(tx *gorm.DB, dormitory *models.Dormitory) ([]int, error) {
	var taken []int
	if err := tx.Model(&models.Occupancy{}).
		Where("dormitory_id = ? AND status = ?", dormitory.ID, models.OccupancyStatusOccupied).
		Pluck("slot", &taken).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	occupied := make(map[int]bool, len(taken))
	for _, s := range taken {
		occupied[s] = true
	}

	free := make([]int, 0, dormitory.Capacity)
	for s := 1; s <= dormitory.Capacity; s++ {
		if !occupied[s] {
			free = append(free, s)
		}
	}
	sort.Ints(free)
	return free, nil
}

// NextFreeSlot returns the lowest free slot number, or ok=false when the
// dormitory is full.
func NextFreeSlot(tx *gorm.DB, dormitory *models.Dormitory) (int, bool, error) {
	free, err := FreeSlots(tx, dormitory)
	if err != nil {
		return 0, false, err
	}
	if len(free) == 0 {
		return 0, false, nil
	}
	return free[0], true, nil
}

// RecomputeOccupiedCount counts the active occupancies of the dormitory and
// writes the result back to the cached counter, returning the fresh count.
// The counter is never incremented blindly; it is always derived from rows.
func RecomputeOccupiedCount(tx *gorm.DB, dormitoryID uint) (int, error) {
	var count int64
	if err := tx.Model(&models.Occupancy{}).
		Where("dormitory_id = ? AND status = ?", dormitoryID, models.OccupancyStatusOccupied).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	if err := tx.Model(&models.Dormitory{}).
		Where("id = ?", dormitoryID).
		Update("occupied_count", count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return int(count), nil
}
