package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/cache"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/repository"
)

// DormitoryService manages the dormitory inventory and the vacancy board.
type DormitoryService struct {
	dormitoryRepo repository.DormitoryRepository
	occupancyRepo repository.OccupancyRepository
}

// CreateDormitoryInput carries the fields of a new dormitory.
type CreateDormitoryInput struct {
	Number   string
	Capacity int
	Status   models.DormitoryStatus
}

// BoardEntry is one dormitory line of the vacancy board.
type BoardEntry struct {
	ID        uint                   `json:"id"`
	Number    string                 `json:"number"`
	Status    models.DormitoryStatus `json:"status"`
	Capacity  int                    `json:"capacity"`
	Occupied  int                    `json:"occupied"`
	Vacancy   int                    `json:"vacancy"`
	FreeSlots []int                  `json:"free_slots"`
}

// NewDormitoryService creates a new dormitory service
func NewDormitoryService(dormitoryRepo repository.DormitoryRepository, occupancyRepo repository.OccupancyRepository) *DormitoryService {
	return &DormitoryService{
		dormitoryRepo: dormitoryRepo,
		occupancyRepo: occupancyRepo,
	}
}

// CreateDormitory registers a new dormitory with slots numbered 1..Capacity.
func (s *DormitoryService) CreateDormitory(ctx context.Context, in CreateDormitoryInput) (*models.Dormitory, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, models.NewValidationError("Dormitory number is required")
	}
	if in.Capacity < 1 {
		return nil, models.NewValidationError("Capacity must be at least 1")
	}

	status := in.Status
	if status == "" {
		status = models.DormitoryStatusActive
	}
	switch status {
	case models.DormitoryStatusActive, models.DormitoryStatusInactive,
		models.DormitoryStatusMaintenance, models.DormitoryStatusStandby:
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown dormitory status %q", status))
	}

	if _, err := s.dormitoryRepo.GetByNumber(ctx, number); err == nil {
		return nil, models.NewConflictError(fmt.Sprintf("dormitory %s already exists", number))
	} else if appErr, ok := err.(*models.AppError); !ok || appErr.Code != models.CodeNotFound {
		return nil, err
	}

	dormitory := &models.Dormitory{
		Number:   number,
		Capacity: in.Capacity,
		Status:   status,
	}
	if err := s.dormitoryRepo.Create(ctx, dormitory); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.VacancyBoardKey)
	return dormitory, nil
}

// GetDormitory loads one dormitory.
func (s *DormitoryService) GetDormitory(ctx context.Context, id uint) (*models.Dormitory, error) {
	return s.dormitoryRepo.GetByID(ctx, id)
}

// ListDormitories returns every dormitory ordered by number.
func (s *DormitoryService) ListDormitories(ctx context.Context) ([]models.Dormitory, error) {
	return s.dormitoryRepo.List(ctx)
}

// ListEligible returns dormitories currently able to receive a check-in.
func (s *DormitoryService) ListEligible(ctx context.Context) ([]models.Dormitory, error) {
	return s.dormitoryRepo.ListEligible(ctx)
}

// SetStatus changes a dormitory's operational status. Occupants are not
// evicted; a non-active status only blocks new check-ins.
func (s *DormitoryService) SetStatus(ctx context.Context, id uint, status models.DormitoryStatus) (*models.Dormitory, error) {
	switch status {
	case models.DormitoryStatusActive, models.DormitoryStatusInactive,
		models.DormitoryStatusMaintenance, models.DormitoryStatusStandby:
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown dormitory status %q", status))
	}

	if err := s.dormitoryRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	cache.InvalidateDormitory(ctx, id)
	return s.dormitoryRepo.GetByID(ctx, id)
}

// ListOccupancies returns the occupancy history of one dormitory, newest
// first. The dormitory is loaded first so an unknown id yields a not-found
// error instead of an empty page.
func (s *DormitoryService) ListOccupancies(ctx context.Context, dormitoryID uint, limit, offset int) ([]models.Occupancy, error) {
	if _, err := s.dormitoryRepo.GetByID(ctx, dormitoryID); err != nil {
		return nil, err
	}
	return s.occupancyRepo.ListByDormitory(ctx, dormitoryID, limit, offset)
}

// VacancyBoard builds the per-dormitory vacancy snapshot. The board is
// cached with a short TTL and invalidated on every occupancy mutation.
func (s *DormitoryService) VacancyBoard(ctx context.Context) ([]BoardEntry, error) {
	var board []BoardEntry
	if cache.GetJSON(ctx, cache.VacancyBoardKey, &board) {
		return board, nil
	}

	dormitories, err := s.dormitoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	board = make([]BoardEntry, 0, len(dormitories))
	for i := range dormitories {
		d := &dormitories[i]
		free, err := s.dormitoryRepo.FreeSlots(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		board = append(board, BoardEntry{
			ID:        d.ID,
			Number:    d.Number,
			Status:    d.Status,
			Capacity:  d.Capacity,
			Occupied:  d.OccupiedCount,
			Vacancy:   d.Vacancy(),
			FreeSlots: free,
		})
	}

	cache.SetJSON(ctx, cache.VacancyBoardKey, board, cache.VacancyBoardTTL)
	return board, nil
}
