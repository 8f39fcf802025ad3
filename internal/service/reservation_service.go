package service

import (
	"context"
	"strings"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/repository"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/validation"
)

// ReservationService handles reservation intake and eligibility queries.
type ReservationService struct {
	reservationRepo repository.ReservationRepository
	now             func() time.Time
}

// CreateStaffReservationInput carries the fields of a staff stay request.
type CreateStaffReservationInput struct {
	FullName     string
	Document     string
	Registration string
	Unit         string
	Email        string
	Phone        string
	StartDate    time.Time
	EndDate      time.Time
	DocumentPath string
}

// CreateVisitorReservationInput carries the fields of a visitor stay request.
type CreateVisitorReservationInput struct {
	FullName     string
	Document     string
	Agency       string
	Email        string
	Phone        string
	StartDate    time.Time
	EndDate      time.Time
	DocumentPath string
}

// NewReservationService creates a new reservation service
func NewReservationService(reservationRepo repository.ReservationRepository) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		now:             time.Now,
	}
}

// CreateStaffReservation validates and stores a new staff reservation in
// pending state. The document is normalized before any conflict check so the
// single-pending rule cannot be dodged with formatting.
func (s *ReservationService) CreateStaffReservation(ctx context.Context, in CreateStaffReservationInput) (*models.StaffReservation, error) {
	identity, period, err := s.validateRequest(in.FullName, in.Document, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, identity.Document, period); err != nil {
		return nil, err
	}

	reservation := &models.StaffReservation{
		FullName:     identity.FullName,
		Document:     identity.Document,
		Registration: strings.TrimSpace(in.Registration),
		Unit:         strings.TrimSpace(in.Unit),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		StartDate:    period.StartDate,
		EndDate:      period.EndDate,
		Status:       models.ReservationStatusPending,
		DocumentPath: in.DocumentPath,
	}
	if err := s.reservationRepo.CreateStaff(ctx, reservation); err != nil {
		return nil, err
	}

	return reservation, nil
}

// CreateVisitorReservation validates and stores a new visitor reservation in
// pending state.
func (s *ReservationService) CreateVisitorReservation(ctx context.Context, in CreateVisitorReservationInput) (*models.VisitorReservation, error) {
	identity, period, err := s.validateRequest(in.FullName, in.Document, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, identity.Document, period); err != nil {
		return nil, err
	}

	reservation := &models.VisitorReservation{
		FullName:     identity.FullName,
		Document:     identity.Document,
		Agency:       strings.TrimSpace(in.Agency),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		StartDate:    period.StartDate,
		EndDate:      period.EndDate,
		Status:       models.ReservationStatusPending,
		DocumentPath: in.DocumentPath,
	}
	if err := s.reservationRepo.CreateVisitor(ctx, reservation); err != nil {
		return nil, err
	}

	return reservation, nil
}

// GetReservation loads a reservation through its tagged reference.
func (s *ReservationService) GetReservation(ctx context.Context, ref models.ReservationRef) (models.Reservable, error) {
	return s.reservationRepo.GetByRef(ctx, ref)
}

// ListReservations returns reservations filtered by kind and status.
// An empty kind spans both variants; an empty status spans all states.
func (s *ReservationService) ListReservations(ctx context.Context, kind models.ReservationKind, status models.ReservationStatus, limit, offset int) ([]models.Reservable, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.reservationRepo.List(ctx, kind, status, limit, offset)
}

// SearchEligible finds approved reservations that can check in right now:
// inside the check-in window and not yet consumed by any occupancy. The term
// matches name, document or protocol.
func (s *ReservationService) SearchEligible(ctx context.Context, term string) ([]models.Reservable, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, models.NewValidationError("Search term must have at least 2 characters")
	}

	today := models.TruncateToDay(s.now())
	clock := repository.ReservationClock{
		Today:    today,
		Deadline: today.AddDate(0, 0, models.CheckinGraceDays),
	}
	return s.reservationRepo.SearchEligible(ctx, term, clock)
}

func (s *ReservationService) validateRequest(fullName, document string, start, end time.Time) (models.Identity, models.Period, error) {
	var identity models.Identity
	var period models.Period

	name, err := validation.ValidateFullName(fullName)
	if err != nil {
		return identity, period, models.NewValidationError(err.Error())
	}
	doc, err := validation.ValidateDocument(document)
	if err != nil {
		return identity, period, models.NewValidationError(err.Error())
	}
	// Stay periods are date-granular, so ordering is checked on the truncated
	// days rather than the raw clock times.
	startDay := models.TruncateToDay(start)
	endDay := models.TruncateToDay(end)
	if err := validation.ValidatePeriod(startDay, endDay); err != nil {
		return identity, period, models.NewValidationError(err.Error())
	}

	identity = models.Identity{FullName: name, Document: doc}
	period = models.Period{StartDate: startDay, EndDate: endDay}
	return identity, period, nil
}

func (s *ReservationService) checkConflicts(ctx context.Context, document string, period models.Period) error {
	existing, err := s.reservationRepo.FindByDocument(ctx, document)
	if err != nil {
		return err
	}
	return CheckReservationConflict(existing, period)
}
