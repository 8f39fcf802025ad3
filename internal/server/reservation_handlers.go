package server

import (
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// reservationRequest is the shared intake payload. Registration and Unit
// apply to staff requests, Agency to visitor requests; the rest is common.
type reservationRequest struct {
	FullName     string `json:"full_name"`
	Document     string `json:"document"`
	Registration string `json:"registration,omitempty"`
	Unit         string `json:"unit,omitempty"`
	Agency       string `json:"agency,omitempty"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DocumentPath string `json:"document_path,omitempty"`
}

// parseDates validates the date fields. On failure it writes a 400 JSON
// response and returns errResponseWritten; callers should return nil.
func (r *reservationRequest) parseDates(c *fiber.Ctx) (start, end time.Time, err error) {
	start, parseErr := time.Parse(dateLayout, r.StartDate)
	if parseErr != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("start_date must be in YYYY-MM-DD format"))
		return start, end, errResponseWritten
	}
	end, parseErr = time.Parse(dateLayout, r.EndDate)
	if parseErr != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("end_date must be in YYYY-MM-DD format"))
		return start, end, errResponseWritten
	}
	return start, end, nil
}

// CreateStaffReservation handles staff reservation intake
// @Summary Create a staff reservation
// @Description Submit a dormitory stay request for a staff member. The reservation starts pending.
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body reservationRequest true "Reservation data"
// @Success 201 {object} models.StaffReservation
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /reservations/staff [post]
func (s *Server) CreateStaffReservation(c *fiber.Ctx) error {
	var body reservationRequest
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	start, end, err := body.parseDates(c)
	if err != nil {
		return nil
	}

	reservation, err := s.reservationService.CreateStaffReservation(c.Context(), service.CreateStaffReservationInput{
		FullName:     body.FullName,
		Document:     body.Document,
		Registration: body.Registration,
		Unit:         body.Unit,
		Email:        body.Email,
		Phone:        body.Phone,
		StartDate:    start,
		EndDate:      end,
		DocumentPath: body.DocumentPath,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(reservation)
}

// CreateVisitorReservation handles visitor reservation intake
// @Summary Create a visitor reservation
// @Description Submit a dormitory stay request for an outside visitor. The reservation starts pending.
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body reservationRequest true "Reservation data"
// @Success 201 {object} models.VisitorReservation
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /reservations/visitor [post]
func (s *Server) CreateVisitorReservation(c *fiber.Ctx) error {
	var body reservationRequest
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	start, end, err := body.parseDates(c)
	if err != nil {
		return nil
	}

	reservation, err := s.reservationService.CreateVisitorReservation(c.Context(), service.CreateVisitorReservationInput{
		FullName:     body.FullName,
		Document:     body.Document,
		Agency:       body.Agency,
		Email:        body.Email,
		Phone:        body.Phone,
		StartDate:    start,
		EndDate:      end,
		DocumentPath: body.DocumentPath,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(reservation)
}

// GetReservation loads one reservation
// @Summary Get a reservation
// @Tags reservations
// @Produce json
// @Param kind path string true "Reservation kind (staff or visitor)"
// @Param id path int true "Reservation ID"
// @Success 200 {object} models.StaffReservation
// @Failure 404 {object} models.ErrorResponse
// @Router /reservations/{kind}/{id} [get]
func (s *Server) GetReservation(c *fiber.Ctx) error {
	ref, err := s.parseReservationRef(c)
	if err != nil {
		return nil
	}

	reservation, err := s.reservationService.GetReservation(c.Context(), ref)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(reservation)
}

// ListReservations lists reservations with optional filters
// @Summary List reservations
// @Description List reservations filtered by kind and status.
// @Tags reservations
// @Produce json
// @Param kind query string false "Filter by kind (staff or visitor)"
// @Param status query string false "Filter by status (pending, approved, rejected)"
// @Success 200 {array} models.StaffReservation
// @Router /reservations [get]
func (s *Server) ListReservations(c *fiber.Ctx) error {
	kind := models.ReservationKind(c.Query("kind"))
	status := models.ReservationStatus(c.Query("status"))
	page := parsePagination(c, 20)

	reservations, err := s.reservationService.ListReservations(c.Context(), kind, status, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"reservations": reservations,
		"count":        len(reservations),
	})
}

// SearchEligible finds reservations able to check in right now
// @Summary Search check-in eligible reservations
// @Description Find approved reservations inside the check-in window that have not been consumed, matching name, document or protocol.
// @Tags reservations
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {array} models.StaffReservation
// @Failure 400 {object} models.ErrorResponse
// @Router /reservations/eligible [get]
func (s *Server) SearchEligible(c *fiber.Ctx) error {
	results, err := s.reservationService.SearchEligible(c.Context(), c.Query("q"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"results": results,
		"count":   len(results),
	})
}
