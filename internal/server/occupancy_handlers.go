package server

import (
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

type checkinRequest struct {
	Kind          string `json:"kind"`
	ReservationID uint   `json:"reservation_id"`
	DormitoryID   uint   `json:"dormitory_id"`
	Slot          int    `json:"slot,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Checkin assigns a bed to an approved reservation
// @Summary Check in a reservation
// @Description Assign a dormitory slot to an approved reservation. Omit slot for the lowest free one.
// @Tags occupancies
// @Accept json
// @Produce json
// @Param request body checkinRequest true "Check-in data"
// @Success 201 {object} models.Occupancy
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /occupancies/checkin [post]
func (s *Server) Checkin(c *fiber.Ctx) error {
	var body checkinRequest
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	kind := models.ReservationKind(body.Kind)
	if kind != models.ReservationKindStaff && kind != models.ReservationKindVisitor {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("kind must be staff or visitor"))
	}
	if body.ReservationID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("reservation_id is required"))
	}

	occupancy, err := s.occupancyService.Checkin(c.Context(), service.CheckinInput{
		Ref:         models.ReservationRef{Kind: kind, ID: body.ReservationID},
		DormitoryID: body.DormitoryID,
		Slot:        body.Slot,
		OperatorID:  s.operatorID(c),
		Notes:       body.Notes,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(occupancy)
}

// Checkout releases an active occupancy
// @Summary Check out an occupancy
// @Description Release the bed held by an active occupancy. The reservation stays consumed.
// @Tags occupancies
// @Accept json
// @Produce json
// @Param id path int true "Occupancy ID"
// @Param request body object false "Optional notes"
// @Success 200 {object} models.Occupancy
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /occupancies/{id}/checkout [post]
func (s *Server) Checkout(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body struct {
		Notes string `json:"notes,omitempty"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	occupancy, err := s.occupancyService.Checkout(c.Context(), service.CheckoutInput{
		OccupancyID: id,
		OperatorID:  s.operatorID(c),
		Notes:       body.Notes,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(occupancy)
}

// GetOccupancy loads one occupancy
// @Summary Get an occupancy
// @Tags occupancies
// @Produce json
// @Param id path int true "Occupancy ID"
// @Success 200 {object} models.Occupancy
// @Failure 404 {object} models.ErrorResponse
// @Router /occupancies/{id} [get]
func (s *Server) GetOccupancy(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	occupancy, err := s.occupancyService.GetOccupancy(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(occupancy)
}
