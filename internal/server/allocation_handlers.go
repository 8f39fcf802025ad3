package server

import (
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

// approveRequest optionally bundles an immediate check-in with the approval.
type approveRequest struct {
	Checkin *struct {
		DormitoryID uint   `json:"dormitory_id"`
		Slot        int    `json:"slot,omitempty"`
		Notes       string `json:"notes,omitempty"`
	} `json:"checkin,omitempty"`
}

// ApproveReservation approves a pending reservation
// @Summary Approve a reservation
// @Description Approve a pending reservation, optionally bundling an immediate check-in. A failed bundled check-in rolls back the approval.
// @Tags allocations
// @Accept json
// @Produce json
// @Param kind path string true "Reservation kind (staff or visitor)"
// @Param id path int true "Reservation ID"
// @Param request body approveRequest false "Optional bundled check-in"
// @Success 200 {object} service.DecisionResult
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /reservations/{kind}/{id}/approve [post]
func (s *Server) ApproveReservation(c *fiber.Ctx) error {
	ref, err := s.parseReservationRef(c)
	if err != nil {
		return nil
	}

	var body approveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	in := service.DecideInput{
		Ref:        ref,
		Approve:    true,
		OperatorID: s.operatorID(c),
	}
	if body.Checkin != nil {
		in.Checkin = &service.DecisionCheckin{
			DormitoryID: body.Checkin.DormitoryID,
			Slot:        body.Checkin.Slot,
			Notes:       body.Checkin.Notes,
		}
	}

	result, err := s.allocationService.Decide(c.Context(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}

// RejectReservation rejects a pending reservation
// @Summary Reject a reservation
// @Description Reject a pending reservation with a mandatory reason.
// @Tags allocations
// @Accept json
// @Produce json
// @Param kind path string true "Reservation kind (staff or visitor)"
// @Param id path int true "Reservation ID"
// @Param request body object true "Rejection reason"
// @Success 200 {object} service.DecisionResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /reservations/{kind}/{id}/reject [post]
func (s *Server) RejectReservation(c *fiber.Ctx) error {
	ref, err := s.parseReservationRef(c)
	if err != nil {
		return nil
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.allocationService.Decide(c.Context(), service.DecideInput{
		Ref:        ref,
		Approve:    false,
		Reason:     body.Reason,
		OperatorID: s.operatorID(c),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}
