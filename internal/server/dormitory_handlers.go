package server

import (
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

type dormitoryRequest struct {
	Number   string `json:"number"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status,omitempty"`
}

// CreateDormitory registers a new dormitory
// @Summary Create a dormitory
// @Description Register a new dormitory with slots numbered 1..capacity
// @Tags dormitories
// @Accept json
// @Produce json
// @Param request body dormitoryRequest true "Dormitory data"
// @Success 201 {object} models.Dormitory
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /dormitories [post]
func (s *Server) CreateDormitory(c *fiber.Ctx) error {
	var body dormitoryRequest
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	dormitory, err := s.dormitoryService.CreateDormitory(c.Context(), service.CreateDormitoryInput{
		Number:   body.Number,
		Capacity: body.Capacity,
		Status:   models.DormitoryStatus(body.Status),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dormitory)
}

// ListDormitories lists every dormitory
// @Summary List dormitories
// @Tags dormitories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /dormitories [get]
func (s *Server) ListDormitories(c *fiber.Ctx) error {
	dormitories, err := s.dormitoryService.ListDormitories(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"dormitories": dormitories,
		"count":       len(dormitories),
	})
}

// ListEligibleDormitories lists dormitories able to receive a check-in
// @Summary List check-in eligible dormitories
// @Description Active dormitories with at least one free slot
// @Tags dormitories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /dormitories/eligible [get]
func (s *Server) ListEligibleDormitories(c *fiber.Ctx) error {
	dormitories, err := s.dormitoryService.ListEligible(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"dormitories": dormitories,
		"count":       len(dormitories),
	})
}

// GetDormitory loads one dormitory
// @Summary Get a dormitory
// @Tags dormitories
// @Produce json
// @Param id path int true "Dormitory ID"
// @Success 200 {object} models.Dormitory
// @Failure 404 {object} models.ErrorResponse
// @Router /dormitories/{id} [get]
func (s *Server) GetDormitory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	dormitory, err := s.dormitoryService.GetDormitory(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(dormitory)
}

// SetDormitoryStatus changes a dormitory's operational status
// @Summary Set dormitory status
// @Description Change the operational status. Current occupants are kept; a non-active status only blocks new check-ins.
// @Tags dormitories
// @Accept json
// @Produce json
// @Param id path int true "Dormitory ID"
// @Param request body object true "New status"
// @Success 200 {object} models.Dormitory
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /dormitories/{id}/status [put]
func (s *Server) SetDormitoryStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	dormitory, err := s.dormitoryService.SetStatus(c.Context(), id, models.DormitoryStatus(body.Status))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(dormitory)
}

// ListDormitoryOccupancies lists the occupancy history of a dormitory
// @Summary List dormitory occupancies
// @Tags dormitories
// @Produce json
// @Param id path int true "Dormitory ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /dormitories/{id}/occupancies [get]
func (s *Server) ListDormitoryOccupancies(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 20)
	occupancies, err := s.dormitoryService.ListOccupancies(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"occupancies": occupancies,
		"count":       len(occupancies),
	})
}

// VacancyBoard returns the per-dormitory vacancy snapshot
// @Summary Vacancy board
// @Description Per-dormitory occupancy and free slot numbers. Cached with a short TTL.
// @Tags dormitories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /dormitories/board [get]
func (s *Server) VacancyBoard(c *fiber.Ctx) error {
	board, err := s.dormitoryService.VacancyBoard(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"board": board,
		"count": len(board),
	})
}
