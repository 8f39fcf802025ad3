package server

import (
	"errors"
	"strings"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseReservationRef reads the :kind/:id route parameters into a tagged
// reference. On failure it writes a 400 JSON response and returns
// errResponseWritten.
func (s *Server) parseReservationRef(c *fiber.Ctx) (models.ReservationRef, error) {
	kind := models.ReservationKind(strings.ToLower(c.Params("kind")))
	if kind != models.ReservationKindStaff && kind != models.ReservationKindVisitor {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Reservation kind must be 'staff' or 'visitor'"))
		return models.ReservationRef{}, errResponseWritten
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return models.ReservationRef{}, errResponseWritten
	}

	return models.ReservationRef{Kind: kind, ID: id}, nil
}

// operatorID reads the authenticated operator from locals. AuthRequired
// guarantees it is set on protected routes.
func (s *Server) operatorID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("operatorID").(uint); ok {
		return id
	}
	return 0
}
