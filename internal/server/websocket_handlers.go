package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/middleware"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// wsTicketTTL bounds the window between issuing a ticket and opening
// the websocket with it.
const wsTicketTTL = 30 * time.Second

// IssueWSTicket issues a short-lived single-use websocket ticket
// @Summary Issue a websocket ticket
// @Description Exchange an authenticated session for a short-lived single-use ticket accepted by the websocket endpoints
// @Tags websocket
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			fmt.Errorf("websocket tickets unavailable without redis"))
	}

	ticket := uuid.NewString()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	value := strconv.FormatUint(uint64(s.operatorID(c)), 10)
	if err := s.redis.Set(c.Context(), key, value, wsTicketTTL).Err(); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "Failed to store websocket ticket", "error", err)
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// BoardWebsocketHandler streams vacancy board and occupancy events.
// Authentication is handled by route middleware and operatorID is read from
// connection locals. An optional dormitory_id query narrows the stream to
// one dormitory.
func (s *Server) BoardWebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		operatorIDVal := conn.Locals("operatorID")
		operatorID, ok := operatorIDVal.(uint)
		if !ok || operatorID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		if s.boardHub == nil || !s.featureFlags.Enabled("board_ws", operatorID) {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"board stream disabled"}`))
			_ = conn.Close()
			return
		}

		var dormitoryID uint
		if raw := conn.Query("dormitory_id"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid dormitory_id"}`))
				_ = conn.Close()
				return
			}
			dormitoryID = uint(parsed)
		}

		client, err := s.boardHub.Register(operatorID, dormitoryID, conn)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
