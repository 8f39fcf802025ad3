// Package notifications provides real-time event delivery for reservation
// decisions and dormitory occupancy changes.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"github.com/redis/go-redis/v9"
)

// DecisionEvent is published when a pending reservation is approved or rejected.
type DecisionEvent struct {
	Ref          models.ReservationRef    `json:"ref"`
	Protocol     string                   `json:"protocol"`
	Status       models.ReservationStatus `json:"status"`
	RejectReason string                   `json:"reject_reason,omitempty"`
	OperatorID   uint                     `json:"operator_id"`
	At           time.Time                `json:"at"`
}

// OccupancyEvent is published on check-in and check-out.
type OccupancyEvent struct {
	Action      string                `json:"action"` // "checkin" or "checkout"
	OccupancyID uint                  `json:"occupancy_id"`
	DormitoryID uint                  `json:"dormitory_id"`
	Slot        int                   `json:"slot"`
	Ref         models.ReservationRef `json:"ref"`
	Vacancy     int                   `json:"vacancy"`
	OperatorID  uint                  `json:"operator_id"`
	At          time.Time             `json:"at"`
}

// Notifier provides helpers to publish allocation events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishDecision sends a decision event to the decisions channel. Delivery
// is best effort; a nil client is a no-op.
func (n *Notifier) PublishDecision(ctx context.Context, event DecisionEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, "allocations:decisions", string(payload)).Err()
}

// PublishOccupancy sends an occupancy event to the dormitory's channel and to
// the board broadcast channel.
func (n *Notifier) PublishOccupancy(ctx context.Context, event OccupancyEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	channel := DormitoryChannel(event.DormitoryID)
	if err := n.rdb.Publish(ctx, channel, string(payload)).Err(); err != nil {
		return err
	}
	return n.rdb.Publish(ctx, "allocations:board", string(payload)).Err()
}

// StartOccupancySubscriber subscribes to the occupancy patterns and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartOccupancySubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "allocations:dorm:*", "allocations:board")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in OccupancySubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// StartDecisionSubscriber subscribes to the decisions channel.
func (n *Notifier) StartDecisionSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, "allocations:decisions")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in DecisionSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// DormitoryChannel derives the Redis channel name for a dormitory.
func DormitoryChannel(dormitoryID uint) string {
	return "allocations:dorm:" + strconv.FormatUint(uint64(dormitoryID), 10)
}
