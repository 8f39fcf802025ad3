package notifications

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishDecision(context.Background(), DecisionEvent{}))
	assert.NoError(t, n.PublishOccupancy(context.Background(), OccupancyEvent{}))
	assert.NoError(t, n.StartOccupancySubscriber(context.Background(), nil))
}

func TestDormitoryChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "allocations:dorm:5", DormitoryChannel(5))
	assert.Equal(t, "allocations:dorm:120", DormitoryChannel(120))
}

func TestNotifier_PublishAndReceiveOccupancy(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 4)
	require.NoError(t, n.StartOccupancySubscriber(ctx, func(_ string, payload string) {
		payloads <- payload
	}))

	event := OccupancyEvent{
		Action:      "checkin",
		OccupancyID: 3,
		DormitoryID: 12,
		Slot:        2,
		Ref:         models.ReservationRef{Kind: models.ReservationKindStaff, ID: 9},
		Vacancy:     1,
		OperatorID:  4,
		At:          time.Now(),
	}
	require.NoError(t, n.PublishOccupancy(context.Background(), event))

	// The event lands on the dormitory channel and the board broadcast.
	var got OccupancyEvent
	for i := 0; i < 2; i++ {
		select {
		case payload := <-payloads:
			require.NoError(t, json.Unmarshal([]byte(payload), &got))
			assert.Equal(t, "checkin", got.Action)
			assert.Equal(t, uint(12), got.DormitoryID)
			assert.Equal(t, models.ReservationKindStaff, got.Ref.Kind)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for occupancy event %d", i)
		}
	}
}

func TestNotifier_DecisionSubscriberStopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	require.NoError(t, n.StartDecisionSubscriber(ctx, func(_ string, _ string) {
		atomic.AddInt32(&received, 1)
	}))

	require.NoError(t, n.PublishDecision(context.Background(), DecisionEvent{
		Ref:      models.ReservationRef{Kind: models.ReservationKindVisitor, ID: 2},
		Protocol: "prot-2",
		Status:   models.ReservationStatusApproved,
	}))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishDecision(context.Background(), DecisionEvent{
		Ref:    models.ReservationRef{Kind: models.ReservationKindVisitor, ID: 3},
		Status: models.ReservationStatusRejected,
	}))
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&received) >= 2
	}, 200*time.Millisecond, 10*time.Millisecond)
}
