package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/kickslab/shoestore/internal/kafka"
	"github.com/kickslab/shoestore/internal/orders"
	"github.com/kickslab/shoestore/internal/redisx"
)

// Recorder persists payment attempts. Record reports false when the
// order already has one.
type Recorder interface {
	Record(ctx context.Context, p *Payment) (bool, error)
}

// Publisher is satisfied by kafkax.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Recorder    Recorder
	Redis       *redis.Client // optional event dedup
	Producer    Publisher     // publishes payment.recorded
	ServiceName string

	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// HandleOrderPlaced is the consumer handler: one pending payment per
// placed order.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "payments", env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	pay := &Payment{
		ID:          uuid.NewString(),
		OrderID:     p.OrderID,
		CustomerID:  p.CustomerID,
		AmountCents: p.TotalCents,
		Method:      MethodCreditCard,
		Status:      StatusPending,
		CreatedAt:   s.now(),
	}
	inserted, err := s.Recorder.Record(ctx, pay)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventPaymentRecorded,
		EventVersion:  1,
		OccurredAt:    s.now(),
		Producer:      s.ServiceName,
		TraceID:       env.TraceID,
		CorrelationID: p.OrderID,
		Payload: kafkax.MustMarshal(orders.PaymentRecordedPayload{
			OrderID:     p.OrderID,
			PaymentID:   pay.ID,
			AmountCents: pay.AmountCents,
			Status:      string(pay.Status),
		}),
	}
	s.Producer.Publish(orders.PartitionKey(p.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventPaymentRecorded)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}
