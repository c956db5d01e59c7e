package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingEventCreated       = "event.created"
	RoutingEventUpdated       = "event.updated"
	RoutingEventStatusChanged = "event.status_changed"
)

// StatusChange is the payload of event.status_changed.
type StatusChange struct {
	ID     uint               `json:"id"`
	Status models.EventStatus `json:"status"`
}

// EventConsumer keeps the local catalog in sync with the administration service.
type EventConsumer struct {
	catalog service.CatalogService
}

func NewEventConsumer(catalog service.CatalogService) *EventConsumer {
	return &EventConsumer{catalog: catalog}
}

// Run handles messages until msgs is closed or ctx is done.
func (ec *EventConsumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				log.Println("[EventConsumer] channel closed, stopping consumer")
				return nil
			}
			ec.handleMessage(ctx, msg)
		}
	}
}

func (ec *EventConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var err error
	switch msg.RoutingKey {
	case RoutingEventCreated, RoutingEventUpdated:
		err = ec.syncEvent(ctx, msg.Body)
	case RoutingEventStatusChanged:
		err = ec.changeStatus(ctx, msg.Body)
	default:
		log.Printf("[EventConsumer] ignoring routing key %q", msg.RoutingKey)
		msg.Ack(false)
		return
	}

	switch {
	case err == nil:
		msg.Ack(false)
	case errors.Is(err, errMalformed), errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrInvalidCatalogEvent):
		log.Printf("[EventConsumer] dropping %s message: %v", msg.RoutingKey, err)
		msg.Nack(false, false)
	default:
		log.Printf("[EventConsumer] failed to handle %s: %v", msg.RoutingKey, err)
		msg.Nack(false, true) // requeue
	}
}

var errMalformed = errors.New("malformed catalog message")

func (ec *EventConsumer) syncEvent(ctx context.Context, body []byte) error {
	var in service.CatalogEvent
	if err := json.Unmarshal(body, &in); err != nil {
		return errors.Join(errMalformed, err)
	}
	if in.Event.Status != "" && !in.Event.Status.Valid() {
		return errMalformed
	}

	_, err := ec.catalog.SyncEvent(ctx, in)
	return err
}

func (ec *EventConsumer) changeStatus(ctx context.Context, body []byte) error {
	var change StatusChange
	if err := json.Unmarshal(body, &change); err != nil {
		return errors.Join(errMalformed, err)
	}
	if change.ID == 0 || !change.Status.Valid() {
		return errMalformed
	}
	return ec.catalog.UpdateEventStatus(ctx, change.ID, change.Status)
}
