// Package events publishes domain events over MQTT so that downstream
// consumers (accounting, notifications) can react to back-office changes.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Event types.
const (
	TripsheetSubmitted = "tripsheet.submitted"
	TripsheetApproved  = "tripsheet.approved"
	BillGenerated      = "bill.generated"
	SalaryGenerated    = "salary.generated"
	AdvanceDeducted    = "advance.deducted"
)

const publishTimeout = 5 * time.Second

// Event is the envelope written to the broker.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher sends domain events. Publishing is fire-and-forget from the
// caller's point of view; a failure never undoes the change it describes.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
	Close()
}

// NewEvent wraps data in an envelope with a fresh ID.
func NewEvent(eventType string, data any, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: now.UTC(),
		Data:       data,
	}
}

// Topic is the MQTT topic an event type is published on.
func Topic(prefix, eventType string) string {
	return prefix + "/" + eventType
}

// MQTTPublisher publishes events with QoS 1.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	logger log.FieldLogger
}

// ConnectMQTT connects to broker and returns a publisher for topics under
// prefix.
func ConnectMQTT(broker, clientID, prefix string, logger log.FieldLogger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(publishTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.WithError(err).Warn("mqtt connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return NewMQTTPublisher(client, prefix, logger), nil
}

// NewMQTTPublisher wraps an already configured client.
func NewMQTTPublisher(client mqtt.Client, prefix string, logger log.FieldLogger) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix, logger: logger}
}

func (p *MQTTPublisher) Publish(ctx context.Context, eventType string, data any) error {
	event := NewEvent(eventType, data, time.Now())
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	token := p.client.Publish(Topic(p.prefix, eventType), 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return errors.New("mqtt publish timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	p.logger.WithFields(log.Fields{"event_id": event.ID, "type": eventType}).Debug("event published")
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close()                                     {}
