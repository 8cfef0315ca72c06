package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// TripEvent is published on every trip lifecycle change.
type TripEvent struct {
	EmpresaID  string    `json:"empresaId"`
	ExternalID string    `json:"idExterno"`
	Type       string    `json:"tipo"`
	State      string    `json:"estado"`
	Date       string    `json:"fecha"`
	At         time.Time `json:"at"`
}

// Publisher emits trip lifecycle events. Publishing is best-effort:
// failures are logged, never surfaced to the request.
type Publisher interface {
	PublishTripEvent(evt TripEvent)
}

// NoopPublisher discards events; used when no broker is configured.
type NoopPublisher struct{}

// PublishTripEvent does nothing.
func (NoopPublisher) PublishTripEvent(TripEvent) {}

// MQTTPublisher publishes trip events to an MQTT broker under
// <prefix>/trips/<externalID>.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(brokerURL, clientID, prefix string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, token.Error())
	}
	return &MQTTPublisher{client: client, prefix: prefix}, nil
}

// Topic returns the topic a trip's events are published on.
func (p *MQTTPublisher) Topic(externalID string) string {
	return fmt.Sprintf("%s/trips/%s", p.prefix, externalID)
}

// PublishTripEvent publishes one event, fire-and-forget.
func (p *MQTTPublisher) PublishTripEvent(evt TripEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		log.WithError(err).Error("Failed to marshal trip event")
		return
	}
	token := p.client.Publish(p.Topic(evt.ExternalID), 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).WithField("trip", evt.ExternalID).Error("Failed to publish trip event")
		}
	}()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
