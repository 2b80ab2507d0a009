package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// AssignmentEvent is published whenever a technician is assigned to a
// service request. The notification UI subscribes to these.
type AssignmentEvent struct {
	Slug           string    `json:"slug"`
	TechnicianName string    `json:"technician_name"`
	TractorID      string    `json:"tractor_id"`
	Priority       string    `json:"priority"`
	AssignedAt     time.Time `json:"assigned_at"`
}

// Notifier publishes assignment events to interested collaborators.
type Notifier interface {
	PublishAssignment(ctx context.Context, event AssignmentEvent) error
}

// LogNotifier writes assignment events to the log. Used when no broker is
// configured.
type LogNotifier struct{}

// PublishAssignment logs the event.
func (LogNotifier) PublishAssignment(ctx context.Context, event AssignmentEvent) error {
	log.WithFields(log.Fields{
		"slug":       event.Slug,
		"technician": event.TechnicianName,
		"tractor_id": event.TractorID,
		"priority":   event.Priority,
	}).Info("service assigned")
	return nil
}

// MQTTNotifier publishes assignment events to an MQTT topic.
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
}

// NewMQTTNotifier connects to the broker and returns a publisher for the
// given topic.
func NewMQTTNotifier(brokerURL, clientID, topic string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}

	return &MQTTNotifier{client: client, topic: topic}, nil
}

// PublishAssignment publishes the event as JSON with QoS 1.
func (n *MQTTNotifier) PublishAssignment(ctx context.Context, event AssignmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal assignment event: %w", err)
	}

	token := n.client.Publish(n.topic, 1, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt publish to %s timed out", n.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", n.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
