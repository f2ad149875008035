package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/chainmall/authgate/core"
	"github.com/chainmall/authgate/ports"
)

const (
	// LoginTopic carries events for completed authentications, either path
	LoginTopic = "authgate.login"

	// LogoutTopic carries events for revoked sessions
	LogoutTopic = "authgate.logout"
)

// LoginEvent notifies other services that a principal authenticated
type LoginEvent struct {
	Subject string    `json:"subject"`
	Method  string    `json:"method"`
	At      time.Time `json:"at"`
}

// LogoutEvent notifies other services that a session was revoked
type LogoutEvent struct {
	Subject string    `json:"subject"`
	At      time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) PublishLogin(ctx context.Context, principal core.Principal) error {
	event := LoginEvent{
		Subject: principal.Subject,
		Method:  string(principal.Method),
		At:      time.Now(),
	}
	return p.publish(LoginTopic, event)
}

func (p *WatermillPublisher) PublishLogout(ctx context.Context, subject string) error {
	event := LogoutEvent{
		Subject: subject,
		At:      time.Now(),
	}
	return p.publish(LogoutTopic, event)
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
