package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Account-activity actions recorded on the audit queue.
const (
	ActionRegistered       = "user_registered"
	ActionUpdated          = "user_updated"
	ActionLoggedIn         = "user_logged_in"
	ActionLoginFailed      = "login_failed"
	ActionVerificationSent = "verification_sent"
)

// Event is the JSON payload published per account action. It never carries
// passwords or verification codes.
type Event struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	UserUUID  string         `json:"user_uuid,omitempty"`
	Username  string         `json:"username,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	At        time.Time      `json:"at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEvent fills the id and timestamp for an action.
func NewEvent(action string) Event {
	return Event{ID: uuid.NewString(), Action: action, At: time.Now().UTC()}
}

// Publisher wraps an AMQP channel and queue for publishing audit events.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Declare durable queue
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Publish puts one event on the queue. Publishing is best-effort from the
// caller's perspective; request handling never fails on a publish error.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}
