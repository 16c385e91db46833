package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"studyplanner/internal/model"
)

// publishChannel is the part of *amqp.Channel the publisher needs.
type publishChannel interface {
	queueDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// ChatPublisher enqueues chat transcript messages for asynchronous persistence.
// It keeps a single channel open and reopens it after a channel-level failure.
type ChatPublisher struct {
	open      func() (publishChannel, error)
	queueName string

	mu sync.Mutex
	ch publishChannel
}

func NewChatPublisher(conn *amqp.Connection, queueName string) *ChatPublisher {
	return newChatPublisher(func() (publishChannel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}, queueName)
}

func newChatPublisher(open func() (publishChannel, error), queueName string) *ChatPublisher {
	return &ChatPublisher{open: open, queueName: queueName}
}

// Record publishes msg as a persistent JSON delivery.
func (p *ChatPublisher) Record(ctx context.Context, msg model.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal chat message payload failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		_ = ch.Close()
		p.ch = nil
		return fmt.Errorf("publish chat message failed: %w", err)
	}
	return nil
}

func (p *ChatPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}

func (p *ChatPublisher) channel() (publishChannel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	if err := DeclareQueue(ch, p.queueName); err != nil {
		_ = ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}
