package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"studyplanner/internal/logger"
	"studyplanner/internal/model"
	"studyplanner/internal/platform/rabbitmq"
)

// ChatMessageStore is the persistence target of the worker.
type ChatMessageStore interface {
	Create(ctx context.Context, message *model.ChatMessage) error
}

// ChatPersistWorker drains the chat transcript queue into the database.
type ChatPersistWorker struct {
	conn      *amqp.Connection
	store     ChatMessageStore
	queueName string
	log       *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewChatPersistWorker(conn *amqp.Connection, store ChatMessageStore, queueName string, log *logger.Logger) *ChatPersistWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatPersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		log:       log.With("component", "chat_persist_worker", "queue", queueName),
	}
}

func (w *ChatPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.log.Warn("delivery channel closed")
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.log.Error("persist chat message failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.log.Info("worker started")
	return nil
}

func (w *ChatPersistWorker) handle(ctx context.Context, body []byte) error {
	var msg model.ChatMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode chat message failed: %w", err)
	}
	msg.ID = 0
	return w.store.Create(ctx, &msg)
}

func (w *ChatPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
