package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	kafka_config "gleam/pkg/kafka/config"

	"github.com/segmentio/kafka-go"
)

// Consumer wraps a kafka-go reader and drives a MessageHandler with
// bounded retries.
type Consumer struct {
	reader     *kafka.Reader
	topic      string
	groupID    string
	maxRetries int
	handler    MessageHandler
	closed     bool
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

// NewConsumer creates a new Kafka consumer in the given consumer group.
func NewConsumer(cfg *kafka_config.Config, topic string, groupID string, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       cfg.ConsumerMinBytes,
		MaxBytes:       cfg.ConsumerMaxBytes,
		MaxWait:        cfg.ConsumerMaxWait,
		CommitInterval: cfg.ConsumerCommitInterval,
		StartOffset:    cfg.ConsumerStartOffset,
		Logger:         kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger:    kafka.LoggerFunc(log.Printf),
	})

	return &Consumer{
		reader:     reader,
		topic:      topic,
		groupID:    groupID,
		maxRetries: cfg.ConsumerMaxRetries,
		handler:    handler,
	}, nil
}

// Start consumes messages until ctx is cancelled or the consumer is
// closed. Offsets are committed after the handler returns, so a failed
// message is skipped rather than redelivered forever.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.mu.RUnlock()

	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			kafkaMsg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.Printf("kafka consumer error fetching message: %v", err)
				time.Sleep(1 * time.Second)
				continue
			}

			msg := c.convertMessage(kafkaMsg)
			if err := c.processMessage(ctx, msg); err != nil {
				log.Printf("kafka consumer giving up on message %s: %v", msg.GetEventID(), err)
			}

			if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
				log.Printf("kafka consumer error committing offset: %v", err)
			}
		}
	}
}

// processMessage runs the handler with retries and exponential backoff.
func (c *Consumer) processMessage(ctx context.Context, msg Message) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if lastErr = c.handler(ctx, msg); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func (c *Consumer) convertMessage(kafkaMsg kafka.Message) Message {
	headers := make(map[string]string, len(kafkaMsg.Headers))
	for _, h := range kafkaMsg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		Key:       string(kafkaMsg.Key),
		Value:     kafkaMsg.Value,
		Headers:   headers,
		Topic:     kafkaMsg.Topic,
		Partition: kafkaMsg.Partition,
		Offset:    kafkaMsg.Offset,
		Timestamp: kafkaMsg.Time,
	}
}

// Close stops the consumer and waits for the run loop to exit.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.reader.Close()
	c.wg.Wait()
	return err
}
