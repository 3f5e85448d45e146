package kafka_infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageHandler func(ctx context.Context, message kafka.Message) error

// MessageReader is the subset of *kafka.Reader the consumer relies on.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs one group member per worker so partitions are handled in parallel
// while offsets within a partition are committed in order.
type Consumer struct {
	readers []MessageReader
	topic   string
	groupID string
	logger  *zap.Logger
	handler MessageHandler
}

func NewConsumer(brokers []string, topic, groupID string, workers int, handler MessageHandler, l *zap.Logger) *Consumer {
	readers := make([]MessageReader, 0, workers)
	for i := 0; i < workers; i++ {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          topic,
			GroupID:        groupID,
			MinBytes:       10e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
			Logger:         kafka.LoggerFunc(l.Sugar().Debugf),
			ErrorLogger:    kafka.LoggerFunc(l.Sugar().Errorf),
		}))
	}
	return newConsumer(readers, topic, groupID, handler, l)
}

func newConsumer(readers []MessageReader, topic, groupID string, handler MessageHandler, l *zap.Logger) *Consumer {
	return &Consumer{
		readers: readers,
		topic:   topic,
		groupID: groupID,
		logger:  l,
		handler: handler,
	}
}

// Consume blocks until ctx is cancelled or every reader has been closed.
func (c *Consumer) Consume(ctx context.Context) error {
	c.logger.Info("Kafka consumer starting message consumption",
		zap.String("topic", c.topic),
		zap.String("group_id", c.groupID),
		zap.Int("workers", len(c.readers)),
	)

	var wg sync.WaitGroup
	for i, reader := range c.readers {
		wg.Add(1)
		go func(worker int, reader MessageReader) {
			defer wg.Done()
			c.consumeLoop(ctx, worker, reader)
		}(i, reader)
	}
	wg.Wait()
	return ctx.Err()
}

func (c *Consumer) consumeLoop(ctx context.Context, worker int, reader MessageReader) {
	logger := c.logger.With(zap.Int("worker", worker))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Context cancelled, stopping consumer worker.", zap.String("topic", c.topic))
			return
		default:
		}

		fetchCtx, cancelFetch := context.WithTimeout(ctx, 5*time.Second)
		m, err := reader.FetchMessage(fetchCtx)
		cancelFetch()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, kafka.ErrGroupClosed) || errors.Is(err, io.EOF) {
				logger.Info("Consumer worker stopping due to context cancellation or reader closure.", zap.Error(err))
				return
			}
			logger.Error("Error fetching message from Kafka", zap.Error(err), zap.String("topic", c.topic))
			time.Sleep(1 * time.Second)
			continue
		}

		if err := c.handler(ctx, m); err != nil {
			logger.Error("Error handling Kafka message",
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
			continue
		}

		commitCtx, cancelCommit := context.WithTimeout(context.Background(), 5*time.Second)
		if err := reader.CommitMessages(commitCtx, m); err != nil {
			logger.Error("Failed to commit offset for message",
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
		cancelCommit()
	}
}

func (c *Consumer) Close() error {
	var errs []error
	for _, reader := range c.readers {
		if err := reader.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		c.logger.Error("Failed to close Kafka consumer readers", zap.Error(err), zap.String("topic", c.topic))
		return fmt.Errorf("failed to close Kafka consumer readers: %w", err)
	}
	c.logger.Info("Kafka consumer readers closed.", zap.String("topic", c.topic))
	return nil
}
