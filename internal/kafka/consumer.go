package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"surfalert-service/internal/logging"
	"surfalert-service/internal/models"
)

// TaskQueuer accepts processing tasks.
type TaskQueuer interface {
	QueueTask(task models.Task) bool
}

// Consumer turns trigger messages into processing tasks.
type Consumer struct {
	reader *kafkago.Reader
	svc    TaskQueuer
	logger *logging.Logger
}

func NewConsumer(brokers []string, topic, groupID string, svc TaskQueuer, logger *logging.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: time.Second,
		StartOffset:    kafkago.LastOffset,
	})
	return &Consumer{reader: reader, svc: svc, logger: logger}
}

// Start reads messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started on topic %s", c.reader.Config().Topic)
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					c.logger.Infof("Kafka consumer stopped")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				time.Sleep(time.Second)
				continue
			}

			task, err := decodeTrigger(msg.Value, time.Now().UTC())
			if err != nil {
				c.logger.Errorf("Invalid trigger at offset %d: %v", msg.Offset, err)
				continue
			}
			c.svc.QueueTask(task)
		}
	}()
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// trigger is the message body. Every field is optional.
type trigger struct {
	RequestID string     `json:"request_id"`
	SpotSlug  string     `json:"spot_slug"`
	Timestamp *time.Time `json:"timestamp"`
}

func decodeTrigger(data []byte, now time.Time) (models.Task, error) {
	var t trigger
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &t); err != nil {
			return models.Task{}, fmt.Errorf("unmarshal trigger: %w", err)
		}
	}

	task := models.Task{
		RequestID: t.RequestID,
		SpotSlug:  strings.TrimSpace(t.SpotSlug),
		Reason:    models.ReasonKafka,
		Timestamp: now,
	}
	if task.RequestID == "" {
		task.RequestID = uuid.NewString()
	} else if _, err := uuid.Parse(task.RequestID); err != nil {
		return models.Task{}, fmt.Errorf("invalid request_id %q: %w", task.RequestID, err)
	}
	if t.Timestamp != nil {
		task.Timestamp = t.Timestamp.UTC()
	}
	return task, nil
}
