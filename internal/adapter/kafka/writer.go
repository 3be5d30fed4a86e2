package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/argo-float-etl/internal/config"
	"github.com/couchcryptid/argo-float-etl/internal/domain"
)

// Writer produces profile documents to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured profile topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaProfileTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes profile documents in a single
// WriteMessages call. Messages are keyed by float so one float's profiles
// stay ordered on a partition.
func (w *Writer) LoadBatch(ctx context.Context, docs []domain.ProfileDocument) error {
	if len(docs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(docs))
	for i := range docs {
		msg, err := serializeToMessage(docs[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d profiles: %w", len(msgs), err)
	}
	w.logger.Debug("profiles written", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ProfileDocument into a Kafka message.
func serializeToMessage(doc domain.ProfileDocument) (kafkago.Message, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize profile %s: %w", doc.Profile.ProfileID, err)
	}
	return kafkago.Message{
		Key:   []byte(doc.Profile.FloatID),
		Value: data,
		Time:  doc.Profile.IngestedAt,
		Headers: []kafkago.Header{
			{Key: "float_id", Value: []byte(doc.Profile.FloatID)},
			{Key: "profile_id", Value: []byte(doc.Profile.ProfileID)},
			{Key: "profile_date", Value: []byte(doc.Profile.ProfileDate.Format(time.RFC3339))},
		},
	}, nil
}
