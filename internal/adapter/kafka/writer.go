// Package kafka publishes validated signal rows to the sink topic that
// the downstream persister consumes.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/xavier-xia-99/delphi-epidata/internal/config"
	"github.com/xavier-xia-99/delphi-epidata/internal/domain"
)

// Writer produces messages to a Kafka topic. It implements
// pipeline.RowPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes rows in a single WriteMessages
// call for efficiency.
func (w *Writer) PublishBatch(ctx context.Context, rows []domain.SignalRow) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(rows[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SignalRow into a Kafka message. The key
// groups all versions of one observation onto the same partition so the
// downstream upsert sees issues in order.
func serializeToMessage(row domain.SignalRow) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize signal row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(row)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(row.Source)},
			{Key: "signal", Value: []byte(row.Signal)},
			{Key: "time_type", Value: []byte(row.TimeType)},
		},
	}, nil
}

// MessageKey identifies one observation across issues.
func MessageKey(row domain.SignalRow) string {
	return row.Source + "|" + row.Signal + "|" + string(row.TimeType) + "|" +
		row.GeoType + "|" + row.GeoValue + "|" + strconv.Itoa(row.TimeValue)
}
