package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-status-service/internal/config"
	"github.com/couchcryptid/flood-status-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes assembled reports to a Kafka topic.
// It implements scraper.Publisher.
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

// PublishReport serializes one report and writes it to the sink topic.
func (w *Writer) PublishReport(ctx context.Context, report domain.FloodOperationsReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a report into a Kafka message keyed by its
// report time, so replays of the same report land in the same partition.
func serializeToMessage(report domain.FloodOperationsReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	reportTime := report.ReportTime.Format(time.RFC3339)
	return kafkago.Message{
		Key:   []byte(reportTime),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_time", Value: []byte(reportTime)},
		},
	}, nil
}
