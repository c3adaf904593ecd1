//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/flood-status-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-status-service/internal/config"
	"github.com/couchcryptid/flood-status-service/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-flood-reports"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka brings up a single-broker Kafka container and returns its
// bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := testcontainers.NewDockerClientWithOpts(ctx); err != nil {
		t.Skipf("skipping integration test because Docker is unavailable: %v", err)
	}

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestWriterPublishReport round-trips an assembled report through real Kafka
// and verifies the key, headers, and payload on the sink topic.
func TestWriterPublishReport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	reportTime := time.Date(2024, time.January, 5, 14, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(reportTime))
	t.Cleanup(func() { domain.SetClock(nil) })

	measured := time.Date(2024, time.January, 5, 13, 45, 0, 0, time.UTC)
	head := 681.32
	report := domain.AssembleReport(&measured, "LCRA is conducting floodgate operations.",
		[]domain.LakeLevel{{
			DamLakeName:     "Mansfield/Travis",
			MeasurementTime: &measured,
			HeadElevation:   &head,
			GateOperations:  "No gates open",
		}},
		nil, nil)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishReport(ctx, report))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	assert.Equal(t, "2024-01-05T14:00:00Z", string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2024-01-05T14:00:00Z", headers["report_time"])

	var got domain.FloodOperationsReport
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.True(t, got.ReportTime.Equal(reportTime))
	assert.Equal(t, "LCRA is conducting floodgate operations.", got.NarrativeSummary)
	require.Len(t, got.LakeLevels, 1)
	assert.Equal(t, "Mansfield/Travis", got.LakeLevels[0].DamLakeName)
	require.NotNil(t, got.LakeLevels[0].HeadElevation)
	assert.Equal(t, 681.32, *got.LakeLevels[0].HeadElevation)
	assert.Empty(t, got.RiverConditions)
	assert.Empty(t, got.FloodgateOperations)
}
