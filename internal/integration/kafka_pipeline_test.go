//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cinderwatch/wildfire-detect-service/internal/adapter/kafka"
	"github.com/cinderwatch/wildfire-detect-service/internal/config"
	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
	"github.com/cinderwatch/wildfire-detect-service/internal/observability"
	"github.com/cinderwatch/wildfire-detect-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

// producedReport holds a deserialized report read from the sink topic.
type producedReport struct {
	Report  domain.Report
	Key     string
	Headers map[string]string
}

// readProduced reads a single message from the sink consumer and deserializes it.
func readProduced(ctx context.Context, t *testing.T, consumer *kafkago.Reader) producedReport {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var report domain.Report
	require.NoError(t, json.Unmarshal(msg.Value, &report), "unmarshal sink message")

	return producedReport{
		Report:  report,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

// loadRecordedEnvelope reads one of the checked-in site recordings produced
// by cmd/genreadings.
func loadRecordedEnvelope(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("..", "..", "data", "mock", name+".json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func newDetectionTransformer(t *testing.T) *pipeline.DetectionTransformer {
	t.Helper()
	det, err := domain.NewDefaultDetector()
	require.NoError(t, err)
	return pipeline.NewTransformer(det, discardLogger())
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor) and
// kafka.Writer (Loader) correctly round-trip a site batch through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish the calm recording to the source topic.
	payload := loadRecordedEnvelope(t, "calm_day")

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("site-meadow-2"),
		Value: payload,
	}))

	// Extract via kafka.Reader.
	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawBatch
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("site-meadow-2"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	// Commit the offset.
	require.NoError(t, raw.Commit(ctx))

	// Transform the raw batch into a risk report.
	report, err := newDetectionTransformer(t).Transform(ctx, raw)
	require.NoError(t, err)

	// Load via kafka.Writer.
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []domain.Report{report}))

	// Read from the sink topic and verify headers + value.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	pr := readProduced(ctx, t, consumer)
	assert.Equal(t, "site-meadow-2", pr.Headers["site_id"])
	assert.Contains(t, pr.Headers, "processed_at")
	_, err = time.Parse(time.RFC3339, pr.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, pr.Report.ID, pr.Key)
	assert.Equal(t, "site-meadow-2", pr.Report.SiteID)
	assert.Equal(t, 120, pr.Report.ReadingCount)
	assert.Zero(t, pr.Report.EventCount)
	assert.Equal(t, 1.1, pr.Report.MaxScore)
}

// TestPipelineEndToEnd wires the full pipeline (Reader, Transformer, Writer)
// against real Kafka and verifies the recorded site batches score as expected.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish all recorded site batches to the source topic.
	recordings := []string{"calm_day", "flat_rise_twice", "slow_rise_windy"}

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(recordings))
	for _, name := range recordings {
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(name),
			Value: loadRecordedEnvelope(t, name),
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p, err := pipeline.New(reader, newDetectionTransformer(t), writer, discardLogger(), metrics, 50, 128)
	require.NoError(t, err)

	// Run the pipeline in a goroutine.
	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Read all risk reports from the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make(map[string]producedReport, len(recordings))
	for len(received) < len(recordings) {
		pr := readProduced(ctx, t, consumer)
		received[pr.Report.SiteID] = pr
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	require.Len(t, received, 3)
	for siteID, pr := range received {
		assert.Equal(t, pr.Report.ID, pr.Key, "%s: key should be the report ID", siteID)
		assert.True(t, strings.HasPrefix(pr.Report.ID, siteID+"-"), "%s: unexpected report ID %q", siteID, pr.Report.ID)
		assert.Equal(t, siteID, pr.Headers["site_id"])
		assert.Contains(t, pr.Headers, "processed_at")
		assert.Equal(t, 120, pr.Report.ReadingCount)
		assert.Equal(t, "2026-07-14T10:00:00Z", pr.Report.WindowStart)
		assert.Equal(t, "2026-07-14T11:59:00Z", pr.Report.WindowEnd)
	}

	calm := received["site-meadow-2"].Report
	assert.Zero(t, calm.EventCount, "calm day should not alert")
	assert.Equal(t, 1.1, calm.MaxScore)

	burns := received["site-ridge-7"].Report
	require.Equal(t, 2, burns.EventCount, "each burn plateau should open one incident")
	assert.Equal(t, "2026-07-14T10:32:00Z", burns.Events[0].Timestamp)
	assert.Equal(t, "2026-07-14T11:17:00Z", burns.Events[1].Timestamp)
	assert.Equal(t, 100.0, burns.MaxScore)

	windy := received["site-canyon-3"].Report
	assert.Zero(t, windy.EventCount, "wind alone should not alert")
	assert.Equal(t, 69.7, windy.MaxScore)
}

// TestPipelineTransformError verifies that an invalid message (poison pill) is
// skipped and the pipeline continues processing valid messages.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-poison-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish: invalid JSON, then a valid recording.
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("good"), Value: loadRecordedEnvelope(t, "flat_rise_twice")},
	))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p, err := pipeline.New(reader, newDetectionTransformer(t), writer, discardLogger(), metrics, 50, 128)
	require.NoError(t, err)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Only the valid message should appear on the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	pr := readProduced(ctx, t, consumer)
	assert.Equal(t, "site-ridge-7", pr.Report.SiteID)
	assert.Equal(t, 2, pr.Report.EventCount)

	// Verify no second message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
