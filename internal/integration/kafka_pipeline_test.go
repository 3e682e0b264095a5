//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/xavier-xia-99/delphi-epidata/internal/adapter/kafka"
	"github.com/xavier-xia-99/delphi-epidata/internal/config"
	"github.com/xavier-xia-99/delphi-epidata/internal/domain"
	"github.com/xavier-xia-99/delphi-epidata/internal/importer"
	"github.com/xavier-xia-99/delphi-epidata/internal/observability"
	"github.com/xavier-xia-99/delphi-epidata/internal/pipeline"
)

const (
	testSinkTopic = "test-validated-rows"
	validHeader   = "geo_id,val,se,sample_size,missing_value,missing_stderr,missing_sample_size\n"
)

var testAsOf = time.Date(2020, time.May, 7, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka boots a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// sinkMessage holds a deserialized message read from the sink topic.
type sinkMessage struct {
	Row     domain.SignalRow
	Key     string
	Headers map[string]string
}

func readSink(ctx context.Context, t *testing.T, consumer *kafkago.Reader) sinkMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var row domain.SignalRow
	require.NoError(t, json.Unmarshal(msg.Value, &row), "unmarshal sink message")

	return sinkMessage{Row: row, Key: string(msg.Key), Headers: headers}
}

// TestIngestEndToEnd wires the full service (Scanner -> Pipeline -> kafka.Writer)
// against real Kafka and verifies that exactly the valid rows of a mixed
// receiving tree land on the sink topic.
func TestIngestEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	root := t.TempDir()
	archive := t.TempDir()
	writeFile(t, root, "ght/20200408_state_rawsearch.csv", validHeader+
		"ca,1.1,0.1,301,0,0,0\n"+
		"1234,9.9,0.1,1,0,0,0\n"+ // bad geo_id, must not be published
		"tx,1.2,0.2,302,0,0,0\n")
	writeFile(t, root, "fb_survey/weekly_202015_county_cli.csv", validHeader+
		"06001,2.5,0.3,120,0,0,0\n")
	writeFile(t, root, "bad/20200408_state_sig.csv", "geo_id,val\nca,1.0\n")
	writeFile(t, root, "notes/README.md", "not a signal file\n")

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	scanner := importer.Scanner{Root: root, Clock: clockwork.NewFakeClockAt(testAsOf)}
	archiver := pipeline.NewFileArchiver(root, archive)
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(scanner, writer, archiver, discardLogger(), metrics, time.Hour, 2, nil)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make(map[string]sinkMessage, 3)
	for len(received) < 3 {
		m := readSink(ctx, t, consumer)
		received[m.Key] = m
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	// The daily state rows.
	ca, ok := received["ght|rawsearch|day|state|ca|20200408"]
	require.True(t, ok, "missing ca row, got keys %v", keys(received))
	assert.Equal(t, "ght", ca.Headers["source"])
	assert.Equal(t, "rawsearch", ca.Headers["signal"])
	assert.Equal(t, "day", ca.Headers["time_type"])
	assert.Equal(t, 20200507, ca.Row.Issue)
	assert.Equal(t, 29, ca.Row.Lag)
	require.NotNil(t, ca.Row.Value)
	assert.Equal(t, 1.1, *ca.Row.Value)
	assert.Equal(t, domain.NotMissing, ca.Row.MissingValue)

	_, ok = received["ght|rawsearch|day|state|tx|20200408"]
	assert.True(t, ok, "missing tx row")

	// The weekly county row.
	cli, ok := received["fb_survey|cli|week|county|06001|202015"]
	require.True(t, ok, "missing weekly county row")
	assert.Equal(t, "week", cli.Headers["time_type"])
	assert.Equal(t, 202019, cli.Row.Issue)
	assert.Equal(t, 4, cli.Row.Lag)

	// No fourth message: the bad geo row and the bad-header file stay off
	// the topic.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no extra message on sink topic")

	// Processed files are archived by outcome.
	assert.FileExists(t, filepath.Join(archive, "successful", "ght", "20200408_state_rawsearch.csv"))
	assert.FileExists(t, filepath.Join(archive, "successful", "fb_survey", "weekly_202015_county_cli.csv"))
	assert.FileExists(t, filepath.Join(archive, "failed", "bad", "20200408_state_sig.csv"))
	assert.NoFileExists(t, filepath.Join(root, "ght", "20200408_state_rawsearch.csv"))
}

func keys(m map[string]sinkMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
