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

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/argo-float-etl/internal/adapter/kafka"
	"github.com/couchcryptid/argo-float-etl/internal/config"
	"github.com/couchcryptid/argo-float-etl/internal/domain"
	"github.com/couchcryptid/argo-float-etl/internal/observability"
	"github.com/couchcryptid/argo-float-etl/internal/pipeline"
)

const testProfileTopic = "test-argo-profiles"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("argo-etl-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

func writeExports(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"20201101_prof.csv": "PLATFORM_NUMBER,PROFILE,JULD,LATITUDE,LONGITUDE,PRES,TEMP,PSAL\n" +
			"2901001,0,25872.25,10.0,70.0,5.0,28.1,35.0\n" +
			"2901001,0,25872.25,10.0,70.0,50.0,25.3,99999\n" +
			"2902002,1,25872.5,-12.5,45.0,10.0,26.0,34.9\n",
		"20201102_prof.txt": "platform_number;latitude;longitude;pressure;temperature\n" +
			"2901001;10.5;70.3;6.0;28.0\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// TestIngestAndPublish runs a full ingestion and publishes every profile to
// a real broker, then reads the topic back.
func TestIngestAndPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testProfileTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaProfileTopic:  testProfileTopic,
		BatchSize:          50,
		BatchFlushInterval: 100 * time.Millisecond,
	}
	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	var holder pipeline.Holder
	r := pipeline.NewReloader(
		pipeline.NewIngester(writeExports(t), 2, 0, discardLogger(), metrics),
		&holder,
		pipeline.NewPublisher(writer, cfg.BatchSize, discardLogger(), metrics),
		nil, 0, discardLogger(), metrics,
	)
	rep, err := r.Reload(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, rep.Profiles)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testProfileTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	byProfile := map[string]domain.ProfileDocument{}
	for len(byProfile) < rep.Profiles {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from profile topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		var doc domain.ProfileDocument
		require.NoError(t, json.Unmarshal(msg.Value, &doc))
		assert.Equal(t, doc.Profile.FloatID, string(msg.Key))
		assert.Equal(t, doc.Profile.FloatID, headers["float_id"])
		assert.Equal(t, doc.Profile.ProfileID, headers["profile_id"])
		byProfile[doc.Profile.ProfileID] = doc
	}

	first := byProfile["2901001_20201101_0"]
	assert.Equal(t, time.Date(2020, 11, 1, 6, 0, 0, 0, time.UTC), first.Profile.ProfileDate)
	require.Len(t, first.Measurements, 2)
	assert.Nil(t, first.Measurements[1].Salinity)

	second := byProfile["2901001_20201102_0"]
	assert.Equal(t, 10.5, second.Profile.Latitude)

	other := byProfile["2902002_20201101_1"]
	assert.Equal(t, -12.5, other.Profile.Latitude)
}
