//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/storm-sounding-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-sounding-service/internal/adapter/uwyo"
	"github.com/couchcryptid/storm-sounding-service/internal/config"
	"github.com/couchcryptid/storm-sounding-service/internal/domain"
	"github.com/couchcryptid/storm-sounding-service/internal/observability"
	"github.com/couchcryptid/storm-sounding-service/internal/pipeline"
	"github.com/couchcryptid/storm-sounding-service/internal/stations"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-sounding-reports"

const testPage = `<HTML><BODY>
<H2>72451 DDC Dodge City Observations at 00Z 15 May 2024</H2>
<PRE>
-----------------------------------------------------------------------------
   PRES   HGHT   TEMP   DWPT   RELH   MIXR   DRCT   SKNT   THTA   THTE   THTV
    hPa     m      C      C      %    g/kg    deg   knot     K      K      K
-----------------------------------------------------------------------------
 1000.0    106
  974.0    329   24.4   18.4     69  13.93    175     13  299.8  341.2
  925.0    766   21.2   16.2     73  12.62    200     25  300.9  338.9
  850.0   1484   17.0    9.0     59   8.67    225     30  303.8  330.5
  700.0   3126    5.4   -6.6     42   3.45    240     35  308.5  319.8
  500.0   5840  -11.7  -33.7     15   0.38    250     45  319.6  321.0
  300.0   9580  -38.1  -53.1     19   0.05    255     60  331.4  331.6
</PRE>
</BODY></HTML>`

// reportPayload is the subset of the published JSON the test inspects.
type reportPayload struct {
	ID          string              `json:"id"`
	Station     string              `json:"station"`
	StationInfo *domain.StationInfo `json:"station_info"`
	Levels      []json.RawMessage   `json:"levels"`
	Diagnostics struct {
		Thickness float64 `json:"thickness_1000_500"`
	} `json:"diagnostics"`
}

// publishedReport holds a report read back from the report topic.
type publishedReport struct {
	Report  reportPayload
	Key     string
	Headers map[string]string
}

func readReport(ctx context.Context, t *testing.T, broker string) publishedReport {
	t.Helper()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	defer consumer.Close()

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var report reportPayload
	require.NoError(t, json.Unmarshal(msg.Value, &report), "unmarshal report")

	return publishedReport{Report: report, Key: string(msg.Key), Headers: headers}
}

// TestAnalyzeAndPublish drives a full analysis against a stub archive and
// checks the report that lands on the topic.
func TestAnalyzeAndPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	archive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPage))
	}))
	defer archive.Close()

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	writer := kafka.NewWriter(cfg, logger)
	defer writer.Close()

	catalog, err := stations.Load("")
	require.NoError(t, err)

	client := uwyo.NewClient(archive.URL, "np", 5*time.Second, 0, logger, metrics)
	analyzer := pipeline.New(client, catalog, writer, domain.Options{}, logger, metrics)

	report, err := analyzer.Analyze(ctx, "72451", "2024051500")
	require.NoError(t, err)

	got := readReport(ctx, t, broker)
	assert.Equal(t, report.ID, got.Key)
	assert.Equal(t, "72451", got.Headers["station"])
	assert.Equal(t, "2024-05-15T00:00:00Z", got.Headers["observed_at"])
	assert.Equal(t, report.ID, got.Report.ID)
	assert.Equal(t, "72451", got.Report.Station)
	require.NotNil(t, got.Report.StationInfo)
	assert.Equal(t, "DDC", got.Report.StationInfo.ICAO)
	assert.Len(t, got.Report.Levels, report.Sounding.Len())
	assert.InDelta(t, 5734.0, got.Report.Diagnostics.Thickness, 0.001)
}
