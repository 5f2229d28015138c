package uwyo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/storm-sounding-service/internal/domain"
	"github.com/couchcryptid/storm-sounding-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable = `
-----------------------------------------------------------------------------
   PRES   HGHT   TEMP   DWPT   RELH   MIXR   DRCT   SKNT   THTA   THTE   THTV
    hPa     m      C      C      %    g/kg    deg   knot     K      K      K
-----------------------------------------------------------------------------
 1000.0    106
  974.0    329   24.2   18.2     69  13.77    170     10  299.6  339.4  302.1
`

const testPage = `<HTML>
<TITLE>University of Wyoming - Radiosonde Data</TITLE>
<BODY BGCOLOR="white">
<H2>72451 DDC Dodge City Observations at 00Z 15 May 2024</H2>
<PRE>` + testTable + `</PRE><H3>Station information and sounding indices</H3><PRE>
                         Station identifier: DDC
</PRE>
</BODY></HTML>`

const noDataPage = `<HTML>
<TITLE>University of Wyoming - Radiosonde Data</TITLE>
<BODY BGCOLOR="white">
Can't get 72451 DDC Dodge City Observations at 00Z 15 May 2024.
</BODY></HTML>`

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		region:     "np",
		maxRetries: maxRetries,
		backoff:    time.Millisecond,
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func testRequest(t *testing.T) domain.Request {
	t.Helper()
	req, err := domain.ParseRequest("72451", "2024051500")
	require.NoError(t, err)
	return req
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "np", q.Get("region"))
		assert.Equal(t, "TEXT:LIST", q.Get("TYPE"))
		assert.Equal(t, "2024", q.Get("YEAR"))
		assert.Equal(t, "05", q.Get("MONTH"))
		assert.Equal(t, "1500", q.Get("FROM"))
		assert.Equal(t, "1500", q.Get("TO"))
		assert.Equal(t, "72451", q.Get("STNM"))
		_, _ = w.Write([]byte(testPage))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 0)
	table, err := c.Fetch(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Equal(t, testTable, table)

	s, err := domain.Parse(table)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestClient_Fetch_NoData(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(noDataPage))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 2)
	_, err := c.Fetch(context.Background(), testRequest(t))
	require.ErrorIs(t, err, domain.ErrNoData)
	assert.Contains(t, err.Error(), "72451@2024051500")
	assert.Equal(t, int32(1), calls.Load(), "no-data answers are not retried")
}

func TestClient_Fetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(testPage))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 2)
	table, err := c.Fetch(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Equal(t, testTable, table)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Fetch_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Server overloaded"))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 1)
	_, err := c.Fetch(context.Background(), testRequest(t))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoData)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "Server overloaded")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Fetch_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 3)
	_, err := c.Fetch(context.Background(), testRequest(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 0)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.Fetch(context.Background(), testRequest(t))
	require.Error(t, err)
}

func TestClient_Fetch_CancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5)
	c.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Fetch(ctx, testRequest(t))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtractTable(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		want  string
		found bool
	}{
		{"first block", "<PRE>a</PRE><PRE>b</PRE>", "a", true},
		{"no block", "<HTML>nothing</HTML>", "", false},
		{"unterminated", "<PRE>a", "", false},
		{"empty block", "<PRE></PRE>", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractTable(tt.page)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
