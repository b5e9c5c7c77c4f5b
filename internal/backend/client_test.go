package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rmtl/internal/domain"
	"rmtl/internal/port"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:      srv.URL + "/",
		APIToken:     "secret",
		Timeout:      5 * time.Second,
		FetchRetries: 2,
	}, zap.NewNop())
}

func TestListAssigned_SendsQueryAndToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, assignedDevicesPath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "ASSIGNED", q.Get("status"))
		assert.Equal(t, "7", q.Get("user_id"))
		assert.Equal(t, "3", q.Get("lab_id"))
		assert.Equal(t, "CONTESTED", q.Get("purpose"))
		assert.Equal(t, "METER", q.Get("device_type"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]domain.AssignmentRecord{
			{AssignmentID: 11, DeviceID: 101, SerialNumber: "AB123"},
		})
	})

	recs, err := c.ListAssigned(context.Background(), port.AssignmentQuery{
		UserID: 7, LabID: 3, Purpose: "CONTESTED", DeviceType: "METER",
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "AB123", recs[0].SerialNumber)
}

func TestListAssigned_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	recs, err := c.ListAssigned(context.Background(), port.AssignmentQuery{UserID: 1, LabID: 1})
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSubmitReports_NeverRetries(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"database unavailable"}`))
	})

	_, err := c.SubmitReports(context.Background(), []domain.WireReportRow{{SerialNumber: "AB123"}})
	require.Error(t, err)

	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.Status)
	assert.Equal(t, "database unavailable", te.Detail)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSubmitReports_PrefersDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"assignment 11 already tested","message":"bad request"}`))
	})

	_, err := c.SubmitReports(context.Background(), []domain.WireReportRow{{SerialNumber: "AB123"}})
	assert.EqualError(t, err, "backend.SubmitReports: assignment 11 already tested")
}

func TestSubmitReports_PostsArrayWithExplicitNulls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, testReportsPath, r.URL.Path)

		var body []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body, 2)
		v, present := body[0]["details"]
		assert.True(t, present)
		assert.Nil(t, v)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":501},{"id":502}]`))
	})

	ack, err := c.SubmitReports(context.Background(), []domain.WireReportRow{{SerialNumber: "A"}, {SerialNumber: "B"}})
	require.NoError(t, err)
	assert.Equal(t, 2, ack.Accepted)
	assert.Equal(t, []int64{501, 502}, ack.ReportIDs)
}

func TestParseAck(t *testing.T) {
	ack, err := parseAck([]byte(`{"accepted":3,"message":"ok"}`), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, ack.Accepted)
	assert.Equal(t, "ok", ack.Message)

	ack, err = parseAck([]byte(`{"message":"queued"}`), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, ack.Accepted)

	ack, err = parseAck(nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ack.Accepted)

	_, err = parseAck([]byte(`not json`), 1)
	assert.Error(t, err)
}

func TestGetEnums(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, enumsPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"test_methods":["MANUAL","AUTOMATIC"],"test_results":["PASS","FAIL"]}`))
	})

	enums, err := c.GetEnums(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"MANUAL", "AUTOMATIC"}, enums.TestMethods)
	assert.Equal(t, []string{"PASS", "FAIL"}, enums.TestResults)
}

func TestGetEnums_TransportFailure(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop())
	_, err := c.GetEnums(context.Background())
	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "backend.GetEnums", te.Op)
}
