// Package backend talks to the lab backend's REST API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"rmtl/internal/domain"
	"rmtl/internal/port"
)

const (
	assignedDevicesPath = "/assigned-devices"
	testReportsPath     = "/test-reports"
	enumsPath           = "/enums"
)

// Config holds the REST adapter settings.
type Config struct {
	BaseURL      string
	APIToken     string
	Timeout      time.Duration
	FetchRetries int
}

// Client implements the assignment, enum and report ports over HTTP.
// Reads retry on transport errors and 5xx; the report POST never retries.
type Client struct {
	fetch  *resty.Client
	submit *resty.Client
	logger *zap.Logger
}

// NewClient creates a REST backend client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	fetch := newResty(cfg).
		SetRetryCount(cfg.FetchRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
		})
	submit := newResty(cfg).SetRetryCount(0)

	return &Client{fetch: fetch, submit: submit, logger: logger}
}

func newResty(cfg Config) *resty.Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIToken != "" {
		c.SetAuthToken(cfg.APIToken)
	}
	return c
}

// errorBody is the backend's structured error payload.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

func (b *errorBody) text() string {
	if len(b.Detail) > 0 && string(b.Detail) != "null" {
		var s string
		if err := json.Unmarshal(b.Detail, &s); err == nil {
			return s
		}
		return string(b.Detail)
	}
	return b.Message
}

// ListAssigned fetches the devices assigned to the user and lab.
func (c *Client) ListAssigned(ctx context.Context, q port.AssignmentQuery) ([]domain.AssignmentRecord, error) {
	const op = "backend.ListAssigned"

	status := q.Status
	if status == "" {
		status = domain.AssignmentStatusAssigned
	}
	params := map[string]string{
		"status":  status,
		"user_id": strconv.FormatInt(q.UserID, 10),
		"lab_id":  strconv.FormatInt(q.LabID, 10),
	}
	if q.Purpose != "" {
		params["purpose"] = q.Purpose
	}
	if q.DeviceType != "" {
		params["device_type"] = q.DeviceType
	}

	var records []domain.AssignmentRecord
	var eb errorBody
	resp, err := c.fetch.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&records).
		SetError(&eb).
		Get(assignedDevicesPath)
	if err := c.check(op, resp, err, &eb); err != nil {
		return nil, err
	}

	c.logger.Debug("assignments fetched",
		zap.Int64("user_id", q.UserID),
		zap.Int64("lab_id", q.LabID),
		zap.Int("count", len(records)),
	)
	return records, nil
}

// GetEnums fetches the selectable vocabularies.
func (c *Client) GetEnums(ctx context.Context) (*domain.EnumSet, error) {
	const op = "backend.GetEnums"

	var enums domain.EnumSet
	var eb errorBody
	resp, err := c.fetch.R().
		SetContext(ctx).
		SetResult(&enums).
		SetError(&eb).
		Get(enumsPath)
	if err := c.check(op, resp, err, &eb); err != nil {
		return nil, err
	}
	return &enums, nil
}

// submitResponse accepts either an acknowledgment object or the array of
// created reports.
type submitResponse struct {
	Accepted  *int    `json:"accepted"`
	ReportIDs []int64 `json:"report_ids"`
	Message   string  `json:"message"`
}

type createdReport struct {
	ID int64 `json:"id"`
}

// SubmitReports posts the whole batch in one request.
func (c *Client) SubmitReports(ctx context.Context, rows []domain.WireReportRow) (*port.SubmitAck, error) {
	const op = "backend.SubmitReports"

	var eb errorBody
	resp, err := c.submit.R().
		SetContext(ctx).
		SetBody(rows).
		SetError(&eb).
		Post(testReportsPath)
	if err := c.check(op, resp, err, &eb); err != nil {
		return nil, err
	}

	ack, err := parseAck(resp.Body(), len(rows))
	if err != nil {
		return nil, &domain.TransportError{Op: op, Status: resp.StatusCode(), Err: err}
	}
	c.logger.Info("test reports submitted",
		zap.Int("rows", len(rows)),
		zap.Int("accepted", ack.Accepted),
	)
	return ack, nil
}

func parseAck(body []byte, sent int) (*port.SubmitAck, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return &port.SubmitAck{Accepted: sent}, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var created []createdReport
		if err := json.Unmarshal(body, &created); err != nil {
			return nil, fmt.Errorf("decode submit response: %w", err)
		}
		ack := &port.SubmitAck{Accepted: len(created)}
		for _, r := range created {
			if r.ID != 0 {
				ack.ReportIDs = append(ack.ReportIDs, r.ID)
			}
		}
		return ack, nil
	}

	var sr submitResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	ack := &port.SubmitAck{Accepted: sent, ReportIDs: sr.ReportIDs, Message: sr.Message}
	if sr.Accepted != nil {
		ack.Accepted = *sr.Accepted
	}
	return ack, nil
}

// check converts a failed request or non-2xx response into a TransportError.
func (c *Client) check(op string, resp *resty.Response, err error, eb *errorBody) error {
	if err != nil {
		c.logger.Error("backend request failed", zap.String("op", op), zap.Error(err))
		te := &domain.TransportError{Op: op, Err: err}
		if resp != nil {
			te.Status = resp.StatusCode()
		}
		return te
	}
	if resp.IsError() {
		te := &domain.TransportError{Op: op, Status: resp.StatusCode(), Detail: eb.text()}
		c.logger.Warn("backend returned error",
			zap.String("op", op),
			zap.Int("status", te.Status),
			zap.String("detail", te.Detail),
		)
		return te
	}
	return nil
}

var (
	_ port.AssignmentSource = (*Client)(nil)
	_ port.EnumSource       = (*Client)(nil)
	_ port.ReportSubmitter  = (*Client)(nil)
)
