package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rmtl/internal/domain"
	"rmtl/internal/metrics"
	"rmtl/internal/payload"
	"rmtl/internal/port"
	"rmtl/internal/validator"
)

// SubmitOutcome describes an accepted submission.
type SubmitOutcome struct {
	Submitted int               `json:"submitted"`
	Ack       *port.SubmitAck   `json:"ack"`
	Document  *port.DocumentRef `json:"document,omitempty"`
	Warning   string            `json:"document_warning,omitempty"`
	// DocErr is a *domain.DocumentGenerationError when the hand-off failed.
	DocErr error `json:"-"`
}

// SubmissionController turns a batch into one backend submission.
type SubmissionController interface {
	// Submit validates, normalizes and posts the batch exactly once, then
	// hands it to the document generator. A generator failure does not fail
	// the submission; it is reported in SubmitOutcome.DocErr.
	Submit(ctx context.Context, batch *domain.Batch) (*SubmitOutcome, error)
}

type submissionController struct {
	validator *validator.Engine
	submitter port.ReportSubmitter
	documents port.DocumentGenerator
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubmissionController creates a new SubmissionController implementation.
func NewSubmissionController(
	engine *validator.Engine,
	submitter port.ReportSubmitter,
	documents port.DocumentGenerator,
	logger *zap.Logger,
) SubmissionController {
	return &submissionController{
		validator: engine,
		submitter: submitter,
		documents: documents,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *submissionController) Submit(ctx context.Context, batch *domain.Batch) (*SubmitOutcome, error) {
	reportType := string(batch.Profile.Type)

	if err := s.validator.Validate(ctx, batch); err != nil {
		metrics.IncValidationFailure(validationCode(err))
		return nil, err
	}

	wire, err := payload.Normalize(batch)
	if err != nil {
		return nil, fmt.Errorf("service.Submit: %w", err)
	}

	start := s.now()
	ack, err := s.submitter.SubmitReports(ctx, wire)
	if err != nil {
		metrics.ObserveSubmit(reportType, metrics.ResultError, 0, s.now().Sub(start))
		var te *domain.TransportError
		if !errors.As(err, &te) {
			err = &domain.TransportError{Op: "service.Submit", Err: err}
		}
		s.logger.Error("batch submission failed",
			zap.String("report_type", reportType),
			zap.Int("rows", len(wire)),
			zap.Error(err),
		)
		return nil, err
	}
	if ack == nil {
		ack = &port.SubmitAck{Accepted: len(wire)}
	}
	metrics.ObserveSubmit(reportType, metrics.ResultSuccess, len(wire), s.now().Sub(start))
	s.logger.Info("batch submitted",
		zap.String("report_type", reportType),
		zap.Int64("lab_id", batch.Context.LabID),
		zap.Int("rows", len(wire)),
	)

	submittedRows, _ := batch.FilledRows()
	out := &SubmitOutcome{
		Submitted: len(wire),
		Ack:       ack,
	}

	ref, err := s.documents.Generate(ctx, port.DocumentRequest{
		ReportType:  batch.Profile.Type,
		Context:     batch.Context,
		Header:      batch.Header,
		Rows:        submittedRows,
		Submitted:   wire,
		SubmittedAt: s.now().UTC(),
	})
	if err != nil {
		metrics.IncDocument(metrics.ResultError)
		out.DocErr = &domain.DocumentGenerationError{Err: err}
		out.Warning = out.DocErr.Error()
		s.logger.Warn("document generation failed after submission",
			zap.String("report_type", reportType),
			zap.Error(err),
		)
		return out, nil
	}
	metrics.IncDocument(metrics.ResultSuccess)
	out.Document = ref
	return out, nil
}

func validationCode(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	var ce *domain.ContextError
	if errors.As(err, &ce) {
		return "missing_context"
	}
	return "unknown"
}
