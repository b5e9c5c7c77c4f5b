// Package document hands submitted batches to the certificate renderer.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rmtl/internal/port"
)

// S3HandoffConfig configures where hand-off jobs are written.
type S3HandoffConfig struct {
	Bucket        string
	KeyPrefix     string
	PresignExpiry int64
}

// S3Handoff writes each submitted batch as a JSON job object for the
// external renderer and returns a presigned link to it.
type S3Handoff struct {
	storage port.ObjectStorage
	cfg     S3HandoffConfig
	logger  *zap.Logger
	newID   func() uuid.UUID
}

// NewS3Handoff creates an S3-backed DocumentGenerator.
func NewS3Handoff(storage port.ObjectStorage, cfg S3HandoffConfig, logger *zap.Logger) *S3Handoff {
	return &S3Handoff{storage: storage, cfg: cfg, logger: logger, newID: uuid.New}
}

// Key returns the object key for a request: <prefix>/<lab>/<batch date>/<id>.json.
func (g *S3Handoff) Key(req port.DocumentRequest, id uuid.UUID) string {
	date := req.Header.BatchDate
	if date == "" {
		date = req.SubmittedAt.UTC().Format("2006-01-02")
	}
	return path.Join(g.cfg.KeyPrefix, strconv.FormatInt(req.Context.LabID, 10), date, id.String()+".json")
}

func (g *S3Handoff) Generate(ctx context.Context, req port.DocumentRequest) (*port.DocumentRef, error) {
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now().UTC()
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("document.S3Handoff.Generate: marshal: %w", err)
	}

	key := g.Key(req, g.newID())
	_, err = g.storage.Upload(ctx, port.UploadInput{
		Bucket:      g.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
		Metadata: map[string]string{
			"report-type": string(req.ReportType),
			"rows":        strconv.Itoa(len(req.Submitted)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("document.S3Handoff.Generate: %w", err)
	}

	ref := &port.DocumentRef{Key: key}
	url, err := g.storage.GetPresignedURL(ctx, g.cfg.Bucket, key, g.cfg.PresignExpiry)
	if err != nil {
		// the job is written; the renderer picks it up without a link
		g.logger.Warn("presigning document hand-off failed", zap.String("key", key), zap.Error(err))
		return ref, nil
	}
	ref.URL = url
	return ref, nil
}

// Noop accepts every request without writing anything.
type Noop struct{}

// NewNoop creates a DocumentGenerator that does nothing.
func NewNoop() Noop { return Noop{} }

func (Noop) Generate(context.Context, port.DocumentRequest) (*port.DocumentRef, error) {
	return &port.DocumentRef{}, nil
}

var (
	_ port.DocumentGenerator = (*S3Handoff)(nil)
	_ port.DocumentGenerator = Noop{}
)
