package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/config"
	"github.com/3plops/putaway/internal/domain/models"
)

const keyPrefix = "veracore-reports"

// Exporter archives raw and derived tables to S3 as JSON-lines objects under
// date-partitioned keys:
//
//	veracore-reports/report-type=<name>/year=YYYY/month=MM/day=DD/<name>_<ts>.json
type Exporter struct {
	client *awss3.Client
	bucket string
	now    func() time.Time
	logger *zap.Logger
}

// NewExporter builds the S3 exporter from static credentials.
func NewExporter(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize aws config: %w", err)
	}

	return &Exporter{
		client: awss3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		now:    time.Now,
		logger: logger,
	}, nil
}

// UploadTable archives a raw report table.
func (e *Exporter) UploadTable(ctx context.Context, reportName string, table models.Table) error {
	rows := make([]any, len(table.Rows))
	for i, row := range table.Rows {
		rows[i] = row
	}
	return e.upload(ctx, reportName, rows)
}

// UploadAuditLog archives the per-unit decision audit log.
func (e *Exporter) UploadAuditLog(ctx context.Context, records []models.AuditRecord) error {
	rows := make([]any, len(records))
	for i, rec := range records {
		rows[i] = rec
	}
	return e.upload(ctx, "putaway_log", rows)
}

func (e *Exporter) upload(ctx context.Context, name string, rows []any) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encode %s row: %w", name, err)
		}
	}

	today := e.now()
	key := fmt.Sprintf("%s/report-type=%s/year=%d/month=%02d/day=%02d/%s_%s.json",
		keyPrefix, name,
		today.Year(), int(today.Month()), today.Day(),
		name, today.Format("20060102_150405"))

	_, err := e.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3: %w", name, err)
	}

	e.logger.Info("report uploaded",
		zap.String("bucket", e.bucket),
		zap.String("key", key),
		zap.Int("rows", len(rows)))
	return nil
}
