package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/messagely/internal/logging"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Settings locate the dead-letter bucket on an S3-compatible store.
type S3Settings struct {
	User     string
	Password string
	Bucket   string
	Region   string
	Endpoint string
}

// deadLetterRecord is the archived JSON document.
type deadLetterRecord struct {
	Job      Job       `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// S3DeadLetter writes each failed job as a JSON object.
type S3DeadLetter struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

func NewS3DeadLetter(ctx context.Context, s S3Settings) (*S3DeadLetter, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.User, s.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3DeadLetter{client: client, bucket: s.Bucket, now: time.Now}, nil
}

// Key is the object key used for job.
func (d *S3DeadLetter) Key(job Job) string {
	t := d.now().UTC()
	return fmt.Sprintf("notifications/failed/%04d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), job.ID)
}

func (d *S3DeadLetter) Store(ctx context.Context, job Job, cause error) error {
	rec := deadLetterRecord{Job: job, FailedAt: d.now().UTC()}
	if cause != nil {
		rec.Error = cause.Error()
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.Key(job)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put dead letter: %w", err)
	}
	return nil
}

// LogDeadLetter records failed jobs in the log only.
type LogDeadLetter struct {
	logger logging.Logger
}

func NewLogDeadLetter(logger logging.Logger) *LogDeadLetter {
	return &LogDeadLetter{logger: logger.With("module", "dead_letter")}
}

func (d *LogDeadLetter) Store(ctx context.Context, job Job, cause error) error {
	d.logger.Error(ctx, "notification dead-lettered",
		"job_id", job.ID,
		"message_id", job.MessageID,
		"from_username", job.FromUsername,
		"error", cause,
	)
	return nil
}
