// Package uploads issues presigned S3 POST descriptors for avatar
// images. The server never proxies image bytes; browsers upload
// straight to the bucket and commit the object key afterwards.
package uploads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/folllow/folllow-server/internal/id"
)

// maxAvatarBytes caps what the presigned policy will accept.
const maxAvatarBytes = 5 << 20

// Ticket is everything a client needs to perform one direct upload:
// a multipart POST to URL carrying Fields plus the file, and the Key
// to commit on the tree once the POST succeeds.
type Ticket struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
	Key    string            `json:"key"`
}

// Config holds bucket coordinates and credentials.
type Config struct {
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string // empty = AWS
	PublicHost string
	PresignTTL time.Duration
}

// Service issues upload tickets and derives public object URLs.
type Service struct {
	cfg     Config
	client  *s3.Client
	presign *s3.PresignClient
}

// New builds the service. With an empty bucket the service is disabled
// and every ticket request fails; Enabled reports this.
func New(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.Bucket == "" {
		return &Service{cfg: cfg}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Service{
		cfg:     cfg,
		client:  client,
		presign: s3.NewPresignClient(client),
	}, nil
}

// Enabled reports whether a bucket was configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// NewAvatarKey mints a fresh object key for an avatar upload.
func NewAvatarKey() string {
	return "avatars/" + id.MustGenerate("img")
}

// PresignAvatarPost issues a ticket for uploading a new avatar.
// When previousKey is set, the replaced object is deleted best-effort;
// a stale object never blocks a new upload.
func (s *Service) PresignAvatarPost(ctx context.Context, previousKey string) (*Ticket, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("object storage is not configured")
	}

	if previousKey != "" && strings.HasPrefix(previousKey, "avatars/") {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(previousKey),
		})
		if err != nil {
			// Orphaned objects are cleaned up out of band.
			_ = err
		}
	}

	key := NewAvatarKey()
	ttl := s.cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	req, err := s.presign.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = ttl
		o.Conditions = []interface{}{
			[]interface{}{"content-length-range", 1, maxAvatarBytes},
		}
	})
	if err != nil {
		return nil, fmt.Errorf("presign post: %w", err)
	}

	return &Ticket{
		URL:    req.URL,
		Fields: req.Values,
		Key:    key,
	}, nil
}

// PublicURL derives the public URL of a stored object.
func (s *Service) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(s.cfg.PublicHost, "/") + "/" + key
}
