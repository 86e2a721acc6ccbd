package delivery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// RetentionDays is how long exported PDFs survive in the bucket. The
// lifecycle rule is a safety net against orphans from abandoned exports,
// not something the application depends on: a delivered file only needs to
// outlive its 1 hour signed URL.
const RetentionDays = 1

// MinIOStorage delivers rendered PDFs: a write-once upload under an
// owner-namespaced, timestamp-salted path, plus a presigned download URL.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage creates the delivery client and ensures the bucket exists
// with the export retention rule applied.
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// ensure bucket exists (idempotent)
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	if err := s.ensureLifecycle(ctx); err != nil {
		return nil, fmt.Errorf("minio lifecycle: %w", err)
	}
	return s, nil
}

func (s *MinIOStorage) ensureLifecycle(ctx context.Context) error {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{{
		ID:         "expire-exported-pdfs",
		Status:     "Enabled",
		RuleFilter: lifecycle.Filter{Prefix: "pdfs/"},
		Expiration: lifecycle.Expiration{Days: RetentionDays},
	}}
	return s.client.SetBucketLifecycle(ctx, s.bucket, cfg)
}

// ObjectPath builds the delivery path for one export. Owner-namespaced and
// timestamp-salted, so paths are never reused and overwrite races cannot
// happen.
func ObjectPath(ownerID string, now time.Time) string {
	if ownerID == "" {
		ownerID = "anonymous"
	}
	return fmt.Sprintf("pdfs/%s/scrapbook-%d.pdf", ownerID, now.UnixMilli())
}

// Store writes the PDF bytes once and returns the object path.
func (s *MinIOStorage) Store(ctx context.Context, data []byte, ownerID string) (string, error) {
	key := ObjectPath(ownerID, time.Now())
	opts := minio.PutObjectOptions{
		ContentType: "application/pdf",
		UserMetadata: map[string]string{
			"userId":      ownerID,
			"generatedAt": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

// SignURL returns a presigned GET URL valid for the given duration, after
// which access fails without further authentication.
func (s *MinIOStorage) SignURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	reqParams := make(url.Values)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectPath, ttl, reqParams)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return presigned.String(), nil
}
