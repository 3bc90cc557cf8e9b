package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"shoplens/internal/config"
)

const (
	uploadTimeout = 2 * time.Minute
	signedURLTTL  = time.Hour
)

// Storage uploads generated media to a GCS bucket and mints short-lived
// V4 signed read URLs. When a service-account key file is available the
// storage client signs directly; otherwise signing is delegated to the
// IAM Credentials SignBlob API under the configured signer identity.
type Storage struct {
	client      *storage.Client
	iam         *credentials.IamCredentialsClient
	bucket      string
	signerEmail string
}

// NewStorage creates the storage layer from GCP configuration.
func NewStorage(ctx context.Context, cfg config.GCP) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is not configured")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	s := &Storage{
		client:      client,
		bucket:      cfg.Bucket,
		signerEmail: cfg.SignerEmail,
	}

	if cfg.CredentialsFile == "" {
		if cfg.SignerEmail == "" {
			return nil, errors.New("signed URLs require either a credentials file or a signer service-account email")
		}
		iamClient, err := credentials.NewIamCredentialsClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create IAM credentials client: %w", err)
		}
		s.iam = iamClient
	}

	return s, nil
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.bucket
}

// Upload writes data to the given object path with the given content type.
func (s *Storage) Upload(ctx context.Context, objectPath string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", objectPath, err)
	}

	return nil
}

// SignedReadURL mints a V4 signed GET URL for an object in the bucket,
// valid for one hour.
func (s *Storage) SignedReadURL(ctx context.Context, objectPath string) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(signedURLTTL),
	}

	if s.iam != nil {
		opts.GoogleAccessID = s.signerEmail
		opts.SignBytes = func(payload []byte) ([]byte, error) {
			resp, err := s.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    "projects/-/serviceAccounts/" + s.signerEmail,
				Payload: payload,
			})
			if err != nil {
				return nil, fmt.Errorf("SignBlob failed: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(objectPath, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %s: %w", objectPath, err)
	}
	return url, nil
}

// SignGSURI resolves a gs://bucket/path URI produced by a generation
// backend to a signed read URL. The URI must point into the configured
// bucket.
func (s *Storage) SignGSURI(ctx context.Context, gsURI string) (string, error) {
	bucket, objectPath, err := parseGSURI(gsURI)
	if err != nil {
		return "", err
	}
	if bucket != s.bucket {
		return "", fmt.Errorf("object %s is outside the configured bucket %s", gsURI, s.bucket)
	}
	return s.SignedReadURL(ctx, objectPath)
}

func parseGSURI(uri string) (bucket, objectPath string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URI: %s", uri)
	}
	bucket, objectPath, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || objectPath == "" {
		return "", "", fmt.Errorf("malformed gs:// URI: %s", uri)
	}
	return bucket, objectPath, nil
}
