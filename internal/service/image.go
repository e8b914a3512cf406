package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipebox/backend/config"
)

const maxMirrorBytes = 10 << 20

// ObjectUploader is the part of the S3 client the image service needs.
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService copies platform thumbnails, whose URLs tend to expire, into
// the application's bucket.
type ImageService struct {
	uploader   ObjectUploader
	bucket     string
	publicURL  func(key string) string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	log        logrus.FieldLogger
}

// NewImageService creates a new ImageService backed by the configured bucket
func NewImageService(s3Config *config.S3Config, log logrus.FieldLogger) *ImageService {
	return NewImageServiceWithUploader(s3Config.Client, s3Config.BucketName, s3Config.PublicURL, log)
}

func NewImageServiceWithUploader(uploader ObjectUploader, bucket string, publicURL func(string) string, log logrus.FieldLogger) *ImageService {
	return &ImageService{
		uploader:   uploader,
		bucket:     bucket,
		publicURL:  publicURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
		retryDelay: time.Second,
		log:        log,
	}
}

// Mirror downloads sourceURL and stores it under key plus an extension
// derived from its content type. It returns the public URL of the copy.
func (s *ImageService) Mirror(ctx context.Context, sourceURL, key string) (string, error) {
	data, contentType, err := s.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	key += extensionFor(contentType)

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = s.upload(ctx, data, key, contentType)
		if err == nil {
			url := s.publicURL(key)
			s.log.WithFields(logrus.Fields{"key": key, "bytes": len(data)}).Info("Mirrored image to S3")
			return url, nil
		}
		s.log.WithError(err).WithField("attempt", attempt).Warn("Image upload failed")
		if attempt == s.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * s.retryDelay):
		}
	}
	return "", fmt.Errorf("failed to upload image after %d attempts: %w", s.maxRetries, err)
}

func (s *ImageService) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMirrorBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > maxMirrorBytes {
		return nil, "", errors.New("image is too large to mirror")
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("unexpected content type %q", contentType)
	}
	return data, contentType, nil
}

func (s *ImageService) upload(ctx context.Context, data []byte, key, contentType string) error {
	_, err := s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ""
}
