package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/logging"
)

type fakeUploader struct {
	failures int
	calls    int
	last     *s3.PutObjectInput
	body     []byte
}

func (f *fakeUploader) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("SlowDown")
	}
	f.last = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func newTestImageService(up *fakeUploader) *ImageService {
	svc := NewImageServiceWithUploader(up, "recipebox-images", func(key string) string {
		return "https://cdn.example.com/" + key
	}, logging.Discard())
	svc.retryDelay = time.Millisecond
	return svc
}

func TestImageServiceMirror(t *testing.T) {
	jpeg := []byte("\xff\xd8\xff\xe0fakejpeg")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/thumb":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(jpeg)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("uploads with extension", func(t *testing.T) {
		up := &fakeUploader{}
		url, err := newTestImageService(up).Mirror(context.Background(), srv.URL+"/thumb", "recipes/youtube/1")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/recipes/youtube/1.jpg", url)
		assert.Equal(t, "recipebox-images", aws.ToString(up.last.Bucket))
		assert.Equal(t, "image/jpeg", aws.ToString(up.last.ContentType))
		assert.Equal(t, jpeg, up.body)
	})

	t.Run("retries transient upload failures", func(t *testing.T) {
		up := &fakeUploader{failures: 2}
		_, err := newTestImageService(up).Mirror(context.Background(), srv.URL+"/thumb", "k")
		require.NoError(t, err)
		assert.Equal(t, 3, up.calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		up := &fakeUploader{failures: 10}
		_, err := newTestImageService(up).Mirror(context.Background(), srv.URL+"/thumb", "k")
		assert.ErrorContains(t, err, "after 3 attempts")
		assert.Equal(t, 3, up.calls)
	})

	t.Run("rejects non-images", func(t *testing.T) {
		up := &fakeUploader{}
		_, err := newTestImageService(up).Mirror(context.Background(), srv.URL+"/page", "k")
		assert.ErrorContains(t, err, "unexpected content type")
		assert.Zero(t, up.calls)
	})

	t.Run("download failure", func(t *testing.T) {
		_, err := newTestImageService(&fakeUploader{}).Mirror(context.Background(), srv.URL+"/gone", "k")
		assert.ErrorContains(t, err, "status: 404")
	})
}
