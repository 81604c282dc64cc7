package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/resell-dashboard/internal/adapters/storage"
	"github.com/ammerola/resell-dashboard/test/helpers"
)

// fakeS3 accepts HeadBucket and PutObject on path-style URLs.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.objects[r.URL.Path] = string(body)
		f.mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestS3Storage_UploadAndPresign(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          "us-east-1",
		Bucket:          "exports-test",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
	}, helpers.TestLogger())
	require.NoError(t, err)

	location, err := store.Upload(ctx, "exports/inventory/a.xlsx", strings.NewReader("sheet"), "")
	require.NoError(t, err)
	assert.Contains(t, location, "/exports-test/exports/inventory/a.xlsx")

	fake.mu.Lock()
	assert.Equal(t, "sheet", fake.objects["/exports-test/exports/inventory/a.xlsx"])
	fake.mu.Unlock()

	link, err := store.GetPresignedURL(ctx, "exports/inventory/a.xlsx", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, srv.URL+"/exports-test/exports/inventory/a.xlsx?"))
	assert.Contains(t, link, "X-Amz-Signature=")
	assert.Contains(t, link, "X-Amz-Expires=900")
}
