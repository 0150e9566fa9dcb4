package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classicdental/dental-scheduler/internal/config"
)

type fakeS3 struct {
	mu      sync.Mutex
	method  string
	path    string
	ctype   string
	payload []byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.method = r.Method
	f.path = r.URL.Path
	f.ctype = r.Header.Get("Content-Type")
	f.payload = body
	f.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func TestS3Store_PutAvatar(t *testing.T) {
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store := New(config.S3Config{
		Bucket:          "clinic",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})

	url, err := store.PutAvatar(context.Background(), 42, []byte("RIFF....WEBP"))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^`+regexp.QuoteMeta(srv.URL)+`/clinic/avatars/42/[0-9a-f-]{36}\.webp$`), url)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, http.MethodPut, fake.method)
	assert.Regexp(t, `^/clinic/avatars/42/`, fake.path)
	assert.Equal(t, "image/webp", fake.ctype)
	assert.Equal(t, []byte("RIFF....WEBP"), fake.payload)
}

func TestNew_Disabled(t *testing.T) {
	_, err := New(config.S3Config{}).PutAvatar(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com",
		publicBase(config.S3Config{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "https://b.s3.sa-east-1.amazonaws.com",
		publicBase(config.S3Config{Bucket: "b", Region: "sa-east-1"}))
}
