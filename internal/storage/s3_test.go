package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 records the path-style requests it receives.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recorded
	status   int
}

type recorded struct {
	method, path, contentType, acl, body string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		acl:         r.Header.Get("X-Amz-Acl"),
		body:        string(body),
	})
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("ETag", `"abc"`)
	w.WriteHeader(http.StatusOK)
}

func newTestClient(t *testing.T, fake *fakeS3, publicURL string) (*Client, string) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(Options{
		Endpoint:  srv.URL + "/",
		Region:    "us-east-1",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "sites-bucket",
		PublicURL: publicURL,
	})
	require.NoError(t, err)
	require.NotNil(t, c)
	return c, srv.URL
}

func TestNew_Disabled(t *testing.T) {
	c, err := New(Options{Bucket: "b"})
	assert.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(Options{Endpoint: "http://s3", AccessKey: "k"})
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(Options{Endpoint: "http://s3", AccessKey: "k", SecretKey: "s"})
	assert.Error(t, err)
}

func TestSiteKey(t *testing.T) {
	assert.Equal(t, "sites/42-coffee/index.html", SiteKey("42-coffee"))
	assert.Equal(t, "sites/a/index.html", SiteKey("/a/"))
}

func TestFileURL(t *testing.T) {
	fake := &fakeS3{}
	c, base := newTestClient(t, fake, "")
	assert.Equal(t, base+"/sites-bucket/sites/x/index.html", c.FileURL("sites/x/index.html"))

	cdn, _ := newTestClient(t, fake, "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/sites/x/index.html", cdn.FileURL("sites/x/index.html"))
	assert.Equal(t, "sites-bucket", cdn.Bucket())
}

func TestPublishSite(t *testing.T) {
	fake := &fakeS3{}
	c, base := newTestClient(t, fake, "")

	url, err := c.PublishSite(context.Background(), "7-bakery", []byte("<html>hi</html>"))
	require.NoError(t, err)
	assert.Equal(t, base+"/sites-bucket/sites/7-bakery/index.html", url)

	require.Len(t, fake.requests, 1)
	got := fake.requests[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/sites-bucket/sites/7-bakery/index.html", got.path)
	assert.True(t, strings.HasPrefix(got.contentType, "text/html"))
	assert.Equal(t, "public-read", got.acl)
	assert.Contains(t, got.body, "<html>hi</html>")
}

func TestPublishSite_Error(t *testing.T) {
	fake := &fakeS3{status: http.StatusForbidden}
	c, _ := newTestClient(t, fake, "")

	_, err := c.PublishSite(context.Background(), "1", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 upload sites-bucket/sites/1/index.html")
}

func TestDelete(t *testing.T) {
	fake := &fakeS3{}
	c, _ := newTestClient(t, fake, "")

	require.NoError(t, c.Delete(context.Background(), "sites/1/index.html"))
	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].method)
	assert.Equal(t, "/sites-bucket/sites/1/index.html", fake.requests[0].path)
}
