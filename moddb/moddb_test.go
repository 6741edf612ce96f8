package moddb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_IsModDBURL(t *testing.T) {
	assert.True(t, IsModDBURL("https://www.moddb.com/mods/foo/downloads/foo-1-0"))
	assert.True(t, IsModDBURL("https://moddb.com/downloads/start/123"))
	assert.False(t, IsModDBURL("https://notmoddb.com/downloads/foo"))
	assert.False(t, IsModDBURL("https://example.org/moddb.com"))
	assert.False(t, IsModDBURL("N/A: Select the installer"))

	h := &Helper{}
	assert.True(t, h.Matches("https://www.moddb.com/mods/foo/downloads/foo-1-0"))
	assert.False(t, h.Matches("https://www.moddb.com/downloads/mirror/123/456/abc"))
	assert.False(t, h.Matches("https://example.org/file.zip"))
}

func newTestHelper(server *httptest.Server) *Helper {
	return &Helper{
		Client: server.Client(),
		BaseBackOff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(time.Millisecond)
		},
	}
}

func Test_Rewrite(t *testing.T) {
	var failures int32 = 1

	mux := http.NewServeMux()
	mux.HandleFunc("/mods/foo/downloads/foo-1-0", func(w http.ResponseWriter, r *http.Request) {
		// first hit fails, the retry succeeds
		if atomic.AddInt32(&failures, -1) >= 0 {
			w.WriteHeader(503)
			return
		}
		fmt.Fprint(w, `<html><body>
			<a href="/mods/foo">Back</a>
			<a id="downloadmirrorstoggle" href="/downloads/start/123">Download now</a>
		</body></html>`)
	})
	mux.HandleFunc("/downloads/start/123", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<p>Your download will start shortly. <a href="/downloads/mirror/123/456/abcdef">Try this link</a></p>
		</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	h := newTestHelper(server)
	direct, err := h.Rewrite(context.Background(), server.URL+"/mods/foo/downloads/foo-1-0")
	require.NoError(t, err)
	assert.EqualValues(t, server.URL+"/downloads/mirror/123/456/abcdef", direct)
}

func Test_RewriteNoLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Nothing to see here</body></html>`)
	}))
	defer server.Close()

	h := newTestHelper(server)
	_, err := h.Rewrite(context.Background(), server.URL+"/mods/foo/downloads/foo")
	assert.Error(t, err)
}

func Test_RewriteNotFound(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(404)
	}))
	defer server.Close()

	h := newTestHelper(server)
	_, err := h.Rewrite(context.Background(), server.URL+"/mods/foo/downloads/foo")
	assert.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "4xx errors are not retried")
}
