package server

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"frost/builder/config"
	"frost/builder/testutil"
)

// frozenTree lays a minimal destination out on disk and returns a
// Server pointed at it. No freezer runs; serveFile only reads files.
func frozenTree(t *testing.T) *Server {
	t.Helper()
	t.Chdir(t.TempDir())
	testutil.WriteFile(t, "out/index.html", "<html>home</html>")
	testutil.WriteFile(t, "out/404.html", "<html>lost</html>")
	testutil.WriteFile(t, "out/static/site.A1B2C3D4.css", "body{}")

	fcfg := config.DefaultFreezeConfig()
	fcfg.Destination = "out"
	return &Server{cfg: config.Default(), fcfg: fcfg, hub: newHub()}
}

func TestServeFileIndex(t *testing.T) {
	s := frozenTree(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.serveFile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "home") {
		t.Error("index body not served")
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store for pages", cc)
	}
}

func TestServeFileNotFound(t *testing.T) {
	s := frozenTree(t)

	req := httptest.NewRequest(http.MethodGet, "/missing/", nil)
	rec := httptest.NewRecorder()
	s.serveFile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "lost") {
		t.Error("custom 404 page not served")
	}
}

func TestServeFileHashedAsset(t *testing.T) {
	s := frozenTree(t)

	req := httptest.NewRequest(http.MethodGet, "/static/site.A1B2C3D4.css", nil)
	rec := httptest.NewRecorder()
	s.serveFile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("Cache-Control = %q, want immutable for hashed assets", cc)
	}
}

func TestGzipHandler(t *testing.T) {
	s := frozenTree(t)
	handler := gzipHandler(s.serveFile)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if enc := rec.Header().Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", enc)
	}

	gr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	body, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !strings.Contains(string(body), "home") {
		t.Error("gzipped body does not match the file")
	}
}

func TestGzipHandlerSkippedWithoutHeader(t *testing.T) {
	s := frozenTree(t)
	handler := gzipHandler(s.serveFile)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if enc := rec.Header().Get("Content-Encoding"); enc == "gzip" {
		t.Error("gzip applied without Accept-Encoding")
	}
	if !strings.Contains(rec.Body.String(), "home") {
		t.Error("plain body not served")
	}
}

func TestIsConfigFile(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"blog.yaml", true},
		{"config.yaml", true},
		{"freezing.yaml", true},
		{"post/blog.yaml", true},
		{"post/intro.md", false},
		{"templates/base.html", false},
	}
	for _, tc := range cases {
		if got := isConfigFile(tc.name); got != tc.want {
			t.Errorf("isConfigFile(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestHubBroadcast(t *testing.T) {
	h := newHub()

	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	h.broadcast()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("broadcast did not reach the client")
	}

	// A full client buffer never blocks the broadcaster.
	ch <- struct{}{}
	done := make(chan struct{})
	go func() {
		h.broadcast()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client")
	}
}

func TestHubHandleStreams(t *testing.T) {
	h := newHub()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.handle(rec, req)
		close(done)
	}()

	// Wait for the client to register, then push one reload.
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.mu.Lock()
		n := len(h.clients)
		h.mu.Unlock()
		if n == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	h.broadcast()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "data: connected") {
		t.Error("missing connected event")
	}
	if !strings.Contains(body, "data: reload") {
		t.Error("missing reload event")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
}
