// Package server freezes the site and serves the frozen tree with
// auto-reload, re-freezing whenever a source file changes.
package server

import (
	"compress/gzip"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"frost/builder/config"
	"frost/builder/freezer"
	"frost/internal/watch"
)

// Server holds one freezer and re-runs it for the lifetime of the
// serve command. Editing a configuration file swaps the freezer for
// one built from the new files.
type Server struct {
	cfg  *config.Config
	fcfg config.FreezeConfig
	frz  *freezer.Freezer
	hub  *hub

	freezeMu sync.Mutex   // serializes freezes and configuration swaps
	stateMu  sync.RWMutex // guards cfg, fcfg and frz during a swap
}

// Run freezes the site, serves the destination and watches the
// sources. It returns when ctx is canceled or the first freeze fails.
func Run(ctx context.Context, cfg *config.Config, fcfg config.FreezeConfig, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	host := fs.String("host", cfg.Host, "The host/IP to bind to")
	port := fs.Int("port", cfg.Port, "The port to listen on")
	_ = fs.Bool("drafts", false, "Include undated posts (handled by the site config)")
	_ = fs.Parse(args)

	config.SetDevMode(cfg, true)

	frz, err := freezer.New(cfg, fcfg)
	if err != nil {
		return err
	}

	s := &Server{cfg: cfg, fcfg: fcfg, frz: frz, hub: newHub()}
	defer func() {
		s.stateMu.RLock()
		defer s.stateMu.RUnlock()
		_ = s.frz.Close()
	}()

	if err := s.refreeze(ctx); err != nil {
		return err
	}

	w, err := watch.New(s.watchPaths(), 300*time.Millisecond, func(ev watch.Event) {
		if isConfigFile(ev.Name) {
			log.Printf("🔄 %s changed, reloading configuration...", ev.Name)
			if err := s.reload(ctx); err != nil {
				log.Printf("⚠️  Reload failed: %v", err)
				return
			}
		} else {
			log.Printf("🔄 %s changed, refreezing...", ev.Name)
			if err := s.refreeze(ctx); err != nil {
				log.Printf("⚠️  Refreeze failed: %v", err)
				return
			}
		}
		s.hub.broadcast()
	})
	if err != nil {
		return err
	}
	go w.Start(ctx)

	_ = mime.AddExtensionType(".webp", "image/webp")

	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.hub.handle)
	mux.HandleFunc("/", gzipHandler(s.serveFile))

	addr := fmt.Sprintf("%s:%d", *host, *port)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		fmt.Println("\n🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	fmt.Printf("🌐 Serving %s on http://%s\n", fcfg.Destination, addr)
	if *host == "0.0.0.0" {
		fmt.Println("   (Accessible on your local network)")
	}
	fmt.Println("   (Auto-reload enabled via /events)")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	fmt.Println("✅ Server stopped.")
	return nil
}

// refreeze serializes freezes so a burst of saves cannot interleave
// two runs on one destination.
func (s *Server) refreeze(ctx context.Context) error {
	s.freezeMu.Lock()
	defer s.freezeMu.Unlock()
	s.stateMu.RLock()
	frz := s.frz
	s.stateMu.RUnlock()
	return frz.Freeze(ctx)
}

// reload rebuilds the freezer from freshly loaded configuration files
// and freezes with it. When the new files do not load, the running
// freezer stays in place and keeps serving the old tree.
func (s *Server) reload(ctx context.Context) error {
	s.freezeMu.Lock()
	defer s.freezeMu.Unlock()

	fcfg, err := config.LoadFreeze(config.FreezeFile)
	if err != nil {
		return err
	}
	cfg := config.Load(nil)
	config.SetDevMode(cfg, true)

	// The running freezer holds the cache open; it has to release it
	// before a replacement on the same cache directory can start.
	if err := s.frz.Close(); err != nil {
		return err
	}
	frz, err := freezer.New(cfg, fcfg)
	if err != nil {
		// Reopen with the previous configuration so serving goes on.
		if prev, perr := freezer.New(s.cfg, s.fcfg); perr == nil {
			s.stateMu.Lock()
			s.frz = prev
			s.stateMu.Unlock()
		}
		return err
	}

	s.stateMu.Lock()
	s.cfg, s.fcfg, s.frz = cfg, fcfg, frz
	s.stateMu.Unlock()

	return frz.Freeze(ctx)
}

// watchPaths lists what serve watches. The set is fixed at startup;
// moving a source root takes a restart.
func (s *Server) watchPaths() []string {
	return []string{
		s.cfg.PostRoot,
		s.cfg.PageRoot,
		s.cfg.TemplateDir,
		s.cfg.StaticDir,
		s.cfg.FontsDir,
		config.BlogFile,
		config.ConfigFile,
		config.FreezeFile,
	}
}

// isConfigFile reports whether a change event names one of the
// configuration files rather than a site source.
func isConfigFile(name string) bool {
	switch filepath.Base(name) {
	case config.BlogFile, config.ConfigFile, config.FreezeFile:
		return true
	}
	return false
}

// serveFile serves one file from the frozen tree with cache headers
// fitting its volatility.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	s.stateMu.RLock()
	root := s.fcfg.Destination
	s.stateMu.RUnlock()
	normalized := normalizeRequestPath(r.URL.Path)

	fullPath, err := validatePath(root, normalized)
	if err != nil {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("403 - Forbidden: Invalid path"))
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			if content, readErr := os.ReadFile(filepath.Join(root, "404.html")); readErr == nil {
				_, _ = w.Write(content)
			} else {
				_, _ = w.Write([]byte("404 - Page Not Found"))
			}
		} else {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("500 - Internal Server Error"))
		}
		return
	}

	filename := filepath.Base(normalized)
	switch {
	case isHashedAsset(filename):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	case info.IsDir() || strings.HasSuffix(filename, ".html"):
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
	default:
		w.Header().Set("Cache-Control", "public, max-age=60")
	}

	http.FileServer(http.Dir(root)).ServeHTTP(w, r)
}

type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

func gzipHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer func() { _ = gz.Close() }()
		next(&gzipResponseWriter{Writer: gz, ResponseWriter: w}, r)
	}
}
