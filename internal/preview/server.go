// Package preview serves the generated site for local development.
package preview

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Bitlatte/quire/internal/logger"
)

// Server serves an output directory with caching disabled.
type Server struct {
	router chi.Router
	root   string
	log    *logger.Logger
}

func NewServer(root string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{root: root, log: log.Module("preview")}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.log))
	r.Use(NoCache)

	r.Get("/*", s.handleFile)
	r.Head("/*", s.handleFile)

	s.router = r
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	local := filepath.Join(s.root, filepath.FromSlash(clean))

	info, err := os.Stat(local)
	switch {
	case err == nil && info.IsDir():
		// No directory listings: only serve directories that have an index.
		if _, err := os.Stat(filepath.Join(local, "index.html")); err != nil {
			http.NotFound(w, r)
			return
		}
	case err != nil && path.Ext(clean) == "":
		// Extensionless URLs resolve to the .html page when one exists.
		if _, htmlErr := os.Stat(local + ".html"); htmlErr == nil {
			http.ServeFile(w, r, local+".html")
			return
		}
	}

	http.FileServer(http.Dir(s.root)).ServeHTTP(w, r)
}

// NoCache sets headers that stop browsers caching pages between rebuilds.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs each request with its status and duration.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// DisplayURL turns a listen address such as ":1313" into a browsable URL.
func DisplayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
