// Package report serves a completed run directory over HTTP so results
// can be reviewed without copying files around: the markdown parameters
// report rendered as HTML, plus the manifest and the raw table.
package report

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"

	"neuroslope/internal"
)

// Server exposes one run directory.
type Server struct {
	runDir string
	router chi.Router
	log    *internal.Logger
}

// NewServer creates a report server for the given run directory.
func NewServer(runDir string, logger *internal.Logger) *Server {
	s := &Server{
		runDir: runDir,
		log:    logger.WithComponent("Report"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/manifest.json", s.handleFile("manifest.json", "application/json"))
	r.Get("/table.csv", s.handleTable(".csv", "text/csv"))
	r.Get("/table.xlsx", s.handleTable(".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	s.router = r
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe blocks serving the report on the given port.
func (s *Server) ListenAndServe(port string) error {
	s.log.Info("serving run report for %s on :%s", s.runDir, port)
	return http.ListenAndServe(":"+port, s.router)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	md, err := os.ReadFile(filepath.Join(s.runDir, "parameters.md"))
	if err != nil {
		http.Error(w, fmt.Sprintf("run report not found: %v", err), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<!DOCTYPE html><html><body>"))
	w.Write(markdown.ToHTML(md, nil, nil))
	w.Write([]byte("</body></html>"))
}

func (s *Server) handleFile(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.runDir, name)
		if _, err := os.Stat(path); err != nil {
			http.Error(w, fmt.Sprintf("%s not found", name), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		http.ServeFile(w, r, path)
	}
}

// handleTable serves the single exported table with the given
// extension, whatever fitting range it was named for.
func (s *Server) handleTable(ext, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := filepath.Glob(filepath.Join(s.runDir, "rs-full-*"+ext))
		if err != nil || len(matches) == 0 {
			http.Error(w, "result table not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		http.ServeFile(w, r, matches[0])
	}
}
