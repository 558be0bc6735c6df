// Package server exposes the library over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/klokapp/klok/internal/errors"
	"github.com/klokapp/klok/internal/library"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	// AllowedOrigins lists origins allowed by CORS. Empty allows all.
	AllowedOrigins []string
	Version        string
	Logger         *slog.Logger
}

type Server struct {
	lib     *library.Service
	opts    Options
	logger  *slog.Logger
	handler http.Handler
}

func New(lib *library.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{lib: lib, opts: opts, logger: opts.Logger}

	router := mux.NewRouter().StrictSlash(true)
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/midi", s.handleMIDI).Methods(http.MethodGet)
	api.HandleFunc("/audio", s.handleAudio).Methods(http.MethodGet)
	api.HandleFunc("/metadata", s.handleMetadata).Methods(http.MethodGet)
	api.HandleFunc("/playlist", s.handlePlaylist).Methods(http.MethodGet)
	api.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	s.handler = c.Handler(router)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Listening.", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down.")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleMIDI(w http.ResponseWriter, r *http.Request) {
	notes, err := s.lib.LoadMIDI(r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	url, err := s.lib.LoadAudio(r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	md, err := s.lib.GetMetadata(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, md)
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	items, err := s.lib.LoadPlaylist(r.URL.Query()["ext"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": s.opts.Version})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		s.logger.Warn("Could not write response.", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *errors.Error
	if !errors.As(err, &e) {
		e = errors.Wrap(err, errors.CodeInternal, "internal error")
	}
	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed.", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("Request rejected.", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, map[string]string{
		"code":   string(e.Code),
		"detail": err.Error(),
	})
}
