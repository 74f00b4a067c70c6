package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/patchops/disksnap/snapshot"
)

// BatchRunner runs one snapshot batch; *snapshot.Batcher implements it.
type BatchRunner interface {
	CreateAll(ctx context.Context, project, zone string) (snapshot.Result, error)
}

// SnapshotRequest is the JSON body of POST /snapshots.
type SnapshotRequest struct {
	Project string `json:"project"`
	Zone    string `json:"zone"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Server exposes the snapshot batch over HTTP.
type Server struct {
	addr    string
	batcher BatchRunner
	logger  zerolog.Logger
	echo    *echo.Echo
}

// New builds the HTTP server and registers its routes.
func New(addr string, batcher BatchRunner, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Debug = false
	e.Use(middleware.Recover())

	s := &Server{
		addr:    addr,
		batcher: batcher,
		logger:  logger,
		echo:    e,
	}

	e.POST("/snapshots", s.handleCreateSnapshots)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, messageResponse{Message: "Ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := http.Server{
		Addr:        s.addr,
		Handler:     s.echo,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("http server shutdown")
		}
	}()

	s.logger.Info().Str("addr", s.addr).Msg("http server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleCreateSnapshots validates the request and runs the batch. Per-disk
// failures never change the response; only a batch-level failure (listing)
// maps to 500.
func (s *Server) handleCreateSnapshots(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Empty request body"})
	}

	// The body must be a JSON object with string fields.
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid JSON payload"})
	}
	var req SnapshotRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid JSON payload"})
	}

	s.logger.Info().
		Str("project", req.Project).
		Str("zone", req.Zone).
		Msg("received snapshot request")

	if req.Project == "" || req.Zone == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing 'project' or 'zone' in request"})
	}

	if _, err := s.batcher.CreateAll(c.Request().Context(), req.Project, req.Zone); err != nil {
		s.logger.Error().Err(err).Msg("snapshot batch failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Snapshot creation failed: " + err.Error()})
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Snapshots created successfully"})
}
